package serial

import "github.com/prometheus/client_golang/prometheus"

// Collector exports the counters of one Port to Prometheus.
type Collector struct {
	port *Port

	bytes    *prometheus.Desc
	timeouts *prometheus.Desc
	failures *prometheus.Desc
	up       *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector labelled with the port's device path.
func NewCollector(port *Port) *Collector {
	labels := prometheus.Labels{"device": port.Device()}
	return &Collector{
		port: port,
		bytes: prometheus.NewDesc("serial_port_bytes_total",
			"Bytes transferred through the serial port.", []string{"direction"}, labels),
		timeouts: prometheus.NewDesc("serial_port_timeouts_total",
			"Operations aborted because their deadline elapsed.", []string{"direction"}, labels),
		failures: prometheus.NewDesc("serial_port_failures_total",
			"Operations that failed with an unrecoverable device error.", []string{"direction"}, labels),
		up: prometheus.NewDesc("serial_port_functional",
			"1 while the port handle is open and configured.", nil, labels),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.bytes
	ch <- c.timeouts
	ch <- c.failures
	ch <- c.up
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.port.Stats()
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(s.BytesRead), "rx")
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(s.BytesWritten), "tx")
	ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, float64(s.ReadTimeouts), "rx")
	ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, float64(s.WriteTimeouts), "tx")
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(s.ReadFailures), "rx")
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(s.WriteFailures), "tx")

	up := 0.0
	if c.port.Functional() {
		up = 1
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, up)
}
