package serial

// standardBaudRates are the supported line speeds in ascending order.
var standardBaudRates = []int{
	50, 75, 110, 134, 150, 200, 300, 600, 1200, 1800, 2400, 4800,
	9600, 19200, 38400, 57600, 115200, 230400, 460800, 500000, 576000,
	921600, 1000000, 1152000, 1500000, 2000000, 2500000, 3000000,
	3500000, 4000000,
}

// IsStandardBaudRate reports whether rate is one of the supported line speeds.
func IsStandardBaudRate(rate int) bool {
	for _, r := range standardBaudRates {
		if r == rate {
			return true
		}
	}
	return false
}

// StandardBaudRates returns the supported line speeds in ascending order.
func StandardBaudRates() []int {
	return append([]int(nil), standardBaudRates...)
}
