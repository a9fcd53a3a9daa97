package serial

// DataSource is a sequential byte input. Both methods block until the full
// request is satisfied or fail.
type DataSource interface {
	GetByte() (byte, error)
	// GetBlock fills buf[:n].
	GetBlock(buf []byte, n int) error
}

// DataSink is a sequential byte output. Both methods block until every byte
// has been transferred or fail.
type DataSink interface {
	PutByte(b byte) error
	// PutBlock writes buf[:n].
	PutBlock(buf []byte, n int) error
}

// Serial is a bidirectional byte stream whose OS-side buffers can be discarded.
type Serial interface {
	DataSource
	DataSink
	FlushInput() error
	FlushOutput() error
}

// DefaultDelimiter terminates lines read by ReadLine and Port.GetLine.
const DefaultDelimiter byte = '\n'

// ReadLine reads bytes from src until delim is seen and returns them with the
// delimiter as the final character. If src fails first the partial line is
// discarded and the error is returned.
func ReadLine(src DataSource, delim byte) (string, error) {
	var line []byte
	for {
		b, err := src.GetByte()
		if err != nil {
			return "", err
		}
		line = append(line, b)
		if b == delim {
			return string(line), nil
		}
	}
}
