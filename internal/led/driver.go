// Package led holds the byte sinks a rendered strip buffer is written to.
package led

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes one framed strip buffer to the device.
	Write(b []byte) error
	// Close releases resources.
	Close() error
}
