//go:build !linux

package i2cbus

// Bus is a placeholder on platforms without i2c-dev.
type Bus struct{}

// Open always fails on platforms without i2c-dev.
func Open(dev string, addr uint16) (*Bus, error) {
	return nil, ErrUnsupported
}

// Close implements the transport surface on unsupported platforms.
func (b *Bus) Close() error { return ErrUnsupported }

// BulkRead always fails on platforms without i2c-dev.
func (b *Bus) BulkRead(off uint16, buf []byte) error { return ErrUnsupported }

// BulkWrite always fails on platforms without i2c-dev.
func (b *Bus) BulkWrite(off uint16, buf []byte) error { return ErrUnsupported }
