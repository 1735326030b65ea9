// Package i2cbus implements the register-bus transport over the Linux
// i2c-dev interface. Register offsets are sent as a big-endian 16 bit
// address, matching the mailbox FPGA's register map.
//
// Platform-specific code is build-tagged; on other platforms Open fails.
package i2cbus

import "errors"

// ErrUnsupported is returned by Open on platforms without i2c-dev.
var ErrUnsupported = errors.New("i2cbus: not supported on this platform")
