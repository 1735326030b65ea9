// Package api defines the public contracts between the mailbox core and its
// collaborators: the register-bus transport, link power management and the
// probe used for health monitoring.
package api

// Features describes the transfer capabilities of a register bus.
type Features uint32

const (
	// FeatureFullTransfer indicates the bus can address a register and
	// burst an arbitrary number of bytes in one transaction.
	FeatureFullTransfer Features = 1 << iota
	// FeatureBlockTransfer indicates the bus supports block transfers,
	// capped at the SMBus block maximum per transaction.
	FeatureBlockTransfer
)

// Bus is the byte-addressed register transport the mailbox talks through.
// Register offsets are 16 bit wide and values are 8 bit wide, matching the
// mailbox's 2 KiB addressable range.
//
// Implementations report each failed transfer as an error; transient faults
// are retried by the caller. An implementation may mark a fault as
// unrecoverable by wrapping it with backoff.Permanent, which stops the
// caller's retry loop immediately.
type Bus interface {
	// BulkRead reads len(buf) bytes starting at register offset off.
	BulkRead(off uint16, buf []byte) error
	// BulkWrite writes len(buf) bytes starting at register offset off.
	BulkWrite(off uint16, buf []byte) error
}

// FeatureReporter is optionally implemented by a Bus. A bus that does not
// implement it is assumed to support full addressed transfers.
type FeatureReporter interface {
	Features() Features
}

// PowerManager is optionally implemented by a Bus whose link must be powered
// up around an access. Acquire is called before a logical access and Release
// after it, on every exit path.
type PowerManager interface {
	Acquire() error
	Release()
}

// Prober exposes the one-byte verification read used at attach time and by
// health checks.
type Prober interface {
	Probe() error
}
