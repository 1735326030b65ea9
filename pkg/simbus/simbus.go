// Package simbus provides an in-memory register bus with a scriptable fault
// model, standing in for the I2C link to the mailbox FPGA in tests and
// examples. It also plays the peer controller: test code can poke bytes into
// the memory out of band, the way the MMC would.
package simbus

import (
	"errors"
	"fmt"
	"sync"

	"github.com/srediag/mmc-mailbox/api"
)

// ErrFault is the default transient fault injected by FailNext.
var ErrFault = errors.New("simbus: bus fault")

// Transfer is one journaled bus transaction. Val holds the first payload
// byte of a write, zero for reads.
type Transfer struct {
	Op     string
	Offset uint16
	Len    int
	Val    byte
}

// FaultFunc inspects a transfer about to happen and returns a non-nil error
// to make it fail.
type FaultFunc func(op string, off uint16, n int) error

// Bus is a simulated byte-addressed register bus backed by a plain array.
type Bus struct {
	mu       sync.Mutex
	mem      []byte
	feat     api.Features
	journal  []Transfer
	failN    int
	failErr  error
	fault    FaultFunc
	acquires int
	releases int
}

// New creates a simulated bus with size bytes of memory and full transfer
// capability.
func New(size int) *Bus {
	return &Bus{
		mem:  make([]byte, size),
		feat: api.FeatureFullTransfer | api.FeatureBlockTransfer,
	}
}

// SetFeatures overrides the reported transfer capabilities.
func (b *Bus) SetFeatures(f api.Features) {
	b.mu.Lock()
	b.feat = f
	b.mu.Unlock()
}

// Features implements api.FeatureReporter.
func (b *Bus) Features() api.Features {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.feat
}

// FailNext makes the next n transfers fail with ErrFault.
func (b *Bus) FailNext(n int) { b.FailNextErr(n, ErrFault) }

// FailNextErr makes the next n transfers fail with err.
func (b *Bus) FailNextErr(n int, err error) {
	b.mu.Lock()
	b.failN = n
	b.failErr = err
	b.mu.Unlock()
}

// SetFaultFunc installs a per-transfer fault hook, checked after the FailNext
// counter. A nil fn removes the hook.
func (b *Bus) SetFaultFunc(fn FaultFunc) {
	b.mu.Lock()
	b.fault = fn
	b.mu.Unlock()
}

func (b *Bus) step(op string, off uint16, n int, val byte) error {
	b.journal = append(b.journal, Transfer{Op: op, Offset: off, Len: n, Val: val})
	if b.failN > 0 {
		b.failN--
		return b.failErr
	}
	if b.fault != nil {
		if err := b.fault(op, off, n); err != nil {
			return err
		}
	}
	if int(off)+n > len(b.mem) {
		return fmt.Errorf("simbus: %s %d@%d past end of %d byte memory", op, n, off, len(b.mem))
	}
	return nil
}

// BulkRead implements api.Bus.
func (b *Bus) BulkRead(off uint16, buf []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.step("read", off, len(buf), 0); err != nil {
		return err
	}
	copy(buf, b.mem[off:int(off)+len(buf)])
	return nil
}

// BulkWrite implements api.Bus.
func (b *Bus) BulkWrite(off uint16, buf []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var first byte
	if len(buf) > 0 {
		first = buf[0]
	}
	if err := b.step("write", off, len(buf), first); err != nil {
		return err
	}
	copy(b.mem[off:int(off)+len(buf)], buf)
	return nil
}

// Acquire implements api.PowerManager.
func (b *Bus) Acquire() error {
	b.mu.Lock()
	b.acquires++
	b.mu.Unlock()
	return nil
}

// Release implements api.PowerManager.
func (b *Bus) Release() {
	b.mu.Lock()
	b.releases++
	b.mu.Unlock()
}

// PowerBalanced reports whether every Acquire has been matched by a Release.
func (b *Bus) PowerBalanced() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.acquires == b.releases
}

// Poke writes a byte into the memory the way the peer controller would,
// without going through the bus journal.
func (b *Bus) Poke(off uint16, val byte) {
	b.mu.Lock()
	b.mem[off] = val
	b.mu.Unlock()
}

// Peek reads one byte of the memory without going through the bus journal.
func (b *Bus) Peek(off uint16) byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mem[off]
}

// Bytes returns a copy of the full memory contents.
func (b *Bus) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.mem))
	copy(out, b.mem)
	return out
}

// Journal returns a copy of all transfers attempted so far, including failed
// ones.
func (b *Bus) Journal() []Transfer {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Transfer, len(b.journal))
	copy(out, b.journal)
	return out
}

// ResetJournal clears the transfer journal.
func (b *Bus) ResetJournal() {
	b.mu.Lock()
	b.journal = b.journal[:0]
	b.mu.Unlock()
}
