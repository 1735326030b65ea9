//go:build linux

package i2cbus

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/srediag/mmc-mailbox/api"
)

// ioctl numbers and message flags from the i2c-dev uapi.
const (
	i2cRdwr     = 0x0707
	i2cFlagRead = 0x0001
)

// i2cMsg mirrors struct i2c_msg.
type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

// rdwrIoctlData mirrors struct i2c_rdwr_ioctl_data.
type rdwrIoctlData struct {
	msgs  uintptr
	nmsgs uint32
}

// Bus is an i2c-dev backed register bus for one target address.
type Bus struct {
	// mu serializes transactions on the descriptor.
	mu   sync.Mutex
	fd   int
	addr uint16
}

// Open opens an i2c-dev device node (e.g. /dev/i2c-1) for the target at the
// given 7-bit address.
func Open(dev string, addr uint16) (*Bus, error) {
	fd, err := unix.Open(dev, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("i2cbus: open %s: %w", dev, err)
	}
	return &Bus{fd: fd, addr: addr}, nil
}

// Close releases the device node.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return unix.Close(b.fd)
}

// Features implements api.FeatureReporter; i2c-dev supports full addressed
// bursts.
func (b *Bus) Features() api.Features {
	return api.FeatureFullTransfer | api.FeatureBlockTransfer
}

// BulkRead implements api.Bus: a register-address write followed by a read
// in one combined transaction.
func (b *Bus) BulkRead(off uint16, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	var reg [2]byte
	binary.BigEndian.PutUint16(reg[:], off)
	msgs := [2]i2cMsg{
		{addr: b.addr, len: 2, buf: uintptr(unsafe.Pointer(&reg[0]))},
		{addr: b.addr, flags: i2cFlagRead, len: uint16(len(buf)), buf: uintptr(unsafe.Pointer(&buf[0]))},
	}
	err := b.transact(msgs[:])
	runtime.KeepAlive(&reg)
	runtime.KeepAlive(buf)
	return err
}

// BulkWrite implements api.Bus: register address and payload in a single
// write transaction.
func (b *Bus) BulkWrite(off uint16, buf []byte) error {
	out := make([]byte, 2+len(buf))
	binary.BigEndian.PutUint16(out, off)
	copy(out[2:], buf)
	msgs := [1]i2cMsg{
		{addr: b.addr, len: uint16(len(out)), buf: uintptr(unsafe.Pointer(&out[0]))},
	}
	err := b.transact(msgs[:])
	runtime.KeepAlive(out)
	return err
}

func (b *Bus) transact(msgs []i2cMsg) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	data := rdwrIoctlData{
		msgs:  uintptr(unsafe.Pointer(&msgs[0])),
		nmsgs: uint32(len(msgs)),
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), i2cRdwr, uintptr(unsafe.Pointer(&data)))
	runtime.KeepAlive(msgs)
	if errno != 0 {
		return fmt.Errorf("i2cbus: rdwr at 0x%02x: %w", b.addr, errno)
	}
	return nil
}
