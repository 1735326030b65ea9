// Package nvmem is the storage-exposure layer: it publishes attached
// mailbox memories as named, byte-addressable storage providers with a fixed
// word size and stride of one byte.
//
// Providers are registered under a unique name and looked up by consumers;
// the registry is safe for concurrent use.
package nvmem

import (
	"errors"
	"fmt"

	cmap "github.com/orcaman/concurrent-map/v2"
)

var (
	// ErrExists means a provider with the same name is already registered.
	ErrExists = errors.New("nvmem: provider already registered")
	// ErrNotFound means no provider is registered under the name.
	ErrNotFound = errors.New("nvmem: provider not found")
	// ErrOutOfRange means the access exceeds the provider's size.
	ErrOutOfRange = errors.New("nvmem: access out of range")
	// ErrReadOnly means a write was attempted on a read-only provider.
	ErrReadOnly = errors.New("nvmem: provider is read-only")
	// ErrInvalid means the registration config is incomplete.
	ErrInvalid = errors.New("nvmem: invalid provider config")
)

// ReadFunc reads len(buf) bytes at offset into buf.
type ReadFunc func(offset uint32, buf []byte) error

// WriteFunc writes data at offset.
type WriteFunc func(offset uint32, data []byte) error

// Config describes a provider to register.
type Config struct {
	Name     string
	Size     uint32
	ReadOnly bool
	Read     ReadFunc
	Write    WriteFunc
}

// Device is a registered storage provider covering exactly Size bytes.
type Device struct {
	name     string
	size     uint32
	readOnly bool
	read     ReadFunc
	write    WriteFunc
}

var registry = cmap.New[*Device]()

// Register publishes a provider. The name must be unique process-wide.
func Register(conf Config) (*Device, error) {
	if conf.Name == "" || conf.Size == 0 || conf.Read == nil {
		return nil, fmt.Errorf("%w: name, size and read are required", ErrInvalid)
	}
	if !conf.ReadOnly && conf.Write == nil {
		return nil, fmt.Errorf("%w: writable provider requires a write func", ErrInvalid)
	}
	d := &Device{
		name:     conf.Name,
		size:     conf.Size,
		readOnly: conf.ReadOnly,
		read:     conf.Read,
		write:    conf.Write,
	}
	if !registry.SetIfAbsent(conf.Name, d) {
		return nil, fmt.Errorf("%w: %s", ErrExists, conf.Name)
	}
	return d, nil
}

// Unregister removes a provider. Removing a provider that was since replaced
// under the same name leaves the replacement untouched.
func Unregister(d *Device) {
	if d == nil {
		return
	}
	registry.RemoveCb(d.name, func(_ string, cur *Device, exists bool) bool {
		return exists && cur == d
	})
}

// Lookup returns the provider registered under name.
func Lookup(name string) (*Device, error) {
	d, ok := registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return d, nil
}

// Names lists the registered provider names.
func Names() []string {
	return registry.Keys()
}

// Name returns the provider's registration name.
func (d *Device) Name() string { return d.name }

// Size returns the provider's addressable size in bytes.
func (d *Device) Size() uint32 { return d.size }

// ReadAt fills p with bytes starting at off. Implements io.ReaderAt over the
// provider's address space.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(d.size) {
		return 0, ErrOutOfRange
	}
	if err := d.read(uint32(off), p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteAt writes p starting at off. Implements io.WriterAt over the
// provider's address space.
func (d *Device) WriteAt(p []byte, off int64) (int, error) {
	if d.readOnly {
		return 0, ErrReadOnly
	}
	if off < 0 || off+int64(len(p)) > int64(d.size) {
		return 0, ErrOutOfRange
	}
	if err := d.write(uint32(off), p); err != nil {
		return 0, err
	}
	return len(p), nil
}
