/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package mailbox drives the DMMC-STAMP mailbox, a small virtual EEPROM
// shared between the host and the MMC over a byte-addressed register bus.
// Both parties read and write the same memory; accesses from this process
// are serialized locally and bracketed by an advisory lock flag so the peer
// can defer its own writes during a multi-byte access.
package mailbox

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/srediag/mmc-mailbox/api"
	"github.com/srediag/mmc-mailbox/pkg/nvmem"
)

// Device is one attached mailbox memory.
type Device struct {
	// mu protects against concurrent accesses from this process, but not
	// from the peer controller on the same bus.
	mu sync.Mutex

	chip   chipInfo
	bus    api.Bus
	name   string
	closed bool

	nv *nvmem.Device

	tracer      trace.Tracer
	accessBytes metric.Int64Counter
}

// Attach brings up a mailbox device on the given bus. A nil conf uses the
// chip-variant defaults. Attach performs a one-byte test read to verify that
// the memory is functional; a probe failure means the device is not brought
// up. The first attached device becomes the power-off handshake owner.
func Attach(bus api.Bus, conf *Config) (*Device, error) {
	if conf == nil {
		conf = DefaultConfig()
	}
	if err := VerifyConfig(conf); err != nil {
		return nil, err
	}

	feat := api.FeatureFullTransfer
	if fr, ok := bus.(api.FeatureReporter); ok {
		feat = fr.Features()
	}

	d := &Device{
		chip:   newChipInfo(conf, feat),
		bus:    bus,
		name:   conf.Name,
		tracer: conf.Tracer,
	}
	if conf.Meter != nil {
		var err error
		d.accessBytes, err = conf.Meter.Int64Counter("mmc_mailbox.access.bytes")
		if err != nil {
			internalLogger.warnf("meter counter setup failed: %v", err)
		}
	}

	if err := d.Probe(); err != nil {
		return nil, fmt.Errorf("mailbox probe read failed: %w", err)
	}

	if conf.Name != "" {
		nv, err := nvmem.Register(nvmem.Config{
			Name:  conf.Name,
			Size:  d.chip.byteLen,
			Read:  d.Read,
			Write: d.Write,
		})
		if err != nil {
			return nil, err
		}
		d.nv = nv
	}

	internalLogger.infof("%d byte EEPROM %q, %d bytes/write",
		d.chip.byteLen, conf.Name, d.chip.writeMax)

	// If a power-off owner has already been registered, leave it alone.
	if !registerPowerOffOwner(d) {
		internalLogger.errorf("power-off handler already registered, hook not installed")
	}

	return d, nil
}

// Size returns the addressable memory size in bytes.
func (d *Device) Size() uint32 { return d.chip.byteLen }

// WriteMax returns the largest span a single bus write may move.
func (d *Device) WriteMax() uint16 { return d.chip.writeMax }

// Probe performs a one-byte read at offset 0 to verify the memory answers.
func (d *Device) Probe() error {
	var b [1]byte
	return d.Read(0, b[:])
}

// Read fills buf from the memory starting at off. A zero-length read is a
// no-op success. Partial progress of a failed read stays in buf.
func (d *Device) Read(off uint32, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	return d.access("read", off, buf, (*Device).boundedRead)
}

// Write stores buf into the memory starting at off. A zero-length write is
// rejected with ErrInvalidRange.
func (d *Device) Write(off uint32, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: zero length write", ErrInvalidRange)
	}
	return d.access("write", off, data, (*Device).boundedWrite)
}

// access drives one full logical transfer: bounds check, link power-up,
// local serialization, peer lock flag, then bounded chunks until the range
// is consumed. Page clamping on writes can force many small chunks for a
// single call.
func (d *Device) access(op string, off uint32, buf []byte, bounded func(*Device, uint32, []byte) (int, error)) error {
	if uint64(off)+uint64(len(buf)) > uint64(d.chip.byteLen) {
		return fmt.Errorf("%w: %s %d@%d exceeds %d bytes", ErrInvalidRange, op, len(buf), off, d.chip.byteLen)
	}

	if d.tracer != nil {
		var span trace.Span
		_, span = d.tracer.Start(context.Background(), "mailbox."+op,
			trace.WithAttributes(
				attribute.Int64("mailbox.offset", int64(off)),
				attribute.Int("mailbox.length", len(buf)),
			))
		defer span.End()
	}

	if pm, ok := d.bus.(api.PowerManager); ok {
		if err := pm.Acquire(); err != nil {
			return err
		}
		defer pm.Release()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDeviceClosed
	}

	total := len(buf)
	locked := d.lockIfMultiple(total)
	for len(buf) > 0 {
		n, err := bounded(d, off, buf)
		if err != nil {
			// Lock flag stays set; clearing it would need the same
			// failing bus.
			return err
		}
		off += uint32(n)
		buf = buf[n:]
	}
	d.unlockIfLocked(locked)

	if op == "read" {
		readsTotal.Inc()
		bytesReadTotal.Add(float64(total))
	} else {
		writesTotal.Inc()
		bytesWrittenTotal.Add(float64(total))
	}
	if d.accessBytes != nil {
		d.accessBytes.Add(context.Background(), int64(total),
			metric.WithAttributes(attribute.String("op", op)))
	}
	return nil
}

// Close detaches the device: the storage provider is unregistered and the
// power-off slot is released if this device owns it. Further accesses fail
// with ErrDeviceClosed.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	if d.nv != nil {
		nvmem.Unregister(d.nv)
	}
	deregisterPowerOffOwner(d)
	return nil
}
