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

package mailbox

import (
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	defaultWatchInterval = 100 * time.Millisecond
	watchPoolSize        = 4
)

// WatchFunc is invoked with the previous and current value of a watched
// status byte after it changed.
type WatchFunc func(old, cur byte)

// Watcher polls one status byte of the mailbox at a fixed interval and
// dispatches change callbacks on a worker pool. The peer signals state
// through the mailbox (e.g. a shutdown request in the FPGA status byte);
// polling is the only notification path on this bus.
type Watcher struct {
	d        *Device
	offset   uint32
	interval time.Duration
	fn       WatchFunc

	pool *ants.Pool
	stop chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// NewWatcher creates a watcher for the status byte at offset. A
// non-positive interval uses the default of 100 ms.
func (d *Device) NewWatcher(offset uint32, interval time.Duration, fn WatchFunc) (*Watcher, error) {
	if offset >= d.chip.byteLen {
		return nil, fmt.Errorf("%w: watch offset %d", ErrInvalidRange, offset)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: watch func must not be nil", ErrConfig)
	}
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	pool, err := ants.NewPool(watchPoolSize)
	if err != nil {
		return nil, err
	}
	return &Watcher{
		d:        d,
		offset:   offset,
		interval: interval,
		fn:       fn,
		pool:     pool,
		stop:     make(chan struct{}),
	}, nil
}

// Start reads the initial byte value and begins polling.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	var b [1]byte
	if err := w.d.Read(w.offset, b[:]); err != nil {
		return err
	}
	last := b[0]

	w.started = true
	w.wg.Add(1)
	go w.loop(last)
	return nil
}

func (w *Watcher) loop(last byte) {
	defer w.wg.Done()
	t := time.NewTicker(w.interval)
	defer t.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-t.C:
		}

		var b [1]byte
		if err := w.d.Read(w.offset, b[:]); err != nil {
			internalLogger.warnf("watch read %d failed: %v", w.offset, err)
			continue
		}
		if b[0] == last {
			continue
		}
		old, cur := last, b[0]
		last = cur
		if err := w.pool.Submit(func() { w.fn(old, cur) }); err != nil {
			internalLogger.warnf("watch dispatch failed: %v", err)
		}
	}
}

// Stop ends polling and waits for in-flight callbacks to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.started = false
	close(w.stop)
	w.wg.Wait()
	if err := w.pool.ReleaseTimeout(time.Second); err != nil {
		internalLogger.warnf("watch pool release: %v", err)
	}
}
