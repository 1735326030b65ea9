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
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// newBusBackOff yields retry intervals uniformly distributed in
// [1.0ms, 1.5ms], matching the settle time of the mailbox FPGA between
// rejected transactions.
func newBusBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1250 * time.Microsecond
	b.RandomizationFactor = 0.2
	b.Multiplier = 1.0
	b.MaxInterval = 1500 * time.Microsecond
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func roundUp(v, multiple uint32) uint32 {
	return (v + multiple - 1) / multiple * multiple
}

// boundedRead moves at most one I/O-limit-sized chunk from the memory at off
// into buf and reports the byte count actually transferred. Reads are not
// page constrained.
func (d *Device) boundedRead(off uint32, buf []byte) (int, error) {
	n := len(buf)
	if lim := int(IOLimit()); n > lim {
		n = lim
	}
	return d.timedTransfer("read", off, buf[:n], d.bus.BulkRead)
}

// boundedWrite moves at most one chunk from buf to the memory at off. The
// chunk is capped at writeMax and never rolls over past the end of the page
// containing off.
func (d *Device) boundedWrite(off uint32, buf []byte) (int, error) {
	n := len(buf)
	if n > int(d.chip.writeMax) {
		n = int(d.chip.writeMax)
	}

	// Never roll over backwards, to the start of this page.
	nextPage := roundUp(off+1, uint32(d.chip.pageSize))
	if off+uint32(n) > nextPage {
		n = int(nextPage - off)
	}

	return d.timedTransfer("write", off, buf[:n], d.bus.BulkWrite)
}

// timedTransfer issues one bus burst, retrying transient faults until the
// write-timeout deadline. The deadline check uses the timestamp taken before
// each attempt so that a slow scheduler cannot cause a premature timeout.
func (d *Device) timedTransfer(op string, off uint32, chunk []byte, burst func(uint16, []byte) error) (int, error) {
	bo := newBusBackOff()
	deadline := time.Now().Add(WriteTimeout())

	var err error
	for {
		start := time.Now()
		err = burst(uint16(off), chunk)
		busLogger.debugf("%s %d@%d --> %v", op, len(chunk), off, err)
		if debugMode {
			busTrace.record(op, off, len(chunk), err)
		}
		if err == nil {
			return len(chunk), nil
		}

		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			busErrorsTotal.Inc()
			return 0, fmt.Errorf("%w: %s %d@%d: %v", ErrBus, op, len(chunk), off, perm.Unwrap())
		}

		busRetriesTotal.Inc()
		time.Sleep(bo.NextBackOff())
		if !start.Before(deadline) {
			break
		}
	}

	busTimeoutsTotal.Inc()
	return 0, fmt.Errorf("%w: %s %d@%d: %v", ErrTimeout, op, len(chunk), off, err)
}
