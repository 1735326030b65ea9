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

	"github.com/Workiva/go-datastructures/queue"
)

const busTraceCap = 256

// busTransfer is one recorded bus transaction.
type busTransfer struct {
	When   time.Time
	Op     string
	Offset uint32
	Len    int
	Err    error
}

// transferTrace keeps the most recent bus transactions in a bounded ring.
// Only populated in debug mode (`MMC_MAILBOX_DEBUG_MODE`).
type transferTrace struct {
	mu sync.Mutex
	rb *queue.RingBuffer
}

var busTrace = newTransferTrace(busTraceCap)

func newTransferTrace(cap uint64) *transferTrace {
	return &transferTrace{rb: queue.NewRingBuffer(cap)}
}

func (t *transferTrace) record(op string, off uint32, n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := busTransfer{When: time.Now(), Op: op, Offset: off, Len: n, Err: err}
	ok, _ := t.rb.Offer(e)
	if !ok {
		// Full; drop the oldest entry.
		_, _ = t.rb.Get()
		_, _ = t.rb.Offer(e)
	}
}

// snapshot drains and restores the ring, oldest first.
func (t *transferTrace) snapshot() []busTransfer {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.rb.Len()
	out := make([]busTransfer, 0, n)
	for i := uint64(0); i < n; i++ {
		item, err := t.rb.Get()
		if err != nil {
			break
		}
		tr, ok := item.(busTransfer)
		if !ok {
			continue
		}
		out = append(out, tr)
		_, _ = t.rb.Offer(tr)
	}
	return out
}

// DebugTransferTrace prints the most recent bus transactions. Transactions
// are only recorded when debug mode is enabled through the
// `MMC_MAILBOX_DEBUG_MODE` env.
func DebugTransferTrace() {
	for _, tr := range busTrace.snapshot() {
		fmt.Printf("%s %s %d@%d err=%v\n",
			tr.When.Format("15:04:05.999999"), tr.Op, tr.Len, tr.Offset, tr.Err)
	}
}
