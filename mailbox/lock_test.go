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
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srediag/mmc-mailbox/pkg/simbus"
)

func lockWrites(journal []simbus.Transfer) []simbus.Transfer {
	var out []simbus.Transfer
	for _, tr := range journal {
		if tr.Op == "write" && tr.Offset == lockFlagOffset {
			out = append(out, tr)
		}
	}
	return out
}

func TestSingleByteAccessNeedsNoLock(t *testing.T) {
	d, bus := newTestDevice(t, nil)

	require.NoError(t, d.Write(5, []byte{0xaa}))
	var b [1]byte
	require.NoError(t, d.Read(5, b[:]))

	assert.Empty(t, lockWrites(bus.Journal()))
}

func TestMultiByteAccessBracketsWithLockFlag(t *testing.T) {
	d, bus := newTestDevice(t, nil)

	require.NoError(t, d.Write(100, pattern(4)))

	journal := bus.Journal()
	locks := lockWrites(journal)
	require.Len(t, locks, 2)
	assert.Equal(t, byte(lockFlagSet), locks[0].Val)
	assert.Equal(t, byte(0), locks[1].Val)

	// Set write comes first, clear write last.
	assert.Equal(t, uint16(lockFlagOffset), journal[0].Offset)
	assert.Equal(t, uint16(lockFlagOffset), journal[len(journal)-1].Offset)
}

func TestReadsLockToo(t *testing.T) {
	d, bus := newTestDevice(t, nil)

	buf := make([]byte, 4)
	require.NoError(t, d.Read(100, buf))
	assert.Len(t, lockWrites(bus.Journal()), 2)
}

func TestLockFlagWriteFailureDoesNotAbortAccess(t *testing.T) {
	d, bus := newTestDevice(t, nil)
	bus.SetFaultFunc(func(op string, off uint16, n int) error {
		if off == lockFlagOffset {
			return backoff.Permanent(simbus.ErrFault)
		}
		return nil
	})

	want := pattern(8)
	require.NoError(t, d.Write(50, want))
	assert.Equal(t, want, bus.Bytes()[50:58])
}

func TestWriteNearProtocolBytesLeavesThemAlone(t *testing.T) {
	d, bus := newTestDevice(t, nil)
	bus.Poke(2046, 0x5a)

	require.NoError(t, d.Write(2040, pattern(4)))

	for _, tr := range dataWrites(bus.Journal()) {
		assert.Equal(t, uint16(2040), tr.Offset)
		assert.Equal(t, 4, tr.Len)
	}
	// The status byte and the lock flag stay untouched by data, except for
	// the protocol's own bracketing.
	assert.Equal(t, byte(0x5a), bus.Peek(2046))
	assert.Equal(t, byte(0), bus.Peek(lockFlagOffset))
}
