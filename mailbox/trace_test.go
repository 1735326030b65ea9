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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferTraceKeepsRecentEntries(t *testing.T) {
	tr := newTransferTrace(4)
	for i := 0; i < 10; i++ {
		tr.record("write", uint32(i), 1, nil)
	}
	snap := tr.snapshot()
	require.Len(t, snap, 4)
	// Oldest entries were dropped.
	assert.Equal(t, uint32(6), snap[0].Offset)
	assert.Equal(t, uint32(9), snap[3].Offset)

	// The snapshot is non-destructive.
	assert.Len(t, tr.snapshot(), 4)
}

func TestTransfersRecordedInDebugMode(t *testing.T) {
	prev := debugMode
	debugMode = true
	defer func() { debugMode = prev }()

	d, _ := newTestDevice(t, nil)
	require.NoError(t, d.Write(0, []byte{1}))

	found := false
	for _, e := range busTrace.snapshot() {
		if e.Op == "write" && e.Offset == 0 {
			found = true
		}
	}
	assert.True(t, found)
	DebugTransferTrace()
}
