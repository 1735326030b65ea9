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

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	_ = c.Write(m)
	return m.GetCounter().GetValue()
}

func TestAccessCountersAdvance(t *testing.T) {
	d, bus := newTestDevice(t, nil)

	reads := counterValue(readsTotal)
	readBytes := counterValue(bytesReadTotal)
	writes := counterValue(writesTotal)

	require.NoError(t, d.Write(0, pattern(32)))
	buf := make([]byte, 32)
	require.NoError(t, d.Read(0, buf))

	assert.Equal(t, reads+1, counterValue(readsTotal))
	assert.Equal(t, readBytes+32, counterValue(bytesReadTotal))
	assert.Equal(t, writes+1, counterValue(writesTotal))

	retries := counterValue(busRetriesTotal)
	bus.FailNext(1)
	require.NoError(t, d.Write(0, []byte{1}))
	assert.Equal(t, retries+1, counterValue(busRetriesTotal))
}
