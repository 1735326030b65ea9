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

	"github.com/srediag/mmc-mailbox/api"
)

func TestChipInfoDefaults(t *testing.T) {
	chip := newChipInfo(DefaultConfig(), api.FeatureFullTransfer)
	assert.Equal(t, uint32(2048), chip.byteLen)
	assert.Equal(t, uint16(16), chip.pageSize)
	// writeMax is at most a page.
	assert.Equal(t, uint16(16), chip.writeMax)
}

func TestChipInfoIOLimitCap(t *testing.T) {
	conf := DefaultConfig()
	conf.PageSize = 256
	chip := newChipInfo(conf, api.FeatureFullTransfer)
	assert.Equal(t, uint16(256), chip.pageSize)
	assert.Equal(t, uint16(128), chip.writeMax)
}

func TestChipInfoBlockOnlyTransport(t *testing.T) {
	conf := DefaultConfig()
	conf.PageSize = 256
	chip := newChipInfo(conf, api.FeatureBlockTransfer)
	assert.Equal(t, uint16(smbusBlockMax), chip.writeMax)
}

func TestChipInfoNoBurstCapability(t *testing.T) {
	chip := newChipInfo(DefaultConfig(), 0)
	assert.Equal(t, uint16(1), chip.pageSize)
	assert.Equal(t, uint16(1), chip.writeMax)
}
