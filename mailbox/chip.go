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
	"github.com/srediag/mmc-mailbox/api"
)

// smbusBlockMax caps a single transfer on transports that only support
// SMBus-style block transactions.
const smbusBlockMax = 32

// chipInfo holds the static facts about the attached memory. Immutable after
// attach.
type chipInfo struct {
	byteLen  uint32
	pageSize uint16
	// writeMax is at most a page, further bounded by the process-wide I/O
	// limit and the transport's block maximum.
	writeMax uint16
}

func newChipInfo(conf *Config, feat api.Features) chipInfo {
	pageSize := conf.PageSize
	if feat&(api.FeatureFullTransfer|api.FeatureBlockTransfer) == 0 {
		// No burst capability at all; every write degrades to one byte.
		pageSize = 1
	}

	writeMax := uint32(pageSize)
	if lim := IOLimit(); writeMax > lim {
		writeMax = lim
	}
	if feat&api.FeatureFullTransfer == 0 && writeMax > smbusBlockMax {
		writeMax = smbusBlockMax
	}

	return chipInfo{
		byteLen:  conf.Size,
		pageSize: pageSize,
		writeMax: uint16(writeMax),
	}
}
