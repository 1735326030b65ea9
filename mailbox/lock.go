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

// For read/write accesses longer than 1 byte, the "page lock" flag is set.
// The peer controller polls this flag before its own writes and defers them
// while it is set, protecting the critical section. The flag is advisory;
// it only works because the peer cooperates.
const (
	lockFlagOffset = 2047
	lockFlagSet    = 0x01
)

// lockIfMultiple sets the lock flag when the access spans more than one
// byte. A single-byte access is already atomic at the bus level and needs no
// lock. The flag write is best effort; a failure is logged and the access
// proceeds.
func (d *Device) lockIfMultiple(count int) bool {
	if count <= 1 {
		return false
	}
	if _, err := d.boundedWrite(lockFlagOffset, []byte{lockFlagSet}); err != nil {
		internalLogger.warnf("lock flag set failed: %v", err)
	}
	return true
}

// unlockIfLocked clears the lock flag set by lockIfMultiple.
func (d *Device) unlockIfLocked(locked bool) {
	if !locked {
		return
	}
	if _, err := d.boundedWrite(lockFlagOffset, []byte{0}); err != nil {
		internalLogger.warnf("lock flag clear failed: %v", err)
	}
}
