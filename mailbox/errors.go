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

import "errors"

var (
	// ErrInvalidRange means the caller-supplied offset/length is out of
	// bounds, or a write was requested with zero length. Rejected before
	// any bus activity.
	ErrInvalidRange = errors.New("mailbox: offset/length out of range")

	// ErrTimeout means no bus transfer succeeded within the write-timeout
	// window. Terminal for the whole access; callers do not retry.
	ErrTimeout = errors.New("mailbox: bus transfer timed out")

	// ErrBus means the transport reported an unrecoverable fault.
	ErrBus = errors.New("mailbox: bus transfer failed")

	// ErrConfig is returned for fatal configuration errors such as a zero
	// page size or a zero I/O limit.
	ErrConfig = errors.New("mailbox: invalid configuration")

	// ErrDeviceClosed is returned for accesses after Close.
	ErrDeviceClosed = errors.New("mailbox: device closed")
)
