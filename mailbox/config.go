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
	"math/bits"
	"os"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// The DMMC-STAMP mailbox is a 16384 bit (2 KiB) memory.
	defaultByteLen  = 16384 / 8
	defaultPageSize = 16

	// defaultIOLimit bounds the bytes moved per bus transaction so a large
	// access cannot monopolize the bus. Forced to a power of two so writes
	// align on pages.
	defaultIOLimit = 128

	// defaultWriteTimeout is how long a single bounded transfer keeps
	// retrying before it fails.
	defaultWriteTimeout = 25 * time.Millisecond
)

var (
	tunableMu    sync.RWMutex
	ioLimit      uint32        = defaultIOLimit
	writeTimeout time.Duration = defaultWriteTimeout
)

func init() {
	if v := os.Getenv("MMC_MAILBOX_IO_LIMIT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			if err := SetIOLimit(uint32(n)); err != nil {
				internalLogger.errorf("MMC_MAILBOX_IO_LIMIT: %v", err)
			}
		}
	}
	if v := os.Getenv("MMC_MAILBOX_WRITE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			if err := SetWriteTimeout(time.Duration(n) * time.Millisecond); err != nil {
				internalLogger.errorf("MMC_MAILBOX_WRITE_TIMEOUT_MS: %v", err)
			}
		}
	}
}

// SetIOLimit changes the process-wide cap on bytes per bus transaction.
// The value is forced down to the nearest power of two. Zero is a fatal
// configuration error. The process env `MMC_MAILBOX_IO_LIMIT` could also set
// the limit.
func SetIOLimit(limit uint32) error {
	if limit == 0 {
		return fmt.Errorf("%w: io limit must not be 0", ErrConfig)
	}
	tunableMu.Lock()
	ioLimit = roundDownPowerOfTwo(limit)
	tunableMu.Unlock()
	return nil
}

// IOLimit reports the process-wide cap on bytes per bus transaction.
func IOLimit() uint32 {
	tunableMu.RLock()
	defer tunableMu.RUnlock()
	return ioLimit
}

// SetWriteTimeout changes how long a bounded transfer keeps retrying before
// it fails. The process env `MMC_MAILBOX_WRITE_TIMEOUT_MS` could also set it.
func SetWriteTimeout(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: write timeout must be positive", ErrConfig)
	}
	tunableMu.Lock()
	writeTimeout = d
	tunableMu.Unlock()
	return nil
}

// WriteTimeout reports the per-transfer retry deadline.
func WriteTimeout() time.Duration {
	tunableMu.RLock()
	defer tunableMu.RUnlock()
	return writeTimeout
}

func roundDownPowerOfTwo(v uint32) uint32 {
	return 1 << (31 - bits.LeadingZeros32(v))
}

func isPowerOfTwo(v uint32) bool {
	return v&(v-1) == 0
}

// Config holds per-device attach parameters. Attach(bus, nil) is equivalent
// to Attach(bus, DefaultConfig()).
type Config struct {
	// Name registers the device with the nvmem storage layer. Empty skips
	// registration.
	Name string
	// Size is the addressable memory size in bytes.
	Size uint32
	// PageSize is the largest span a single write may alter without
	// rolling over into another page.
	PageSize uint16
	// Meter and Tracer enable OpenTelemetry instrumentation of public
	// accesses when non-nil.
	Meter  metric.Meter
	Tracer trace.Tracer
}

// DefaultConfig returns the chip-variant defaults: a 2048 byte memory with
// 16 byte pages.
func DefaultConfig() *Config {
	return &Config{
		Size:     defaultByteLen,
		PageSize: defaultPageSize,
	}
}

// VerifyConfig checks an explicit configuration; zero sizes are fatal.
func VerifyConfig(conf *Config) error {
	if conf == nil {
		return fmt.Errorf("%w: config must not be nil", ErrConfig)
	}
	if conf.Size == 0 {
		return fmt.Errorf("%w: size must not be 0", ErrConfig)
	}
	if conf.PageSize == 0 {
		return fmt.Errorf("%w: page size must not be 0", ErrConfig)
	}
	if !isPowerOfTwo(uint32(conf.PageSize)) {
		internalLogger.warnf("page size %d looks suspicious (no power of 2)", conf.PageSize)
	}
	return nil
}
