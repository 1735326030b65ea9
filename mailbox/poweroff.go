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
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// The FPGA status byte tells the MMC how far the host's shutdown sequence
// has progressed. Bit 2 marks the sequence as finished; the whole byte is
// overwritten, not bit-merged.
const (
	fpgaStatusOffset       = 2046
	statusShutdownFinished = 1 << 2

	// powerOffSettle gives the MMC time to cut power after the flag write.
	powerOffSettle = time.Second
)

var (
	pwroffMu   sync.Mutex
	pwroffInst *Device
)

// registerPowerOffOwner claims the process-wide power-off slot for d.
// First writer wins; the slot is never forcibly reassigned.
func registerPowerOffOwner(d *Device) bool {
	pwroffMu.Lock()
	defer pwroffMu.Unlock()
	if pwroffInst != nil {
		return false
	}
	pwroffInst = d
	return true
}

// deregisterPowerOffOwner releases the slot only when d is the owner.
func deregisterPowerOffOwner(d *Device) {
	pwroffMu.Lock()
	defer pwroffMu.Unlock()
	if pwroffInst == d {
		pwroffInst = nil
	}
}

func (d *Device) writeShutdownFinished() error {
	_, err := d.boundedWrite(fpgaStatusOffset, []byte{statusShutdownFinished})
	return err
}

// PowerOff notifies the MMC that the host's shutdown sequence completed and
// waits for it to cut power. It bypasses the device mutex and the lock-flag
// protocol: by the time it runs, orderly shutdown is assumed and no further
// application traffic occurs. On success this function never returns; the
// MMC is expected to remove power during the final wait.
func PowerOff() {
	pwroffMu.Lock()
	d := pwroffInst
	pwroffMu.Unlock()

	if d == nil {
		internalLogger.errorf("no mailbox instance available")
		return
	}

	if up, err := host.Uptime(); err == nil {
		internalLogger.infof("sending SHDN_FINISHED to MMC (host uptime %ds)", up)
	} else {
		internalLogger.infof("sending SHDN_FINISHED to MMC")
	}
	if err := d.writeShutdownFinished(); err != nil {
		// Nothing can react to this anymore; report and keep going.
		internalLogger.errorf("shutdown status write failed: %v", err)
	}

	time.Sleep(powerOffSettle)
	internalLogger.errorf("still alive after SHDN_FINISHED, waiting for the MMC to cut power")
	select {}
}
