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

import "github.com/prometheus/client_golang/prometheus"

var (
	busRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mmc_mailbox_bus_retries_total",
		Help: "Total number of retried bus transfers.",
	})
	busTimeoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mmc_mailbox_bus_timeouts_total",
		Help: "Total number of bounded transfers that hit the write-timeout deadline.",
	})
	busErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mmc_mailbox_bus_errors_total",
		Help: "Total number of unrecoverable bus faults.",
	})
	readsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mmc_mailbox_reads_total",
		Help: "Total number of successful logical reads.",
	})
	writesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mmc_mailbox_writes_total",
		Help: "Total number of successful logical writes.",
	})
	bytesReadTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mmc_mailbox_read_bytes_total",
		Help: "Total bytes moved by successful logical reads.",
	})
	bytesWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mmc_mailbox_written_bytes_total",
		Help: "Total bytes moved by successful logical writes.",
	})
)

func init() {
	prometheus.MustRegister(
		busRetriesTotal,
		busTimeoutsTotal,
		busErrorsTotal,
		readsTotal,
		writesTotal,
		bytesReadTotal,
		bytesWrittenTotal,
	)
}
