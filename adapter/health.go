// Package adapter integrates the mailbox with external monitoring systems.
package adapter

import (
	"time"

	"github.com/heptiolabs/healthcheck"

	"github.com/srediag/mmc-mailbox/api"
)

// NewHealthHandler builds an HTTP health handler around a mailbox device.
// Liveness performs the one-byte probe read; readiness additionally bounds
// it with a timeout so a wedged bus flips the endpoint instead of hanging
// the scrape.
func NewHealthHandler(p api.Prober, probeTimeout time.Duration) healthcheck.Handler {
	if probeTimeout <= 0 {
		probeTimeout = time.Second
	}
	h := healthcheck.NewHandler()
	h.AddLivenessCheck("mailbox-probe", p.Probe)
	h.AddReadinessCheck("mailbox-bus", healthcheck.Timeout(p.Probe, probeTimeout))
	return h
}
