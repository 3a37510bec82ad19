// Package background hosts the long-lived renewal sweeper.
package background

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/orgstack/org-license-manager/internal/metrics"
	"github.com/orgstack/org-license-manager/internal/services"
)

// RenewalSweeper periodically extends expired auto-renewing licenses. The
// loop uses a fixed delay: a slow pass pushes the next tick back instead of
// stacking runs. Errors are logged and the loop keeps going; only context
// cancellation stops it.
type RenewalSweeper struct {
	licenseService *services.LicenseService
	interval       time.Duration
}

// NewRenewalSweeper creates a sweeper ticking at the given interval.
func NewRenewalSweeper(licenseService *services.LicenseService, interval time.Duration) *RenewalSweeper {
	return &RenewalSweeper{
		licenseService: licenseService,
		interval:       interval,
	}
}

// Run blocks until ctx is cancelled. Callers usually run it in a goroutine.
func (s *RenewalSweeper) Run(ctx context.Context) {
	logrus.WithField("interval", s.interval).Info("License renewal sweeper started")

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("License renewal sweeper stopped")
			return
		case <-timer.C:
			s.sweep()
			timer.Reset(s.interval)
		}
	}
}

func (s *RenewalSweeper) sweep() {
	metrics.SweepRunsTotal.Inc()
	if err := s.licenseService.RenewExpiredLicenses(); err != nil {
		metrics.SweepErrorsTotal.Inc()
		logrus.WithError(err).Error("Error during license renewal check")
	}
}
