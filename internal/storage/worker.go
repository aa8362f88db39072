package storage

import (
	"context"
	"time"

	"PortalDHT/internal/logger"
)

// StartUsageReporter starts a goroutine that periodically logs the
// measured usage together with the admission state. The probe walks
// the data directory, so the interval should stay in the minutes
// range. The goroutine exits when ctx is canceled.
func (e *Engine) StartUsageReporter(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				e.lgr.Info("usage reporter stopped")
				return
			case <-ticker.C:
				e.reportUsage()
			}
		}
	}()
}

func (e *Engine) reportUsage() {
	usageKB, err := e.TotalStorageUsageKB()
	if err != nil {
		e.lgr.Warn("usage report failed", logger.F("err", err))
		return
	}
	fields := []logger.Field{
		logger.F("usageKb", usageKB),
		logger.F("capacityKb", e.cfg.CapacityKB),
		logger.F("radius", e.CurrentRadius()),
	}
	if fk, ok := e.FarthestKey(); ok {
		fields = append(fields, logger.FKey("farthest", fk))
	}
	e.lgr.Info("storage usage report", fields...)
}
