package storage

import "PortalDHT/internal/logger"

type Option func(*Engine)

// WithLogger sets the logger used by the engine and by the stores it
// opens on its own.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.lgr = l
		}
	}
}

// WithUsageProbe replaces the filesystem probe used for capacity
// checks.
func WithUsageProbe(p UsageProbe) Option {
	return func(e *Engine) {
		if p != nil {
			e.probe = p
		}
	}
}
