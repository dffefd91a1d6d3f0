package enrich

import "github.com/nuray/setpoint/pkg/logger"

// Option applies a configuration option to the Enricher.
type Option func(*Enricher)

// WithLogger sets the logger used for incomplete-enrichment diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(e *Enricher) {
		e.logger = l
	}
}
