package resolve

import (
	"github.com/nuray/setpoint/pkg/logger"
)

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithDelimiters sets the characters composite fields are split on.
func WithDelimiters(delimiters string) Option {
	return func(r *Resolver) {
		if delimiters != "" {
			r.delimiters = delimiters
		}
	}
}

// WithCache sets a cache for memoizing successful resolutions.
func WithCache(c Cache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

// WithLogger sets a custom logger for the resolver.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}
