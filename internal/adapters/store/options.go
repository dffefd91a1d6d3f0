package store

import "github.com/nuray/setpoint/pkg/logger"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithBackupRetention sets how many timestamped backups Save keeps.
// Values below one fall back to the default.
func WithBackupRetention(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.backupRetention = n
		}
	}
}

// WithLogger sets the logger used for merge and persistence diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}
