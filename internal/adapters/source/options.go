package source

import "github.com/okian/trainlog/pkg/logger"

// Option configures a Loader.
type Option func(*Loader)

// WithConcurrency bounds how many files are decoded at once.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLogger sets the logger used for skipped files.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}
