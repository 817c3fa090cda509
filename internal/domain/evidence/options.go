package evidence

import (
	"time"

	"github.com/okian/concord/pkg/logger"
)

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithWorkers bounds the number of concurrent citation resolutions. The
// bound also caps concurrently open file handles.
func WithWorkers(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.workers = n
		}
	}
}

// WithTimeout sets the hard per-citation resolution timeout. A timed-out
// resolution degrades to unknown.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithLogger sets a custom logger for the validator.
func WithLogger(log logger.Logger) Option {
	return func(v *Validator) {
		if log != nil {
			v.log = log
		}
	}
}
