package container

import (
	"time"

	"github.com/firefly-engineering/warden-ctl/internal/config"
)

const (
	// DefaultMaxBackoff caps the wait between retries.
	DefaultMaxBackoff = 2 * time.Second
)

// Options tunes how a Container talks to the daemon.
type Options struct {
	// CallTimeout bounds each round-trip. Zero means no timeout beyond
	// the caller's context.
	CallTimeout time.Duration

	// MaxRetries is the number of retries after a connection error.
	MaxRetries int

	// RetryBackoff is the first wait between attempts. It doubles up to
	// MaxBackoff.
	RetryBackoff time.Duration
	MaxBackoff   time.Duration

	// MountRoot confines bind mount sources when set.
	MountRoot string
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		CallTimeout:  config.DefaultCallTimeout,
		MaxRetries:   config.DefaultMaxRetries,
		RetryBackoff: config.DefaultRetryBackoff,
		MaxBackoff:   DefaultMaxBackoff,
	}
}

// OptionsFromConfig maps a client config onto Options.
func OptionsFromConfig(cfg *config.ClientConfig) Options {
	opts := DefaultOptions()
	opts.CallTimeout = cfg.CallTimeout.Duration
	opts.MaxRetries = cfg.MaxRetries
	opts.RetryBackoff = cfg.RetryBackoff.Duration
	opts.MountRoot = cfg.MountRoot
	return opts
}

// backoff returns the wait before retry number attempt (1-based).
func (o Options) backoff(attempt int) time.Duration {
	d := o.RetryBackoff
	if d <= 0 {
		return 0
	}
	limit := o.MaxBackoff
	if limit <= 0 {
		limit = DefaultMaxBackoff
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= limit {
			return limit
		}
	}
	return min(d, limit)
}
