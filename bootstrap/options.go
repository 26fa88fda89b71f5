package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/jobgraph/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	summary         io.Writer
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the application logger. Without it the logger is built
// from the config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = &d }
}

// WithSummaryWriter sets where the startup summary is printed. Defaults to
// stdout; io.Discard turns it off.
func WithSummaryWriter(w io.Writer) Option {
	return func(o *appOptions) { o.summary = w }
}
