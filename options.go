package graphview

import (
	"context"
	"time"

	"github.com/gogpu/graphview/config"
	"github.com/gogpu/graphview/metrics"
	"github.com/gogpu/graphview/options"
)

// ViewerOption configures a Viewer during creation.
//
// Example:
//
//	cfg, _ := config.Load("graphview.toml")
//	v, err := graphview.NewViewer(store, ctx,
//		graphview.WithConfig(cfg),
//		graphview.WithMetrics(metrics.New(true)),
//	)
type ViewerOption func(*viewerOptions)

type viewerOptions struct {
	cfg     *config.Config
	store   *options.Store
	metrics *metrics.Collector
	ctx     context.Context
	timeout time.Duration
}

// timeout is negative until WithCloseTimeout sets it; the configuration's
// scheduler.close_timeout applies then.
func defaultViewerOptions() viewerOptions {
	return viewerOptions{
		cfg:     config.Default(),
		ctx:     context.Background(),
		timeout: -1,
	}
}

// WithConfig applies a configuration file. Its render section seeds the
// options store unless WithOptionsStore is also given.
func WithConfig(cfg *config.Config) ViewerOption {
	return func(o *viewerOptions) {
		if cfg != nil {
			o.cfg = cfg
		}
	}
}

// WithOptionsStore shares an existing options store, typically one a
// config.Watcher writes into.
func WithOptionsStore(s *options.Store) ViewerOption {
	return func(o *viewerOptions) {
		o.store = s
	}
}

// WithMetrics reports frames, rounds and per-pipeline counters to c.
func WithMetrics(c *metrics.Collector) ViewerOption {
	return func(o *viewerOptions) {
		o.metrics = c
	}
}

// WithContext sets the context passed to update tasks.
func WithContext(ctx context.Context) ViewerOption {
	return func(o *viewerOptions) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithCloseTimeout bounds how long Close waits for running update tasks,
// overriding the configuration.
func WithCloseTimeout(d time.Duration) ViewerOption {
	return func(o *viewerOptions) {
		if d >= 0 {
			o.timeout = d
		}
	}
}
