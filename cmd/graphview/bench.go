// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gogpu/graphview"
	"github.com/gogpu/graphview/config"
	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/graphview/graph"
	"github.com/gogpu/graphview/metrics"
	"github.com/gogpu/graphview/options"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type benchOptions struct {
	frames      int
	interval    time.Duration
	nodes       int
	edges       int
	directed    float64
	seed        uint64
	configPath  string
	watch       bool
	backend     string
	metricsAddr string
}

func newBenchCmd() *cobra.Command {
	var o benchOptions

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Render a synthetic graph headlessly and report frame statistics",
		Long: `Render a synthetic graph on the noop GPU backend.

Update rounds run on the worker pool while frames are recorded, exactly as
with a real device. With --metrics-addr the Prometheus metrics are served
while the benchmark runs; with --config and --watch edits to the file's
[render] section apply live.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, o)
		},
	}

	f := cmd.Flags()
	f.IntVar(&o.frames, "frames", 600, "number of frames to render")
	f.DurationVar(&o.interval, "interval", 0, "minimum time between frames, 0 for none")
	f.IntVar(&o.nodes, "nodes", 10000, "synthetic graph node count")
	f.IntVar(&o.edges, "edges", 20000, "synthetic graph edge count")
	f.Float64Var(&o.directed, "directed", 0.3, "fraction of directed edges")
	f.Uint64Var(&o.seed, "seed", 1, "synthetic graph seed")
	f.StringVarP(&o.configPath, "config", "c", "", "TOML configuration file")
	f.BoolVar(&o.watch, "watch", false, "reload the configuration file's render options on change")
	f.StringVar(&o.backend, "backend", "", "override render.backend (auto, indirect, instanced, vertex-array)")
	f.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func runBench(cmd *cobra.Command, o benchOptions) error {
	if o.frames < 1 {
		return fmt.Errorf("--frames must be positive, got %d", o.frames)
	}
	if o.watch && o.configPath == "" {
		return errors.New("--watch needs --config")
	}

	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
	}
	if o.backend != "" {
		cfg.Render.Backend = o.backend
	}
	backend, err := cfg.Backend()
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	device, err := gpu.OpenHeadless(gpu.WithBackend(backend))
	if err != nil {
		return err
	}
	defer device.Destroy()

	store := graph.Generate(graph.GenerateConfig{
		Nodes:         o.nodes,
		Edges:         o.edges,
		DirectedRatio: o.directed,
		Seed:          o.seed,
	})
	collector := metrics.New(true)
	optStore := options.NewStore(opts)

	ctx := cmd.Context()
	v, err := graphview.NewViewer(store, device,
		graphview.WithConfig(cfg),
		graphview.WithOptionsStore(optStore),
		graphview.WithMetrics(collector),
		graphview.WithContext(ctx),
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, stop := context.WithCancel(gctx)
	defer stop()

	var result benchResult
	g.Go(func() error {
		defer stop()
		return frameLoop(loopCtx, v, o, &result)
	})
	if o.metricsAddr != "" {
		serveMetrics(loopCtx, g, o.metricsAddr, collector)
	}
	if o.watch {
		g.Go(func() error {
			return config.Watch(loopCtx, o.configPath, optStore)
		})
	}

	runErr := g.Wait()
	if err := v.Close(); err != nil {
		graphview.Logger().Warn("bench: close", "err", err)
	}
	if runErr != nil {
		return runErr
	}

	stats := v.Scheduler().Stats()
	result.rounds = stats.Rounds
	result.stale = stats.StaleFrames
	result.failures = stats.Failures
	result.print(cmd, backend, device.Backend())
	return nil
}

type benchResult struct {
	frames   int
	draws    int
	elapsed  time.Duration
	rounds   uint64
	stale    uint64
	failures uint64
}

// frameLoop plays the render goroutine: it records frames until the
// requested count is reached or ctx is done.
func frameLoop(ctx context.Context, v *graphview.Viewer, o benchOptions, r *benchResult) error {
	var rec gpu.Recorder
	var tick <-chan time.Time
	if o.interval > 0 {
		t := time.NewTicker(o.interval)
		defer t.Stop()
		tick = t.C
	}

	start := time.Now()
	for r.frames < o.frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec.Reset()
		v.Frame(&rec)
		r.frames++
		r.draws += len(rec.Calls)

		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
	}
	r.elapsed = time.Since(start)
	return nil
}

func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, c *metrics.Collector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		graphview.Logger().Info("bench: serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})
}

func (r benchResult) print(cmd *cobra.Command, requested, used gpu.Backend) {
	fps := 0.0
	if r.elapsed > 0 {
		fps = float64(r.frames) / r.elapsed.Seconds()
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "backend:      %s (requested %s)\n", used, requested)
	fmt.Fprintf(out, "frames:       %d in %s (%.1f fps)\n", r.frames, r.elapsed.Round(time.Millisecond), fps)
	fmt.Fprintf(out, "draw calls:   %d\n", r.draws)
	fmt.Fprintf(out, "rounds:       %d (%d failed updates)\n", r.rounds, r.failures)
	fmt.Fprintf(out, "stale frames: %d\n", r.stale)
}
