// Command wmnsim runs one simulation, or a batch with -runs, and prints the
// result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalsfoundry/wmn-simulator/core"
	"github.com/signalsfoundry/wmn-simulator/internal/config"
	"github.com/signalsfoundry/wmn-simulator/internal/experiment"
	"github.com/signalsfoundry/wmn-simulator/internal/logging"
	"github.com/signalsfoundry/wmn-simulator/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "wmnsim: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("wmnsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML config file")
	format := fs.String("format", "json", "output format: json or text")
	numNodes := fs.Int("nodes", 0, "number of nodes")
	txRange := fs.Int("range", 0, "transmission range")
	selfish := fs.Int("selfish", 0, "percentage of selfish nodes")
	multiRadio := fs.Bool("multi-radio", false, "add the multi-radio capacity bonus")
	multiChannel := fs.Bool("multi-channel", false, "add the multi-channel capacity bonus")
	mobility := fs.Bool("mobility", false, "accepted for compatibility; positions stay fixed")
	seed := fs.Int64("seed", 0, "random seed, 0 for time-based")
	runs := fs.Int("runs", 0, "number of runs; more than one prints a batch summary")
	layoutPath := fs.String("layout", "", "YAML or JSON node layout")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: wmnsim [flags]")
		fs.PrintDefaults()
		fmt.Fprintln(stderr)
		config.Usage(stderr)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	// Flags given on the command line win over file and environment.
	fs.Visit(func(f *flag.Flag) {
		s := &cfg.Simulation
		switch f.Name {
		case "nodes":
			s.NumNodes = *numNodes
		case "range":
			s.TxRange = *txRange
		case "selfish":
			s.SelfishRatio = *selfish
		case "multi-radio":
			s.MultiRadio = *multiRadio
		case "multi-channel":
			s.MultiChannel = *multiChannel
		case "mobility":
			s.Mobility = *mobility
		case "seed":
			s.Seed = *seed
		case "runs":
			s.Runs = *runs
		case "layout":
			s.LayoutFile = *layoutPath
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := cfg.LoggingConfig()
	logCfg.Output = stderr
	log := logging.New(logCfg)

	tracingCfg := cfg.TracingConfig()
	tracingCfg.Output = stderr
	shutdown, err := observability.InitTracing(ctx, tracingCfg, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	var layout *core.Layout
	if cfg.Simulation.LayoutFile != "" {
		if layout, err = core.LoadLayoutFile(cfg.Simulation.LayoutFile); err != nil {
			return err
		}
	}

	var collector *observability.RunCollector
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		if collector, err = observability.NewRunCollector(prometheus.NewRegistry()); err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
		metricsSrv = serveMetrics(cfg.Metrics.Addr, collector, log)
	}

	runner := experiment.NewRunner(experiment.WithLogger(log), experiment.WithMetrics(collector))
	var result any
	if cfg.Simulation.Runs == 1 {
		s := cfg.Simulation.Seed
		if s == 0 {
			s = time.Now().UnixNano()
		}
		report, _, err := runner.RunOnce(ctx, cfg.Parameters(), layout, s)
		if err != nil {
			return err
		}
		result = report
	} else {
		summary, err := runner.Run(ctx, experiment.Config{
			Name:       "cli",
			Parameters: cfg.Parameters(),
			Runs:       cfg.Simulation.Runs,
			Seed:       cfg.Simulation.Seed,
			Layout:     layout,
		})
		if err != nil {
			return err
		}
		result = summary
	}

	if err := write(stdout, *format, result); err != nil {
		return err
	}

	if metricsSrv != nil {
		log.Info(ctx, "run finished; serving metrics until interrupted", logging.String("addr", cfg.Metrics.Addr))
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}

func write(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "text":
		switch r := v.(type) {
		case *core.Report:
			_, err := io.WriteString(w, reportText(r))
			return err
		case experiment.Summary:
			_, err := io.WriteString(w, r.String())
			return err
		}
		return fmt.Errorf("cannot render %T as text", v)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func reportText(r *core.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "seed=%d nodes=%d links=%d selfish=%v\n", r.Seed, len(r.Nodes), r.Stats.TotalLinks, r.SelfishNodes)
	fmt.Fprintf(&b, "%d -> %d: %s\n", r.Source, r.Destination, r.Status)
	if r.Path != nil {
		fmt.Fprintf(&b, "path: %v (%d hops)\n", r.Path, r.Stats.Hops)
	}
	if r.DroppedAt != nil {
		fmt.Fprintf(&b, "dropped at node %d\n", *r.DroppedAt)
	}
	fmt.Fprintf(&b, "mean power=%.2f mean trust=%.2f mean degree=%.2f components=%d\n",
		r.Stats.MeanPower, r.Stats.MeanTrust, r.Stats.MeanDegree, r.Stats.Components)
	return b.String()
}

func serveMetrics(addr string, collector *observability.RunCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
