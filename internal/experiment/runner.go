// Package experiment repeats single-packet runs over consecutive seeds and
// aggregates their outcomes.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/signalsfoundry/wmn-simulator/core"
	"github.com/signalsfoundry/wmn-simulator/internal/logging"
	"github.com/signalsfoundry/wmn-simulator/internal/observability"
	"go.opentelemetry.io/otel/trace"
)

// MaxRuns bounds a single batch.
const MaxRuns = 10000

var ErrInvalidConfig = errors.New("invalid experiment config")

// Config describes one batch. Run i uses seed Seed+i; a zero Seed is
// replaced by a time-based one before the first run.
type Config struct {
	Name       string          `json:"name,omitempty"`
	Parameters core.Parameters `json:"parameters"`
	Runs       int             `json:"runs"`
	Seed       int64           `json:"seed"`

	// Layout, when set, is reused for every run.
	Layout *core.Layout `json:"layout,omitempty"`
}

// DefaultConfig runs ten default simulations.
func DefaultConfig() Config {
	return Config{
		Name:       "default",
		Parameters: core.DefaultParameters(),
		Runs:       10,
	}
}

func (c Config) validate() error {
	if c.Runs < 1 || c.Runs > MaxRuns {
		return fmt.Errorf("%w: runs must be within [1, %d], got %d", ErrInvalidConfig, MaxRuns, c.Runs)
	}
	return nil
}

// Trial is the outcome of one run of a batch.
type Trial struct {
	Run       int           `json:"run"`
	Seed      int64         `json:"seed"`
	Source    int           `json:"source"`
	Dest      int           `json:"destination"`
	Status    core.Status   `json:"status"`
	Hops      int           `json:"hops"`
	DroppedAt *int          `json:"dropped_at,omitempty"`
	Links     int           `json:"links"`
	Duration  time.Duration `json:"duration_ns"`
}

// Summary aggregates the trials of a batch.
type Summary struct {
	Name       string          `json:"name,omitempty"`
	Parameters core.Parameters `json:"parameters"`
	Seed       int64           `json:"seed"`
	Runs       int             `json:"runs"`

	Delivered int `json:"delivered"`
	Dropped   int `json:"dropped"`
	NoPath    int `json:"no_path"`

	// DeliveryRatio is Delivered/Runs.
	DeliveryRatio float64 `json:"delivery_ratio"`
	// MeanHops averages route length over delivered runs only.
	MeanHops  float64 `json:"mean_hops"`
	MeanLinks float64 `json:"mean_links"`

	Trials []Trial `json:"trials"`
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "experiment %q: %d runs from seed %d\n", s.Name, s.Runs, s.Seed)
	fmt.Fprintf(&b, "  nodes=%d range=%d selfish=%d%% multi-radio=%v multi-channel=%v\n",
		s.Parameters.NumNodes, s.Parameters.TxRange, s.Parameters.SelfishRatio,
		s.Parameters.MultiRadio, s.Parameters.MultiChannel)
	fmt.Fprintf(&b, "  delivered:      %d\n", s.Delivered)
	fmt.Fprintf(&b, "  dropped:        %d\n", s.Dropped)
	fmt.Fprintf(&b, "  no path:        %d\n", s.NoPath)
	fmt.Fprintf(&b, "  delivery ratio: %.2f%%\n", s.DeliveryRatio*100)
	fmt.Fprintf(&b, "  mean hops:      %.2f\n", s.MeanHops)
	fmt.Fprintf(&b, "  mean links:     %.2f\n", s.MeanLinks)
	return b.String()
}

// Runner executes batches sequentially and keeps every summary it produced.
type Runner struct {
	log     logging.Logger
	metrics *observability.RunCollector
	tracer  trace.Tracer

	Results []Summary
}

type Option func(*Runner)

func WithLogger(l logging.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMetrics records every run of every batch on c.
func WithMetrics(c *observability.RunCollector) Option {
	return func(r *Runner) { r.metrics = c }
}

func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{log: logging.Noop(), Results: make([]Summary, 0)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOnce executes a single simulation with seed and records it.
func (r *Runner) RunOnce(ctx context.Context, params core.Parameters, layout *core.Layout, seed int64) (*core.Report, time.Duration, error) {
	opts := []core.Option{core.WithLogger(r.log)}
	if layout != nil {
		opts = append(opts, core.WithLayout(layout))
	}
	if r.tracer != nil {
		opts = append(opts, core.WithTracer(r.tracer))
	}
	sim, err := core.NewSimulation(params, core.NewRand(seed), opts...)
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	report, err := sim.Run(ctx)
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, err
	}
	report.Seed = seed
	r.metrics.ObserveRun(report, elapsed)
	return report, elapsed, nil
}

// Run executes cfg.Runs independent simulations. It stops early with the
// context error if ctx is cancelled between runs.
func (r *Runner) Run(ctx context.Context, cfg Config) (Summary, error) {
	if err := cfg.validate(); err != nil {
		return Summary{}, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	ctx, log := logging.WithRunLogger(ctx, r.log)
	log.Info(ctx, "experiment started",
		logging.String("name", cfg.Name),
		logging.Int("runs", cfg.Runs),
		logging.Int64("seed", cfg.Seed),
	)

	trials := make([]Trial, 0, cfg.Runs)
	for i := 0; i < cfg.Runs; i++ {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		seed := cfg.Seed + int64(i)
		report, elapsed, err := r.RunOnce(ctx, cfg.Parameters, cfg.Layout, seed)
		if err != nil {
			return Summary{}, fmt.Errorf("run %d (seed %d): %w", i, seed, err)
		}
		trials = append(trials, Trial{
			Run:       i,
			Seed:      seed,
			Source:    report.Source,
			Dest:      report.Destination,
			Status:    report.Status,
			Hops:      report.Stats.Hops,
			DroppedAt: report.DroppedAt,
			Links:     report.Stats.TotalLinks,
			Duration:  elapsed,
		})
	}

	summary := aggregate(cfg, trials)
	r.Results = append(r.Results, summary)
	log.Info(ctx, "experiment finished",
		logging.Int("delivered", summary.Delivered),
		logging.Int("dropped", summary.Dropped),
		logging.Int("no_path", summary.NoPath),
		logging.Float64("delivery_ratio", summary.DeliveryRatio),
	)
	return summary, nil
}

func aggregate(cfg Config, trials []Trial) Summary {
	s := Summary{
		Name:       cfg.Name,
		Parameters: cfg.Parameters,
		Seed:       cfg.Seed,
		Runs:       len(trials),
		Trials:     trials,
	}
	if cfg.Layout != nil {
		s.Parameters.NumNodes = len(cfg.Layout.Nodes)
	}

	hops, links := 0, 0
	for _, t := range trials {
		switch t.Status {
		case core.StatusDelivered:
			s.Delivered++
			hops += t.Hops
		case core.StatusDropped:
			s.Dropped++
		case core.StatusNoPath:
			s.NoPath++
		}
		links += t.Links
	}
	if s.Runs > 0 {
		s.DeliveryRatio = float64(s.Delivered) / float64(s.Runs)
		s.MeanLinks = float64(links) / float64(s.Runs)
	}
	if s.Delivered > 0 {
		s.MeanHops = float64(hops) / float64(s.Delivered)
	}
	return s
}
