package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/signalsfoundry/wmn-simulator/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/signalsfoundry/wmn-simulator/core"

// ErrAlreadyRun is returned when Run is called twice on one Simulation.
var ErrAlreadyRun = errors.New("simulation already run")

// MaxNodes caps the node count of a run. Topology construction is
// quadratic in the node count.
const MaxNodes = 1000

// Parameters are the externally supplied inputs of a run.
type Parameters struct {
	NumNodes     int  `json:"num_nodes"`
	TxRange      int  `json:"tx_range"`
	SelfishRatio int  `json:"selfish_ratio"`
	MultiRadio   bool `json:"multi_radio"`
	MultiChannel bool `json:"multi_channel"`

	// Mobility is accepted for compatibility with existing front ends but
	// node positions never change during a run.
	Mobility bool `json:"mobility"`
}

// DefaultParameters mirrors the control panel defaults.
func DefaultParameters() Parameters {
	return Parameters{
		NumNodes:     20,
		TxRange:      150,
		SelfishRatio: 20,
		MultiRadio:   true,
		MultiChannel: true,
		Mobility:     true,
	}
}

// Validate rejects parameters that cannot produce a meaningful run.
func (p Parameters) Validate() error {
	if p.NumNodes < 1 {
		return fmt.Errorf("%w: num_nodes must be at least 1, got %d", ErrInvalidParameters, p.NumNodes)
	}
	if p.NumNodes > MaxNodes {
		return fmt.Errorf("%w: num_nodes must be at most %d, got %d", ErrInvalidParameters, MaxNodes, p.NumNodes)
	}
	if p.SelfishRatio < 0 || p.SelfishRatio > 100 {
		return fmt.Errorf("%w: selfish_ratio must be within [0, 100], got %d", ErrInvalidParameters, p.SelfishRatio)
	}
	if p.TxRange < 0 {
		return fmt.Errorf("%w: tx_range must be non-negative, got %d", ErrInvalidParameters, p.TxRange)
	}
	return nil
}

func (p Parameters) topology() TopologyOptions {
	return TopologyOptions{
		TxRange:      p.TxRange,
		MultiRadio:   p.MultiRadio,
		MultiChannel: p.MultiChannel,
	}
}

// Simulation owns every piece of state of a single run: its random
// source, nodes and graph. Build one per run and discard it afterwards.
type Simulation struct {
	Params Parameters

	rng    Rand
	log    logging.Logger
	tracer trace.Tracer
	layout *Layout
	ran    bool

	Nodes       NodeSet
	Graph       *Graph
	SelfishIDs  []int
	Source      int
	Destination int
	Outcome     Outcome
}

// Option customises a Simulation.
type Option func(*Simulation)

// WithLogger attaches a logger; the default drops all output.
func WithLogger(l logging.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTracer overrides the tracer used for run spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Simulation) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithLayout replaces node generation and selfish assignment with a fixed
// layout. NumNodes is taken from the layout.
func WithLayout(l *Layout) Option {
	return func(s *Simulation) {
		s.layout = l
	}
}

// NewSimulation validates params and prepares a run drawing from rng.
func NewSimulation(params Parameters, rng Rand, opts ...Option) (*Simulation, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is nil", ErrInvalidParameters)
	}
	s := &Simulation{
		Params: params,
		rng:    rng,
		log:    logging.Noop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.layout != nil {
		if err := s.layout.Validate(); err != nil {
			return nil, err
		}
		s.Params.NumNodes = len(s.layout.Nodes)
	}
	if err := s.Params.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Run executes the full pipeline once: nodes, selfish assignment,
// topology, endpoint selection and one packet delivery.
func (s *Simulation) Run(ctx context.Context) (*Report, error) {
	if s.ran {
		return nil, ErrAlreadyRun
	}
	s.ran = true
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := s.tracer.Start(ctx, "wmn.Run", trace.WithAttributes(
		attribute.Int("wmn.num_nodes", s.Params.NumNodes),
		attribute.Int("wmn.tx_range", s.Params.TxRange),
		attribute.Int("wmn.selfish_ratio", s.Params.SelfishRatio),
		attribute.Bool("wmn.multi_radio", s.Params.MultiRadio),
		attribute.Bool("wmn.multi_channel", s.Params.MultiChannel),
		attribute.Bool("wmn.fixed_layout", s.layout != nil),
	))
	defer span.End()

	if s.Params.Mobility {
		s.log.Debug(ctx, "mobility requested; node positions stay fixed for the run")
	}

	s.populate(ctx)

	_, topoSpan := s.tracer.Start(ctx, "wmn.BuildTopology")
	s.Graph = BuildTopology(s.Nodes, s.Params.topology())
	topoSpan.SetAttributes(attribute.Int("wmn.links", s.Graph.NumLinks()))
	topoSpan.End()
	s.log.Debug(ctx, "topology built",
		logging.Int("links", s.Graph.NumLinks()),
		logging.Float64("mean_degree", s.Graph.MeanDegree()),
	)

	s.pickEndpoints()

	_, sendSpan := s.tracer.Start(ctx, "wmn.SendPacket", trace.WithAttributes(
		attribute.Int("wmn.src", s.Source),
		attribute.Int("wmn.dst", s.Destination),
	))
	s.Outcome = SendPacket(s.rng, s.Graph, s.Source, s.Destination)
	sendSpan.SetAttributes(
		attribute.String("wmn.status", string(s.Outcome.Status)),
		attribute.Int("wmn.hops", s.Outcome.Hops()),
	)
	if s.Outcome.Status != StatusDelivered {
		sendSpan.SetStatus(codes.Error, string(s.Outcome.Status))
	}
	sendSpan.End()

	fields := []logging.Field{
		logging.Int("src", s.Source),
		logging.Int("dst", s.Destination),
		logging.String("status", string(s.Outcome.Status)),
		logging.Ints("path", s.Outcome.Path),
	}
	if s.Outcome.DroppedAt != nil {
		fields = append(fields, logging.Int("dropped_at", *s.Outcome.DroppedAt))
	}
	s.log.Info(ctx, "packet delivery finished", fields...)

	return s.Report(), nil
}

func (s *Simulation) populate(ctx context.Context) {
	_, span := s.tracer.Start(ctx, "wmn.GenerateNodes")
	defer span.End()

	if s.layout != nil {
		s.Nodes = s.layout.NodeSet()
		s.SelfishIDs = s.Nodes.SelfishIDs()
		s.log.Debug(ctx, "nodes loaded from layout",
			logging.Int("nodes", len(s.Nodes)),
			logging.Ints("selfish", s.SelfishIDs),
		)
		return
	}

	s.Nodes = GenerateNodes(s.rng, s.Params.NumNodes)
	s.SelfishIDs = AssignSelfish(s.rng, s.Nodes, s.Params.SelfishRatio)
	span.SetAttributes(attribute.Int("wmn.selfish_nodes", len(s.SelfishIDs)))
	s.log.Debug(ctx, "nodes generated",
		logging.Int("nodes", len(s.Nodes)),
		logging.Ints("selfish", s.SelfishIDs),
	)
}

// pickEndpoints draws the source then the destination uniformly over all
// node ids unless the layout pins them. Both may be the same node.
func (s *Simulation) pickEndpoints() {
	var pinnedSrc, pinnedDst *int
	if s.layout != nil {
		pinnedSrc, pinnedDst = s.layout.Source, s.layout.Destination
	}
	s.Source = s.endpoint(pinnedSrc)
	s.Destination = s.endpoint(pinnedDst)
}

func (s *Simulation) endpoint(pinned *int) int {
	if pinned != nil {
		return *pinned
	}
	return uniformInt(s.rng, 0, len(s.Nodes)-1)
}
