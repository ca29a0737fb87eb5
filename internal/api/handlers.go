// Package api exposes simulation runs and batch experiments over HTTP JSON.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/signalsfoundry/wmn-simulator/core"
	"github.com/signalsfoundry/wmn-simulator/internal/experiment"
	"github.com/signalsfoundry/wmn-simulator/internal/logging"
	"github.com/signalsfoundry/wmn-simulator/internal/observability"
)

// SeedHeader carries the seed a /simulate run actually used.
const SeedHeader = "X-Simulation-Seed"

// SimulateRequest is the body of POST /simulate. Omitted parameters fall
// back to core.DefaultParameters; a zero seed picks a time-based one.
type SimulateRequest struct {
	Parameters *core.Parameters `json:"parameters,omitempty"`
	Seed       int64            `json:"seed,omitempty"`
	Layout     *core.Layout     `json:"layout,omitempty"`
}

// ExperimentRequest is the body of POST /experiments.
type ExperimentRequest struct {
	Name       string           `json:"name,omitempty"`
	Parameters *core.Parameters `json:"parameters,omitempty"`
	Runs       int              `json:"runs"`
	Seed       int64            `json:"seed,omitempty"`
	Layout     *core.Layout     `json:"layout,omitempty"`
}

// Server holds the dependencies shared by all handlers. Runs share no
// state, so requests are served concurrently.
type Server struct {
	log     logging.Logger
	metrics *observability.RunCollector
}

func NewServer(log logging.Logger, metrics *observability.RunCollector) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{log: log, metrics: metrics}
}

// Routes registers every endpoint and wraps the mux in the request
// middleware chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	post := func(route string, h http.HandlerFunc) {
		mux.Handle(route, s.metrics.InstrumentHandler(route, WrapMiddleware(h,
			RequireMethod(http.MethodPost),
			RequireJSONContentType,
		)))
	}
	post("/simulate", s.simulate)
	post("/experiments", s.experiments)

	mux.Handle("/healthz", WrapMiddleware(http.HandlerFunc(s.healthz), RequireMethod(http.MethodGet)))
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}

	return WrapMiddleware(mux,
		WithRequestID,
		WithLogger(s.log),
		AccessLog(s.log),
		Recover(s.log),
	)
}

func (s *Server) runner(r *http.Request) *experiment.Runner {
	return experiment.NewRunner(
		experiment.WithLogger(LoggerFromContext(r.Context(), s.log)),
		experiment.WithMetrics(s.metrics),
	)
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := Decode[SimulateRequest](w, r)
	if err != nil {
		Respond(w, http.StatusBadRequest, newErrResp("invalid simulate payload"))
		return
	}
	params := core.DefaultParameters()
	if req.Parameters != nil {
		params = *req.Parameters
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	report, _, err := s.runner(r).RunOnce(ctx, params, req.Layout, seed)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set(SeedHeader, strconv.FormatInt(seed, 10))
	Respond(w, http.StatusOK, report)
}

func (s *Server) experiments(w http.ResponseWriter, r *http.Request) {
	req, err := Decode[ExperimentRequest](w, r)
	if err != nil {
		Respond(w, http.StatusBadRequest, newErrResp("invalid experiment payload"))
		return
	}
	cfg := experiment.Config{
		Name:       req.Name,
		Parameters: core.DefaultParameters(),
		Runs:       req.Runs,
		Seed:       req.Seed,
		Layout:     req.Layout,
	}
	if req.Parameters != nil {
		cfg.Parameters = *req.Parameters
	}

	summary, err := s.runner(r).Run(r.Context(), cfg)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	Respond(w, http.StatusOK, summary)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	Respond(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}

// fail maps run errors onto HTTP status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidParameters),
		errors.Is(err, core.ErrLayoutInvalid),
		errors.Is(err, experiment.ErrInvalidConfig):
		Respond(w, http.StatusBadRequest, newErrResp(err.Error()))
	default:
		LoggerFromContext(r.Context(), s.log).Error(r.Context(), "simulation failed", logging.Err(err))
		Respond(w, http.StatusInternalServerError, newErrResp(http.StatusText(http.StatusInternalServerError)))
	}
}
