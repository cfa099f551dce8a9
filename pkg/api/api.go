// Package api serves the assembly pipeline over HTTP.
//
// # Endpoints
//
//	POST /v1/assemble   run one assembly
//	GET  /healthz       liveness probe
//	GET  /version       build information
//
// A request body looks like:
//
//	{"fragments": ["AAAB", "AABC", "ABCD"], "max_len": 6, "iterations": 20000, "seed": 1}
//
// and the response like:
//
//	{"id": "…", "order": [0, 1, 2], "sequence": "AAABCD", "score": 3, "length": 6, …}
//
// Errors are returned as {"code": "...", "message": "..."} with status 400
// for invalid input and 500 otherwise. Every response carries an
// X-Request-ID header.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sbhasm/pkg/buildinfo"
	"github.com/matzehuels/sbhasm/pkg/core/fragment"
	errs "github.com/matzehuels/sbhasm/pkg/errors"
	"github.com/matzehuels/sbhasm/pkg/observability"
	"github.com/matzehuels/sbhasm/pkg/pipeline"
)

// Server limits.
const (
	DefaultMaxIterations = 1_000_000
	DefaultMaxFragments  = 10_000
	DefaultTimeout       = 2 * time.Minute
	maxBodyBytes         = 8 << 20
)

// Options configures a Server. Zero values select the defaults.
type Options struct {
	MaxIterations int           // cap on requested iterations
	MaxFragments  int           // cap on fragments per request
	Timeout       time.Duration // per-request deadline
	Logger        *log.Logger
}

// Server handles API requests with a shared pipeline runner.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	router chi.Router
}

// New creates a server. The runner is shared across requests.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.MaxIterations == 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.MaxFragments == 0 {
		opts.MaxFragments = DefaultMaxFragments
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{runner: runner, opts: opts}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/assemble", s.handleAssemble)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.opts.Logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// =============================================================================
// Handlers
// =============================================================================

// AssembleRequest is the body of POST /v1/assemble.
type AssembleRequest struct {
	Fragments  []string `json:"fragments"`
	MaxLen     int      `json:"max_len"`
	Restarts   int      `json:"restarts,omitempty"`
	Iterations int      `json:"iterations,omitempty"`
	Seed       uint64   `json:"seed,omitempty"`
}

// AssembleResponse is the body of a successful POST /v1/assemble.
type AssembleResponse struct {
	ID        string `json:"id"`
	Order     []int  `json:"order"`
	Sequence  string `json:"sequence"`
	Score     int    `json:"score"`
	Length    int    `json:"length"`
	Fragments int    `json:"fragments"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Cached    bool   `json:"cached"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleAssemble(w http.ResponseWriter, r *http.Request) {
	var req AssembleRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	if len(req.Fragments) > s.opts.MaxFragments {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "%d fragments exceed the server limit of %d", len(req.Fragments), s.opts.MaxFragments))
		return
	}
	if req.Iterations > s.opts.MaxIterations {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "%d iterations exceed the server limit of %d", req.Iterations, s.opts.MaxIterations))
		return
	}
	iterations := req.Iterations
	if iterations == 0 {
		iterations = min(pipeline.DefaultIterations, s.opts.MaxIterations)
	}

	set, err := fragment.New(req.Fragments)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.Timeout)
	defer cancel()
	res, err := s.runner.Execute(ctx, set, pipeline.Options{
		MaxLen:     req.MaxLen,
		Restarts:   req.Restarts,
		Iterations: iterations,
		Seed:       req.Seed,
		Logger:     s.opts.Logger.With("request_id", requestIDFrom(r.Context())),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AssembleResponse{
		ID:        requestIDFrom(r.Context()),
		Order:     res.Order,
		Sequence:  res.Sequence,
		Score:     res.Score,
		Length:    res.Length,
		Fragments: res.Fragments,
		ElapsedMS: res.Stats.Elapsed.Milliseconds(),
		Cached:    res.CacheInfo.ResultHit,
	})
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := errs.GetCode(err)
	switch {
	case errs.IsInputError(err):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusServiceUnavailable, errs.ErrCodeTimeout
	case errors.Is(err, context.Canceled):
		status, code = http.StatusServiceUnavailable, errs.ErrCodeTimeout
	}
	if code == "" {
		code = errs.ErrCodeInternal
	}
	if status >= 500 {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: errs.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
