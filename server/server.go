// Package server serves neighbourhood graphs and chases over HTTP and
// WebSocket, with prometheus metrics on /metrics.
package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/teranos/atomspace/chase"
	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/graph"
	"github.com/teranos/atomspace/logger"
	"github.com/teranos/atomspace/storage"
)

const shutdownTimeout = 5 * time.Second

// Server answers graph and chase requests against one atom store
type Server struct {
	store     graph.Store
	builder   *graph.Builder
	chaser    *chase.Chaser
	chaseOpts []chase.Option
	graphOpts []graph.Option
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	verbosity int
	logger    *zap.SugaredLogger
}

// New creates a server over store. Chase metrics and request counters are
// registered on reg, which /metrics exposes. log may be nil.
func New(store graph.Store, reg *prometheus.Registry, verbosity int, log *zap.SugaredLogger, opts ...graph.Option) *Server {
	l := logger.OrNop(log).Named("server")
	metrics := chase.NewMetrics(reg)

	s := &Server{
		store:     store,
		registry:  reg,
		verbosity: verbosity,
		logger:    l,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(s.requests)

	s.chaseOpts = []chase.Option{
		chase.WithLogger(l),
		chase.WithMetrics(metrics),
		chase.WithVerbosity(verbosity),
	}
	s.graphOpts = append([]graph.Option{graph.WithChaseOptions(chase.WithMetrics(metrics))}, opts...)
	s.chaser = chase.New(store, s.chaseOpts...)
	s.builder = graph.NewBuilder(store, verbosity, l, s.graphOpts...)
	return s
}

// bind returns the store, chaser and builder to use under ctx. A SQL store
// is rebound so its queries stop when ctx ends; other stores are shared.
func (s *Server) bind(ctx context.Context) (graph.Store, *chase.Chaser, *graph.Builder) {
	sq, ok := s.store.(*storage.SQLStore)
	if !ok {
		return s.store, s.chaser, s.builder
	}
	store := sq.WithContext(ctx)
	return store,
		chase.New(store, s.chaseOpts...),
		graph.NewBuilder(store, s.verbosity, s.logger, s.graphOpts...)
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.count("health", s.HandleHealth))
	mux.HandleFunc("/api/graph", s.count("graph", s.HandleGraph))
	mux.HandleFunc("/api/chase", s.count("chase", s.HandleChase))
	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	return s.serve(ctx, addr, s.Handler())
}

// ListenAndServeMetrics serves only /metrics on addr, for scrapers that
// should not reach the API.
func (s *Server) ListenAndServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return s.serve(ctx, addr, mux)
}

func (s *Server) serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "listen on %s", addr)
	case <-ctx.Done():
		s.logger.Infow("Server shutting down", "addr", addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
	}
}

// count wraps h to record the response status per route
func (s *Server) count(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		s.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
