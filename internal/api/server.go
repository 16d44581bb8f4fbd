// Package api serves the adapter operations as JSON over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"macswap/internal/adapter"
	"macswap/internal/flog"
	"macswap/internal/mac"
	"macswap/internal/metrics"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// AdapterService is the set of operations the server exposes.
type AdapterService interface {
	ListAdapters(ctx context.Context) ([]adapter.Record, error)
	ChangeMac(ctx context.Context, name, newMac string) adapter.Outcome
	RestoreMac(ctx context.Context, name, originalMac string) adapter.Outcome
	RestartAdapter(ctx context.Context, name string) error
	ValidateMac(raw string) mac.Validation
	GenerateRandomMac() string
}

// Options tune a Server. A zero value serves no /metrics and does not cache
// listings.
type Options struct {
	Metrics bool
	// ListCache is how long an adapter listing is reused. Zero or negative
	// disables caching.
	ListCache time.Duration
}

type Server struct {
	svc     AdapterService
	metrics *metrics.Collector
	guard   *guard
	handler http.Handler

	lists   *cache.Cache
	listMu  sync.Mutex
	listGen uint64
}

const listKey = "adapters"

// New builds a server. collector may be nil.
func New(svc AdapterService, collector *metrics.Collector, opts Options) *Server {
	s := &Server{svc: svc, metrics: collector, guard: newGuard()}
	if opts.ListCache > 0 {
		s.lists = cache.New(opts.ListCache, 2*opts.ListCache)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/adapters", s.handleList)
	mux.HandleFunc("POST /api/adapters/{name}/mac", s.handleChange)
	mux.HandleFunc("POST /api/adapters/{name}/restore", s.handleRestore)
	mux.HandleFunc("POST /api/adapters/{name}/restart", s.handleRestart)
	mux.HandleFunc("POST /api/mac/validate", s.handleValidate)
	mux.HandleFunc("GET /api/mac/random", s.handleRandom)
	if opts.Metrics {
		mux.Handle("GET /metrics", collector.Handler())
	}

	s.handler = s.observe(mux)
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	flog.Infof("api listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		flog.Infof("api shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type listResponse struct {
	Success bool             `json:"success"`
	Data    []adapter.Record `json:"data,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type macRequest struct {
	MAC string `json:"mac"`
}

type restartResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type randomResponse struct {
	MAC string `json:"mac"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.listAdapters(r.Context())
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, adapter.ErrUnsupportedPlatform) {
			code = http.StatusNotImplemented
		}
		writeJSON(w, code, listResponse{Error: err.Error()})
		return
	}
	if records == nil {
		records = []adapter.Record{}
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Data: records})
}

// listAdapters serves from the listing cache when it is enabled and warm. A
// listing is only stored if no adapter was mutated while it ran.
func (s *Server) listAdapters(ctx context.Context) ([]adapter.Record, error) {
	if s.lists == nil {
		records, err := s.svc.ListAdapters(ctx)
		s.metrics.ObserveOperation("list", err == nil)
		return records, err
	}
	if v, ok := s.lists.Get(listKey); ok {
		return v.([]adapter.Record), nil
	}

	s.listMu.Lock()
	gen := s.listGen
	s.listMu.Unlock()

	records, err := s.svc.ListAdapters(ctx)
	s.metrics.ObserveOperation("list", err == nil)
	if err != nil {
		return nil, err
	}

	s.listMu.Lock()
	if s.listGen == gen {
		s.lists.SetDefault(listKey, records)
	}
	s.listMu.Unlock()
	return records, nil
}

// invalidate drops the cached listing once an adapter may have changed and
// keeps listings already in flight from repopulating it.
func (s *Server) invalidate() {
	if s.lists == nil {
		return
	}
	s.listMu.Lock()
	s.listGen++
	s.lists.Delete(listKey)
	s.listMu.Unlock()
}

func (s *Server) handleChange(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "change", s.svc.ChangeMac)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "restore", s.svc.RestoreMac)
}

// mutate validates the requested address, holds the adapter's in-flight slot
// and runs op. The outcome is returned as-is.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, operation string,
	op func(ctx context.Context, name, raw string) adapter.Outcome) {
	name := r.PathValue("name")

	var req macRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, adapter.Outcome{Message: err.Error()})
		return
	}
	if v := s.svc.ValidateMac(req.MAC); !v.Valid {
		writeJSON(w, http.StatusBadRequest, adapter.Outcome{Message: v.Message})
		return
	}

	if !s.guard.acquire(name) {
		writeJSON(w, http.StatusConflict, adapter.Outcome{Message: busyMessage(name)})
		return
	}
	defer s.guard.release(name)

	flog.Infof("[%s] %s %s -> %s", requestID(r.Context()), operation, name, req.MAC)
	out := op(r.Context(), name, req.MAC)
	s.invalidate()
	s.metrics.ObserveOperation(operation, out.Success)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !s.guard.acquire(name) {
		writeJSON(w, http.StatusConflict, restartResponse{Message: busyMessage(name)})
		return
	}
	defer s.guard.release(name)

	flog.Infof("[%s] restart %s", requestID(r.Context()), name)
	err := s.svc.RestartAdapter(r.Context(), name)
	s.invalidate()
	s.metrics.ObserveOperation("restart", err == nil)
	if err != nil {
		writeJSON(w, http.StatusOK, restartResponse{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, restartResponse{Success: true, Message: "adapter " + name + " restarted"})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req macRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, mac.Validation{Message: err.Error()})
		return
	}
	v := s.svc.ValidateMac(req.MAC)
	s.metrics.ObserveOperation("validate", v.Valid)
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	s.metrics.ObserveOperation("random", true)
	writeJSON(w, http.StatusOK, randomResponse{MAC: s.svc.GenerateRandomMac()})
}

func busyMessage(name string) string {
	return fmt.Sprintf("an operation on %s is already in progress", name)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 64*1024))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		flog.Warnf("write response: %v", err)
	}
}

type ctxKey struct{}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return "-"
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// observe tags each request with an id, then logs and counts the response.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		} else if i := strings.IndexByte(route, ' '); i >= 0 {
			route = route[i+1:]
		}
		s.metrics.ObserveHTTP(route, rec.code)
		flog.Debugf("[%s] %s %s %d %v", id, r.Method, r.URL.Path, rec.code, time.Since(start))
	})
}
