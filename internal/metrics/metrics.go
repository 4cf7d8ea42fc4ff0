// Package metrics serves an optional debug/stats HTTP endpoint for a
// pcompress run: chunk and byte counters exposed as a JSON snapshot,
// wrapped in request logging and joinable into a stop.Group for shutdown.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/coreos/pcompress/capnslog"
	"github.com/coreos/pcompress/httputil"
	"github.com/coreos/pcompress/stop"
)

var log = capnslog.NewPackageLogger("github.com/coreos/pcompress", "metrics")

// Stats holds the counters a Server exposes. All fields are updated with
// atomic operations and are safe to share across the dispatcher and worker
// goroutines.
type Stats struct {
	ChunksIn  int64 `json:"chunks_in"`
	ChunksOut int64 `json:"chunks_out"`
	BytesIn   int64 `json:"bytes_in"`
	BytesOut  int64 `json:"bytes_out"`
}

// AddChunk records one processed chunk's input and output sizes.
func (s *Stats) AddChunk(in, out int) {
	atomic.AddInt64(&s.ChunksIn, 1)
	atomic.AddInt64(&s.ChunksOut, 1)
	atomic.AddInt64(&s.BytesIn, int64(in))
	atomic.AddInt64(&s.BytesOut, int64(out))
}

// snapshot returns a point-in-time copy of s safe to marshal.
func (s *Stats) snapshot() Stats {
	return Stats{
		ChunksIn:  atomic.LoadInt64(&s.ChunksIn),
		ChunksOut: atomic.LoadInt64(&s.ChunksOut),
		BytesIn:   atomic.LoadInt64(&s.BytesIn),
		BytesOut:  atomic.LoadInt64(&s.BytesOut),
	}
}

// Server is an http.Server exposing Stats at /stats. It implements
// stop.Stoppable so it can be joined into a stop.Group alongside the rest
// of a run's lifecycle.
type Server struct {
	stats *Stats
	srv   *http.Server
	ln    net.Listener
	done  chan struct{}
}

// NewServer builds a metrics server bound to addr (not yet listening; call
// Start). stats must outlive the server.
func NewServer(addr string, stats *Stats) *Server {
	s := &Server{stats: stats, done: make(chan struct{})}
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.serveStats)
	s.srv = &http.Server{Addr: addr, Handler: &httputil.LoggingMiddleware{Next: mux}}
	return s
}

func (s *Server) serveStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.stats.snapshot()); err != nil {
		log.Errorf("encode stats: %v", err)
	}
}

// Start binds the listener and begins serving in the background. The
// returned error only reflects binding the listener; request-serving
// errors are logged, not returned.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("metrics: listen on %s: %w", s.srv.Addr, err)
	}
	s.ln = ln
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Errorf("metrics server: %v", err)
		}
	}()
	log.Infof("metrics server listening on %s", ln.Addr())
	return nil
}

// Addr returns the address the server is actually bound to, useful when
// Start was called with a ":0" port.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.srv.Addr
	}
	return s.ln.Addr().String()
}

// Stop implements stop.Stoppable.
func (s *Server) Stop() <-chan struct{} {
	go func() {
		defer close(s.done)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := s.srv.Shutdown(ctx); err != nil {
			log.Errorf("metrics server shutdown: %v", err)
		}
	}()
	return s.done
}

var _ stop.Stoppable = (*Server)(nil)
