// Package web serves the devboard's live button and LED state over HTTP:
// an HTML dashboard, the same data as JSON, one LED at a time, and the
// Prometheus registry.
package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/devboard/internal/led"
	"github.com/sweeney/devboard/internal/status"
)

// Server is the read-only status endpoint of the daemon.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New routes:
//
//	GET /, /index.html   dashboard
//	GET /index.json      full status
//	GET /led/{n}         one LED, n as in the MQTT command topic
//	GET /metrics         Prometheus
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /index.html", s.handleDashboard)
	mux.HandleFunc("GET /index.json", s.handleStatus)
	mux.HandleFunc("GET /led/{n}", s.handleLED)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler returns the router, for httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.tracker.Snapshot())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(s.tracker.Snapshot()))
}

func (s *Server) handleLED(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || !led.ID(n).Valid() {
		http.NotFound(w, r)
		return
	}
	st := s.tracker.Snapshot().LEDs[n]
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status.NewLEDJSON(st))
}
