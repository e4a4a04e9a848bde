package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/urfave/negroni"

	"github.com/vietddude/netwatch/internal/core/config"
	"github.com/vietddude/netwatch/internal/core/domain"
)

// StateReader exposes the latest published results. Both methods return nil until
// the first cycle of their kind has run.
type StateReader interface {
	State() *domain.State
	Probes() *domain.ProbeSet
}

// ServerOptions configures the status server.
type ServerOptions struct {
	Port        int
	CORSOrigins []string
	Network     config.NetworkConfig
	Wallet      config.WalletConfig
}

// Server provides the JSON status API and Prometheus metrics.
type Server struct {
	reader  StateReader
	network config.NetworkConfig
	wallet  config.WalletConfig
	server  *http.Server
}

// NewServer creates a new status server.
func NewServer(reader StateReader, opts ServerOptions) *Server {
	s := &Server{
		reader:  reader,
		network: opts.Network,
		wallet:  opts.Wallet,
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/forks", s.handleForks).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleReport).Methods(http.MethodGet)
	api.HandleFunc("/endpoints", s.handleEndpoints).Methods(http.MethodGet)
	api.HandleFunc("/network", s.handleNetwork).Methods(http.MethodGet)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	})

	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.UseHandler(corsHandler.Handler(router))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           n,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := domain.HealthUnknown
	if state := s.reader.State(); state != nil {
		status = state.Health.Status
	}

	code := http.StatusOK
	if status == domain.HealthCritical {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": string(status)})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		State     *domain.State    `json:"state"`
		Endpoints *domain.ProbeSet `json:"endpoints"`
	}{s.reader.State(), s.reader.Probes()})
}

func (s *Server) handleForks(w http.ResponseWriter, r *http.Request) {
	state := s.reader.State()
	if state == nil {
		writeError(w, http.StatusServiceUnavailable, "no refresh cycle has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Source   domain.TimelineSource `json:"source"`
		Forks    []domain.DisplayFork  `json:"forks"`
		Versions domain.ForkVersions   `json:"versions"`
	}{state.TimelineSource, state.Forks, state.Versions})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	state := s.reader.State()
	if state == nil {
		writeError(w, http.StatusServiceUnavailable, "no refresh cycle has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, state.Health)
}

func (s *Server) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	probes := s.reader.Probes()
	if probes == nil {
		writeError(w, http.StatusServiceUnavailable, "no probe cycle has started yet")
		return
	}
	writeJSON(w, http.StatusOK, probes)
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Network config.NetworkConfig `json:"network"`
		Wallet  config.WalletConfig  `json:"wallet"`
	}{s.network, s.wallet})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
