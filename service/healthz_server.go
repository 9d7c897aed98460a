package service

import (
	"context"
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// LatestResults returns the JSON report of the last finished run, if any
type LatestResults func() ([]byte, bool)

type HealthzServer struct {
	log     log.Logger
	results LatestResults

	mu     sync.Mutex
	ctx    context.Context
	server *http.Server
}

func NewHealthzServer(logger log.Logger, results LatestResults) *HealthzServer {
	return &HealthzServer{log: logger, results: results}
}

// Handler routes /healthz and /results/latest.
func (h *HealthzServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Handle).Methods(http.MethodGet)
	r.HandleFunc("/results/{run}", h.HandleResults).Methods(http.MethodGet)
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})
	return c.Handler(r)
}

func (h *HealthzServer) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Handler: h.Handler(),
		Addr:    addr,
	}
	h.mu.Lock()
	h.server = server
	h.ctx = ctx
	h.mu.Unlock()
	return server.ListenAndServe()
}

func (h *HealthzServer) Shutdown() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(h.ctx)
}

func (h *HealthzServer) Handle(w http.ResponseWriter, r *http.Request) {
	h.log.Debug("Received health check request", "path", r.URL.Path)
	w.Write([]byte("OK")) //nolint:errcheck
}

// HandleResults serves the last run's report. Only "latest" is kept.
func (h *HealthzServer) HandleResults(w http.ResponseWriter, r *http.Request) {
	if mux.Vars(r)["run"] != "latest" {
		http.Error(w, "only the latest run is available", http.StatusNotFound)
		return
	}
	if h.results == nil {
		http.Error(w, "no run has finished yet", http.StatusNotFound)
		return
	}
	data, ok := h.results()
	if !ok {
		http.Error(w, "no run has finished yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data) //nolint:errcheck
}
