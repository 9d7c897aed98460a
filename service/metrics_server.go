package service

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsServer struct {
	mu     sync.Mutex
	ctx    context.Context
	server *http.Server
}

// Handler serves the default prometheus registry on /metrics.
func (m *MetricsServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (m *MetricsServer) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Handler: m.Handler(),
		Addr:    addr,
	}
	m.mu.Lock()
	m.server = server
	m.ctx = ctx
	m.mu.Unlock()
	return server.ListenAndServe()
}

func (m *MetricsServer) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(m.ctx)
}
