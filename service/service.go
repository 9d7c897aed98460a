package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/ethereum-optimism/infra/op-testplan/metrics"
	"github.com/ethereum/go-ethereum/log"
)

const (
	HealthzHost = "0.0.0.0"
	HealthzPort = 8080
)

// Config selects where the servers listen. A zero port disables a server.
type Config struct {
	HealthzHost string
	HealthzPort int
	MetricsHost string
	MetricsPort int
}

type Service struct {
	log     log.Logger
	cfg     Config
	Healthz *HealthzServer
	Metrics *MetricsServer
}

func New(logger log.Logger, cfg Config, results LatestResults) *Service {
	return &Service{
		log:     logger,
		cfg:     cfg,
		Healthz: NewHealthzServer(logger, results),
		Metrics: &MetricsServer{},
	}
}

func (s *Service) Start(ctx context.Context) {
	s.log.Info("service starting")

	if s.cfg.HealthzPort != 0 {
		go func() {
			addr := net.JoinHostPort(s.cfg.HealthzHost, strconv.Itoa(s.cfg.HealthzPort))
			s.log.Info("starting healthz server", "addr", addr)
			if err := s.Healthz.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("error starting healthz server", "err", err)
				metrics.RecordErrorDetails("error starting healthz server", err)
			}
		}()
	}

	if s.cfg.MetricsPort != 0 {
		go func() {
			addr := net.JoinHostPort(s.cfg.MetricsHost, strconv.Itoa(s.cfg.MetricsPort))
			s.log.Info("starting metrics server", "addr", addr)
			if err := s.Metrics.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("error starting metrics server", "err", err)
				metrics.RecordErrorDetails("error starting metrics server", err)
			}
		}()
	}

	s.log.Info("service started")
}

func (s *Service) Shutdown() {
	s.log.Info("service shutting down")

	_ = s.Healthz.Shutdown()
	s.log.Info("healthz stopped")

	_ = s.Metrics.Shutdown()
	s.log.Info("metrics stopped")

	s.log.Info("service stopped")
}
