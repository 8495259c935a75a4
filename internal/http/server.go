package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"radiodj/internal/core"
)

// Server exposes operational endpoints and the skill's Prometheus metrics.
// It implements core.Metrics so the skill can record counters without
// knowing about the HTTP surface.
type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

type Metrics struct {
	SearchesTotal     *prometheus.CounterVec
	MatchesTotal      *prometheus.CounterVec
	PlaybackTotal     *prometheus.CounterVec
	VolumeAdjustTotal *prometheus.CounterVec
	ClickedStations   prometheus.Gauge
}

func NewServer(config *core.ServerConfig, logger *zap.Logger) *Server {
	metrics := newMetrics()

	prometheus.MustRegister(
		metrics.SearchesTotal,
		metrics.MatchesTotal,
		metrics.PlaybackTotal,
		metrics.VolumeAdjustTotal,
		metrics.ClickedStations,
	)

	mux := setupRoutes(logger)
	server := createHTTPServer(config, mux)

	return &Server{
		config:  config,
		logger:  logger,
		server:  server,
		metrics: metrics,
	}
}

func newMetrics() *Metrics {
	return &Metrics{
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radiodj_searches_total",
				Help: "Total number of station directory searches",
			},
			[]string{"kind", "status"},
		),
		MatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radiodj_matches_total",
				Help: "Total number of common-play matches reported",
			},
			[]string{"level"},
		),
		PlaybackTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radiodj_playback_total",
				Help: "Total number of playback state changes",
			},
			[]string{"status"},
		),
		VolumeAdjustTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radiodj_volume_adjust_total",
				Help: "Total number of player volume adjustments",
			},
			[]string{"status"},
		),
		ClickedStations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "radiodj_clicked_stations",
				Help: "Number of stations click-reported this session",
			},
		),
	}
}

func setupRoutes(logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok","service":"radiodj"}`)); err != nil {
			logger.Debug("Failed to write health response", zap.Error(err))
		}
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ready","service":"radiodj"}`)); err != nil {
			logger.Debug("Failed to write ready response", zap.Error(err))
		}
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/", homeHandler(logger))

	return mux
}

func homeHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>RadioDJ</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1 class="header">📻 RadioDJ</h1>
    <p>Internet Radio Skill Service</p>

    <h2>Endpoints</h2>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Readiness check</div>

    <h2>Status</h2>
    <p>Service is running and ready to resolve radio stations.</p>
</body>
</html>`)); err != nil {
			logger.Debug("Failed to write home page", zap.Error(err))
		}
	}
}

func createHTTPServer(config *core.ServerConfig, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) RecordSearch(kind, status string) {
	s.metrics.SearchesTotal.WithLabelValues(kind, status).Inc()
}

func (s *Server) RecordMatch(level string) {
	s.metrics.MatchesTotal.WithLabelValues(level).Inc()
}

func (s *Server) RecordPlayback(status string) {
	s.metrics.PlaybackTotal.WithLabelValues(status).Inc()
}

func (s *Server) RecordVolumeAdjust(status string) {
	s.metrics.VolumeAdjustTotal.WithLabelValues(status).Inc()
}

func (s *Server) SetClickedStations(count int) {
	s.metrics.ClickedStations.Set(float64(count))
}
