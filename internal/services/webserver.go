package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"aktis-soc-metrics/internal/common"
	"aktis-soc-metrics/internal/handlers"
	"aktis-soc-metrics/internal/interfaces"
	"aktis-soc-metrics/internal/middleware"

	"github.com/ternarybob/arbor"
)

// webServer provides HTTP endpoints for ticket intake, analysis runs and
// monitoring
type webServer struct {
	config      *common.Config
	storage     interfaces.Storage
	analyzer    interfaces.Analyzer
	server      *http.Server
	logger      arbor.ILogger
	apiHandlers *handlers.APIHandlers
	wsHub       *handlers.WebSocketHub
	running     bool
	startTime   time.Time
}

// NewWebServer creates a new web server instance
func NewWebServer(cfg *common.Config, storage interfaces.Storage, analyzer interfaces.Analyzer, logger arbor.ILogger) (interfaces.WebService, error) {
	mux := http.NewServeMux()

	// WebSocket hub first (needed by API handlers)
	wsHub := handlers.NewWebSocketHub(logger)

	apiHandlers := handlers.NewAPIHandlers(cfg, storage, analyzer, logger, wsHub)

	ws := &webServer{
		config:      cfg,
		storage:     storage,
		analyzer:    analyzer,
		logger:      logger,
		apiHandlers: apiHandlers,
		wsHub:       wsHub,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Analyzer.Port),
			Handler: mux,
		},
	}

	logMiddleware := middleware.Logging(logger)
	corsMiddleware := middleware.CORS

	mux.HandleFunc("/health", logMiddleware(corsMiddleware(apiHandlers.HealthHandler)))
	mux.HandleFunc("/version", logMiddleware(corsMiddleware(apiHandlers.VersionHandler)))
	mux.HandleFunc("/status", logMiddleware(corsMiddleware(apiHandlers.StatusHandler)))
	mux.HandleFunc("/config", logMiddleware(corsMiddleware(apiHandlers.ConfigHandler)))
	mux.HandleFunc("/metrics", logMiddleware(corsMiddleware(apiHandlers.MetricsHandler)))
	mux.HandleFunc("/analyze", logMiddleware(corsMiddleware(apiHandlers.AnalyzeHandler)))
	mux.HandleFunc("/receiver", logMiddleware(corsMiddleware(apiHandlers.ReceiverHandler)))

	mux.HandleFunc("/ws", corsMiddleware(wsHub.WebSocketHandler))

	return ws, nil
}

// Start starts the web server
func (ws *webServer) Start(ctx context.Context) error {
	ws.running = true
	ws.startTime = time.Now()

	go func() {
		ws.logger.Info().Int("port", ws.config.Analyzer.Port).Msg("Starting web server")
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.logger.Error().Err(err).Msg("Web server error")
		}
	}()
	return nil
}

// Stop stops the web server
func (ws *webServer) Stop() error {
	ws.running = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws.logger.Info().Msg("Shutting down web server")
	return ws.server.Shutdown(ctx)
}

// IsRunning returns true if the web server is running
func (ws *webServer) IsRunning() bool {
	return ws.running
}
