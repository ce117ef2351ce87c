package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/amlwatch/dashboard/internal/api/handlers"
	"github.com/amlwatch/dashboard/internal/api/middleware"
	"github.com/amlwatch/dashboard/internal/backend"
	"github.com/amlwatch/dashboard/internal/logger"
	"github.com/amlwatch/dashboard/internal/upload"
)

const defaultBackendURL = "http://localhost:8000/api/v1"

func main() {
	// Load .env if present, without failing when missing.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		envLog := logger.New()
		envLog.Warn().Err(err).Msg("failed to load .env")
	}

	var (
		port       = flag.String("port", envOr("PORT", "8080"), "HTTP server port")
		backendURL = flag.String("backend", envOr("BACKEND_URL", defaultBackendURL), "base URL of the analysis backend (or set BACKEND_URL)")
	)
	flag.Parse()

	log := logger.New()

	client := backend.New(*backendURL, log)
	coordinator := upload.NewCoordinator(client, log)

	// Seed the aggregate status; a cold backend is fine, the poll degrades.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 5*time.Second)
	coordinator.RefreshStatus(startupCtx)
	cancelStartup()

	customerHandler := handlers.NewCustomerHandler(client, log)
	uploadHandler := handlers.NewUploadHandler(coordinator, log)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/search", customerHandler.Search)
	mux.HandleFunc("GET /api/customer/{bcn}/overview", customerHandler.Overview)
	mux.HandleFunc("GET /api/customer/{bcn}/grid", customerHandler.Grid)
	mux.HandleFunc("GET /api/customer/{bcn}/timeline", customerHandler.Timeline)
	mux.HandleFunc("GET /api/customer/{bcn}/patterns", customerHandler.Patterns)

	mux.HandleFunc("POST /api/upload/{slug}", uploadHandler.Upload)
	mux.HandleFunc("POST /api/upload/{slug}/reset", uploadHandler.Reset)
	mux.HandleFunc("GET /api/upload/status", uploadHandler.Status)
	mux.HandleFunc("DELETE /api/upload/clear", uploadHandler.Clear)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Str("backend", *backendURL).Msg("Starting dashboard server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
