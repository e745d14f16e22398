package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"redirect-router/internal/classifier"
	"redirect-router/internal/common/logging"
	"redirect-router/internal/config"
	"redirect-router/internal/handlers"
	"redirect-router/internal/metrics"
	"redirect-router/internal/middleware"
	"redirect-router/internal/routing"
	"redirect-router/internal/server"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logging.Error("Invalid configuration", err)
		os.Exit(1)
	}

	if err := logging.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		logging.Error("Failed to initialize logger", err)
		os.Exit(1)
	}
	defer logging.MustSync()

	// Load the route document once; it is immutable for the process lifetime
	routeConfig, err := routing.LoadConfig(cfg.RoutesFile)
	if err != nil {
		logging.Error("Failed to load route configuration", err,
			logging.String("routes_file", cfg.RoutesFile))
		os.Exit(1)
	}

	engine, err := routing.NewEngine(routeConfig, logging.GetGlobalLogger())
	if err != nil {
		logging.Error("Failed to compile route configuration", err)
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	cls := classifier.New(cfg.UACacheSize)
	dispatcher := handlers.NewDispatcher(engine, cls, m, logging.GetGlobalLogger())

	// Set up routes
	router := mux.NewRouter()
	router.HandleFunc("/healthz", dispatcher.HealthCheck).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")
	router.PathPrefix("/").HandlerFunc(dispatcher.HandleRequest)

	srv := server.New(middleware.LoggingMiddleware(router), cfg.Port, cfg.TLSCert, cfg.TLSKey)
	errCh := srv.Start()
	logging.Info("Redirect router started",
		logging.String("port", cfg.Port),
		logging.Int("rules", len(routeConfig.Rules)),
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logging.Error("Server failed", err)
		os.Exit(1)
	case sig := <-quit:
		logging.Info("Shutting down", logging.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", err)
		os.Exit(1)
	}

	logging.Info("Server exited")
}
