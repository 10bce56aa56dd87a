// Package api exposes a queue over HTTP.
//
// The surface is deliberately small: enqueue, dequeue, peek, stats,
// health, and Prometheus metrics. Full and Empty map to 409 and 404 so
// pollers can distinguish ordinary back-pressure from failures.
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StartServer starts the HTTP server with all routes configured.
func StartServer(q IQueue, config ServerConfig) error {
	metrics := NewMetrics()
	server := NewServer(q, config, metrics)

	r := NewRouter(server, config, metrics)

	// Start background metrics updater
	go server.startMetricsUpdater()

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	fmt.Printf("Starting mmqueue REST API server on %s\n", addr)
	fmt.Printf("Metrics available at: http://%s/metrics\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))

	return nil
}

// NewRouter builds the chi router for the given server. Split out of
// StartServer so tests can drive the full middleware stack.
func NewRouter(server *Server, config ServerConfig, metrics *Metrics) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(config.APIKey, metrics))

		// Health check
		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Queue operations
		r.Post("/queue", metrics.InstrumentHandler("POST", "/api/v1/queue", server.handleEnqueue))
		r.Post("/queue/dequeue", metrics.InstrumentHandler("POST", "/api/v1/queue/dequeue", server.handleDequeue))
		r.Get("/queue/peek", metrics.InstrumentHandler("GET", "/api/v1/queue/peek", server.handlePeek))
		r.Get("/queue/stats", metrics.InstrumentHandler("GET", "/api/v1/queue/stats", server.handleStats))
	})

	return r
}
