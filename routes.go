package main

import (
	"github.com/gorilla/mux"
)

// setupRoutes configures all HTTP routes for the resolver
func setupRoutes(router *mux.Router) {
	// Device polling endpoints
	router.HandleFunc("/nowplaying", nowPlayingHandler).Methods("POST")
	router.HandleFunc("/prefetch", prefetchHandler).Methods("POST")

	// Current lyrics state
	router.HandleFunc("/lyrics", getLyrics).Methods("GET")

	// Real-time event stream (SSE)
	router.HandleFunc("/events", eventStream).Methods("GET")

	// Cache management endpoints
	router.HandleFunc("/cache", getCacheDump).Methods("GET")
	router.HandleFunc("/cache", clearCache).Methods("DELETE")

	// Health and stats endpoints
	router.HandleFunc("/health", getHealthStatus).Methods("GET")
	router.HandleFunc("/stats", getStats).Methods("GET")

	// Circuit breaker endpoints
	router.HandleFunc("/circuit-breaker", getCircuitBreakerStatus).Methods("GET")
	router.HandleFunc("/circuit-breaker/reset", resetCircuitBreaker).Methods("POST")

	// Help endpoint
	router.HandleFunc("/", helpHandler)
}
