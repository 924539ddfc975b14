package main

import (
	"fmt"
	"net/http"
	"slices"

	"connectrpc.com/connect"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/0xpratik010/tridev/go/internal/auth"
	"github.com/0xpratik010/tridev/go/internal/connectjson"
	"github.com/0xpratik010/tridev/go/internal/gateway"
	"github.com/0xpratik010/tridev/go/internal/history"
	"github.com/0xpratik010/tridev/go/internal/luckynumbers"
	"github.com/0xpratik010/tridev/go/internal/viewer"
)

func setupServer(cfg Config, services *Services) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Retry-After"},
	})

	// Register services
	registerServices(mux, services)

	// Live slot stream
	gateway.NewWebSocketHandler(services.Gateway).RegisterRoutes(mux)

	// Add health check endpoint
	setupHealthCheck(mux, services)

	// Wrap with CORS
	handler := c.Handler(mux)

	// Setup HTTP/2 server
	return &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}
}

func registerServices(mux *http.ServeMux, services *Services) {
	codec := connectjson.WithCodec()

	// Operator lucky number service, bearer session required
	luckyPath, luckyHandler := luckynumbers.NewLuckyNumberServiceHandler(
		services.LuckyNumbers,
		codec,
		connect.WithInterceptors(auth.NewInterceptor(services.AuthApp)),
	)
	mux.Handle(luckyPath, luckyHandler)

	// Register auth service
	authPath, authHandler := auth.NewAuthServiceHandler(services.Auth, codec)
	mux.Handle(authPath, authHandler)

	// Register viewer service
	viewerPath, viewerHandler := viewer.NewViewerServiceHandler(services.Viewer, codec)
	mux.Handle(viewerPath, viewerHandler)

	// Register history service
	historyPath, historyHandler := history.NewHistoryServiceHandler(services.History, codec)
	mux.Handle(historyPath, historyHandler)
}

func setupHealthCheck(mux *http.ServeMux, services *Services) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
	mux.Handle("/health/outbox", services.OutboxHealth)
}

// originChecker accepts websocket upgrades from the configured origins.
// A "*" entry or a request without an Origin header is always allowed.
func originChecker(allowed []string) func(r *http.Request) bool {
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
