// Package api is the HTTP surface exposed to the routing/session layer.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/smartkas-app/kasai/internal/anomaly"
	"github.com/smartkas-app/kasai/internal/assistant"
)

type Server struct {
	router    *chi.Mux
	port      int
	assistant *assistant.Assistant
	detector  *anomaly.Detector
	logger    *slog.Logger
}

func NewServer(port int, apiToken string, a *assistant.Assistant, d *anomaly.Detector, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      port,
		assistant: a,
		detector:  d,
		logger:    logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/status", s.status)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/chat/send", s.chatSend)
		r.Post("/ocr/scan-products", s.scanProducts)
		r.Post("/ocr/scan-transactions", s.scanTransactions)
		r.Post("/anomalies/scan", s.scanAnomalies)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// BearerAuthMiddleware rejects requests without the configured bearer token.
// An empty token disables the check.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "kasai",
		"status":  "ready",
	})
}
