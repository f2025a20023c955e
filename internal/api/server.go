// Package api provides the HTTP server for the DePaym reward engine.
// It exposes the mining session lifecycle, interaction rewards, wallet
// linking, and currency rates as a small JSON API.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/depaym-network/depaym/internal/app/mining"
	"github.com/depaym-network/depaym/internal/app/rewards"
	"github.com/depaym-network/depaym/internal/domain"
)

// AccountStore is the slice of the persistence layer the HTTP surface
// needs directly: account registration and wallet links. Everything else
// goes through the application services.
type AccountStore interface {
	CreateAccount(a *domain.Account) error
	GetAccount(id string) (*domain.Account, error)
	LinkWallet(accountID, addr string, at time.Time) error
	UnlinkWallets(accountID string) error
}

// Server is the DePaym HTTP API server.
type Server struct {
	mining         *mining.Service
	rewards        *rewards.Service
	store          AccountStore
	rates          RateSource // nil disables /api/currency
	metricsEnabled bool
	now            func() time.Time
}

// NewServer creates a new API server.
func NewServer(miningSvc *mining.Service, rewardsSvc *rewards.Service, store AccountStore) *Server {
	return &Server{
		mining:  miningSvc,
		rewards: rewardsSvc,
		store:   store,
		now:     time.Now,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetRateSource enables the currency endpoints.
func (s *Server) SetRateSource(r RateSource) { s.rates = r }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	// Health check for Railway/Render
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": "0.1.0",
		})
	})

	r.Post("/api/accounts", s.handleCreateAccount)

	r.Route("/api/mining", func(r chi.Router) {
		r.Post("/start", s.handleMiningStart)
		r.Post("/stop", s.handleMiningStop)
		r.Get("/status", s.handleMiningStatus)
	})

	r.Route("/api/interactions", func(r chi.Router) {
		r.Get("/", s.handleInteractionCooldowns)
		r.Post("/{action}", s.handleInteraction)
	})

	r.Route("/api/wallet", func(r chi.Router) {
		r.Post("/connect", s.handleWalletConnect)
		r.Delete("/disconnect", s.handleWalletDisconnect)
	})

	if s.rates != nil {
		r.Get("/api/currency/rates", s.handleCurrencyRates)
	}

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// accountID extracts the caller's account from the X-Account-ID header.
func accountID(r *http.Request) string {
	return r.Header.Get("X-Account-ID")
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDomainError maps service errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrAccountNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case domain.ErrAlreadyActive, domain.ErrNotActive, domain.ErrInvalidWallet, domain.ErrActionOnCooldown:
		writeError(w, http.StatusBadRequest, err.Error())
	case domain.ErrWalletConflict:
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// corsMiddleware adds CORS headers for the mobile client and local dev.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Account-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
