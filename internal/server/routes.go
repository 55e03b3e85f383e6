package server

import "net/http"

// registerRoutes sets up all API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/version", s.handleVersion)

	// Market data
	mux.HandleFunc("GET /api/ticker/{symbol...}", s.handleTicker)
	mux.HandleFunc("GET /api/series/{symbol...}", s.handleSeries)
	mux.HandleFunc("GET /api/posts/{symbol...}", s.handlePosts)
	mux.HandleFunc("GET /api/mockdata", s.handleMockData)
	mux.HandleFunc("POST /api/summary", s.handleSummary)

	// Quota-gated selection
	mux.HandleFunc("GET /api/aggregate/{symbol...}", s.handleAggregate)
	mux.HandleFunc("GET /api/live", s.handleLive)

	// Billing
	mux.HandleFunc("POST /api/subscribe", s.handleSubscribe)
	mux.HandleFunc("POST /api/webhook", s.handleWebhook)

	// Auth
	mux.HandleFunc("GET /api/auth/callback", s.handleAuthCallback)
	mux.HandleFunc("POST /api/auth/signout", s.handleSignOut)
	mux.HandleFunc("GET /api/auth/me", s.handleMe)
}
