package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
	"github.com/erickalfaro/my-dashboard/internal/services/aggregate"
	"github.com/erickalfaro/my-dashboard/internal/services/tape"
)

func (s *Server) handleTicker(w http.ResponseWriter, r *http.Request) {
	symbol, ok := SymbolParam(w, r)
	if !ok {
		return
	}

	ledger, err := s.app.MarketService.GetLedger(r.Context(), symbol)
	if errors.Is(err, interfaces.ErrNotConfigured) {
		WriteError(w, http.StatusInternalServerError, "Reference data API key is missing")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch data for %s", symbol))
		return
	}
	WriteJSON(w, http.StatusOK, ledger)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	symbol, ok := SymbolParam(w, r)
	if !ok {
		return
	}

	series, err := s.app.MarketService.GetSeries(r.Context(), symbol)
	if errors.Is(err, interfaces.ErrNotConfigured) {
		WriteError(w, http.StatusInternalServerError, "Market data API credentials are missing")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, aggregate.FailedDataMessage(symbol))
		return
	}
	WriteJSON(w, http.StatusOK, series)
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	symbol, ok := SymbolParam(w, r)
	if !ok {
		return
	}

	posts, err := s.app.PostsService.GetPosts(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}
	WriteJSON(w, http.StatusOK, posts)
}

// handleMockData serves the ticker tape, optionally sorted by ?sort=&direction=.
func (s *Server) handleMockData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := s.app.TapeService.List(r.Context(), interfaces.TapeSort{
		Key:       q.Get("sort"),
		Direction: q.Get("direction"),
	})
	if errors.Is(err, tape.ErrInvalidSortKey) || errors.Is(err, tape.ErrInvalidSortDirection) {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load ticker tape")
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

type summaryRequest struct {
	Posts  []models.PostRecord `json:"posts"`
	Ticker string              `json:"ticker"`
}

// handleSummary summarizes posts sent by the client. An empty posts array is
// valid and yields the no-posts placeholder; a missing one is rejected.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	ticker := models.NormalizeTicker(req.Ticker)
	if req.Posts == nil || ticker == "" {
		WriteError(w, http.StatusBadRequest, "Missing posts or ticker")
		return
	}
	if !s.app.SummaryService.Ready() {
		WriteError(w, http.StatusInternalServerError, "LLM API key is missing")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"summary": s.app.SummaryService.Summarize(r.Context(), req.Posts, ticker),
	})
}
