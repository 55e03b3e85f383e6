// Package live drives the websocket selection channel: debounced ticker
// selections pass the quota check, fetch the aggregate, then the summary.
package live

import (
	"github.com/erickalfaro/my-dashboard/internal/models"
)

// Client message types.
const (
	TypeSelect  = "select"
	TypeRefresh = "refresh"
)

// Server message types.
const (
	TypeState     = "state"
	TypeLoading   = "loading"
	TypeAggregate = "aggregate"
	TypeSummary   = "summary"
	TypeDenied    = "denied"
	TypeTape      = "tape"
	TypeError     = "error"
)

// ClientMessage is a request from the browser.
type ClientMessage struct {
	Type      string `json:"type"`
	Ticker    string `json:"ticker,omitempty"`
	Sort      string `json:"sort,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// ServerMessage is pushed to the browser. Only the fields of its type are set.
type ServerMessage struct {
	Type         string                    `json:"type"`
	Ticker       string                    `json:"ticker,omitempty"`
	Subscription *models.SubscriptionState `json:"subscription,omitempty"`
	Result       *models.AggregateResult   `json:"result,omitempty"`
	Summary      string                    `json:"summary,omitempty"`
	Reason       string                    `json:"reason,omitempty"`
	Tape         []models.TickerTapeItem   `json:"tape,omitempty"`
	Error        string                    `json:"error,omitempty"`
}
