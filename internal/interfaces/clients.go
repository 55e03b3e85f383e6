// Package interfaces defines the contracts between the dashboard services and
// the external systems they call
package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/erickalfaro/my-dashboard/internal/models"
)

// ErrNotConfigured is returned when a client is used without the credentials it needs.
var ErrNotConfigured = errors.New("client not configured")

// ReferenceDataClient looks up descriptive ticker metadata.
type ReferenceDataClient interface {
	// GetTickerDetails returns the ledger entry for a ticker. A ticker unknown
	// to the vendor yields an error matching ErrNotFound.
	GetTickerDetails(ctx context.Context, ticker string) (*models.StockLedgerEntry, error)
}

// MarketDataClient fetches price/volume bars.
type MarketDataClient interface {
	// GetSeries returns close and volume series for the window [start, end).
	GetSeries(ctx context.Context, ticker string, start, end time.Time) (*models.MarketSeries, error)
}

// CompletionClient sends a prompt to an LLM.
type CompletionClient interface {
	// Complete generates text for input under the given system instruction.
	Complete(ctx context.Context, systemInstruction, input string) (string, error)
}

// PaymentClient is the payments processor.
type PaymentClient interface {
	CreateCustomer(ctx context.Context, email, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (string, error)
	// ParseWebhook verifies the signature header and decodes the event.
	ParseWebhook(payload []byte, signature string) (*models.PaymentEvent, error)
}

// AuthClient is the hosted auth service.
type AuthClient interface {
	// GetUser resolves the user that owns an access token.
	GetUser(ctx context.Context, accessToken string) (*models.User, error)
	// ExchangeCode trades an OAuth/PKCE auth code for a session.
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*models.AuthSession, error)
	// SignOut revokes the session behind an access token.
	SignOut(ctx context.Context, accessToken string) error
}
