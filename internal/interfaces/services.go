package interfaces

import (
	"context"

	"github.com/erickalfaro/my-dashboard/internal/models"
)

// SessionProvider resolves and ends user sessions.
type SessionProvider interface {
	// Authenticate validates an access token and returns its user.
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
	// ExchangeCode completes the auth-code callback.
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*models.AuthSession, error)
	// SignOut revokes the token locally and with the auth service.
	SignOut(ctx context.Context, accessToken string) error
}

// QuotaTracker holds one user's quota view between reloads.
type QuotaTracker interface {
	// Load reads subscription status and the persisted click count.
	Load(ctx context.Context) error
	// Authorize decides whether a lookup of ticker may proceed, writing the
	// click-log row when it may.
	Authorize(ctx context.Context, ticker string) models.QuotaDecision
	State() models.SubscriptionState
}

// QuotaService creates trackers.
type QuotaService interface {
	NewTracker(userID string) QuotaTracker
}

// MarketService serves ledger and series lookups.
type MarketService interface {
	GetLedger(ctx context.Context, ticker string) (*models.StockLedgerEntry, error)
	GetSeries(ctx context.Context, ticker string) (*models.MarketSeries, error)
}

// PostsService serves sorted post feeds.
type PostsService interface {
	GetPosts(ctx context.Context, ticker string) ([]models.PostRecord, error)
}

// AggregateService merges the three per-ticker lookups.
type AggregateService interface {
	Fetch(ctx context.Context, ticker string) *models.AggregateResult
}

// SummaryService turns posts into bullet-point prose.
type SummaryService interface {
	// Ready reports whether a completion provider is configured.
	Ready() bool
	Summarize(ctx context.Context, posts []models.PostRecord, ticker string) string
}

// TapeSort selects the ticker-tape ordering. An empty Key keeps stored order.
type TapeSort struct {
	Key       string
	Direction string
}

// TapeService lists the ticker tape.
type TapeService interface {
	List(ctx context.Context, sort TapeSort) ([]models.TickerTapeItem, error)
}

// BillingService runs checkout and subscription lifecycle updates.
type BillingService interface {
	// Subscribe creates a checkout session for user and returns its id.
	// requestedUserID must match user.ID; baseURL prefixes the return URLs.
	Subscribe(ctx context.Context, user *models.User, requestedUserID, baseURL string) (string, error)
	// HandleWebhook verifies and applies a processor event.
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*models.PaymentEvent, error)
}
