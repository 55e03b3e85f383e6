// Package quota enforces the monthly ticker-lookup allowance for FREE users.
package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

// User-facing denial reasons.
const (
	ReasonExhausted = "You've used all your free clicks this month. Upgrade to Premium for unlimited access."
	ReasonNotLoaded = "Subscription status is still loading. Please try again."
	ReasonFailed    = "Unable to record this lookup. Please try again."
)

// Service implements interfaces.QuotaService.
type Service struct {
	subscriptions interfaces.SubscriptionStore
	clicks        interfaces.ClickStore
	limit         int
	logger        *common.Logger
	now           func() time.Time // injectable clock for testing
}

var _ interfaces.QuotaService = (*Service)(nil)

// NewService creates a quota service. limit <= 0 uses models.DefaultFreeMonthlyClicks.
func NewService(subscriptions interfaces.SubscriptionStore, clicks interfaces.ClickStore, limit int, logger *common.Logger) *Service {
	if limit <= 0 {
		limit = models.DefaultFreeMonthlyClicks
	}
	return &Service{
		subscriptions: subscriptions,
		clicks:        clicks,
		limit:         limit,
		logger:        logger,
		now:           time.Now,
	}
}

// NewTracker returns an unloaded tracker for userID.
func (s *Service) NewTracker(userID string) interfaces.QuotaTracker {
	return &Tracker{svc: s, userID: userID}
}

// Tracker holds one user's quota between loads. It is safe for concurrent use.
type Tracker struct {
	svc    *Service
	userID string

	mu         sync.Mutex
	loaded     bool
	status     models.SubscriptionStatus
	clicksLeft int
}

var _ interfaces.QuotaTracker = (*Tracker)(nil)

// Load reads the subscription status and, for FREE users, this month's click count.
func (t *Tracker) Load(ctx context.Context) error {
	status := models.StatusFree
	sub, err := t.svc.subscriptions.GetSubscription(ctx, t.userID)
	switch {
	case err == nil:
		if sub.IsPremium() {
			status = models.StatusPremium
		}
	case errors.Is(err, interfaces.ErrNotFound):
	default:
		return fmt.Errorf("failed to load subscription: %w", err)
	}

	left := 0
	if status == models.StatusFree {
		count, err := t.svc.clicks.CountClicks(ctx, t.userID, models.MonthPartition(t.svc.now()))
		if err != nil {
			return fmt.Errorf("failed to count clicks: %w", err)
		}
		left = max(t.svc.limit-count, 0)
	}

	t.mu.Lock()
	t.loaded = true
	t.status = status
	t.clicksLeft = left
	t.mu.Unlock()

	t.svc.logger.Debug().
		Str("user_id", t.userID).
		Str("status", string(status)).
		Int("clicks_left", left).
		Msg("Quota loaded")
	return nil
}

// Authorize admits a lookup of ticker, writing its click row first. The
// lock is held across the insert so concurrent selections cannot overspend.
func (t *Tracker) Authorize(ctx context.Context, ticker string) models.QuotaDecision {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.loaded {
		return models.QuotaDecision{Reason: ReasonNotLoaded}
	}
	if t.status == models.StatusFree && t.clicksLeft <= 0 {
		return models.QuotaDecision{Reason: ReasonExhausted}
	}

	now := t.svc.now().UTC()
	click := &models.TickerClick{
		ID:        uuid.NewString(),
		UserID:    t.userID,
		Ticker:    models.NormalizeTicker(ticker),
		MonthYear: models.MonthPartition(now),
		ClickedAt: now,
	}
	if err := t.svc.clicks.InsertClick(ctx, click); err != nil {
		t.svc.logger.Error().Str("user_id", t.userID).Str("ticker", click.Ticker).Err(err).Msg("Failed to record click")
		return models.QuotaDecision{Reason: ReasonFailed}
	}

	if t.status == models.StatusFree {
		t.clicksLeft--
	}
	return models.QuotaDecision{Allowed: true}
}

// State returns the client-visible quota. Unloaded trackers report FREE with 0 left.
func (t *Tracker) State() models.SubscriptionState {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status == models.StatusPremium {
		return models.SubscriptionState{Status: models.StatusPremium, ClicksLeft: null.Int{}}
	}
	return models.SubscriptionState{
		Status:     models.StatusFree,
		ClicksLeft: null.IntFrom(int64(t.clicksLeft)),
	}
}
