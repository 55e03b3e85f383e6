package interfaces

import (
	"context"
	"errors"

	"github.com/erickalfaro/my-dashboard/internal/models"
)

// ErrNotFound is returned by stores and clients when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// SubscriptionStore persists user_subscriptions rows.
type SubscriptionStore interface {
	// GetSubscription returns ErrNotFound when the user has no row.
	GetSubscription(ctx context.Context, userID string) (*models.UserSubscription, error)
	// FindByCustomerID returns ErrNotFound when no row carries the customer id.
	FindByCustomerID(ctx context.Context, customerID string) (*models.UserSubscription, error)
	// SetCustomerID upserts the row for userID with the processor customer id.
	SetCustomerID(ctx context.Context, userID, customerID string) error
	// UpdateStatus sets status and subscription id for userID.
	UpdateStatus(ctx context.Context, userID string, status models.SubscriptionStatus, subscriptionID string) error
	// DowngradeBySubscriptionID sets FREE and clears the subscription id on
	// rows carrying subscriptionID. It returns the number of rows changed.
	DowngradeBySubscriptionID(ctx context.Context, subscriptionID string) (int64, error)
}

// ClickStore persists the ticker click log.
type ClickStore interface {
	InsertClick(ctx context.Context, click *models.TickerClick) error
	// CountClicks counts rows for userID in the "YYYY-MM" partition.
	CountClicks(ctx context.Context, userID, monthYear string) (int, error)
}

// PostStore reads the per-cashtag post blobs.
type PostStore interface {
	// GetPosts returns the posts for a cashtag in stored order, or an empty
	// slice when the cashtag has no row.
	GetPosts(ctx context.Context, cashtag string) ([]models.PostRecord, error)
	SavePosts(ctx context.Context, cashtag string, posts []models.PostRecord) error
}

// TapeStore reads the ticker-tape snapshot.
type TapeStore interface {
	ListTape(ctx context.Context) ([]models.TickerTapeItem, error)
	// ReplaceTape swaps the whole snapshot.
	ReplaceTape(ctx context.Context, items []models.TickerTapeItem) error
}

// StorageManager gives access to every store over one backing database.
type StorageManager interface {
	SubscriptionStore() SubscriptionStore
	ClickStore() ClickStore
	PostStore() PostStore
	TapeStore() TapeStore
	Ping(ctx context.Context) error
	Close() error
}
