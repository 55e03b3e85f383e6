package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/guregu/null/v6"

	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

type subscriptionStore struct {
	db *sql.DB
}

const selectSubscription = `SELECT user_id, stripe_customer_id, subscription_status, stripe_subscription_id, updated_at FROM user_subscriptions`

func scanSubscription(row *sql.Row) (*models.UserSubscription, error) {
	var (
		sub        models.UserSubscription
		customerID null.String
		subID      null.String
		status     string
	)
	err := row.Scan(&sub.UserID, &customerID, &status, &subID, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	sub.StripeCustomerID = customerID.String
	sub.StripeSubscriptionID = subID.String
	sub.SubscriptionStatus = models.SubscriptionStatus(status)
	if sub.SubscriptionStatus == "" {
		sub.SubscriptionStatus = models.StatusFree
	}
	return &sub, nil
}

func (s *subscriptionStore) GetSubscription(ctx context.Context, userID string) (*models.UserSubscription, error) {
	return scanSubscription(s.db.QueryRowContext(ctx, selectSubscription+` WHERE user_id = ?`, userID))
}

func (s *subscriptionStore) FindByCustomerID(ctx context.Context, customerID string) (*models.UserSubscription, error) {
	return scanSubscription(s.db.QueryRowContext(ctx, selectSubscription+` WHERE stripe_customer_id = ? LIMIT 1`, customerID))
}

func (s *subscriptionStore) SetCustomerID(ctx context.Context, userID, customerID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_subscriptions (user_id, stripe_customer_id, subscription_status, updated_at)
		VALUES (?, ?, 'FREE', ?)
		ON CONFLICT(user_id) DO UPDATE SET
			stripe_customer_id = excluded.stripe_customer_id,
			updated_at = excluded.updated_at`,
		userID, customerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert customer id: %w", err)
	}
	return nil
}

func (s *subscriptionStore) UpdateStatus(ctx context.Context, userID string, status models.SubscriptionStatus, subscriptionID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_subscriptions
		SET subscription_status = ?, stripe_subscription_id = ?, updated_at = ?
		WHERE user_id = ?`,
		string(status), null.NewString(subscriptionID, subscriptionID != ""), time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update subscription status for %s: %w", userID, interfaces.ErrNotFound)
	}
	return nil
}

func (s *subscriptionStore) DowngradeBySubscriptionID(ctx context.Context, subscriptionID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_subscriptions
		SET subscription_status = 'FREE', stripe_subscription_id = NULL, updated_at = ?
		WHERE stripe_subscription_id = ?`,
		time.Now().UTC(), subscriptionID)
	if err != nil {
		return 0, fmt.Errorf("downgrade subscription: %w", err)
	}
	return res.RowsAffected()
}
