package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/guregu/null/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erickalfaro/my-dashboard/internal/models"
)

type subscriptionStore struct {
	db *gorm.DB
}

func toSubscription(r *SubscriptionRecord) *models.UserSubscription {
	status := models.SubscriptionStatus(r.SubscriptionStatus)
	if status == "" {
		status = models.StatusFree
	}
	return &models.UserSubscription{
		UserID:               r.UserID,
		StripeCustomerID:     r.StripeCustomerID.String,
		SubscriptionStatus:   status,
		StripeSubscriptionID: r.StripeSubscriptionID.String,
		UpdatedAt:            r.UpdatedAt,
	}
}

func (s *subscriptionStore) GetSubscription(ctx context.Context, userID string) (*models.UserSubscription, error) {
	var rec SubscriptionRecord
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error; err != nil {
		return nil, notFound(err)
	}
	return toSubscription(&rec), nil
}

func (s *subscriptionStore) FindByCustomerID(ctx context.Context, customerID string) (*models.UserSubscription, error) {
	var rec SubscriptionRecord
	if err := s.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&rec).Error; err != nil {
		return nil, notFound(err)
	}
	return toSubscription(&rec), nil
}

func (s *subscriptionStore) SetCustomerID(ctx context.Context, userID, customerID string) error {
	rec := SubscriptionRecord{
		UserID:             userID,
		StripeCustomerID:   null.StringFrom(customerID),
		SubscriptionStatus: string(models.StatusFree),
		UpdatedAt:          time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"stripe_customer_id", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("upsert customer id: %w", err)
	}
	return nil
}

func (s *subscriptionStore) UpdateStatus(ctx context.Context, userID string, status models.SubscriptionStatus, subscriptionID string) error {
	tx := s.db.WithContext(ctx).Model(&SubscriptionRecord{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"subscription_status":    string(status),
			"stripe_subscription_id": null.NewString(subscriptionID, subscriptionID != ""),
			"updated_at":             time.Now().UTC(),
		})
	if tx.Error != nil {
		return fmt.Errorf("update subscription status: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("update subscription status for %s: %w", userID, notFound(gorm.ErrRecordNotFound))
	}
	return nil
}

func (s *subscriptionStore) DowngradeBySubscriptionID(ctx context.Context, subscriptionID string) (int64, error) {
	tx := s.db.WithContext(ctx).Model(&SubscriptionRecord{}).
		Where("stripe_subscription_id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"subscription_status":    string(models.StatusFree),
			"stripe_subscription_id": gorm.Expr("NULL"),
			"updated_at":             time.Now().UTC(),
		})
	if tx.Error != nil {
		return 0, fmt.Errorf("downgrade subscription: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}
