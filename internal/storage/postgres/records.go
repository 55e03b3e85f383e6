package postgres

import (
	"time"

	"github.com/guregu/null/v6"
)

// SubscriptionRecord maps user_subscriptions.
type SubscriptionRecord struct {
	UserID               string      `gorm:"column:user_id;type:text;primaryKey"`
	StripeCustomerID     null.String `gorm:"column:stripe_customer_id;type:text;index:idx_user_subscriptions_customer"`
	SubscriptionStatus   string      `gorm:"column:subscription_status;type:varchar(16);not null;default:'FREE'"`
	StripeSubscriptionID null.String `gorm:"column:stripe_subscription_id;type:text;index:idx_user_subscriptions_subscription"`
	UpdatedAt            time.Time   `gorm:"column:updated_at;not null"`
}

func (SubscriptionRecord) TableName() string { return "user_subscriptions" }

// ClickRecord maps ticker_clicks.
type ClickRecord struct {
	ID        string    `gorm:"column:id;type:text;primaryKey"`
	UserID    string    `gorm:"column:user_id;type:text;not null;index:idx_ticker_clicks_user_month"`
	Ticker    string    `gorm:"column:ticker;type:text;not null"`
	MonthYear string    `gorm:"column:month_year;type:varchar(7);not null;index:idx_ticker_clicks_user_month"`
	ClickedAt time.Time `gorm:"column:clicked_at;not null"`
}

func (ClickRecord) TableName() string { return "ticker_clicks" }

// PostsRecord maps the per-cashtag post blobs.
type PostsRecord struct {
	Cashtag    string `gorm:"column:cashtag;type:text;primaryKey"`
	JSONResult []byte `gorm:"column:json_result;type:jsonb"`
}

func (PostsRecord) TableName() string { return "query_bot_view_json" }

// TapeRecord maps ticker_tape.
type TapeRecord struct {
	ID          int        `gorm:"column:id;primaryKey;autoIncrement:false"`
	Cashtag     string     `gorm:"column:cashtag;type:text;not null"`
	PrevOpen    null.Float `gorm:"column:prev_open;type:numeric"`
	PrevEOD     null.Float `gorm:"column:prev_eod;type:numeric"`
	LatestPrice null.Float `gorm:"column:latest_price;type:numeric"`
	Chng        null.Float `gorm:"column:chng;type:numeric"`
	Trend       []byte     `gorm:"column:trend;type:jsonb"`
}

func (TapeRecord) TableName() string { return "ticker_tape" }
