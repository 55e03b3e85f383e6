// Package postgres implements the dashboard stores on Postgres through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
)

// Store implements interfaces.StorageManager on one Postgres database.
type Store struct {
	db     *gorm.DB
	logger *common.Logger

	subscriptions *subscriptionStore
	clicks        *clickStore
	posts         *postStore
	tape          *tapeStore
}

var _ interfaces.StorageManager = (*Store)(nil)

// NewStore connects to dsn, optionally migrating the schema.
func NewStore(logger *common.Logger, dsn string, autoMigrate bool) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s := newStore(db, logger)
	if autoMigrate {
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, err
		}
	}

	logger.Info().Bool("auto_migrate", autoMigrate).Msg("Postgres store initialized")
	return s, nil
}

func newStore(db *gorm.DB, logger *common.Logger) *Store {
	return &Store{
		db:            db,
		logger:        logger,
		subscriptions: &subscriptionStore{db: db},
		clicks:        &clickStore{db: db},
		posts:         &postStore{db: db},
		tape:          &tapeStore{db: db},
	}
}

// Migrate creates or updates the owned tables. The posts relation is often a
// view maintained elsewhere, so it is only created when absent.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&SubscriptionRecord{}, &ClickRecord{}, &TapeRecord{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if !s.db.Migrator().HasTable(&PostsRecord{}) {
		if err := s.db.Migrator().CreateTable(&PostsRecord{}); err != nil {
			return fmt.Errorf("create posts table: %w", err)
		}
	}
	return nil
}

func (s *Store) SubscriptionStore() interfaces.SubscriptionStore { return s.subscriptions }
func (s *Store) ClickStore() interfaces.ClickStore               { return s.clicks }
func (s *Store) PostStore() interfaces.PostStore                 { return s.posts }
func (s *Store) TapeStore() interfaces.TapeStore                 { return s.tape }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return interfaces.ErrNotFound
	}
	return err
}
