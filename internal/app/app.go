package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/erickalfaro/my-dashboard/internal/clients/alpaca"
	"github.com/erickalfaro/my-dashboard/internal/clients/gemini"
	"github.com/erickalfaro/my-dashboard/internal/clients/polygon"
	"github.com/erickalfaro/my-dashboard/internal/clients/stripe"
	"github.com/erickalfaro/my-dashboard/internal/clients/supabase"
	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/services/aggregate"
	"github.com/erickalfaro/my-dashboard/internal/services/billing"
	"github.com/erickalfaro/my-dashboard/internal/services/live"
	"github.com/erickalfaro/my-dashboard/internal/services/market"
	"github.com/erickalfaro/my-dashboard/internal/services/posts"
	"github.com/erickalfaro/my-dashboard/internal/services/quota"
	"github.com/erickalfaro/my-dashboard/internal/services/session"
	"github.com/erickalfaro/my-dashboard/internal/services/summary"
	"github.com/erickalfaro/my-dashboard/internal/services/tape"
	"github.com/erickalfaro/my-dashboard/internal/storage"
)

// App holds all initialized services, clients and storage.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager

	// Clients are nil when their credentials are not configured.
	ReferenceClient  interfaces.ReferenceDataClient
	MarketDataClient interfaces.MarketDataClient
	CompletionClient interfaces.CompletionClient
	PaymentClient    interfaces.PaymentClient
	AuthClient       interfaces.AuthClient

	Session          *session.Provider
	QuotaService     interfaces.QuotaService
	MarketService    interfaces.MarketService
	PostsService     interfaces.PostsService
	AggregateService interfaces.AggregateService
	SummaryService   interfaces.SummaryService
	TapeService      interfaces.TapeService
	BillingService   interfaces.BillingService
	LiveHub          *live.Hub
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes the App. configPath may be
// empty: DASHBOARD_CONFIG, then dashboard.toml beside the binary, then
// config/dashboard.toml are tried.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	binDir := getBinaryDir()
	if configPath == "" {
		configPath = os.Getenv("DASHBOARD_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "dashboard.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/dashboard.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative file paths to the binary directory
	if p := config.Storage.SQLite.Path; p != "" && p != ":memory:" && !filepath.IsAbs(p) {
		config.Storage.SQLite.Path = filepath.Join(binDir, p)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	return NewAppWithConfig(context.Background(), config)
}

// NewAppWithConfig initializes the App from an already loaded config.
func NewAppWithConfig(ctx context.Context, config *common.Config) (*App, error) {
	startupStart := time.Now()

	logger, err := common.NewLoggerFromConfig(config.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	storageManager, err := storage.NewStorageManager(ctx, logger, &config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	for _, name := range config.ValidateRequired() {
		logger.Warn().Str("setting", name).Msg("Configuration value missing - dependent endpoints will return errors")
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		Storage:     storageManager,
		StartupTime: startupStart,
	}
	a.initClients(ctx)
	a.initServices()

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// initClients builds each vendor client whose credentials are present.
// Interface fields stay nil otherwise so services can report ErrNotConfigured.
func (a *App) initClients(ctx context.Context) {
	cfg := a.Config
	logger := a.Logger

	if c, err := polygon.NewClient(cfg.Clients.Polygon.APIKey, cfg.Clients.Polygon.GetTimeout(),
		polygon.WithLogger(logger),
	); err == nil {
		a.ReferenceClient = c
	} else {
		logNotConfigured(logger, "Reference data", err)
	}

	if c, err := alpaca.NewClient(cfg.Clients.Alpaca.KeyID, cfg.Clients.Alpaca.SecretKey, cfg.Clients.Alpaca.BaseURL,
		alpaca.WithLogger(logger),
		alpaca.WithBarLimit(cfg.Clients.Alpaca.BarLimit),
		alpaca.WithFeed(cfg.Clients.Alpaca.Feed),
	); err == nil {
		a.MarketDataClient = c
	} else {
		logNotConfigured(logger, "Market data", err)
	}

	if c, err := gemini.NewClient(ctx, cfg.Clients.Gemini.APIKey,
		gemini.WithLogger(logger),
		gemini.WithModel(cfg.Clients.Gemini.Model),
	); err == nil {
		a.CompletionClient = c
	} else {
		logNotConfigured(logger, "Gemini", err)
	}

	if cfg.Clients.Stripe.SecretKey != "" || cfg.Clients.Stripe.WebhookSecret != "" {
		a.PaymentClient = stripe.NewClient(cfg.Clients.Stripe.SecretKey, cfg.Clients.Stripe.WebhookSecret,
			stripe.WithLogger(logger),
		)
	} else {
		logNotConfigured(logger, "Stripe", interfaces.ErrNotConfigured)
	}

	if c, err := supabase.NewClient(cfg.Auth.SupabaseURL, cfg.Auth.AnonKey,
		supabase.WithLogger(logger),
		supabase.WithRateLimit(cfg.Auth.RateLimit),
		supabase.WithTimeout(cfg.Auth.GetTimeout()),
	); err == nil {
		a.AuthClient = c
	} else {
		logNotConfigured(logger, "Supabase auth", err)
	}
}

func logNotConfigured(logger *common.Logger, name string, err error) {
	if errors.Is(err, interfaces.ErrNotConfigured) {
		logger.Warn().Msgf("%s client not configured - related features will be unavailable", name)
		return
	}
	logger.Warn().Err(err).Msgf("Failed to initialize %s client", name)
}

func (a *App) initServices() {
	cfg := a.Config
	logger := a.Logger
	sm := a.Storage

	a.Session = session.NewProvider(a.AuthClient, cfg.Auth.JWTSecret, logger)
	a.QuotaService = quota.NewService(sm.SubscriptionStore(), sm.ClickStore(), cfg.Quota.FreeMonthlyClicks, logger)
	a.MarketService = market.NewService(a.ReferenceClient, a.MarketDataClient, cfg.Clients.Alpaca.GetLookback(), logger)
	a.PostsService = posts.NewService(sm.PostStore(), logger)
	a.AggregateService = aggregate.NewFetcher(a.MarketService, a.PostsService, cfg.Quota.GetLookupTimeout(), logger)
	a.SummaryService = summary.NewGenerator(a.CompletionClient, logger)
	a.TapeService = tape.NewService(sm.TapeStore(), logger)
	a.BillingService = billing.NewService(a.PaymentClient, sm.SubscriptionStore(), cfg.Clients.Stripe.PriceID, logger)
	a.LiveHub = live.NewHub(live.Deps{
		Quota:          a.QuotaService,
		Aggregate:      a.AggregateService,
		Summary:        a.SummaryService,
		Tape:           a.TapeService,
		DebounceWindow: cfg.Quota.GetDebounceWindow(),
	}, logger)
}

// Close releases all resources held by the App.
// Shutdown order: live sessions, session provider, storage.
func (a *App) Close() {
	if a.LiveHub != nil {
		a.LiveHub.Stop()
		a.LiveHub = nil
	}
	if a.Session != nil {
		a.Session.Close()
		a.Session = nil
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Storage = nil
	}
}
