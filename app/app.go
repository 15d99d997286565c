package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
	"github.com/lmittmann/tint"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/atelierhq/atelier/internal/cache"
	"github.com/atelierhq/atelier/internal/catalog"
	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/crypto"
	"github.com/atelierhq/atelier/internal/db"
	"github.com/atelierhq/atelier/internal/email"
	"github.com/atelierhq/atelier/internal/handlers"
	"github.com/atelierhq/atelier/internal/logging"
	"github.com/atelierhq/atelier/internal/services"
	"github.com/atelierhq/atelier/internal/session"
)

type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	DB             *pgxpool.Pool
	CacheProvider  cache.Provider
	SessionManager *session.Manager
	Handlers       *handlers.Handlers

	sentryEnabled bool
	stopListener  context.CancelFunc
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	sentryEnabled, err := initSentry(cfg)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, sentryEnabled)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	database, err := db.Connect(startupCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	cacheProvider, err := cache.NewProvider(startupCtx, cache.Config{
		Provider:      cfg.CacheProvider,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	invalidator := cache.NewInvalidator(cacheProvider, redisClientOf(cacheProvider), logger.With("component", "cache_invalidator"))

	sessionStore, err := session.NewStore(startupCtx, session.Config{
		Provider:      cfg.SessionStoreProvider,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	sessionManager := session.NewManager(sessionStore, handlers.SecureCookiesFromConfig(cfg))

	encryptor, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	productStore := db.NewProductStore(database)
	pricingStore := db.NewPricingStore(database, productStore)
	inventoryStore := db.NewInventoryStore(database)
	orderStore := db.NewOrderStore(database, encryptor)

	if cfg.CatalogFile != "" {
		if err := seedCatalog(startupCtx, database, cfg.CatalogFile, logger); err != nil {
			closeSessionManager(logger, sessionManager)
			closeCacheProvider(logger, cacheProvider)
			database.Close()
			return nil, err
		}
	}

	cachedRules := services.NewCachedRuleRepository(pricingStore, cacheProvider, cfg.RuleCacheTTL, logger.With("component", "rule_cache"))

	pricingService := services.NewPricingService(
		productStore,
		cachedRules,
		cfg.PricingDebounce,
		cfg.PricingTimeout,
		logger.With("component", "pricing_service"),
	)
	productService := services.NewProductService(productStore, cachedRules, productStore)

	emailProvider, err := email.NewProvider(email.Config{
		Provider: cfg.EmailProvider,
		APIKey:   cfg.ResendAPIKey,
		From:     cfg.EmailFrom,
	})
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize email provider: %w", err)
	}
	orderEmailer := services.NewEmailOrderSender(emailProvider, cfg.StoreName, cfg.BaseURL)

	orderService := services.NewOrderService(
		productStore,
		orderStore,
		pricingService,
		cfg.Surcharge(),
		orderEmailer,
		logger.With("component", "order_service"),
	)
	inventoryService := services.NewInventoryService(inventoryStore, invalidator, logger.With("component", "inventory_service"))
	authService, err := services.NewAuthService(cfg, logger.With("component", "auth_service"))
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	h, err := handlers.New(handlers.Dependencies{
		Config:           cfg,
		DB:               database,
		PricingService:   pricingService,
		ProductService:   productService,
		OrderService:     orderService,
		InventoryService: inventoryService,
		AuthService:      authService,
		SessionManager:   sessionManager,
		Logger:           logger,
	})
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	listenerCtx, stopListener := context.WithCancel(context.Background())
	go invalidator.Listen(listenerCtx)

	return &App{
		Config:         cfg,
		Logger:         logger,
		DB:             database,
		CacheProvider:  cacheProvider,
		SessionManager: sessionManager,
		Handlers:       h,
		sentryEnabled:  sentryEnabled,
		stopListener:   stopListener,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.stopListener != nil {
		a.stopListener()
	}
	if a.SessionManager != nil {
		closeSessionManager(a.Logger, a.SessionManager)
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if a.sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}

func initSentry(cfg *config.Config) (bool, error) {
	if cfg.SentryDSN == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		EnableLogs:       true,
	})
	if err != nil {
		return false, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	return true, nil
}

func newLogger(cfg *config.Config, sentryEnabled bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var stdout slog.Handler
	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch format {
	case "json":
		stdout = slog.NewJSONHandler(os.Stdout, opts)
	default:
		stdout = tint.NewHandler(os.Stdout, &tint.Options{
			Level: cfg.LogLevel,
		})
	}

	if !sentryEnabled {
		return slog.New(stdout)
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())
	return slog.New(logging.MultiHandler(stdout, sentryHandler))
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, path string, logger *slog.Logger) error {
	parsed, err := catalog.NewParser().ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if err := catalog.NewValidator().Validate(parsed); err != nil {
		return fmt.Errorf("catalog file is invalid: %w", err)
	}
	return db.SeedCatalog(ctx, pool, parsed, logger.With("component", "catalog_seed"))
}

func redisClientOf(provider cache.Provider) *redis.Client {
	if rp, ok := provider.(*cache.RedisProvider); ok {
		return rp.Client()
	}
	return nil
}

func closeSessionManager(logger *slog.Logger, manager *session.Manager) {
	if manager == nil {
		return
	}
	if err := manager.Close(); err != nil && logger != nil {
		logger.Warn("failed to close session manager", "error", err)
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
