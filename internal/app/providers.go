package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	// Domains
	"github.com/ariachat/server/internal/domain/chat"
	"github.com/ariachat/server/internal/domain/engagement"
	"github.com/ariachat/server/internal/domain/entitlement"
	"github.com/ariachat/server/internal/domain/payment"
	"github.com/ariachat/server/internal/domain/pricing"
	"github.com/ariachat/server/internal/domain/quota"
	"github.com/ariachat/server/internal/domain/usage"

	// Inbound adapters
	ginadapter "github.com/ariachat/server/internal/adapter/inbound/gin"

	// Ports
	"github.com/ariachat/server/internal/port/inbound"
	"github.com/ariachat/server/internal/port/outbound"

	// Outbound adapters
	"github.com/ariachat/server/internal/adapter/outbound/aiprovider"
	"github.com/ariachat/server/internal/adapter/outbound/memory"
	"github.com/ariachat/server/internal/adapter/outbound/paymentprovider"
	"github.com/ariachat/server/internal/adapter/outbound/postgres"
	redisadapter "github.com/ariachat/server/internal/adapter/outbound/redis"
	"github.com/ariachat/server/internal/adapter/outbound/token"

	// Infrastructure
	"github.com/ariachat/server/internal/infra/config"
	"github.com/ariachat/server/internal/infra/database"
	"github.com/ariachat/server/internal/infra/events"
	"github.com/ariachat/server/internal/infra/httpclient"

	// Utils
	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/utils/clock"
	"github.com/ariachat/server/internal/utils/logger"
	"github.com/ariachat/server/internal/utils/metrics"
	"github.com/ariachat/server/internal/utils/middleware"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideZapLogger,
	ProvideDatabase,
	ProvideStorage,
	ProvideRedisClient,
	ProvideHTTPClient,
	ProvideClock,
	wire.Bind(new(outbound.ClockPort), new(*clock.System)),
	ProvideMetrics,
	ProvideAccountLocker,
	ProvideRateLimiter,
	ProvideIdempotencyStore,
	ProvideEventBus,
	wire.Bind(new(outbound.EventPublisherPort), new(*events.Bus)),
)

// ProvideZapLogger creates the process logger.
func ProvideZapLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = log.Sync() }, nil
}

// ProvideDatabase opens PostgreSQL. It returns nil when the in-memory store
// is configured.
func ProvideDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	if cfg.Database.Driver != config.DriverPostgres {
		log.Info("using in-memory store", zap.String("driver", cfg.Database.Driver))
		return nil, func() {}, nil
	}
	db, err := database.New(context.Background(), &cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	return db, func() {
		if err := database.Close(db); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}, nil
}

// Storage bundles the persistence ports of one backend.
type Storage struct {
	Accounts outbound.AccountDatabasePort
	Orders   outbound.OrderDatabasePort
	Webhooks outbound.WebhookEventDatabasePort
	Messages outbound.MessageDatabasePort
	Tx       outbound.TransactorPort
}

// ProvideStorage selects the gorm adapters when a database is open and the
// in-memory store otherwise.
func ProvideStorage(db *gorm.DB) *Storage {
	if db == nil {
		store := memory.NewStore()
		return &Storage{
			Accounts: memory.NewAccountRepository(store),
			Orders:   memory.NewOrderRepository(store),
			Webhooks: memory.NewWebhookEventRepository(store),
			Messages: memory.NewMessageRepository(store),
			Tx:       store,
		}
	}
	return &Storage{
		Accounts: postgres.NewAccountAdapter(db),
		Orders:   postgres.NewOrderAdapter(db),
		Webhooks: postgres.NewWebhookEventAdapter(db),
		Messages: postgres.NewMessageAdapter(db),
		Tx:       postgres.NewTransactor(db),
	}
}

// ProvideRedisClient connects to Redis. It returns nil when Redis is
// disabled or unreachable and nothing requires it.
func ProvideRedisClient(cfg *config.Config, log *zap.Logger) (goredis.UniversalClient, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redisadapter.NewClient(context.Background(), cfg.Redis)
	if err != nil {
		if cfg.Lock.Backend == config.LockBackendRedis {
			return nil, nil, fmt.Errorf("init redis: %w", err)
		}
		log.Warn("Redis connection failed, continuing without it", zap.Error(err))
		return nil, func() {}, nil
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideHTTPClient creates a shared HTTP client with connection pooling.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return httpclient.New(cfg.HTTPClient)
}

// ProvideClock creates the business clock.
func ProvideClock(cfg *config.Config) (*clock.System, error) {
	return clock.NewSystem(cfg.Clock.Timezone)
}

// ProvideMetrics creates the Prometheus collectors. Metrics are nil-safe, so
// a disabled configuration yields nil.
func ProvideMetrics(cfg *config.Config) *metrics.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.New(cfg.Metrics.Namespace)
}

// ProvideAccountLocker selects the per-account lock backend.
func ProvideAccountLocker(cfg *config.Config, redis goredis.UniversalClient, log *zap.Logger) outbound.AccountLockerPort {
	if cfg.Lock.Backend == config.LockBackendRedis && redis != nil {
		return redisadapter.NewAccountLocker(redis, cfg.Lock.TTL, cfg.Lock.RetryDelay, log)
	}
	return memory.NewKeyedLocker()
}

// ProvideRateLimiter creates a rate limiter. Rate limiting needs Redis.
func ProvideRateLimiter(cfg *config.Config, redis goredis.UniversalClient) outbound.RateLimiterPort {
	if !cfg.RateLimit.Enabled || redis == nil {
		return nil
	}
	return redisadapter.NewRateLimiter(redis)
}

// ProvideIdempotencyStore keeps replayable responses in Redis when
// available and in process memory otherwise.
func ProvideIdempotencyStore(redis goredis.UniversalClient) outbound.IdempotencyStorePort {
	if redis == nil {
		return memory.NewIdempotencyStore()
	}
	return redisadapter.NewIdempotencyStore(redis)
}

// ProvideEventBus creates the event bus and registers the observers.
func ProvideEventBus(log *zap.Logger, m *metrics.Metrics) *events.Bus {
	bus := events.NewBus(log)
	bus.Register(events.NewMetricsHandler(m))
	bus.Register(events.NewAuditHandler(log))
	return bus
}

// ===== Outbound Adapter Providers =====

// AdapterSet provides the provider-facing adapters.
var AdapterSet = wire.NewSet(
	ProvidePaymentRegistry,
	wire.Bind(new(outbound.PaymentProviderRegistryPort), new(*paymentprovider.Registry)),
	ProvideCompletion,
	ProvideTokenManager,
	ProvideAdminAuthorizer,
)

// ProvidePaymentRegistry registers every enabled payment provider.
func ProvidePaymentRegistry(cfg *config.Config, client *http.Client, log *zap.Logger) (*paymentprovider.Registry, error) {
	pc := cfg.Payment
	registry := paymentprovider.NewRegistry(pc.DefaultProvider)

	if pc.Razorpay.Enabled {
		registry.Register(paymentprovider.NewRazorpayProvider(client, paymentprovider.RazorpayConfig{
			BaseURL:       pc.Razorpay.BaseURL,
			KeyID:         pc.Razorpay.KeyID,
			KeySecret:     pc.Razorpay.KeySecret,
			WebhookSecret: pc.Razorpay.WebhookSecret,
		}))
	}

	if pc.Stripe.Enabled {
		registry.Register(paymentprovider.NewStripeProvider(client, paymentprovider.StripeConfig{
			APIKey:           pc.Stripe.SecretKey,
			PublishableKey:   pc.Stripe.PublishableKey,
			WebhookSecret:    pc.Stripe.WebhookSecret,
			WebhookTolerance: pc.Stripe.WebhookTolerance,
		}, log))
	}

	if pc.Alipay.Enabled {
		alipayProvider, err := paymentprovider.NewAlipayProvider(paymentprovider.AlipayConfig{
			AppID:           pc.Alipay.AppID,
			PrivateKey:      pc.Alipay.PrivateKey,
			AlipayPublicKey: pc.Alipay.AlipayPublicKey,
			IsProd:          pc.Alipay.IsProd,
			NotifyURL:       pc.Alipay.NotifyURL,
			ReturnURL:       pc.Alipay.ReturnURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init alipay: %w", err)
		}
		registry.Register(alipayProvider)
	}

	log.Info("payment providers registered",
		zap.Strings("providers", registry.List()),
		zap.String("default", registry.Default()),
	)
	return registry, nil
}

// ProvideCompletion creates the Gemini adapter behind a circuit breaker.
func ProvideCompletion(cfg *config.Config, client *http.Client, m *metrics.Metrics, log *zap.Logger) outbound.CompletionPort {
	// Completion calls get their own deadline on top of the shared transport.
	aiClient := *client
	if cfg.AI.Timeout > 0 {
		aiClient.Timeout = cfg.AI.Timeout
	}

	gemini := aiprovider.NewGeminiAdapter(&aiClient, aiprovider.GeminiConfig{
		BaseURL:         cfg.AI.BaseURL,
		APIKey:          cfg.AI.APIKey,
		Model:           cfg.AI.Model,
		MaxOutputTokens: cfg.AI.MaxOutputTokens,
	})

	breakerCfg := aiprovider.DefaultBreakerConfig()
	if cfg.AI.FailureThreshold > 0 {
		breakerCfg.ConsecutiveFailures = cfg.AI.FailureThreshold
	}
	if cfg.AI.CircuitTimeout > 0 {
		breakerCfg.Timeout = cfg.AI.CircuitTimeout
	}
	if cfg.AI.CircuitInterval > 0 {
		breakerCfg.Interval = cfg.AI.CircuitInterval
	}

	var observer aiprovider.Observer
	if m != nil {
		observer = m
	}
	return aiprovider.NewBreakerCompletion("gemini", gemini, breakerCfg, observer, log)
}

// ProvideTokenManager creates the bearer token issuer and validator.
func ProvideTokenManager(cfg *config.Config) (outbound.TokenPort, error) {
	return token.NewJWTManager(token.JWTConfig{
		Secret:            cfg.Auth.JWTSecret,
		Issuer:            cfg.Auth.Issuer,
		AccessTokenExpiry: cfg.Auth.AccessTokenExpiry,
	})
}

// ProvideAdminAuthorizer creates the operator allow-list.
func ProvideAdminAuthorizer(cfg *config.Config) *middleware.AdminAuthorizer {
	return middleware.NewAdminAuthorizer(cfg.AccessControl.AdminEmails, cfg.AccessControl.AdminAccountIDs)
}

// ===== Domain Providers =====

// DomainSet provides the engine's domains.
var DomainSet = wire.NewSet(
	ProvideQuotaTracker,
	ProvideEntitlementManager,
	ProvidePricingEngine,
	ProvideEngagementTracker,
	ProvideUsageDomain,
	wire.Bind(new(inbound.UsageDomain), new(*usage.Domain)),
	ProvidePaymentDomain,
	wire.Bind(new(inbound.PaymentDomain), new(*payment.Domain)),
	ProvideChatDomain,
	wire.Bind(new(inbound.ChatDomain), new(*chat.Domain)),
)

// ProvideQuotaTracker creates the daily allowance tracker.
func ProvideQuotaTracker(cfg *config.Config, clk outbound.ClockPort) *quota.Tracker {
	return quota.NewTracker(cfg.Quota.DailySeconds, clk.Location())
}

// ProvideEntitlementManager creates the premium grant manager.
func ProvideEntitlementManager(cfg *config.Config) (*entitlement.Manager, error) {
	policy, err := entitlement.ParseStackingPolicy(cfg.Entitlement.Stacking)
	if err != nil {
		return nil, err
	}
	return entitlement.NewManager(policy), nil
}

// ProvidePricingEngine creates the cohort pricing engine.
func ProvidePricingEngine(cfg *config.Config) *pricing.Engine {
	pc := cfg.Pricing
	return pricing.NewEngine(pricing.Config{
		CohortThreshold: pc.CohortThreshold,
		EarlyBird:       model.PriceTier{Amount: pc.EarlyBirdAmount, IsEarlyBird: true, DurationMonths: pc.EarlyBirdDurationMonths},
		Standard:        model.PriceTier{Amount: pc.StandardAmount, DurationMonths: pc.StandardDurationMonths},
	})
}

// ProvideEngagementTracker creates the XP and streak tracker.
func ProvideEngagementTracker(cfg *config.Config, clk outbound.ClockPort) *engagement.Tracker {
	return engagement.NewTracker(engagement.Config{
		BaseXPPerEvent:    cfg.Engagement.BaseXPPerEvent,
		SecondsPerBonusXP: cfg.Engagement.SecondsPerBonusXP,
	}, engagement.LinearLevelPolicy, clk.Location())
}

// ProvideUsageDomain creates the usage engine.
func ProvideUsageDomain(
	cfg *config.Config,
	storage *Storage,
	locker outbound.AccountLockerPort,
	clk outbound.ClockPort,
	publisher outbound.EventPublisherPort,
	quotaTracker *quota.Tracker,
	entitlementManager *entitlement.Manager,
	pricingEngine *pricing.Engine,
	engagementTracker *engagement.Tracker,
	log *zap.Logger,
) (*usage.Domain, error) {
	mode, err := usage.ParseAdmissionMode(cfg.Admission.Mode)
	if err != nil {
		return nil, err
	}
	return usage.NewUsageDomain(
		storage.Accounts,
		storage.Orders,
		locker,
		clk,
		publisher,
		quotaTracker,
		entitlementManager,
		pricingEngine,
		engagementTracker,
		usage.Config{
			AdmissionMode:   mode,
			EstimateSeconds: cfg.Admission.EstimateSeconds,
			MaxRetries:      cfg.Admission.MaxRetries,
			Currency:        cfg.Payment.Currency,
		},
		log,
	), nil
}

// ProvidePaymentDomain creates the order reconciliation domain.
func ProvidePaymentDomain(
	cfg *config.Config,
	storage *Storage,
	locker outbound.AccountLockerPort,
	providers outbound.PaymentProviderRegistryPort,
	clk outbound.ClockPort,
	publisher outbound.EventPublisherPort,
	pricingEngine *pricing.Engine,
	entitlementManager *entitlement.Manager,
	log *zap.Logger,
) *payment.Domain {
	return payment.NewPaymentDomain(
		storage.Accounts,
		storage.Orders,
		storage.Webhooks,
		storage.Tx,
		locker,
		providers,
		clk,
		publisher,
		pricingEngine,
		entitlementManager,
		payment.Config{
			Currency:    cfg.Payment.Currency,
			Description: cfg.Payment.Description,
			MaxRetries:  cfg.Admission.MaxRetries,
		},
		log,
	)
}

// ProvideChatDomain creates the metered chat domain.
func ProvideChatDomain(
	cfg *config.Config,
	storage *Storage,
	usageDomain inbound.UsageDomain,
	completion outbound.CompletionPort,
	clk outbound.ClockPort,
	m *metrics.Metrics,
	log *zap.Logger,
) *chat.Domain {
	var recorder chat.CacheRecorder
	if m != nil {
		recorder = m
	}
	return chat.NewChatDomain(usageDomain, completion, storage.Messages, clk, recorder, chat.Config{
		SystemPrompt:    cfg.Chat.SystemPrompt,
		LimitMessage:    cfg.Chat.LimitMessage,
		CacheCapacity:   cfg.Chat.CacheCapacity,
		MaxMessageRunes: cfg.Chat.MaxMessageRunes,
		EstimateSeconds: cfg.Admission.EstimateSeconds,
	}, log)
}

// ===== HTTP Providers =====

// HTTPSet provides the HTTP surface.
var HTTPSet = wire.NewSet(
	ProvideHandlers,
	NewApp,
)

// ProvideHandlers creates the HTTP handlers.
func ProvideHandlers(
	usageDomain inbound.UsageDomain,
	paymentDomain inbound.PaymentDomain,
	chatDomain inbound.ChatDomain,
	tokens outbound.TokenPort,
	admins *middleware.AdminAuthorizer,
	log *zap.Logger,
) *ginadapter.Handlers {
	return ginadapter.NewHandlers(usageDomain, paymentDomain, chatDomain, tokens, admins, log)
}

// AppSet is the full provider graph.
var AppSet = wire.NewSet(
	InfraSet,
	AdapterSet,
	DomainSet,
	HTTPSet,
)
