package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/thrivebrands/beaconiq/internal/adapters/cache"
	eventadapter "github.com/thrivebrands/beaconiq/internal/adapters/events"
	genaiadapter "github.com/thrivebrands/beaconiq/internal/adapters/genai"
	grpcadapter "github.com/thrivebrands/beaconiq/internal/adapters/grpc"
	httpadapter "github.com/thrivebrands/beaconiq/internal/adapters/http"
	"github.com/thrivebrands/beaconiq/internal/adapters/memory"
	mongoadapter "github.com/thrivebrands/beaconiq/internal/adapters/mongo"
	"github.com/thrivebrands/beaconiq/internal/adapters/postgres"
	"github.com/thrivebrands/beaconiq/internal/adapters/security"
	"github.com/thrivebrands/beaconiq/internal/adapters/upstream"
	"github.com/thrivebrands/beaconiq/internal/application"
	"github.com/thrivebrands/beaconiq/internal/domain"
	"github.com/thrivebrands/beaconiq/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	service    *application.Service
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	outbox     *eventadapter.OutboxWorker
	consumer   *eventadapter.ConsumerWorker
	closers    []func(context.Context)
}

// NewRuntime connects every backing store and assembles the service. On error
// anything already opened is closed again.
func NewRuntime(ctx context.Context, configPath string) (_ *Runtime, err error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).
		With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	logger.Info("bootstrapping beaconiq", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	r := &Runtime{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			r.cleanup(context.Background())
		}
	}()

	shutdownTracing, err := setupTracing(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	r.closers = append(r.closers, func(ctx context.Context) { _ = shutdownTracing(ctx) })

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}
	r.closers = append(r.closers, func(context.Context) { _ = sqlDB.Close() })
	if err := postgres.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	mongoClient, err := mongoadapter.Connect(ctx, cfg.MongoURL)
	if err != nil {
		return nil, err
	}
	r.closers = append(r.closers, func(ctx context.Context) { _ = mongoClient.Disconnect(ctx) })
	mongoDB := mongoClient.Database(cfg.MongoDatabase)
	if err := mongoadapter.EnsureIndexes(ctx, mongoDB); err != nil {
		return nil, fmt.Errorf("ensure mongo indexes: %w", err)
	}

	var (
		analyticsCache ports.AnalyticsCache = memory.NewAnalyticsCache()
		lockouts       ports.LockoutStore   = memory.NewLockoutStore()
	)
	if cfg.RedisURL != "" {
		redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		r.closers = append(r.closers, func(context.Context) { _ = redisClient.Close() })
		analyticsCache = cacheadapter.NewRedisAnalyticsCache(redisClient)
		lockouts = cacheadapter.NewRedisLockoutStore(redisClient)
	} else {
		logger.Warn("REDIS_URL not set, using process-local analytics cache and lockouts")
	}

	signer, err := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("init jwt signer: %w", err)
	}

	deps := application.Dependencies{
		Config: application.Config{
			ServiceName:       cfg.ServiceName,
			TokenTTL:          cfg.TokenTTL,
			LockoutThreshold:  cfg.LockoutThreshold,
			LockoutWindow:     cfg.LockoutWindow,
			AnalyticsCacheTTL: cfg.AnalyticsCacheTTL,
			ChatHistoryLimit:  cfg.ChatHistoryLimit,
			RevealInterval:    cfg.RevealInterval,
			IdempotencyTTL:    cfg.IdempotencyTTL,
		},
		AnalyticsCache: analyticsCache,
		Lockouts:       lockouts,
		Tokens:         signer,
		Hasher:         security.NewBcryptHasher(cfg.BcryptCost),
	}
	pgRepos := postgres.NewRepositories(db)
	deps.Users = pgRepos.Users
	deps.Campaigns = pgRepos.Campaigns
	deps.Mutations = pgRepos.Mutations
	deps.Outbox = pgRepos.Outbox
	mongoRepos := mongoadapter.NewRepositories(mongoDB)
	deps.Goals = mongoRepos.Goals
	deps.GoalPlans = mongoRepos.GoalPlans
	deps.Transcripts = mongoRepos.Transcripts

	if err := r.wireUpstream(ctx, &deps); err != nil {
		return nil, err
	}

	r.service = application.NewService(deps)
	if err := r.seedAdmin(ctx); err != nil {
		return nil, err
	}

	pingTimeout := 2 * time.Second
	handler := httpadapter.NewHandler(r.service, httpadapter.WithReadiness(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := mongoClient.Ping(ctx, nil); err != nil {
			return fmt.Errorf("mongo: %w", err)
		}
		return nil
	}))
	r.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler, cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.grpcServer = grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(r.grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	grpcadapter.Register(r.grpcServer, grpcadapter.NewBoardInternalServer(r.service))

	if err := r.wireEvents(deps.Outbox); err != nil {
		return nil, err
	}
	return r, nil
}

// wireUpstream picks the analytics, recommendation, chat and goal generation
// backends. Missing upstream URLs leave the matching feature degraded.
func (r *Runtime) wireUpstream(ctx context.Context, deps *application.Dependencies) error {
	cfg := r.cfg
	clientCfg := func(baseURL string) upstream.Config {
		return upstream.Config{BaseURL: baseURL, Token: cfg.UpstreamToken, Timeout: cfg.UpstreamTimeout}
	}

	if cfg.AnalyticsURL != "" {
		analytics, err := upstream.NewAnalyticsClient(clientCfg(cfg.AnalyticsURL))
		if err != nil {
			return fmt.Errorf("analytics client: %w", err)
		}
		deps.Analytics = analytics
	}
	recURL := cfg.RecommendationsURL
	if recURL == "" {
		recURL = cfg.AnalyticsURL
	}
	if recURL != "" {
		recs, err := upstream.NewRecommendationClient(clientCfg(recURL))
		if err != nil {
			return fmt.Errorf("recommendation client: %w", err)
		}
		deps.Recommendations = recs
	}

	var gemini *genaiadapter.Client
	if cfg.GeminiAPIKey != "" {
		client, err := genaiadapter.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		gemini = client
	}

	switch {
	case cfg.InsightsURL != "":
		insights, err := upstream.NewInsightsClient(clientCfg(cfg.InsightsURL))
		if err != nil {
			return fmt.Errorf("insights client: %w", err)
		}
		deps.ChatModel = insights
	case gemini != nil:
		deps.ChatModel = genaiadapter.NewChatModel(gemini)
	default:
		r.logger.Warn("no chat backend configured, chat replies will degrade")
	}

	if gemini != nil {
		deps.GoalGenerator = genaiadapter.NewGoalGenerator(gemini)
	} else {
		deps.GoalGenerator = genaiadapter.TemplateGoalGenerator{}
	}
	return nil
}

func (r *Runtime) wireEvents(outbox ports.OutboxRepository) error {
	cfg := r.cfg
	var publisher ports.EventPublisher = eventadapter.NewLoggingPublisher(r.logger)
	var consumer eventadapter.Consumer = eventadapter.NewNoopConsumer()

	if len(cfg.KafkaBrokers) > 0 {
		topics := make(map[string]string)
		for _, eventType := range application.EventTypes() {
			topics[eventType] = cfg.KafkaTopic
		}
		kafkaPublisher, err := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, topics)
		if err != nil {
			return fmt.Errorf("kafka publisher: %w", err)
		}
		r.closers = append(r.closers, func(context.Context) { _ = kafkaPublisher.Close() })
		publisher = kafkaPublisher

		kafkaConsumer, err := eventadapter.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, []string{cfg.KafkaSyncTopic})
		if err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
		r.closers = append(r.closers, func(context.Context) { _ = kafkaConsumer.Close() })
		consumer = kafkaConsumer
	}

	r.outbox = eventadapter.NewOutboxWorker(r.logger, outbox, publisher, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	r.consumer = eventadapter.NewConsumerWorker(r.logger, consumer, r.service, cfg.ConsumerPollInterval)
	return nil
}

func (r *Runtime) seedAdmin(ctx context.Context) error {
	if r.cfg.SeedAdminEmail == "" || r.cfg.SeedAdminPassword == "" {
		return nil
	}
	created, err := r.service.SeedUser(ctx, application.SeedUserInput{
		Email:      r.cfg.SeedAdminEmail,
		Password:   r.cfg.SeedAdminPassword,
		Name:       "Data Admin",
		Role:       domain.RoleAdmin,
		Department: "Analytics",
	})
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	if created {
		r.logger.Info("seeded admin user", "email", r.cfg.SeedAdminEmail)
	}
	return nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", r.cfg.GRPCPort))
	if err != nil {
		r.cleanup(context.Background())
		return fmt.Errorf("listen gRPC: %w", err)
	}
	r.grpcLis = lis

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		r.logger.Error("server failure", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanup(shutdownCtx)
	return runErr
}

// RunWorker runs the outbox publisher and the analytics sync consumer until
// either fails or the process is signalled.
func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("worker started")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.outbox.Run(gctx) })
	g.Go(func() error { return r.consumer.Run(gctx) })
	err := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r.cleanup(shutdownCtx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (r *Runtime) cleanup(ctx context.Context) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i](ctx)
	}
	r.closers = nil
}
