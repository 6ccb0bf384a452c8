package application

import (
	"time"

	"github.com/thrivebrands/beaconiq/internal/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Config struct {
	ServiceName       string
	TokenTTL          time.Duration
	LockoutThreshold  int
	LockoutWindow     time.Duration
	AnalyticsCacheTTL time.Duration
	ChatHistoryLimit  int
	RevealInterval    time.Duration
	IdempotencyTTL    time.Duration
}

// Actor is the authenticated caller of a use-case.
type Actor struct {
	UserID         string
	Email          string
	Role           string
	Department     string
	IdempotencyKey string
}

type Dependencies struct {
	Config          Config
	Users           ports.UserRepository
	Campaigns       ports.CampaignRepository
	Mutations       ports.MutationRepository
	Goals           ports.GoalRepository
	GoalPlans       ports.GoalPlanRepository
	Transcripts     ports.TranscriptRepository
	Outbox          ports.OutboxRepository
	Analytics       ports.AnalyticsSource
	Recommendations ports.RecommendationSource
	ChatModel       ports.ChatModel
	GoalGenerator   ports.GoalGenerator
	AnalyticsCache  ports.AnalyticsCache
	Lockouts        ports.LockoutStore
	Tokens          ports.TokenSigner
	Hasher          ports.PasswordHasher
}

type Service struct {
	cfg             Config
	users           ports.UserRepository
	goals           ports.GoalRepository
	goalPlans       ports.GoalPlanRepository
	transcripts     ports.TranscriptRepository
	outbox          ports.OutboxRepository
	analytics       ports.AnalyticsSource
	recommendations ports.RecommendationSource
	chatModel       ports.ChatModel
	goalGenerator   ports.GoalGenerator
	analyticsCache  ports.AnalyticsCache
	lockouts        ports.LockoutStore
	tokens          ports.TokenSigner
	hasher          ports.PasswordHasher
	board           *BoardStore
	sequences       *SequenceGuard
	tracer          trace.Tracer
	nowFn           func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "BeaconIQ-API"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.LockoutThreshold <= 0 {
		cfg.LockoutThreshold = 5
	}
	if cfg.LockoutWindow <= 0 {
		cfg.LockoutWindow = 15 * time.Minute
	}
	if cfg.AnalyticsCacheTTL <= 0 {
		cfg.AnalyticsCacheTTL = 5 * time.Minute
	}
	if cfg.ChatHistoryLimit <= 0 {
		cfg.ChatHistoryLimit = 20
	}
	if cfg.RevealInterval <= 0 {
		cfg.RevealInterval = 30 * time.Millisecond
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}

	nowFn := func() time.Time { return time.Now().UTC() }
	return &Service{
		cfg:             cfg,
		users:           deps.Users,
		goals:           deps.Goals,
		goalPlans:       deps.GoalPlans,
		transcripts:     deps.Transcripts,
		outbox:          deps.Outbox,
		analytics:       deps.Analytics,
		recommendations: deps.Recommendations,
		chatModel:       deps.ChatModel,
		goalGenerator:   deps.GoalGenerator,
		analyticsCache:  deps.AnalyticsCache,
		lockouts:        deps.Lockouts,
		tokens:          deps.Tokens,
		hasher:          deps.Hasher,
		board:           NewBoardStore(deps.Campaigns, deps.Mutations, nowFn, cfg.IdempotencyTTL),
		sequences:       NewSequenceGuard(),
		tracer:          otel.Tracer("github.com/thrivebrands/beaconiq/internal/application"),
		nowFn:           nowFn,
	}
}

// RevealInterval is the delay between revealed words of a chat reply.
func (s *Service) RevealInterval() time.Duration {
	return s.cfg.RevealInterval
}

// SetClock overrides the service clock; tests use it to pin dates.
func (s *Service) SetClock(nowFn func() time.Time) {
	s.nowFn = nowFn
	s.board.nowFn = nowFn
}
