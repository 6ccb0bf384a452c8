package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/thrivebrands/beaconiq/internal/adapters/memory"
	"github.com/thrivebrands/beaconiq/internal/adapters/security"
	"github.com/thrivebrands/beaconiq/internal/application"
	"github.com/thrivebrands/beaconiq/internal/domain"
	"github.com/thrivebrands/beaconiq/internal/ports"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc       *application.Service
	repos     memory.Repositories
	campaigns *flakyCampaigns
	cache     *memory.AnalyticsCache
	analytics *stubAnalytics
	recs      *stubRecommendations
	chat      *stubChatModel
	goals     *stubGoalGenerator
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repos := memory.NewRepositories()
	repos.Campaigns.Seed(domain.Board{
		Recommended: []domain.Campaign{{ID: "r1", Title: "Loyalty push", ROI: "210%"}},
		Active:      []domain.Campaign{{ID: "a1", Title: "Summer promo", ROI: "320%", Status: domain.CampaignStatusRunning}},
		Archived:    []domain.Campaign{},
	})
	signer, err := security.NewJWTSigner("fixture-secret-0123456789", "beaconiq")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	f := fixture{
		repos:     repos,
		campaigns: &flakyCampaigns{CampaignRepository: repos.Campaigns},
		cache:     memory.NewAnalyticsCache(),
		analytics: &stubAnalytics{},
		recs:      &stubRecommendations{},
		chat:      &stubChatModel{reply: "Revenue is up 12% year over year."},
		goals:     &stubGoalGenerator{},
	}
	f.svc = application.NewService(application.Dependencies{
		Users:           repos.Users,
		Campaigns:       f.campaigns,
		Mutations:       repos.Mutations,
		Goals:           repos.Goals,
		GoalPlans:       repos.GoalPlans,
		Transcripts:     repos.Transcripts,
		Outbox:          repos.Outbox,
		Analytics:       f.analytics,
		Recommendations: f.recs,
		ChatModel:       f.chat,
		GoalGenerator:   f.goals,
		AnalyticsCache:  f.cache,
		Lockouts:        memory.NewLockoutStore(),
		Tokens:          signer,
		Hasher:          security.NewBcryptHasher(bcrypt.MinCost),
	})
	f.svc.SetClock(func() time.Time { return fixedNow })
	return f
}

type flakyCampaigns struct {
	*memory.CampaignRepository
	mu   sync.Mutex
	fail error
}

func (r *flakyCampaigns) failWith(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

func (r *flakyCampaigns) SaveBoard(ctx context.Context, expected int64, next domain.Board, events []ports.OutboxEvent) error {
	r.mu.Lock()
	err := r.fail
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.CampaignRepository.SaveBoard(ctx, expected, next, events)
}

type stubAnalytics struct {
	mu    sync.Mutex
	calls int
}

func (s *stubAnalytics) Report(_ context.Context, report string, filters domain.Filters) (json.RawMessage, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	raw, _ := json.Marshal(map[string]any{"report": report, "call": call, "query": filters.Encode().Encode()})
	return raw, nil
}

func (s *stubAnalytics) FilterOptions(_ context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"years":[2023,2024]}`), nil
}

type stubRecommendations struct {
	list []domain.Campaign
	err  error
}

func (s *stubRecommendations) Recommendations(context.Context) ([]domain.Campaign, error) {
	return s.list, s.err
}

type stubChatModel struct {
	reply string
	err   error
	last  ports.ChatRequest
}

func (s *stubChatModel) Reply(_ context.Context, req ports.ChatRequest) (string, error) {
	s.last = req
	return s.reply, s.err
}

type stubGoalGenerator struct{}

func (stubGoalGenerator) GenerateGoals(_ context.Context, c domain.Campaign) ([]domain.Goal, error) {
	return []domain.Goal{
		{Title: "Lift " + c.Title + " conversions", KeyResults: []domain.KeyResult{{Description: "Orders", Target: 200, Current: 50}}},
		{Title: "", Description: "dropped"},
	}, nil
}

var admin = application.Actor{UserID: "admin-1", Role: domain.RoleAdmin}

func TestActivateWritesThroughAndEmitsEvent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.ActivateCampaign(ctx, admin, "r1", "recommended")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if res.Mutation.State != domain.MutationConfirmed {
		t.Fatalf("expected confirmed mutation, got %+v", res.Mutation)
	}
	if c, bucket, ok := res.Board.Find("r1"); !ok || bucket != domain.BucketActive || c.StartDate != "2025-03-14" {
		t.Fatalf("unexpected board after activate: %+v", res.Board)
	}
	stored, err := f.repos.Campaigns.LoadBoard(ctx)
	if err != nil {
		t.Fatalf("load board: %v", err)
	}
	if bucket, _ := stored.Locate("r1"); bucket != domain.BucketActive {
		t.Fatalf("expected stored board to hold r1 active, got %q", bucket)
	}
	records := f.repos.Outbox.Records()
	if len(records) != 1 || records[0].EventType != "campaign.activated" || records[0].PartitionKey != "r1" {
		t.Fatalf("unexpected outbox records: %+v", records)
	}
}

func TestFailedWriteRollsBackSnapshot(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.svc.GetBoard(ctx)
	if err != nil {
		t.Fatalf("get board: %v", err)
	}
	f.campaigns.failWith(errors.New("connection reset"))
	res, err := f.svc.DeactivateCampaign(ctx, admin, "a1")
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected storage unavailable, got %v", err)
	}
	if res.Mutation.State != domain.MutationFailed {
		t.Fatalf("expected failed mutation, got %+v", res.Mutation)
	}
	after, _ := f.svc.GetBoard(ctx)
	if after.Version != before.Version {
		t.Fatalf("snapshot advanced despite failed write: %d -> %d", before.Version, after.Version)
	}
	if bucket, _ := after.Locate("a1"); bucket != domain.BucketActive {
		t.Fatalf("expected a1 to stay active, got %q", bucket)
	}
	recorded, err := f.svc.GetMutation(ctx, admin, res.Mutation.ID)
	if err != nil || recorded.State != domain.MutationFailed || recorded.Error == "" {
		t.Fatalf("unexpected recorded mutation: %+v %v", recorded, err)
	}

	f.campaigns.failWith(nil)
	res, err = f.svc.DeactivateCampaign(ctx, admin, "a1")
	if err != nil {
		t.Fatalf("retry deactivate: %v", err)
	}
	archived := res.Board.Archived[len(res.Board.Archived)-1]
	if archived.ActualROI != "320%" || archived.EndDate != "2025-03-14" {
		t.Fatalf("unexpected archived campaign: %+v", archived)
	}
}

func TestMutationReplayIsNotReapplied(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	actor := admin
	actor.IdempotencyKey = "mut-1"

	first, err := f.svc.ArchiveCampaign(ctx, actor, "r1", "recommended")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	replay, err := f.svc.ArchiveCampaign(ctx, actor, "r1", "recommended")
	if err != nil {
		t.Fatalf("replay archive: %v", err)
	}
	if replay.Mutation.ID != first.Mutation.ID || replay.Board.Version != first.Board.Version {
		t.Fatalf("replay applied again: first=%+v replay=%+v", first.Mutation, replay.Mutation)
	}
	if _, err := f.svc.ArchiveCampaign(ctx, actor, "a1", "active"); !errors.Is(err, domain.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict for reused key, got %v", err)
	}
}

func TestIdempotencyKeysAreScopedPerUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	owner := admin
	owner.IdempotencyKey = "shared-key"
	other := application.Actor{UserID: "member-1", Role: domain.RoleMember, IdempotencyKey: "shared-key"}

	first, err := f.svc.ArchiveCampaign(ctx, owner, "r1", "recommended")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	second, err := f.svc.DeactivateCampaign(ctx, other, "a1")
	if err != nil {
		t.Fatalf("same key from another user should apply: %v", err)
	}
	if second.Mutation.ID == first.Mutation.ID || second.Board.Version <= first.Board.Version {
		t.Fatalf("mutations collided: first=%+v second=%+v", first.Mutation, second.Mutation)
	}
	if _, err := f.svc.GetMutation(ctx, other, first.Mutation.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected another user's mutation to be hidden, got %v", err)
	}
	if got, err := f.svc.GetMutation(ctx, other, second.Mutation.ID); err != nil || got.ActorID != "member-1" {
		t.Fatalf("expected own mutation, got %+v %v", got, err)
	}
	if got, err := f.svc.GetMutation(ctx, admin, second.Mutation.ID); err != nil || got.ID != second.Mutation.ID {
		t.Fatalf("expected admin to read any mutation, got %+v %v", got, err)
	}
}

func TestIdempotencyKeyExpiresAfterTTL(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	actor := admin
	actor.IdempotencyKey = "mut-ttl"

	first, err := f.svc.ArchiveCampaign(ctx, actor, "r1", "recommended")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	f.svc.SetClock(func() time.Time { return fixedNow.Add(23 * time.Hour) })
	if _, err := f.svc.DeactivateCampaign(ctx, actor, "a1"); !errors.Is(err, domain.ErrIdempotencyConflict) {
		t.Fatalf("expected key to guard within ttl, got %v", err)
	}

	f.svc.SetClock(func() time.Time { return fixedNow.Add(25 * time.Hour) })
	res, err := f.svc.DeactivateCampaign(ctx, actor, "a1")
	if err != nil {
		t.Fatalf("expired key should apply again: %v", err)
	}
	if res.Mutation.ID != first.Mutation.ID || res.Mutation.Kind != domain.MutationDeactivate {
		t.Fatalf("unexpected mutation after expiry: %+v", res.Mutation)
	}
	if bucket, _ := res.Board.Locate("a1"); bucket != domain.BucketArchived {
		t.Fatalf("expected a1 archived, got %q", bucket)
	}
	replay, err := f.svc.DeactivateCampaign(ctx, actor, "a1")
	if err != nil || replay.Board.Version != res.Board.Version {
		t.Fatalf("expected replay of the fresh record, got %+v %v", replay.Board.Version, err)
	}
}

func TestActivateMissingCampaignLeavesBoard(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	before, _ := f.svc.GetBoard(ctx)
	_, err := f.svc.ActivateCampaign(ctx, admin, "ghost", "archived")
	if !errors.Is(err, domain.ErrCampaignNotFound) {
		t.Fatalf("expected campaign not found, got %v", err)
	}
	after, _ := f.svc.GetBoard(ctx)
	if after.Version != before.Version || after.Len() != before.Len() {
		t.Fatalf("board changed: before=%+v after=%+v", before, after)
	}
}

func TestSubscribersReceiveConfirmedSnapshots(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	updates, cancel := f.svc.SubscribeBoard()
	defer cancel()
	if _, err := f.svc.ActivateCampaign(ctx, admin, "r1", "recommended"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	select {
	case board := <-updates:
		if bucket, _ := board.Locate("r1"); bucket != domain.BucketActive {
			t.Fatalf("unexpected snapshot: %+v", board)
		}
	case <-time.After(time.Second):
		t.Fatalf("no snapshot delivered")
	}
}

func TestGenerateRecommendationsReplacesBucket(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.recs.list = []domain.Campaign{{ID: "n1", Title: "Fresh idea"}, {ID: "a1", Title: "dup of active"}}

	res, err := f.svc.GenerateRecommendations(context.Background(), admin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(res.Board.Recommended) != 1 || res.Board.Recommended[0].ID != "n1" {
		t.Fatalf("unexpected recommended bucket: %+v", res.Board.Recommended)
	}
	if len(res.Board.Active) != 1 {
		t.Fatalf("active bucket touched: %+v", res.Board.Active)
	}

	f.recs.err = errors.New("upstream 502")
	if _, err := f.svc.GenerateRecommendations(context.Background(), admin); !errors.Is(err, domain.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
}

func TestGoalLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	owner := application.Actor{UserID: "u-owner", Role: domain.RoleMember}

	goal, err := f.svc.CreateGoal(ctx, owner, application.GoalInput{
		CampaignID: "a1",
		Title:      "Grow repeat orders",
		Progress:   10,
		KeyResults: []domain.KeyResult{
			{Description: "Repeat buyers", Target: 100, Current: 150},
			{Description: "Basket size", Target: 50, Current: 40},
			{Description: "NPS", Progress: 45},
		},
		Tasks: []domain.Task{{Description: "Draft email series"}},
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if goal.Progress != 75 || goal.KeyResults[0].Progress != 100 || goal.Status != domain.GoalOnTrack {
		t.Fatalf("unexpected created goal: %+v", goal)
	}
	if goal.Department != domain.DefaultDepartment || len(goal.Owners) != 1 || goal.Owners[0] != "u-owner" {
		t.Fatalf("unexpected defaults: %+v", goal)
	}
	if goal.Tasks[0].ID == "" || goal.Tasks[0].CreatedBy != "u-owner" || goal.Tasks[0].Status != domain.TaskStatusTodo {
		t.Fatalf("unexpected task: %+v", goal.Tasks[0])
	}

	stranger := application.Actor{UserID: "u-other", Role: domain.RoleMember}
	progress := 90
	if _, err := f.svc.UpdateGoal(ctx, stranger, goal.ID, application.GoalPatch{Progress: &progress}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	adminDept := application.Actor{UserID: "u-ops", Role: domain.RoleMember, Department: "admin"}
	if _, err := f.svc.UpdateGoal(ctx, adminDept, goal.ID, application.GoalPatch{Progress: &progress}); err != nil {
		t.Fatalf("admin department member should edit: %v", err)
	}

	over := 140
	updated, err := f.svc.UpdateGoal(ctx, owner, goal.ID, application.GoalPatch{Progress: &over})
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if updated.Progress != 100 {
		t.Fatalf("expected clamped progress 100, got %d", updated.Progress)
	}

	krs := []domain.KeyResult{{Description: "Repeat buyers", Target: 100, Current: 20}}
	updated, err = f.svc.UpdateGoal(ctx, admin, goal.ID, application.GoalPatch{KeyResults: &krs})
	if err != nil {
		t.Fatalf("update key results: %v", err)
	}
	if updated.Progress != 20 {
		t.Fatalf("expected re-derived progress 20, got %d", updated.Progress)
	}

	bad := "paused"
	if _, err := f.svc.UpdateGoal(ctx, owner, goal.ID, application.GoalPatch{Status: &bad}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid status, got %v", err)
	}

	list, err := f.svc.ListCampaignGoals(ctx, "a1")
	if err != nil || len(list) != 1 {
		t.Fatalf("list campaign goals: %v %+v", err, list)
	}
	if err := f.svc.DeleteGoal(ctx, owner, goal.ID); err != nil {
		t.Fatalf("delete goal: %v", err)
	}
	if _, err := f.svc.GetGoal(ctx, goal.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestCreateGoalForUnknownCampaign(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.CreateGoal(context.Background(), admin, application.GoalInput{CampaignID: "ghost", Title: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGenerateGoalsDraftsWithoutSaving(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	actor := application.Actor{UserID: "u-7", Role: domain.RoleMember}

	drafts, err := f.svc.GenerateGoals(ctx, actor, application.GenerateGoalsInput{CampaignID: "a1", AutoAssign: true})
	if err != nil {
		t.Fatalf("generate goals: %v", err)
	}
	if len(drafts) != 1 || drafts[0].CampaignID != "a1" || drafts[0].Progress != 25 {
		t.Fatalf("unexpected drafts: %+v", drafts)
	}
	if len(drafts[0].Owners) != 1 || drafts[0].Owners[0] != "u-7" {
		t.Fatalf("expected auto-assigned owner: %+v", drafts[0].Owners)
	}
	saved, _ := f.svc.ListCampaignGoals(ctx, "a1")
	if len(saved) != 0 {
		t.Fatalf("drafts were persisted: %+v", saved)
	}
}

func TestGoalPlanRoundTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	actor := application.Actor{UserID: "u-plan"}

	empty, err := f.svc.GetGoalPlan(ctx, actor, "bizpulse_goals")
	if err != nil || len(empty.Quarters) != 0 {
		t.Fatalf("expected empty plan: %+v %v", empty, err)
	}
	saved, err := f.svc.SaveGoalPlan(ctx, actor, "bizpulse_goals", []domain.QuarterPlan{{
		Quarter:    "Q2 2025",
		Objectives: []domain.Objective{{ID: "o1", Title: "Expand wholesale", KeyResults: []domain.KeyResult{{Target: 10, Current: 5}}}},
	}})
	if err != nil {
		t.Fatalf("save plan: %v", err)
	}
	if saved.Quarters[0].Objectives[0].Progress != 50 {
		t.Fatalf("unexpected objective progress: %+v", saved.Quarters[0].Objectives[0])
	}
	got, err := f.svc.GetGoalPlan(ctx, actor, "bizpulse_goals")
	if err != nil || len(got.Quarters) != 1 {
		t.Fatalf("reload plan: %+v %v", got, err)
	}
	if _, err := f.svc.GetGoalPlan(ctx, actor, "bizpulse_other"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid key, got %v", err)
	}
}

func TestChatRecordsFullReplyAndDegrades(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Chat(ctx, admin, application.ChatInput{Message: "How did Q3 go?"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if res.SessionID != domain.DefaultSessionID || res.Degraded {
		t.Fatalf("unexpected chat result: %+v", res)
	}
	transcript, err := f.svc.Transcript(ctx, admin, domain.DefaultSessionID)
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if len(transcript.Turns) != 2 || transcript.Turns[1].Content != "Revenue is up 12% year over year." {
		t.Fatalf("full reply not recorded: %+v", transcript.Turns)
	}
	if transcript.SessionID != domain.DefaultSessionID || transcript.Turns[0].SessionID != domain.DefaultSessionID {
		t.Fatalf("expected visible session id on transcript, got %+v", transcript)
	}

	f.chat.err = errors.New("model timeout")
	res, err = f.svc.Chat(ctx, admin, application.ChatInput{Message: "And Q4?"})
	if err != nil {
		t.Fatalf("degraded chat: %v", err)
	}
	if !res.Degraded || res.Reply.Content != domain.UnavailableReply {
		t.Fatalf("expected canned reply, got %+v", res)
	}
	if got := len(f.chat.last.History); got != 2 {
		t.Fatalf("expected prior turns as history, got %d", got)
	}
	if _, err := f.svc.Chat(ctx, admin, application.ChatInput{Message: "  "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank message, got %v", err)
	}
}

func TestTranscriptsArePrivatePerUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	member := application.Actor{UserID: "member-1", Role: domain.RoleMember}

	if _, err := f.svc.Chat(ctx, admin, application.ChatInput{Message: "Private question", SessionID: "s1"}); err != nil {
		t.Fatalf("chat: %v", err)
	}
	transcript, err := f.svc.Transcript(ctx, member, "s1")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if diff := cmp.Diff(domain.Transcript{SessionID: "s1", Turns: []domain.ChatTurn{}}, transcript); diff != "" {
		t.Fatalf("another user's turns leaked (-want +got):\n%s", diff)
	}

	if _, err := f.svc.Chat(ctx, member, application.ChatInput{Message: "My own question", SessionID: "s1"}); err != nil {
		t.Fatalf("member chat: %v", err)
	}
	if got := len(f.chat.last.History); got != 0 {
		t.Fatalf("expected no history from another user, got %d turns", got)
	}
	own, err := f.svc.Transcript(ctx, admin, "s1")
	if err != nil || len(own.Turns) != 2 || own.Turns[0].Content != "Private question" {
		t.Fatalf("unexpected admin transcript: %+v %v", own, err)
	}
}

func TestLoginAndLockout(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.SeedUser(ctx, application.SeedUserInput{Email: "Data.Admin@thrivebrands.ai", Password: "pa55word", Role: domain.RoleAdmin})
	if err != nil || !created {
		t.Fatalf("seed user: %v %v", created, err)
	}
	if again, err := f.svc.SeedUser(ctx, application.SeedUserInput{Email: "data.admin@thrivebrands.ai", Password: "other"}); err != nil || again {
		t.Fatalf("expected seed to be idempotent: %v %v", again, err)
	}

	res, err := f.svc.Login(ctx, "data.admin@thrivebrands.ai", "pa55word")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Email != "data.admin@thrivebrands.ai" || res.Token == "" || !res.ExpiresAt.Equal(fixedNow.Add(24*time.Hour)) {
		t.Fatalf("unexpected login result: %+v", res)
	}

	for i := 0; i < 5; i++ {
		if _, err := f.svc.Login(ctx, "data.admin@thrivebrands.ai", "nope"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected invalid credentials, got %v", i, err)
		}
	}
	if _, err := f.svc.Login(ctx, "data.admin@thrivebrands.ai", "pa55word"); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected account locked, got %v", err)
	}
}

func TestAnalyticsReportCachesUntilInvalidated(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	filters := domain.Filters{Years: []int{2023, 2024}}

	first, err := f.svc.AnalyticsReport(ctx, "executive-overview", filters)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	second, err := f.svc.AnalyticsReport(ctx, "executive-overview", filters)
	if err != nil {
		t.Fatalf("cached report: %v", err)
	}
	if string(first) != string(second) || f.analytics.calls != 1 {
		t.Fatalf("expected cache hit, calls=%d", f.analytics.calls)
	}

	member := application.Actor{UserID: "u-1", Role: domain.RoleMember}
	if err := f.svc.InvalidateAnalytics(ctx, member); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for member, got %v", err)
	}
	if err := f.svc.HandleDataSynced(ctx, []byte(`{"event_type":"analytics.data_synced"}`)); err != nil {
		t.Fatalf("handle data synced: %v", err)
	}
	if _, err := f.svc.AnalyticsReport(ctx, "executive-overview", filters); err != nil {
		t.Fatalf("report after invalidate: %v", err)
	}
	if f.analytics.calls != 2 {
		t.Fatalf("expected refetch after invalidation, calls=%d", f.analytics.calls)
	}
	if _, err := f.svc.AnalyticsReport(ctx, "sales-forecast", filters); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected unknown report, got %v", err)
	}
}

func TestDashboardBundle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	bundle, err := f.svc.Dashboard(context.Background(), domain.Filters{})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(bundle.Overview) == 0 || string(bundle.Options) != `{"years":[2023,2024]}` || bundle.Board.Len() != 2 {
		t.Fatalf("unexpected bundle: %+v", bundle)
	}
}
