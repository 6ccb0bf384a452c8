package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/thrivebrands/beaconiq/internal/adapters/memory"
	"github.com/thrivebrands/beaconiq/internal/adapters/security"
	"github.com/thrivebrands/beaconiq/internal/application"
	"github.com/thrivebrands/beaconiq/internal/domain"
)

const (
	testAdminEmail    = "data.admin@thrivebrands.ai"
	testAdminPassword = "correct horse battery"
)

type testAPI struct {
	server *httptest.Server
	token  string
}

func newTestAPI(t *testing.T) testAPI {
	t.Helper()

	repos := memory.NewRepositories()
	repos.Campaigns.Seed(domain.Board{
		Recommended: []domain.Campaign{{ID: "r1", Title: "Loyalty push", ROI: "210%"}},
		Active:      []domain.Campaign{{ID: "a1", Title: "Summer promo", ROI: "320%"}},
		Archived:    []domain.Campaign{},
	})
	signer, err := security.NewJWTSigner("0123456789abcdef0123456789abcdef", "beaconiq")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	svc := application.NewService(application.Dependencies{
		Config:      application.Config{RevealInterval: time.Millisecond},
		Users:       repos.Users,
		Campaigns:   repos.Campaigns,
		Mutations:   repos.Mutations,
		Goals:       repos.Goals,
		GoalPlans:   repos.GoalPlans,
		Transcripts: repos.Transcripts,
		Outbox:      repos.Outbox,
		Lockouts:    memory.NewLockoutStore(),
		Tokens:      signer,
		Hasher:      security.NewBcryptHasher(4),
	})
	if _, err := svc.SeedUser(context.Background(), application.SeedUserInput{
		Email:      testAdminEmail,
		Password:   testAdminPassword,
		Name:       "Data Admin",
		Role:       domain.RoleAdmin,
		Department: "Analytics",
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	server := httptest.NewServer(NewRouter(NewHandler(svc), []string{"http://localhost:3000"}))
	t.Cleanup(server.Close)

	api := testAPI{server: server}
	resp := api.do(t, http.MethodPost, "/api/auth/login", `{"email":"`+testAdminEmail+`","password":"`+testAdminPassword+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}
	var login struct {
		Token string `json:"token"`
	}
	decodeResponse(t, resp, &login)
	if login.Token == "" {
		t.Fatal("login returned no token")
	}
	api.token = login.Token
	return api
}

func (a testAPI) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, a.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := a.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
}

func TestProtectedRoutesRequireBearerToken(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.token = ""
	resp := api.do(t, http.MethodGet, "/api/campaigns/board", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	api.token = "not-a-token"
	resp = api.do(t, http.MethodGet, "/api/users/me", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", resp.StatusCode)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.token = ""
	resp := api.do(t, http.MethodPost, "/api/auth/login", `{"email":"`+testAdminEmail+`","password":"wrong"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	var body apiError
	decodeResponse(t, resp, &body)
	if body.Code != "INVALID_CREDENTIALS" || body.Detail != body.Message {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/api/users/me", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var user domain.User
	decodeResponse(t, resp, &user)
	if user.Email != testAdminEmail || user.Role != domain.RoleAdmin {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestActivateMovesCampaign(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/campaigns/r1/activate", `{"from":"recommended"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Data application.BoardResult `json:"data"`
	}
	decodeResponse(t, resp, &body)

	ids := func(list []domain.Campaign) []string {
		out := []string{}
		for _, c := range list {
			out = append(out, c.ID)
		}
		return out
	}
	if diff := cmp.Diff([]string{"a1", "r1"}, ids(body.Data.Board.Active)); diff != "" {
		t.Fatalf("active bucket mismatch (-want +got):\n%s", diff)
	}
	if len(body.Data.Board.Recommended) != 0 {
		t.Fatalf("expected empty recommended bucket, got %v", ids(body.Data.Board.Recommended))
	}
}

func TestActivateUnknownCampaignReturns404(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/campaigns/missing/activate", `{"from":"recommended"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var body apiError
	decodeResponse(t, resp, &body)
	if body.Code != "CAMPAIGN_NOT_FOUND" {
		t.Fatalf("unexpected code %q", body.Code)
	}
}

func TestActivateRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/campaigns/r1/activate", `{"from":"recommended","extra":1}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestKanbanRecommendationsReturnsBareArray(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/api/kanban/recommendations", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var campaigns []domain.Campaign
	decodeResponse(t, resp, &campaigns)
	if len(campaigns) != 1 || campaigns[0].ID != "r1" {
		t.Fatalf("unexpected recommendations %+v", campaigns)
	}
}

func TestGoalPlanAcceptsBareQuarterArray(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	resp := api.do(t, http.MethodPut, "/api/goal-plans/bizpulse_goals", `[{"quarter":"Q1","objectives":[]}]`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = api.do(t, http.MethodPut, "/api/goal-plans/bizpulse_goals", `{"owner":"x"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without quarters, got %d", resp.StatusCode)
	}
}

func TestAnalyticsUnknownReport(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/api/analytics/not-a-report", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAnalyticsWithoutSourceIsUnavailable(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/api/analytics/executive-overview?year=2024", "")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestChatDegradesWithoutModel(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/insights/chat", `{"message":"How is revenue?","session_id":"s1"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body chatResponse
	decodeResponse(t, resp, &body)
	want := chatResponse{Response: domain.UnavailableReply, SessionID: "s1", Degraded: true}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Fatalf("chat response mismatch (-want +got):\n%s", diff)
	}

	resp = api.do(t, http.MethodGet, "/api/insights/sessions/s1", "")
	var transcript struct {
		Data domain.Transcript `json:"data"`
	}
	decodeResponse(t, resp, &transcript)
	if len(transcript.Data.Turns) != 2 {
		t.Fatalf("expected user and assistant turns, got %d", len(transcript.Data.Turns))
	}
}

func TestChatStreamRevealsReply(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	resp := api.do(t, http.MethodPost, "/api/insights/chat/stream", `{"message":"hi","session_id":"s2"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type %q", ct)
	}

	var events []string
	var lastDelta string
	scanner := bufio.NewScanner(resp.Body)
	var current string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current = strings.TrimPrefix(line, "event: ")
			events = append(events, current)
		case strings.HasPrefix(line, "data: ") && current == "delta":
			var delta map[string]string
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &delta); err != nil {
				t.Fatalf("decode delta: %v", err)
			}
			lastDelta = delta["text"]
		}
	}
	if len(events) < 3 || events[0] != "message" || events[len(events)-1] != "done" {
		t.Fatalf("unexpected event sequence %v", events)
	}
	if lastDelta != domain.UnavailableReply {
		t.Fatalf("expected final delta to be the full reply, got %q", lastDelta)
	}
}
