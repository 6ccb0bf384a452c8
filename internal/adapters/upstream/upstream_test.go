package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/thrivebrands/beaconiq/internal/domain"
	"github.com/thrivebrands/beaconiq/internal/ports"
)

func TestExtractDetail(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`{"detail":"Invalid credentials"}`: "Invalid credentials",
		`{"detail":[{"msg":"field required","loc":["body","email"]},{"msg":"value is not a valid email"}]}`: "field required; value is not a valid email",
		`{"detail":{"msg":"bad year"}}`: "bad year",
		`{"message":"rate limited"}`:    "rate limited",
		`Internal Server Error`:         "Internal Server Error",
	}
	for body, want := range cases {
		if got := ExtractDetail([]byte(body)); got != want {
			t.Fatalf("ExtractDetail(%s) = %q, want %q", body, got, want)
		}
	}
}

func TestAnalyticsReportForwardsFiltersAndToken(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery, gotAuth = r.URL.Path, r.URL.RawQuery, r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"total_sales":1200}`))
	}))
	defer srv.Close()

	client, err := NewAnalyticsClient(Config{BaseURL: srv.URL + "/", Token: "svc-token"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	raw, err := client.Report(context.Background(), "executive-overview", domain.Filters{Years: []int{2023, 2024}})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if string(raw) != `{"total_sales":1200}` {
		t.Fatalf("unexpected body %s", raw)
	}
	if gotPath != "/analytics/executive-overview" || gotQuery != "years=2023%2C2024" || gotAuth != "Bearer svc-token" {
		t.Fatalf("unexpected request path=%q query=%q auth=%q", gotPath, gotQuery, gotAuth)
	}
}

func TestUpstreamErrorCarriesDetail(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"msg":"years must be integers"}]}`))
	}))
	defer srv.Close()

	client, err := NewAnalyticsClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.FilterOptions(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected status error, got %v", err)
	}
	if statusErr.StatusCode != http.StatusUnprocessableEntity || statusErr.Message != "years must be integers" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestDecodeRecommendationsStringifiesIDs(t *testing.T) {
	t.Parallel()

	got, err := decodeRecommendations(json.RawMessage(`{"recommendations":[{"id":42,"title":"Win back lapsed","channels":["Email"]},{"id":"r-7","title":"Bundle"}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []domain.Campaign{
		{ID: "42", Title: "Win back lapsed", Channels: []string{"Email"}},
		{ID: "r-7", Title: "Bundle"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("recommendations mismatch (-want +got):\n%s", diff)
	}
	if _, err := decodeRecommendations(json.RawMessage(`[{"title":"no id"}]`)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing id, got %v", err)
	}
}

func TestInsightsReplySendsHistory(t *testing.T) {
	t.Parallel()

	var got insightsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/insights/chat" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"response":"Online grew fastest.","timestamp":"10:00 AM"}`))
	}))
	defer srv.Close()

	client, err := NewInsightsClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	reply, err := client.Reply(context.Background(), ports.ChatRequest{
		SessionID: "s1",
		Message:   "Which channel grew?",
		History: []domain.ChatTurn{
			{Role: domain.RoleUserTurn, Content: "hi"},
			{Role: domain.RoleAssistantTurn, Content: "hello"},
		},
	})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply != "Online grew fastest." {
		t.Fatalf("unexpected reply %q", reply)
	}
	want := []historyMessage{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}
	if diff := cmp.Diff(want, got.ConversationHistory); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
	if got.SessionID != "s1" || got.Message != "Which channel grew?" {
		t.Fatalf("unexpected request %+v", got)
	}
}
