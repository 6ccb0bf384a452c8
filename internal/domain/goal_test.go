package domain

import (
	"errors"
	"testing"
)

func TestKeyResultProgressClampsOverTarget(t *testing.T) {
	t.Parallel()

	got := KeyResultProgress(KeyResult{Current: 150, Target: 100})
	if got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestKeyResultProgressClampsBeforeConverting(t *testing.T) {
	t.Parallel()

	if got := KeyResultProgress(KeyResult{Current: 1e17, Target: 1}); got != 100 {
		t.Fatalf("expected 100 for a huge current, got %d", got)
	}
	if got := KeyResultProgress(KeyResult{Current: -1e30, Target: 1}); got != 0 {
		t.Fatalf("expected 0 for a huge negative current, got %d", got)
	}
}

func TestKeyResultProgressKeepsExplicitValueWithoutTarget(t *testing.T) {
	t.Parallel()

	if got := KeyResultProgress(KeyResult{Target: 0, Current: 12, Progress: 35}); got != 35 {
		t.Fatalf("expected explicit progress 35, got %d", got)
	}
	if got := KeyResultProgress(KeyResult{Progress: 140}); got != 100 {
		t.Fatalf("expected clamp to 100, got %d", got)
	}
	if got := KeyResultProgress(KeyResult{Progress: -5}); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
}

func TestKeyResultProgressRounds(t *testing.T) {
	t.Parallel()

	if got := KeyResultProgress(KeyResult{Current: 2, Target: 3}); got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}
}

func TestOverallProgressIsRoundedMean(t *testing.T) {
	t.Parallel()

	krs := []KeyResult{{Progress: 100}, {Progress: 80}, {Progress: 45}}
	if got := OverallProgress(krs); got != 75 {
		t.Fatalf("expected 75, got %d", got)
	}
	if got := OverallProgress(nil); got != 0 {
		t.Fatalf("expected 0 without key results, got %d", got)
	}
}

func TestGoalCanEdit(t *testing.T) {
	t.Parallel()

	g := Goal{Owners: []string{"u1"}, TeamMembers: []string{"u2"}}
	cases := []struct {
		user       string
		role       string
		department string
		want       bool
	}{
		{"u1", RoleMember, "", true},
		{"u2", RoleMember, "", true},
		{"u3", RoleMember, "marketing", false},
		{"u3", "Admin", "", true},
		{"u3", RoleMember, "admin", true},
		{"", RoleMember, "", false},
	}
	for _, tc := range cases {
		if got := g.CanEdit(tc.user, tc.role, tc.department); got != tc.want {
			t.Fatalf("CanEdit(%q, %q, %q) = %v, want %v", tc.user, tc.role, tc.department, got, tc.want)
		}
	}
}

func TestParseGoalStatus(t *testing.T) {
	t.Parallel()

	if got, err := ParseGoalStatus(""); err != nil || got != GoalOnTrack {
		t.Fatalf("expected default on-track, got %q %v", got, err)
	}
	if _, err := ParseGoalStatus("paused"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestNormalizeQuartersDerivesObjectiveProgress(t *testing.T) {
	t.Parallel()

	quarters, err := NormalizeQuarters([]QuarterPlan{{
		Quarter: "Q1 2025",
		Objectives: []Objective{
			{ID: "o1", Title: "Grow retail", KeyResults: []KeyResult{{Current: 50, Target: 100}, {Current: 30, Target: 20}}},
			{ID: "o2", Title: "Launch brand", Progress: 130},
		},
	}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	objs := quarters[0].Objectives
	if objs[0].Progress != 75 || objs[0].KeyResults[1].Progress != 100 {
		t.Fatalf("unexpected derived progress: %+v", objs[0])
	}
	if objs[1].Progress != 100 || objs[1].Status != GoalOnTrack {
		t.Fatalf("unexpected manual objective: %+v", objs[1])
	}

	if _, err := NormalizeQuarters([]QuarterPlan{{Quarter: " "}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank quarter, got %v", err)
	}
}
