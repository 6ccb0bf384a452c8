package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRevealAccumulatesThenClears(t *testing.T) {
	t.Parallel()

	var got []string
	for prefix := range Reveal(context.Background(), "Margins improved in retail", time.Millisecond) {
		got = append(got, prefix)
	}
	want := []string{"Margins", "Margins improved", "Margins improved in", "Margins improved in retail", ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("reveal mismatch (-want +got):\n%s", diff)
	}
}

func TestRevealStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	ch := Reveal(ctx, "one two three four five six seven", 5*time.Millisecond)
	if first := <-ch; first != "one" {
		t.Fatalf("unexpected first prefix %q", first)
	}
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("reveal did not stop after cancel")
		}
	}
}

func TestRevealEmptyTextOnlyClears(t *testing.T) {
	t.Parallel()

	var got []string
	for prefix := range Reveal(context.Background(), "", time.Millisecond) {
		got = append(got, prefix)
	}
	if diff := cmp.Diff([]string{""}, got); diff != "" {
		t.Fatalf("reveal mismatch (-want +got):\n%s", diff)
	}
}
