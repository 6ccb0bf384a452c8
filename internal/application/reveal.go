package application

import (
	"context"
	"time"

	"github.com/thrivebrands/beaconiq/internal/domain"
)

// Reveal streams the word prefixes of text, one per interval, followed by an
// empty string that tells the reader to clear the partial view. The channel is
// closed when the reveal completes or ctx is cancelled.
func Reveal(ctx context.Context, text string, interval time.Duration) <-chan string {
	out := make(chan string)
	prefixes := domain.RevealPrefixes(text)
	if interval <= 0 {
		interval = 30 * time.Millisecond
	}

	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for _, prefix := range append(prefixes, "") {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			select {
			case <-ctx.Done():
				return
			case out <- prefix:
			}
		}
	}()
	return out
}
