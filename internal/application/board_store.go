package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/thrivebrands/beaconiq/internal/domain"
	"github.com/thrivebrands/beaconiq/internal/ports"
)

// Transition computes the next board from the current one without side effects.
type Transition func(domain.Board) (domain.Board, error)

// EventBuilder derives the outbox events for a confirmed transition.
type EventBuilder func(prev, next domain.Board) []ports.OutboxEvent

// BoardStore owns the current campaign board snapshot. Mutations are applied
// one at a time and written through to the repository before the new snapshot
// becomes visible; a failed write leaves the previous snapshot in place.
type BoardStore struct {
	mu        sync.Mutex
	repo      ports.CampaignRepository
	mutations ports.MutationRepository
	current   domain.Board
	loaded    bool
	nowFn     func() time.Time
	replayTTL time.Duration

	subsMu  sync.Mutex
	subs    map[int]chan domain.Board
	nextSub int
}

// NewBoardStore builds a store over repo. A recorded mutation guards its id
// against re-application for replayTTL; zero keeps it forever.
func NewBoardStore(repo ports.CampaignRepository, mutations ports.MutationRepository, nowFn func() time.Time, replayTTL time.Duration) *BoardStore {
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &BoardStore{
		repo:      repo,
		mutations: mutations,
		nowFn:     nowFn,
		replayTTL: replayTTL,
		subs:      make(map[int]chan domain.Board),
	}
}

// Snapshot returns the current board, loading it on first use.
func (s *BoardStore) Snapshot(ctx context.Context) (domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Board{}, err
	}
	return s.current, nil
}

// Subscribe returns a channel that receives every confirmed snapshot. A slow
// subscriber only ever sees the most recent snapshot. The returned func
// unsubscribes and closes the channel.
func (s *BoardStore) Subscribe() (<-chan domain.Board, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan domain.Board, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// Apply runs transition against the current snapshot and persists the result.
// The mutation moves pending -> confirmed on success or pending -> failed on
// any error. Replaying a confirmed mutation id with the same request hash
// returns the recorded mutation without applying it again, until the record is
// older than the replay TTL.
func (s *BoardStore) Apply(ctx context.Context, m domain.Mutation, transition Transition, events EventBuilder) (domain.Board, domain.Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Board{}, m, err
	}

	if m.ID != "" {
		prev, err := s.mutations.Get(ctx, m.ID)
		switch {
		case err == nil && s.replayExpired(prev):
			// The old record no longer guards the id; apply afresh.
		case err == nil && prev.ActorID != m.ActorID:
			return s.current, m, fmt.Errorf("%w: mutation %s belongs to another user", domain.ErrIdempotencyConflict, m.ID)
		case err == nil && prev.RequestHash != m.RequestHash:
			return s.current, m, fmt.Errorf("%w: mutation %s reused with a different request", domain.ErrIdempotencyConflict, m.ID)
		case err == nil && prev.State == domain.MutationConfirmed:
			return s.current, prev, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return s.current, m, err
		}
	}

	now := s.nowFn()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	m.Error = ""

	next, err := transition(s.current)
	if err != nil {
		return s.current, s.settle(ctx, m, domain.MutationFailed, s.current.Version, err), err
	}

	m.State = domain.MutationPending
	if err := s.mutations.Put(ctx, m); err != nil {
		return s.current, m, fmt.Errorf("%w: record mutation: %v", domain.ErrStorageUnavailable, err)
	}

	var outbox []ports.OutboxEvent
	if events != nil {
		outbox = events(s.current, next)
	}
	if err := s.repo.SaveBoard(ctx, s.current.Version, next, outbox); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.loaded = false
		} else if !errors.Is(err, domain.ErrStorageUnavailable) {
			err = fmt.Errorf("%w: save board: %v", domain.ErrStorageUnavailable, err)
		}
		return s.current, s.settle(ctx, m, domain.MutationFailed, s.current.Version, err), err
	}

	s.current = next
	confirmed := s.settle(ctx, m, domain.MutationConfirmed, next.Version, nil)
	s.broadcast(next)
	return next, confirmed, nil
}

// Mutation returns a recorded mutation by id.
func (s *BoardStore) Mutation(ctx context.Context, mutationID string) (domain.Mutation, error) {
	return s.mutations.Get(ctx, mutationID)
}

// Reload drops the cached snapshot so the next read comes from storage.
func (s *BoardStore) Reload() {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()
}

func (s *BoardStore) replayExpired(m domain.Mutation) bool {
	return s.replayTTL > 0 && s.nowFn().Sub(m.UpdatedAt) > s.replayTTL
}

func (s *BoardStore) settle(ctx context.Context, m domain.Mutation, state domain.MutationState, version int64, cause error) domain.Mutation {
	m.State = state
	m.BoardVersion = version
	m.UpdatedAt = s.nowFn()
	if cause != nil {
		m.Error = cause.Error()
	}
	if m.ID != "" {
		// The board outcome is already decided; a failed record write only
		// loses the audit entry.
		_ = s.mutations.Put(ctx, m)
	}
	return m
}

func (s *BoardStore) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	board, err := s.repo.LoadBoard(ctx)
	if err != nil {
		return fmt.Errorf("%w: load board: %v", domain.ErrStorageUnavailable, err)
	}
	s.current = board
	s.loaded = true
	return nil
}

func (s *BoardStore) broadcast(board domain.Board) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- board:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- board:
		default:
		}
	}
}
