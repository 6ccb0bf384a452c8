package ports

import (
	"context"

	"github.com/thrivebrands/beaconiq/internal/domain"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, user domain.User) error
}

// CampaignRepository persists board snapshots. SaveBoard writes next and
// enqueues events in one transaction and fails with domain.ErrConflict when
// the stored version is no longer expectedVersion.
type CampaignRepository interface {
	LoadBoard(ctx context.Context) (domain.Board, error)
	SaveBoard(ctx context.Context, expectedVersion int64, next domain.Board, events []OutboxEvent) error
}

type MutationRepository interface {
	Get(ctx context.Context, mutationID string) (domain.Mutation, error)
	Put(ctx context.Context, mutation domain.Mutation) error
}

type GoalRepository interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]domain.Goal, error)
	ListByDepartment(ctx context.Context, department string) ([]domain.Goal, error)
	Get(ctx context.Context, goalID string) (domain.Goal, error)
	Create(ctx context.Context, goal domain.Goal) error
	Update(ctx context.Context, goal domain.Goal) error
	Delete(ctx context.Context, goalID string) error
}

type GoalPlanRepository interface {
	Get(ctx context.Context, ownerID string, key domain.PlanKey) (domain.GoalPlan, error)
	Put(ctx context.Context, plan domain.GoalPlan) error
}

type TranscriptRepository interface {
	Load(ctx context.Context, sessionID string) (domain.Transcript, error)
	Append(ctx context.Context, turns ...domain.ChatTurn) error
}
