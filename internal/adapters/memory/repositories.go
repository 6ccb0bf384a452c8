// Package memory holds in-process implementations of the repository ports.
// They back unit tests and single-node local runs.
package memory

import "github.com/thrivebrands/beaconiq/internal/ports"

type Repositories struct {
	Users       *UserRepository
	Campaigns   *CampaignRepository
	Mutations   *MutationRepository
	Goals       *GoalRepository
	GoalPlans   *GoalPlanRepository
	Transcripts *TranscriptRepository
	Outbox      *OutboxRepository
}

func NewRepositories() Repositories {
	outbox := NewOutboxRepository()
	return Repositories{
		Users:       NewUserRepository(),
		Campaigns:   NewCampaignRepository(outbox),
		Mutations:   NewMutationRepository(),
		Goals:       NewGoalRepository(),
		GoalPlans:   NewGoalPlanRepository(),
		Transcripts: NewTranscriptRepository(),
		Outbox:      outbox,
	}
}

var (
	_ ports.UserRepository       = (*UserRepository)(nil)
	_ ports.CampaignRepository   = (*CampaignRepository)(nil)
	_ ports.MutationRepository   = (*MutationRepository)(nil)
	_ ports.GoalRepository       = (*GoalRepository)(nil)
	_ ports.GoalPlanRepository   = (*GoalPlanRepository)(nil)
	_ ports.TranscriptRepository = (*TranscriptRepository)(nil)
	_ ports.OutboxRepository     = (*OutboxRepository)(nil)
	_ ports.AnalyticsCache       = (*AnalyticsCache)(nil)
	_ ports.LockoutStore         = (*LockoutStore)(nil)
)
