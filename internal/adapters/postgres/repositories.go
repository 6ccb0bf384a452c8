package postgres

import (
	"github.com/thrivebrands/beaconiq/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Users     ports.UserRepository
	Campaigns ports.CampaignRepository
	Mutations ports.MutationRepository
	Outbox    ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:     &userRepository{db: db},
		Campaigns: &campaignRepository{db: db},
		Mutations: &mutationRepository{db: db},
		Outbox:    &outboxRepository{db: db},
	}
}
