package postgres

import (
	"context"

	"github.com/thrivebrands/beaconiq/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type mutationRepository struct {
	db *gorm.DB
}

func (r *mutationRepository) Get(ctx context.Context, mutationID string) (domain.Mutation, error) {
	var rec mutationModel
	if err := r.db.WithContext(ctx).Where("mutation_id = ?", mutationID).Take(&rec).Error; err != nil {
		return domain.Mutation{}, mapNotFound(err)
	}
	return toDomainMutation(rec), nil
}

func (r *mutationRepository) Put(ctx context.Context, mutation domain.Mutation) error {
	rec := toMutationModel(mutation)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mutation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "campaign_id", "from_bucket", "state", "error", "request_hash", "actor_id", "board_version", "created_at", "updated_at"}),
	}).Create(&rec).Error
}
