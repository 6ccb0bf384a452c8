package postgres

import (
	"context"
	"time"

	"github.com/thrivebrands/beaconiq/internal/domain"
	"github.com/thrivebrands/beaconiq/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const boardID = 1

type campaignRepository struct {
	db *gorm.DB
}

func (r *campaignRepository) LoadBoard(ctx context.Context) (domain.Board, error) {
	var head campaignBoardModel
	if err := r.db.WithContext(ctx).Where("board_id = ?", boardID).Take(&head).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.EmptyBoard(), nil
		}
		return domain.Board{}, err
	}
	var rows []campaignModel
	if err := r.db.WithContext(ctx).
		Order("CASE bucket WHEN 'recommended' THEN 0 WHEN 'active' THEN 1 ELSE 2 END").
		Order("position asc").
		Find(&rows).Error; err != nil {
		return domain.Board{}, err
	}
	return toDomainBoard(head.Version, rows)
}

// SaveBoard replaces every campaign row and bumps the board version inside one
// transaction. The version row is locked so concurrent writers serialize.
func (r *campaignRepository) SaveBoard(ctx context.Context, expectedVersion int64, next domain.Board, events []ports.OutboxEvent) error {
	if err := next.Validate(); err != nil {
		return err
	}
	rows, err := toCampaignModels(next)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var head campaignBoardModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("board_id = ?", boardID).Take(&head).Error; err != nil {
			return err
		}
		if head.Version != expectedVersion {
			return domain.ErrConflict
		}
		if err := tx.Where("1 = 1").Delete(&campaignModel{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			for i := range rows {
				rows[i].UpdatedAt = now
			}
			if err := tx.CreateInBatches(&rows, 200).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&campaignBoardModel{}).Where("board_id = ?", boardID).Updates(map[string]any{
			"version":    next.Version,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}
		for _, event := range events {
			rec := toOutboxModel(event)
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
