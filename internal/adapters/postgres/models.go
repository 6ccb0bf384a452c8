package postgres

import (
	"time"

	"github.com/google/uuid"
)

type userModel struct {
	UserID       string    `gorm:"column:user_id;primaryKey"`
	Email        string    `gorm:"column:email"`
	Name         string    `gorm:"column:name"`
	Role         string    `gorm:"column:role"`
	Department   string    `gorm:"column:department"`
	PasswordHash string    `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (userModel) TableName() string { return "users" }

type campaignBoardModel struct {
	BoardID   int16     `gorm:"column:board_id;primaryKey"`
	Version   int64     `gorm:"column:version"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (campaignBoardModel) TableName() string { return "campaign_boards" }

type campaignModel struct {
	CampaignID string    `gorm:"column:campaign_id;primaryKey"`
	Bucket     string    `gorm:"column:bucket"`
	Position   int       `gorm:"column:position"`
	Payload    string    `gorm:"column:payload;type:jsonb"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (campaignModel) TableName() string { return "campaigns" }

type mutationModel struct {
	MutationID   string    `gorm:"column:mutation_id;primaryKey"`
	Kind         string    `gorm:"column:kind"`
	CampaignID   string    `gorm:"column:campaign_id"`
	FromBucket   string    `gorm:"column:from_bucket"`
	State        string    `gorm:"column:state"`
	Error        string    `gorm:"column:error"`
	RequestHash  string    `gorm:"column:request_hash"`
	ActorID      string    `gorm:"column:actor_id"`
	BoardVersion int64     `gorm:"column:board_version"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (mutationModel) TableName() string { return "campaign_mutations" }

type outboxModel struct {
	OutboxID      uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType     string     `gorm:"column:event_type"`
	PartitionKey  string     `gorm:"column:partition_key"`
	Payload       string     `gorm:"column:payload;type:jsonb"`
	SchemaVersion string     `gorm:"column:schema_version"`
	RetryCount    int        `gorm:"column:retry_count"`
	PublishedAt   *time.Time `gorm:"column:published_at"`
	LastError     string     `gorm:"column:last_error"`
	LastErrorAt   *time.Time `gorm:"column:last_error_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (outboxModel) TableName() string { return "beaconiq_outbox" }
