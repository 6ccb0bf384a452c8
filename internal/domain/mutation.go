package domain

import "time"

type MutationKind string

const (
	MutationActivate           MutationKind = "activate"
	MutationDeactivate         MutationKind = "deactivate"
	MutationArchive            MutationKind = "archive"
	MutationReplaceRecommended MutationKind = "replace_recommended"
)

type MutationState string

const (
	MutationPending   MutationState = "pending"
	MutationConfirmed MutationState = "confirmed"
	MutationFailed    MutationState = "failed"
)

// Mutation tracks one write-through change to the campaign board.
type Mutation struct {
	ID           string        `json:"id"`
	Kind         MutationKind  `json:"kind"`
	CampaignID   string        `json:"campaign_id,omitempty"`
	From         Bucket        `json:"from,omitempty"`
	State        MutationState `json:"state"`
	Error        string        `json:"error,omitempty"`
	RequestHash  string        `json:"-"`
	ActorID      string        `json:"actor_id,omitempty"`
	BoardVersion int64         `json:"board_version"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (m Mutation) Settled() bool {
	return m.State == MutationConfirmed || m.State == MutationFailed
}
