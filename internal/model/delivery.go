// internal/model/delivery.go
package model

import "time"

// Delivery statuses. A delivery row is inserted already in its terminal
// state; StatusPending exists in the domain but is never persisted by the
// send pipeline.
const (
	StatusPending = "PENDING"
	StatusSent    = "SENT"
	StatusFailed  = "FAILED"
)

type Delivery struct {
	ID          string     `db:"id" json:"id"`
	CampaignID  string     `db:"campaign_id" json:"campaign_id"`
	RecipientID string     `db:"recipient_id" json:"recipient_id"`
	Status      string     `db:"status" json:"status"`
	MessageID   *string    `db:"message_id" json:"message_id,omitempty"`
	Error       *string    `db:"error" json:"error,omitempty"`
	SentAt      *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
