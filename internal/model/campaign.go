// internal/model/campaign.go
package model

import "time"

// Campaign records what was sent: the subject template as submitted and the
// normalized plain-text body actually stored. One row per send request,
// created before the first delivery attempt, immutable after.
type Campaign struct {
	ID        string    `db:"id" json:"id"`
	Subject   string    `db:"subject" json:"subject"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
