// internal/model/recipient.go
package model

import (
	"strings"
	"time"
)

type Recipient struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DisplayName is what {{firstName}} and {{name}} render to: the trimmed
// name, or the email address when no name is stored.
func (r Recipient) DisplayName() string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return r.Email
}
