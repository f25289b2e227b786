package apperrors

import (
	"errors"
	"fmt"
)

// ErrNoActiveRecipients is returned when a send request resolves to zero
// active recipients. No campaign row exists when this is returned.
var ErrNoActiveRecipients = errors.New("no active recipients match the requested ids")

// ErrCampaignNotFound is a sentinel error for campaign lookups.
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign %s not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ValidationError carries a top-level message plus optional per-field details
// so handlers can return a structured 400 body.
type ValidationError struct {
	Message string
	Details map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation builds a ValidationError. Details may be nil.
func NewValidation(message string, details map[string]string) error {
	return &ValidationError{Message: message, Details: details}
}
