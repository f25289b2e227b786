package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/rishikeshydv/bulk-email-sender/internal/apperrors"
	"github.com/rishikeshydv/bulk-email-sender/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(subject, body string) (*model.Campaign, error)
	GetByID(id string) (*model.Campaign, error)
	List() ([]model.Campaign, error)
	Stats(campaignID string) (map[string]int, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

// Create inserts the campaign record, exactly once per accepted send
// request, before the first delivery attempt.
func (r *CampaignRepository) Create(subject, body string) (*model.Campaign, error) {
	c := &model.Campaign{
		ID:        uuid.NewString(),
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	}

	query := `
        INSERT INTO campaigns (id, subject, body, created_at)
        VALUES ($1, $2, $3, $4)
    `
	if _, err := r.DB.Exec(query, c.ID, c.Subject, c.Body, c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) GetByID(id string) (*model.Campaign, error) {
	query := `SELECT id, subject, body, created_at FROM campaigns WHERE id::text=$1`

	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(&c.ID, &c.Subject, &c.Body, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

// List returns campaign history, newest first.
func (r *CampaignRepository) List() ([]model.Campaign, error) {
	query := `SELECT id, subject, body, created_at FROM campaigns ORDER BY created_at DESC`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		var c model.Campaign
		if err := rows.Scan(&c.ID, &c.Subject, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// Stats counts deliveries per status for one campaign.
func (r *CampaignRepository) Stats(campaignID string) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM deliveries WHERE campaign_id::text=$1 GROUP BY status`

	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{
		model.StatusSent:   0,
		model.StatusFailed: 0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
