package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/rishikeshydv/bulk-email-sender/internal/model"
)

type DeliveryRepositoryInterface interface {
	Create(d *model.Delivery) error
	ListByCampaign(campaignID string) ([]model.Delivery, error)
}

// DeliveryRepository is append-only for the send pipeline: rows are inserted
// already in their terminal state and never updated or deleted.
type DeliveryRepository struct {
	DB *sql.DB
}

func (r *DeliveryRepository) Create(d *model.Delivery) error {
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now()

	query := `
        INSERT INTO deliveries (id, campaign_id, recipient_id, status, message_id, error, sent_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.DB.Exec(
		query,
		d.ID,
		d.CampaignID,
		d.RecipientID,
		d.Status,
		d.MessageID,
		d.Error,
		d.SentAt,
		d.CreatedAt,
	)
	return err
}

func (r *DeliveryRepository) ListByCampaign(campaignID string) ([]model.Delivery, error) {
	query := `
        SELECT id, campaign_id, recipient_id, status, message_id, error, sent_at, created_at
        FROM deliveries
        WHERE campaign_id::text=$1
        ORDER BY created_at ASC, id ASC
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliveries := []model.Delivery{}
	for rows.Next() {
		var d model.Delivery
		if err := rows.Scan(
			&d.ID, &d.CampaignID, &d.RecipientID, &d.Status,
			&d.MessageID, &d.Error, &d.SentAt, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

var _ DeliveryRepositoryInterface = (*DeliveryRepository)(nil)
