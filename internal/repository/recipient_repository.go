package repository

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rishikeshydv/bulk-email-sender/internal/model"
)

// RecipientRepositoryInterface defines the recipient reads and writes used
// by the service and controller layers.
type RecipientRepositoryInterface interface {
	BulkInsert(recipients []model.Recipient) (int, error)
	FindActiveByIDs(ids []string) ([]model.Recipient, error)
	ListAll() ([]model.Recipient, error)
	SetActive(id string, active bool) error
	Delete(id string) error
}

type RecipientRepository struct {
	DB *sql.DB
}

// BulkInsert adds recipients, lowercasing emails and silently skipping ones
// already stored. Returns how many rows were actually inserted.
func (r *RecipientRepository) BulkInsert(recipients []model.Recipient) (int, error) {
	query := `
        INSERT INTO recipients (id, email, name, active, created_at)
        VALUES ($1, $2, $3, TRUE, $4)
        ON CONFLICT (email) DO NOTHING
    `
	added := 0
	for i := range recipients {
		rec := &recipients[i]
		rec.ID = uuid.NewString()
		rec.Email = strings.ToLower(strings.TrimSpace(rec.Email))
		rec.Active = true
		rec.CreatedAt = time.Now()

		res, err := r.DB.Exec(query, rec.ID, rec.Email, strings.TrimSpace(rec.Name), rec.CreatedAt)
		if err != nil {
			return added, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, nil
}

// FindActiveByIDs fetches active recipients matching the given ids, ordered
// by creation time ascending with id as a stable tiebreak. Unknown and
// inactive ids are simply absent from the result.
func (r *RecipientRepository) FindActiveByIDs(ids []string) ([]model.Recipient, error) {
	query := `
        SELECT id, email, name, active, created_at
        FROM recipients
        WHERE id::text = ANY($1) AND active = TRUE
        ORDER BY created_at ASC, id ASC
    `
	rows, err := r.DB.Query(query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecipients(rows)
}

func (r *RecipientRepository) ListAll() ([]model.Recipient, error) {
	query := `
        SELECT id, email, name, active, created_at
        FROM recipients
        ORDER BY created_at ASC, id ASC
    `
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecipients(rows)
}

func (r *RecipientRepository) SetActive(id string, active bool) error {
	_, err := r.DB.Exec(`UPDATE recipients SET active=$1 WHERE id::text=$2`, active, id)
	return err
}

func (r *RecipientRepository) Delete(id string) error {
	_, err := r.DB.Exec(`DELETE FROM recipients WHERE id::text=$1`, id)
	return err
}

func scanRecipients(rows *sql.Rows) ([]model.Recipient, error) {
	recipients := []model.Recipient{}
	for rows.Next() {
		var rec model.Recipient
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.Name, &rec.Active, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

var _ RecipientRepositoryInterface = (*RecipientRepository)(nil)
