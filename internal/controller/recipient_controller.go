// internal/controller/recipient_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rishikeshydv/bulk-email-sender/internal/model"
	"github.com/rishikeshydv/bulk-email-sender/internal/repository"
)

// RecipientController is the thin CRUD surface the send pipeline's
// collaborator contract assumes: bulk add, list, activate/deactivate, delete.
type RecipientController struct {
	RecipientRepo repository.RecipientRepositoryInterface
	Logger        zerolog.Logger
}

func (c *RecipientController) BulkAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Recipients []struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"recipients"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	if len(body.Recipients) == 0 {
		writeError(w, http.StatusBadRequest, "recipients must contain at least one entry", nil)
		return
	}

	recipients := make([]model.Recipient, 0, len(body.Recipients))
	for _, rec := range body.Recipients {
		email := strings.ToLower(strings.TrimSpace(rec.Email))
		if email == "" || !strings.Contains(email, "@") {
			writeError(w, http.StatusBadRequest, "recipients must have a valid email", nil)
			return
		}
		recipients = append(recipients, model.Recipient{Email: email, Name: rec.Name})
	}

	added, err := c.RecipientRepo.BulkInsert(recipients)
	if err != nil {
		c.Logger.Error().Err(err).Msg("bulk insert failed")
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"added":   added,
		"skipped": len(recipients) - added,
	})
}

func (c *RecipientController) List(w http.ResponseWriter, r *http.Request) {
	recipients, err := c.RecipientRepo.ListAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": recipients})
}

func (c *RecipientController) SetActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Active == nil {
		writeError(w, http.StatusBadRequest, "body must contain an active flag", nil)
		return
	}

	if err := c.RecipientRepo.SetActive(id, *body.Active); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "active": *body.Active})
}

func (c *RecipientController) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.RecipientRepo.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
