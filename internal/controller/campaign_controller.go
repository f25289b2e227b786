// internal/controller/campaign_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rishikeshydv/bulk-email-sender/internal/apperrors"
	"github.com/rishikeshydv/bulk-email-sender/internal/model"
	"github.com/rishikeshydv/bulk-email-sender/internal/repository"
)

type CampaignController struct {
	CampaignRepo repository.CampaignRepositoryInterface
	DeliveryRepo repository.DeliveryRepositoryInterface
	Logger       zerolog.Logger
}

type campaignWithStats struct {
	model.Campaign
	Stats map[string]int `json:"stats"`
}

// List returns campaign history, newest first, with delivery counts.
func (c *CampaignController) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := c.CampaignRepo.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	data := make([]campaignWithStats, 0, len(campaigns))
	for _, campaign := range campaigns {
		stats, err := c.CampaignRepo.Stats(campaign.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		data = append(data, campaignWithStats{Campaign: campaign, Stats: stats})
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

// Get returns one campaign with its full delivery list.
func (c *CampaignController) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := c.CampaignRepo.GetByID(id)
	if err != nil {
		var notFound *apperrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, err.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	deliveries, err := c.DeliveryRepo.ListByCampaign(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"campaign":   campaign,
		"deliveries": deliveries,
	})
}
