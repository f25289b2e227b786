// internal/controller/send_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rishikeshydv/bulk-email-sender/internal/apperrors"
	"github.com/rishikeshydv/bulk-email-sender/internal/service"
)

type SendController struct {
	SendService *service.SendService
	Logger      zerolog.Logger
}

// Send is the single request/response contract of the pipeline. Mounted
// with HandleFunc so non-POST methods get a 405 with an Allow header.
func (c *SendController) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	req, cleanup, err := parseSendRequest(w, r)
	defer cleanup()
	if err != nil {
		c.respondError(w, err)
		return
	}

	result, err := c.SendService.SendCampaign(r.Context(), req)
	if err != nil {
		c.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (c *SendController) respondError(w http.ResponseWriter, err error) {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message, verr.Details)
	case errors.Is(err, apperrors.ErrNoActiveRecipients):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		c.Logger.Error().Err(err).Msg("send request failed")
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
	}
}
