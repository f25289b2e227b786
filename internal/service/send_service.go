// internal/service/send_service.go
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/rishikeshydv/bulk-email-sender/internal/apperrors"
	"github.com/rishikeshydv/bulk-email-sender/internal/mailer"
	"github.com/rishikeshydv/bulk-email-sender/internal/model"
	"github.com/rishikeshydv/bulk-email-sender/internal/queue"
	"github.com/rishikeshydv/bulk-email-sender/internal/repository"
	"github.com/rishikeshydv/bulk-email-sender/internal/sanitizer"
)

// Request limits, matching the HTTP contract.
const (
	SubjectMaxLen  = 300
	BodyTextMaxLen = 20000
	BodyHTMLMaxLen = 120000
	ErrorMaxLen    = 1000
)

// SendRequest is the normalized send request. Both the JSON and the
// multipart boundaries produce this same value before the pipeline runs.
type SendRequest struct {
	Subject      string
	BodyText     string
	BodyHTML     string
	RecipientIDs []string
	Attachments  []mailer.Attachment
}

// Validate enforces the field limits. It has no side effects; nothing is
// written before it passes.
func (req *SendRequest) Validate() error {
	details := map[string]string{}

	if strings.TrimSpace(req.Subject) == "" {
		details["subject"] = "subject is required"
	} else if utf8.RuneCountInString(req.Subject) > SubjectMaxLen {
		details["subject"] = "subject must be at most 300 characters"
	}

	if strings.TrimSpace(req.BodyText) == "" && strings.TrimSpace(req.BodyHTML) == "" {
		details["bodyText"] = "bodyText is required"
	} else if utf8.RuneCountInString(req.BodyText) > BodyTextMaxLen {
		details["bodyText"] = "bodyText must be at most 20000 characters"
	}

	if utf8.RuneCountInString(req.BodyHTML) > BodyHTMLMaxLen {
		details["bodyHtml"] = "bodyHtml must be at most 120000 characters"
	}

	if len(req.RecipientIDs) == 0 {
		details["recipientIds"] = "recipientIds must contain at least one id"
	} else {
		for _, id := range req.RecipientIDs {
			if strings.TrimSpace(id) == "" {
				details["recipientIds"] = "recipientIds must not contain empty ids"
				break
			}
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidation("invalid send request", details)
	}
	return nil
}

// RecipientResult is one recipient's terminal outcome in the response.
type RecipientResult struct {
	RecipientID string     `json:"recipientId"`
	Email       string     `json:"email"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	SentAt      *time.Time `json:"sentAt,omitempty"`
}

type SendResult struct {
	CampaignID  string            `json:"campaignId"`
	SentCount   int               `json:"sentCount"`
	FailedCount int               `json:"failedCount"`
	Total       int               `json:"total"`
	Results     []RecipientResult `json:"results"`
}

// SendService runs the send pipeline: resolve recipients, normalize content
// once, create the campaign, then dispatch sequentially, one recipient at a
// time, recording a delivery row per attempt.
type SendService struct {
	RecipientRepo repository.RecipientRepositoryInterface
	CampaignRepo  repository.CampaignRepositoryInterface
	DeliveryRepo  repository.DeliveryRepositoryInterface
	Mailer        mailer.Mailer
	Events        queue.Publisher
	Logger        zerolog.Logger

	// SenderName appears in the fixed signature blocks. SenderEmail is the
	// signature hyperlink target.
	SenderName  string
	SenderEmail string
}

type deliveryEvent struct {
	CampaignID  string `json:"campaign_id"`
	RecipientID string `json:"recipient_id"`
	Email       string `json:"email"`
	Status      string `json:"status"`
	MessageID   string `json:"message_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

type campaignEvent struct {
	CampaignID  string `json:"campaign_id"`
	SentCount   int    `json:"sent_count"`
	FailedCount int    `json:"failed_count"`
	Total       int    `json:"total"`
}

// SendCampaign executes one send request end to end. A single recipient's
// failure never aborts the batch; context cancellation is honored between
// recipients.
func (s *SendService) SendCampaign(ctx context.Context, req *SendRequest) (*SendResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ids := dedupeIDs(req.RecipientIDs)
	recipients, err := s.RecipientRepo.FindActiveByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, apperrors.ErrNoActiveRecipients
	}

	// Shared content is sanitized and normalized once, not per recipient.
	htmlBody, textBody := sanitizer.Normalize(req.BodyText, req.BodyHTML)
	if strings.TrimSpace(textBody) == "" {
		// bodyHtml that sanitizes to nothing must not slip an empty-bodied
		// campaign past validation.
		return nil, apperrors.NewValidation("invalid send request", map[string]string{
			"bodyText": "body is empty after sanitization",
		})
	}

	campaign, err := s.CampaignRepo.Create(req.Subject, textBody)
	if err != nil {
		return nil, err
	}

	s.Logger.Info().
		Str("campaign_id", campaign.ID).
		Int("recipients", len(recipients)).
		Msg("campaign send started")

	result := &SendResult{
		CampaignID: campaign.ID,
		Results:    make([]RecipientResult, 0, len(recipients)),
	}

	for _, rec := range recipients {
		if err := ctx.Err(); err != nil {
			result.Total = result.SentCount + result.FailedCount
			return result, err
		}

		entry := s.sendOne(ctx, campaign, rec, req.Subject, textBody, htmlBody, req.Attachments)
		result.Results = append(result.Results, entry)
		if entry.Status == model.StatusSent {
			result.SentCount++
		} else {
			result.FailedCount++
		}
	}

	result.Total = result.SentCount + result.FailedCount

	if err := s.Events.Publish(queue.TopicCampaignEvents, campaignEvent{
		CampaignID:  campaign.ID,
		SentCount:   result.SentCount,
		FailedCount: result.FailedCount,
		Total:       result.Total,
	}); err != nil {
		s.Logger.Warn().Err(err).Str("campaign_id", campaign.ID).Msg("failed to publish campaign event")
	}

	s.Logger.Info().
		Str("campaign_id", campaign.ID).
		Int("sent", result.SentCount).
		Int("failed", result.FailedCount).
		Msg("campaign send finished")

	return result, nil
}

// sendOne is the per-recipient failure boundary: render, send, record. It
// always returns exactly one result entry, even when the ledger write fails.
func (s *SendService) sendOne(
	ctx context.Context,
	campaign *model.Campaign,
	rec model.Recipient,
	subjectTpl, textTpl, htmlTpl string,
	attachments []mailer.Attachment,
) RecipientResult {
	subject := RenderTemplate(subjectTpl, rec)
	text := s.buildTextBody(rec, textTpl)
	html := s.buildHTMLBody(rec, htmlTpl)

	entry := RecipientResult{
		RecipientID: rec.ID,
		Email:       rec.Email,
	}
	delivery := &model.Delivery{
		CampaignID:  campaign.ID,
		RecipientID: rec.ID,
	}

	messageID, sendErr := s.Mailer.Send(ctx, mailer.Message{
		To:          rec.Email,
		ToName:      strings.TrimSpace(rec.Name),
		Subject:     subject,
		Text:        text,
		HTML:        html,
		Attachments: attachments,
	})

	if sendErr != nil {
		msg := truncate(sendErr.Error(), ErrorMaxLen)
		entry.Status = model.StatusFailed
		entry.Error = msg
		delivery.Status = model.StatusFailed
		delivery.Error = &msg

		s.Logger.Warn().
			Str("campaign_id", campaign.ID).
			Str("recipient_id", rec.ID).
			Err(sendErr).
			Msg("send failed")
	} else {
		now := time.Now()
		entry.Status = model.StatusSent
		entry.SentAt = &now
		delivery.Status = model.StatusSent
		delivery.MessageID = &messageID
		delivery.SentAt = &now
	}

	if err := s.DeliveryRepo.Create(delivery); err != nil {
		// The send already settled; losing the ledger row must not abort
		// the remaining recipients. The response keeps the transport
		// outcome and the gap is logged.
		s.Logger.Error().
			Str("campaign_id", campaign.ID).
			Str("recipient_id", rec.ID).
			Err(err).
			Msg("failed to record delivery")
	}

	if err := s.Events.Publish(queue.TopicDeliveryEvents, deliveryEvent{
		CampaignID:  campaign.ID,
		RecipientID: rec.ID,
		Email:       rec.Email,
		Status:      entry.Status,
		MessageID:   messageID,
		Error:       entry.Error,
	}); err != nil {
		s.Logger.Warn().Err(err).Str("recipient_id", rec.ID).Msg("failed to publish delivery event")
	}

	return entry
}

func (s *SendService) senderName() string {
	if s.SenderName != "" {
		return s.SenderName
	}
	return s.SenderEmail
}

func (s *SendService) buildTextBody(rec model.Recipient, bodyTpl string) string {
	var b strings.Builder
	b.WriteString(RenderTemplate("Hi {{firstName}},", rec))
	b.WriteString("\n\n")
	b.WriteString(RenderTemplate(bodyTpl, rec))
	b.WriteString("\n\nBest regards,\n")
	b.WriteString(s.senderName())
	b.WriteString("\n")
	return b.String()
}

func (s *SendService) buildHTMLBody(rec model.Recipient, bodyTpl string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:Arial,Helvetica,sans-serif;font-size:14px;color:#222222;line-height:1.6">`)
	b.WriteString("<p>")
	b.WriteString(RenderTemplate("Hi {{firstName}},", rec))
	b.WriteString("</p>\n<p>Hope this email finds you well.</p>\n")
	b.WriteString(RenderTemplate(bodyTpl, rec))
	b.WriteString("\n<p>Best regards,<br>")
	b.WriteString(`<a href="mailto:` + s.SenderEmail + `">` + s.senderName() + `</a>`)
	b.WriteString("</p></div>")
	return b.String()
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// truncate caps s at max bytes without splitting a multi-byte rune, so the
// result stays valid UTF-8 for the database.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
