// internal/controller/send_request.go
package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rishikeshydv/bulk-email-sender/internal/apperrors"
	"github.com/rishikeshydv/bulk-email-sender/internal/mailer"
	"github.com/rishikeshydv/bulk-email-sender/internal/service"
)

// Multipart upload limits.
const (
	MaxAttachmentCount = 10
	MaxAttachmentBytes = 10 << 20 // per file
	MaxTotalBytes      = 20 << 20 // combined
)

const multipartMemory = 8 << 20

// maxRequestBytes bounds the whole multipart body so an oversized upload
// fails during parsing instead of being spooled to disk first. The slack
// over the attachment cap covers the form fields and part framing.
const maxRequestBytes = MaxTotalBytes + (2 << 20)

// parseSendRequest resolves the two request encodings into one normalized
// SendRequest. The returned cleanup always runs before the handler returns
// and removes any temp files the multipart parser wrote.
func parseSendRequest(w http.ResponseWriter, r *http.Request) (*service.SendRequest, func(), error) {
	noop := func() {}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
		return parseMultipartSendRequest(r)
	}
	req, err := parseJSONSendRequest(r)
	return req, noop, err
}

type sendRequestBody struct {
	Subject      string   `json:"subject"`
	BodyText     string   `json:"bodyText"`
	Body         string   `json:"body"` // legacy alias for bodyText
	BodyHTML     string   `json:"bodyHtml"`
	RecipientIDs []string `json:"recipientIds"`
}

func parseJSONSendRequest(r *http.Request) (*service.SendRequest, error) {
	var body sendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, apperrors.NewValidation("invalid JSON body", nil)
	}

	bodyText := body.BodyText
	if bodyText == "" {
		bodyText = body.Body
	}

	return &service.SendRequest{
		Subject:      body.Subject,
		BodyText:     bodyText,
		BodyHTML:     body.BodyHTML,
		RecipientIDs: body.RecipientIDs,
	}, nil
}

func parseMultipartSendRequest(r *http.Request) (*service.SendRequest, func(), error) {
	noop := func() {}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, noop, apperrors.NewValidation("invalid multipart body", map[string]string{
				"files": "request body exceeds combined attachment limit",
			})
		}
		return nil, noop, apperrors.NewValidation("invalid multipart body", nil)
	}
	// ParseMultipartForm may spill large parts to disk; remove them on every
	// exit path, success or failure.
	cleanup := func() {
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}

	req := &service.SendRequest{
		Subject:      r.FormValue("subject"),
		BodyText:     r.FormValue("bodyText"),
		BodyHTML:     r.FormValue("bodyHtml"),
		RecipientIDs: parseRecipientIDs(r),
	}
	if req.BodyText == "" {
		req.BodyText = r.FormValue("body")
	}

	attachments, err := collectAttachments(r.MultipartForm)
	if err != nil {
		return nil, cleanup, err
	}
	req.Attachments = attachments

	return req, cleanup, nil
}

// parseRecipientIDs accepts either repeated recipientIds form fields or a
// single field holding a JSON array.
func parseRecipientIDs(r *http.Request) []string {
	values := r.MultipartForm.Value["recipientIds"]
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var ids []string
		if err := json.Unmarshal([]byte(values[0]), &ids); err == nil {
			return ids
		}
	}
	return values
}

// collectAttachments reads every uploaded file into memory, enforcing the
// count as well as the per-file and combined size caps, failing fast on the
// first violation.
func collectAttachments(form *multipart.Form) ([]mailer.Attachment, error) {
	var headers []*multipart.FileHeader
	for _, fhs := range form.File {
		headers = append(headers, fhs...)
	}
	if len(headers) == 0 {
		return nil, nil
	}
	if len(headers) > MaxAttachmentCount {
		return nil, apperrors.NewValidation(
			fmt.Sprintf("too many attachments: %d files exceeds the limit of %d", len(headers), MaxAttachmentCount),
			nil,
		)
	}

	attachments := make([]mailer.Attachment, 0, len(headers))
	total := int64(0)
	for _, fh := range headers {
		data, err := readAttachment(fh)
		if err != nil {
			return nil, err
		}

		total += int64(len(data))
		if total > MaxTotalBytes {
			return nil, apperrors.NewValidation(
				fmt.Sprintf("attachments exceed the combined size limit of %d bytes", MaxTotalBytes),
				nil,
			)
		}

		attachments = append(attachments, mailer.Attachment{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return attachments, nil
}

func readAttachment(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open attachment %s: %w", fh.Filename, err)
	}
	defer f.Close()

	// Read one byte past the cap so oversized files are detected without
	// trusting the declared header size.
	data, err := io.ReadAll(io.LimitReader(f, MaxAttachmentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read attachment %s: %w", fh.Filename, err)
	}
	if len(data) > MaxAttachmentBytes {
		return nil, apperrors.NewValidation(
			fmt.Sprintf("attachment %s exceeds the per-file size limit of %d bytes", fh.Filename, MaxAttachmentBytes),
			nil,
		)
	}
	return data, nil
}
