package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"zenbox/handlers/api"
	"zenbox/utils"

	"github.com/gofiber/fiber/v2"
)

var (
	errNotArray  = errors.New("top level is not an array")
	errNotObject = errors.New("array element is not an object")
)

type UploadHandler struct {
	pages    *Pages
	backend  Backend
	hub      *api.NotificationHub
	maxBytes int64
}

func NewUploadHandler(pages *Pages, backend Backend, hub *api.NotificationHub, maxBytes int64) *UploadHandler {
	return &UploadHandler{pages: pages, backend: backend, hub: hub, maxBytes: maxBytes}
}

// HandleUpload imports a JSON file of emails: the file is checked locally,
// forwarded to the backend, then categorization is triggered. Every
// outcome is reported as a flash on the page the upload came from.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		h.pages.SetFlash(c, FlashError, T(c, "upload_choose_file"))
		return backTo(c, "/dashboard")
	}

	log := utils.Log.WithField("file", fh.Filename)

	if fh.Size > h.maxBytes {
		log.Warn("Upload rejected: %d bytes exceeds limit", fh.Size)
		h.pages.SetFlash(c, FlashError, T(c, "upload_too_large"))
		return backTo(c, "/dashboard")
	}
	if ext := strings.ToLower(filepath.Ext(fh.Filename)); ext != ".json" {
		log.Warn("Upload rejected: extension %q", ext)
		h.pages.SetFlash(c, FlashError, T(c, "upload_not_json"))
		return backTo(c, "/dashboard")
	}

	f, err := fh.Open()
	if err != nil {
		return utils.InternalServerError(T(c, "error_upload_read"), err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return utils.InternalServerError(T(c, "error_upload_read"), err)
	}

	count, err := ValidateEmailsJSON(data)
	if err != nil {
		log.Warn("Invalid JSON file: %v", err)
		h.pages.SetFlash(c, FlashError, T(c, "upload_invalid_json"))
		return backTo(c, "/dashboard")
	}
	log.Info("Uploading %d emails", count)

	ctx := c.UserContext()
	if _, err := h.backend.UploadEmails(ctx, fh.Filename, data); err != nil {
		log.Error("Upload failed: %v", err)
		h.pages.SetFlash(c, FlashError, T(c, "upload_failed"))
		return backTo(c, "/dashboard")
	}

	result, err := h.backend.TriggerIngest(ctx)
	if err != nil {
		log.Error("Ingest after upload failed: %v", err)
		h.pages.SetFlash(c, FlashError, T(c, "upload_ingest_failed"))
		return backTo(c, "/dashboard")
	}

	message := result.Message
	if message == "" {
		message = utils.TPlural(Localizer(c), "upload_done", count)
	}
	h.pages.SetFlash(c, FlashInfo, message)

	// Every session reads the same mailbox, so all open dashboards reload
	delivered := h.hub.Broadcast(api.Notification{
		Type:    api.NotifyIngestDone,
		Message: message,
		Data:    map[string]interface{}{"processed": result.ProcessedCount},
	})
	log.Debug("Ingest notification delivered to %d subscribers", delivered)

	return backTo(c, "/dashboard")
}

// ValidateEmailsJSON checks that data is a JSON array of objects and
// returns its length
func ValidateEmailsJSON(data []byte) (int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return 0, errors.New("malformed JSON")
		}
		return 0, errNotArray
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return 0, err
	}
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return 0, errNotObject
		}
	}
	return len(items), nil
}
