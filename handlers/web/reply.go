package web

import (
	"net/url"

	"zenbox/controllers"
	"zenbox/handlers/api"
	"zenbox/models"
	"zenbox/utils"

	"github.com/gofiber/fiber/v2"
)

// Reply form fields
const (
	fieldMode         = "mode"
	fieldEmailID      = "email_id"
	fieldEmailSubject = "email_subject"
	fieldDraftID      = "draft_id"
	fieldDraftRef     = "draft_ref"
	fieldDraftSubject = "draft_subject"
	fieldContent      = "content"

	modeReply = "reply"
	modeDraft = "draft"
)

// EventDraftSaved tells the page script to close the overlay
const EventDraftSaved = "draft-saved"

type ReplyHandler struct {
	pages   *Pages
	backend Backend
}

func NewReplyHandler(pages *Pages, backend Backend) *ReplyHandler {
	return &ReplyHandler{pages: pages, backend: backend}
}

// HandleOpen renders the overlay for an email in its loading state. The
// script then asks HandleGenerate for the text.
func (h *ReplyHandler) HandleOpen(c *fiber.Ctx) error {
	inbox := controllers.NewInbox(h.backend)
	if err := inbox.Load(c.UserContext()); err != nil {
		return utils.BadGatewayError(T(c, "error_backend"), err)
	}
	if !inbox.Select(c.Query("email")) {
		return utils.NotFoundError(T(c, "error_email_not_found"), nil)
	}

	reply := controllers.NewReplyForEmail(*inbox.Selected)
	return h.pages.Partial(c, "partials/reply-modal", fiber.Map{"Reply": reply, "ReturnTo": "/dashboard?email=" + url.QueryEscape(inbox.Selected.ID)})
}

// HandleGenerate renders the overlay with generated reply text
func (h *ReplyHandler) HandleGenerate(c *fiber.Ctx) error {
	email := models.Email{ID: c.Query("email"), Subject: c.Query("subject")}
	if email.ID == "" {
		return utils.BadRequestError(T(c, "error_email_not_found"), nil)
	}

	reply := controllers.NewReplyForEmail(email)
	if err := reply.Generate(c.UserContext(), h.backend); err != nil {
		utils.Log.Warn("Failed to generate reply for %s: %v", email.ID, err)
	}
	return h.pages.Partial(c, "partials/reply-modal", fiber.Map{"Reply": reply, "ReturnTo": "/dashboard?email=" + url.QueryEscape(email.ID)})
}

// HandleSave upserts the overlay content as a draft. Script requests get
// 204 plus an event header on success and the overlay with an error on
// failure; plain form posts redirect with a flash.
func (h *ReplyHandler) HandleSave(c *fiber.Ctx) error {
	reply := replyFromForm(c)
	content := c.FormValue(fieldContent)

	draft, err := reply.Save(c.UserContext(), h.backend, content, h.pages.now())
	partial := api.IsPartialRequest(c)

	if err != nil {
		utils.Log.Error("Failed to save draft %s: %v", draft.ID, err)
		if partial {
			return h.pages.Partial(c, "partials/reply-modal", fiber.Map{"Reply": reply, "ReturnTo": c.FormValue("return_to")})
		}
		h.pages.SetFlash(c, FlashError, T(c, "flash_draft_save_failed"))
		return backTo(c, "/drafts")
	}

	utils.Log.WithField("draft", draft.ID).Info("Draft saved")
	if partial {
		c.Set("X-Zenbox-Event", EventDraftSaved)
		return c.SendStatus(fiber.StatusNoContent)
	}
	h.pages.SetFlash(c, FlashInfo, T(c, "flash_draft_saved"))
	return backTo(c, "/drafts")
}

// replyFromForm rebuilds the overlay state the form was rendered from
func replyFromForm(c *fiber.Ctx) *controllers.Reply {
	if c.FormValue(fieldMode) == modeDraft {
		return controllers.NewReplyForDraft(models.Draft{
			ID:               c.FormValue(fieldDraftID),
			EmailReferenceID: c.FormValue(fieldDraftRef),
			EmailSubject:     c.FormValue(fieldDraftSubject),
		})
	}

	reply := controllers.NewReplyForEmail(models.Email{
		ID:      c.FormValue(fieldEmailID),
		Subject: c.FormValue(fieldEmailSubject),
	})
	reply.Generation.Finish(nil)
	return reply
}
