package web

import (
	"net/url"

	"zenbox/controllers"
	"zenbox/handlers/api"
	"zenbox/utils"

	"github.com/gofiber/fiber/v2"
)

type InboxHandler struct {
	pages   *Pages
	backend Backend
}

func NewInboxHandler(pages *Pages, backend Backend) *InboxHandler {
	return &InboxHandler{pages: pages, backend: backend}
}

// HandleDashboard renders the inbox. ?email= selects an email; with
// ?reply=1 the reply overlay is opened and generated before rendering.
// Script requests get only the detail pane.
func (h *InboxHandler) HandleDashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()

	inbox := controllers.NewInbox(h.backend)
	if err := inbox.Load(ctx); err != nil {
		utils.Log.Warn("Failed to load inbox: %v", err)
	}
	if id := c.Query("email"); id != "" {
		inbox.Select(id)
	}

	if api.IsPartialRequest(c) {
		if inbox.Selected == nil {
			return utils.NotFoundError(T(c, "error_email_not_found"), nil)
		}
		return h.pages.Partial(c, "partials/email-detail", fiber.Map{
			"Email": inbox.Selected,
		})
	}

	var reply *controllers.Reply
	returnTo := "/dashboard"
	if inbox.Selected != nil {
		returnTo = "/dashboard?email=" + url.QueryEscape(inbox.Selected.ID)
	}
	if c.Query("reply") == "1" && inbox.Selected != nil {
		reply = controllers.NewReplyForEmail(*inbox.Selected)
		if err := reply.Generate(ctx, h.backend); err != nil {
			utils.Log.Warn("Failed to generate reply for %s: %v", inbox.Selected.ID, err)
		}
	}

	return h.pages.Render(c, "dashboard", "page_inbox", fiber.Map{
		"Inbox":    inbox,
		"Email":    inbox.Selected,
		"Reply":    reply,
		"ReturnTo": returnTo,
		"Unread":   inbox.UnreadCount(),
	})
}

// HandleDeleteEmail deletes an email and returns to the inbox
func (h *InboxHandler) HandleDeleteEmail(c *fiber.Ctx) error {
	id := c.Params("id")
	inbox := controllers.NewInbox(h.backend)

	if err := inbox.Delete(c.UserContext(), h.backend, id); err != nil {
		utils.Log.Error("Failed to delete email %s: %v", id, err)
		h.pages.SetFlash(c, FlashError, T(c, "flash_email_delete_failed"))
	} else {
		utils.Log.Info("Deleted email %s", id)
		h.pages.SetFlash(c, FlashInfo, T(c, "flash_email_deleted"))
	}

	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}
