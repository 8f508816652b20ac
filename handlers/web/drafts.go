package web

import (
	"errors"

	"zenbox/controllers"
	"zenbox/utils"

	"github.com/gofiber/fiber/v2"
)

type DraftsHandler struct {
	pages   *Pages
	backend Backend
}

func NewDraftsHandler(pages *Pages, backend Backend) *DraftsHandler {
	return &DraftsHandler{pages: pages, backend: backend}
}

// HandleDrafts renders the drafts page. ?edit= opens a draft in the
// overlay without a script.
func (h *DraftsHandler) HandleDrafts(c *fiber.Ctx) error {
	drafts := controllers.NewDrafts(h.backend)
	if err := drafts.Load(c.UserContext()); err != nil {
		utils.Log.Warn("Failed to load drafts: %v", err)
	}

	var reply *controllers.Reply
	if id := c.Query("edit"); id != "" {
		opened, err := drafts.Open(id)
		if err != nil {
			utils.Log.Debug("Draft %s not found for editing", id)
		}
		reply = opened
	}

	return h.pages.Render(c, "drafts", "page_drafts", fiber.Map{
		"Drafts":   drafts,
		"Reply":    reply,
		"ReturnTo": "/drafts",
	})
}

// HandleDraftsList renders the list fragment, refreshed after a save
func (h *DraftsHandler) HandleDraftsList(c *fiber.Ctx) error {
	drafts := controllers.NewDrafts(h.backend)
	if err := drafts.Load(c.UserContext()); err != nil {
		utils.Log.Warn("Failed to load drafts: %v", err)
	}
	return h.pages.Partial(c, "partials/drafts-list", fiber.Map{"Drafts": drafts})
}

// HandleEditDraft renders the overlay for an existing draft
func (h *DraftsHandler) HandleEditDraft(c *fiber.Ctx) error {
	drafts := controllers.NewDrafts(h.backend)
	if err := drafts.Load(c.UserContext()); err != nil {
		return utils.BadGatewayError(T(c, "error_backend"), err)
	}

	reply, err := drafts.Open(c.Params("id"))
	if errors.Is(err, controllers.ErrDraftNotFound) {
		return utils.NotFoundError(T(c, "error_draft_not_found"), err)
	}
	return h.pages.Partial(c, "partials/reply-modal", fiber.Map{"Reply": reply, "ReturnTo": "/drafts"})
}

// HandleDeleteDraft deletes a draft and returns to the drafts page
func (h *DraftsHandler) HandleDeleteDraft(c *fiber.Ctx) error {
	id := c.Params("id")
	drafts := controllers.NewDrafts(h.backend)

	if err := drafts.Delete(c.UserContext(), h.backend, id); err != nil {
		utils.Log.Error("Failed to delete draft %s: %v", id, err)
		h.pages.SetFlash(c, FlashError, T(c, "flash_draft_delete_failed"))
	} else {
		utils.Log.Info("Deleted draft %s", id)
		h.pages.SetFlash(c, FlashInfo, T(c, "flash_draft_deleted"))
	}

	return c.Redirect("/drafts", fiber.StatusSeeOther)
}
