package web

import (
	"zenbox/controllers"
	"zenbox/models"
	"zenbox/utils"

	"github.com/gofiber/fiber/v2"
)

type BrainHandler struct {
	pages   *Pages
	backend Backend
}

func NewBrainHandler(pages *Pages, backend Backend) *BrainHandler {
	return &BrainHandler{pages: pages, backend: backend}
}

// HandleBrain renders the prompt editor. Without loaded prompts there is
// nothing to edit and only a notice is shown.
func (h *BrainHandler) HandleBrain(c *fiber.Ctx) error {
	brain := controllers.NewBrain(h.backend)
	if err := brain.Load(c.UserContext()); err != nil {
		utils.Log.Warn("Failed to load prompts: %v", err)
	}

	return h.pages.Render(c, "brain", "page_brain", fiber.Map{
		"Brain":    brain,
		"Sections": brain.Sections(),
	})
}

// HandleSave applies the posted sections over the current configuration
// and saves all three back
func (h *BrainHandler) HandleSave(c *fiber.Ctx) error {
	ctx := c.UserContext()
	brain := controllers.NewBrain(h.backend)

	if err := brain.Load(ctx); err != nil {
		utils.Log.Error("Failed to load prompts before save: %v", err)
		h.pages.SetFlash(c, FlashError, T(c, "flash_prompts_save_failed"))
		return c.Redirect("/brain", fiber.StatusSeeOther)
	}

	args := c.Request().PostArgs()
	for _, section := range models.PromptSections {
		if !args.Has(section.ID) {
			continue
		}
		if err := brain.Edit(section.ID, string(args.Peek(section.ID))); err != nil {
			return utils.BadRequestError(T(c, "error_bad_request"), err)
		}
	}

	if err := brain.Save(ctx, h.pages.now()); err != nil {
		utils.Log.Error("Failed to save prompts: %v", err)
		h.pages.SetFlash(c, FlashError, T(c, "flash_prompts_save_failed"))
		return c.Redirect("/brain", fiber.StatusSeeOther)
	}

	utils.Log.Info("Prompts saved")
	h.pages.SetAck(c, controllers.Ack{Message: T(c, "ack_saved"), Until: brain.Ack.Until})
	return c.Redirect("/brain", fiber.StatusSeeOther)
}

// HandleReset restores the backend's default prompts
func (h *BrainHandler) HandleReset(c *fiber.Ctx) error {
	brain := controllers.NewBrain(h.backend)
	if err := brain.Reset(c.UserContext(), h.pages.now()); err != nil {
		utils.Log.Error("Failed to reset prompts: %v", err)
		h.pages.SetFlash(c, FlashError, T(c, "flash_prompts_reset_failed"))
		return c.Redirect("/brain", fiber.StatusSeeOther)
	}

	utils.Log.Info("Prompts reset to defaults")
	h.pages.SetAck(c, controllers.Ack{Message: T(c, "ack_reset"), Until: brain.Ack.Until})
	return c.Redirect("/brain", fiber.StatusSeeOther)
}
