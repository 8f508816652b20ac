package api

import (
	"zenbox/utils"

	"github.com/gofiber/fiber/v2"
)

// clientMessageIDs are the strings the page script needs
var clientMessageIDs = []string{
	"chat_thinking",
	"chat_error",
	"reply_generating",
	"reply_saving",
	"upload_choose_file",
	"upload_in_progress",
	"error_network",
	"confirm_delete_email",
	"confirm_delete_draft",
	"confirm_reset_prompts",
}

// I18nHandler handles i18n-related requests
type I18nHandler struct{}

// GetTranslations returns translations for the client-side script
func (h *I18nHandler) GetTranslations(c *fiber.Ctx) error {
	lang := c.Params("lang")
	if !utils.IsSupportedLanguage(lang) {
		lang = "en"
	}

	localizer := utils.GetLocalizer(lang)

	translations := make(map[string]string, len(clientMessageIDs))
	for _, id := range clientMessageIDs {
		translations[id] = utils.T(localizer, id)
	}

	return c.JSON(translations)
}
