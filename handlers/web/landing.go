package web

import (
	"github.com/gofiber/fiber/v2"
)

// Feature is one card of the landing page
type Feature struct {
	Icon    string
	TitleID string
	TextID  string
}

var landingFeatures = []Feature{
	{Icon: "✉️", TitleID: "feature_email_title", TextID: "feature_email_text"},
	{Icon: "⚡", TitleID: "feature_replies_title", TextID: "feature_replies_text"},
	{Icon: "🧠", TitleID: "feature_brain_title", TextID: "feature_brain_text"},
	{Icon: "💬", TitleID: "feature_chat_title", TextID: "feature_chat_text"},
	{Icon: "📝", TitleID: "feature_drafts_title", TextID: "feature_drafts_text"},
	{Icon: "🗄️", TitleID: "feature_import_title", TextID: "feature_import_text"},
}

var landingStats = []string{"stat_faster", "stat_security", "stat_trained"}

type LandingHandler struct {
	pages *Pages
}

func NewLandingHandler(pages *Pages) *LandingHandler {
	return &LandingHandler{pages: pages}
}

func (h *LandingHandler) HandleLanding(c *fiber.Ctx) error {
	return h.pages.Render(c, "landing", "page_landing", fiber.Map{
		"Features": landingFeatures,
		"Stats":    landingStats,
	})
}
