package middleware

import (
	"strings"
	"time"

	"zenbox/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"
)

var supportedTags = []language.Tag{language.English, language.Japanese}

var langMatcher = language.NewMatcher(supportedTags)

// LocaleMiddleware picks the request language: ?lang= (remembered in a
// cookie), then the lang cookie, then Accept-Language.
func LocaleMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := ""

		if q := c.Query("lang"); utils.IsSupportedLanguage(q) {
			lang = q
			c.Cookie(&fiber.Cookie{
				Name:     "lang",
				Value:    lang,
				Expires:  time.Now().Add(365 * 24 * time.Hour),
				HTTPOnly: true,
				SameSite: "Lax",
			})
		}

		if lang == "" {
			if cookie := c.Cookies("lang"); utils.IsSupportedLanguage(cookie) {
				lang = cookie
			}
		}

		if lang == "" {
			lang = MatchAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
		}

		c.Locals("localizer", utils.GetLocalizer(lang))
		c.Locals("lang", lang)

		utils.Log.Debug("Locale detected: %s for path: %s", lang, c.Path())

		return c.Next()
	}
}

// MatchAcceptLanguage maps an Accept-Language header to a supported
// language, English when nothing matches
func MatchAcceptLanguage(header string) string {
	if strings.TrimSpace(header) == "" {
		return "en"
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, idx, conf := langMatcher.Match(tags...)
	if conf == language.No {
		return "en"
	}
	base, _ := supportedTags[idx].Base()
	return base.String()
}
