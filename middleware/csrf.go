package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"

	"zenbox/utils"

	"github.com/gofiber/fiber/v2"
)

// CSRFConfig holds CSRF protection configuration
type CSRFConfig struct {
	TokenLength  int
	CookieName   string
	HeaderName   string
	FormField    string
	ContextKey   string
	CookieMaxAge int
	CookieSecure bool
	Skipper      func(*fiber.Ctx) bool
}

// DefaultCSRFConfig returns default CSRF configuration
func DefaultCSRFConfig() CSRFConfig {
	return CSRFConfig{
		TokenLength:  32,
		CookieName:   "csrf_token",
		HeaderName:   "X-CSRF-Token",
		FormField:    "_csrf",
		ContextKey:   "csrf",
		CookieMaxAge: 3600 * 24,
	}
}

// CSRFProtection implements the double-submit cookie pattern. Every
// request gets a token in Locals (issued on first visit); unsafe methods
// must echo it in the header or the _csrf form field.
func CSRFProtection(config ...CSRFConfig) fiber.Handler {
	cfg := DefaultCSRFConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(c *fiber.Ctx) error {
		if cfg.Skipper != nil && cfg.Skipper(c) {
			return c.Next()
		}

		cookieToken := c.Cookies(cfg.CookieName)
		if cookieToken == "" {
			cookieToken = issueToken(c, cfg)
		}
		c.Locals(cfg.ContextKey, cookieToken)

		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		sent := c.Get(cfg.HeaderName)
		if sent == "" {
			sent = c.FormValue(cfg.FormField)
		}

		if sent == "" {
			return utils.NewAppError(fiber.StatusForbidden, "CSRF token missing", nil)
		}
		if !tokensEqual(cookieToken, sent) {
			return utils.NewAppError(fiber.StatusForbidden, "CSRF token mismatch", nil)
		}

		return c.Next()
	}
}

func issueToken(c *fiber.Ctx, cfg CSRFConfig) string {
	token := generateToken(cfg.TokenLength)
	c.Cookie(&fiber.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		MaxAge:   cfg.CookieMaxAge,
		HTTPOnly: true,
		SameSite: "Strict",
		Secure:   cfg.CookieSecure,
	})
	return token
}

// generateToken generates a random token
func generateToken(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(b)
}

// tokensEqual performs constant-time comparison of tokens
func tokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
