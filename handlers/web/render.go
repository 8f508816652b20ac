package web

import (
	"context"
	"net/url"
	"strings"
	"time"

	"zenbox/config"
	"zenbox/controllers"
	"zenbox/handlers/api"
	"zenbox/models"
	"zenbox/nav"
	"zenbox/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// Backend is the assistant API surface the pages use. *api.Client
// implements it.
type Backend interface {
	controllers.EmailSource
	controllers.EmailRemover
	controllers.DraftSource
	controllers.DraftRemover
	controllers.DraftStore
	controllers.ReplyGenerator
	controllers.PromptStore
	controllers.ChatQuerier
	UploadEmails(ctx context.Context, filename string, data []byte) (models.UploadResult, error)
	TriggerIngest(ctx context.Context) (models.IngestResult, error)
}

var _ Backend = (*api.Client)(nil)

// Flash kinds
const (
	FlashInfo  = "info"
	FlashError = "error"
)

// Flash is a one-shot notice carried across a redirect
type Flash struct {
	Kind    string
	Message string
}

// Pages holds what every page render needs: the session store, config and
// the key stream tickets are signed with.
type Pages struct {
	store     *session.Store
	config    *config.Config
	streamKey []byte
	now       func() time.Time
}

func NewPages(store *session.Store, cfg *config.Config, streamKey []byte) *Pages {
	return &Pages{
		store:     store,
		config:    cfg,
		streamKey: streamKey,
		now:       time.Now,
	}
}

// Localizer returns the request localizer set by the locale middleware
func Localizer(c *fiber.Ctx) *i18n.Localizer {
	if l, ok := c.Locals("localizer").(*i18n.Localizer); ok {
		return l
	}
	return utils.Localizer
}

func lang(c *fiber.Ctx) string {
	if l, ok := c.Locals("lang").(string); ok && l != "" {
		return l
	}
	return "en"
}

// T translates a message id for the request
func T(c *fiber.Ctx, messageID string) string {
	return utils.T(Localizer(c), messageID)
}

// SessionID returns the browser session id, persisting a fresh session so
// the cookie is issued. The session must not be touched after Save.
func (p *Pages) SessionID(c *fiber.Ctx) (string, error) {
	sess, err := p.store.Get(c)
	if err != nil {
		return "", err
	}
	id := sess.ID()
	if sess.Fresh() {
		sess.Set("started", p.now().Unix())
		if err := sess.Save(); err != nil {
			return "", err
		}
	}
	return id, nil
}

// SetFlash stores a notice for the next page render
func (p *Pages) SetFlash(c *fiber.Ctx, kind, message string) {
	sess, err := p.store.Get(c)
	if err != nil {
		utils.Log.Warn("Failed to load session for flash: %v", err)
		return
	}
	sess.Set("flash_kind", kind)
	sess.Set("flash_msg", message)
	if err := sess.Save(); err != nil {
		utils.Log.Warn("Failed to save flash: %v", err)
	}
}

// SetAck stores a transient acknowledgement shown until its deadline
func (p *Pages) SetAck(c *fiber.Ctx, ack controllers.Ack) {
	sess, err := p.store.Get(c)
	if err != nil {
		return
	}
	sess.Set("ack_msg", ack.Message)
	sess.Set("ack_until", ack.Until.UnixMilli())
	if err := sess.Save(); err != nil {
		utils.Log.Warn("Failed to save acknowledgement: %v", err)
	}
}

// Render renders a full page in the main layout. extra is merged over the
// shell data (navigation, flash, CSRF token, stream ticket).
func (p *Pages) Render(c *fiber.Ctx, name, titleID string, extra fiber.Map) error {
	data := p.shell(c, titleID)
	for k, v := range extra {
		data[k] = v
	}
	return c.Render(name, data)
}

// Partial renders a fragment without the layout
func (p *Pages) Partial(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Localizer"] = Localizer(c)
	data["CSRFToken"] = c.Locals("csrf")
	return c.Render(name, data, "")
}

func (p *Pages) shell(c *fiber.Ctx, titleID string) fiber.Map {
	localizer := Localizer(c)
	path := c.Path()

	data := fiber.Map{
		"Title":     utils.T(localizer, titleID),
		"Lang":      lang(c),
		"Localizer": localizer,
		"CSRFToken": c.Locals("csrf"),
		"ShowTabs":  nav.ShowTabs(path),
		"NavItems": nav.Items(path, func(id string) string {
			return utils.T(localizer, id)
		}),
		"Path": path,
	}

	sess, err := p.store.Get(c)
	if err != nil {
		utils.Log.Warn("Failed to load session: %v", err)
		return data
	}

	dirty := sess.Fresh()
	if sess.Fresh() {
		sess.Set("started", p.now().Unix())
	}
	if msg, ok := sess.Get("flash_msg").(string); ok && msg != "" {
		kind, _ := sess.Get("flash_kind").(string)
		data["Flash"] = Flash{Kind: kind, Message: msg}
		sess.Delete("flash_msg")
		sess.Delete("flash_kind")
		dirty = true
	}
	if msg, ok := sess.Get("ack_msg").(string); ok && msg != "" {
		until, _ := sess.Get("ack_until").(int64)
		ack := controllers.Ack{Message: msg, Until: time.UnixMilli(until)}
		now := p.now()
		if ack.Visible(now) {
			data["Ack"] = ack
			data["AckRemainingMs"] = ack.Until.Sub(now).Milliseconds()
		}
		sess.Delete("ack_msg")
		sess.Delete("ack_until")
		dirty = true
	}

	ticket, err := api.IssueStreamTicket(sess.ID(), p.streamKey, p.config.TicketTTL(), p.now())
	if err != nil {
		utils.Log.Warn("Failed to issue stream ticket: %v", err)
	} else {
		data["StreamTicket"] = ticket
	}

	if dirty {
		if err := sess.Save(); err != nil {
			utils.Log.Warn("Failed to save session: %v", err)
		}
	}
	return data
}

// backTo redirects to a local path taken from the form, or fallback.
// Absolute and protocol-relative URLs are refused.
func backTo(c *fiber.Ctx, fallback string) error {
	return c.Redirect(localPath(c.FormValue("return_to"), fallback), fiber.StatusSeeOther)
}

func localPath(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return u.RequestURI()
}
