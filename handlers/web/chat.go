package web

import (
	"context"
	"errors"
	"sync"
	"time"

	"zenbox/controllers"
	"zenbox/handlers/api"
	"zenbox/utils"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler serves ZenChat. Transcripts live per session in memory; the
// answer to a question is fetched in the background and announced on the
// session's notification stream.
type ChatHandler struct {
	pages   *Pages
	backend Backend
	hub     *api.NotificationHub
	chats   *utils.Cache[*controllers.Chat]
	ttl     time.Duration

	wg sync.WaitGroup
}

func NewChatHandler(pages *Pages, backend Backend, hub *api.NotificationHub, chats *utils.Cache[*controllers.Chat], ttl time.Duration) *ChatHandler {
	return &ChatHandler{
		pages:   pages,
		backend: backend,
		hub:     hub,
		chats:   chats,
		ttl:     ttl,
	}
}

func (h *ChatHandler) transcript(c *fiber.Ctx) (*controllers.Chat, string, error) {
	sessionID, err := h.pages.SessionID(c)
	if err != nil {
		return nil, "", utils.InternalServerError(T(c, "error_session"), err)
	}
	return h.chats.GetOrCreate(sessionID, h.ttl, controllers.NewChat), sessionID, nil
}

// HandleChat renders the chat page
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	chat, _, err := h.transcript(c)
	if err != nil {
		return err
	}
	return h.pages.Render(c, "chat", "page_chat", fiber.Map{
		"Messages": chat.Messages(),
		"Pending":  chat.Pending(),
	})
}

// HandleMessages renders the transcript fragment the page polls
func (h *ChatHandler) HandleMessages(c *fiber.Ctx) error {
	chat, _, err := h.transcript(c)
	if err != nil {
		return err
	}
	return h.pages.Partial(c, "partials/chat-transcript", fiber.Map{
		"Messages": chat.Messages(),
		"Pending":  chat.Pending(),
	})
}

// HandleSend appends the question and starts answering it. Blank input
// and sends while an answer is pending change nothing.
func (h *ChatHandler) HandleSend(c *fiber.Ctx) error {
	chat, sessionID, err := h.transcript(c)
	if err != nil {
		return err
	}

	placeholder, query, err := chat.Begin(c.FormValue("message"))
	switch {
	case errors.Is(err, controllers.ErrEmptyMessage), errors.Is(err, controllers.ErrSendInFlight):
		utils.Log.Debug("Chat send ignored: %v", err)
	case err != nil:
		return err
	default:
		h.wg.Add(1)
		go h.answer(sessionID, chat, placeholder, query)
	}

	if api.IsPartialRequest(c) {
		return h.HandleMessages(c)
	}
	return c.Redirect("/chat", fiber.StatusSeeOther)
}

func (h *ChatHandler) answer(sessionID string, chat *controllers.Chat, placeholder, query string) {
	defer h.wg.Done()

	log := utils.Log.WithField("session", shortSession(sessionID))
	answer, err := h.backend.QueryChat(context.Background(), query)
	if err != nil {
		log.Warn("Chat query failed: %v", err)
		chat.Fail(placeholder)
	} else {
		chat.Resolve(placeholder, answer)
	}

	h.hub.Publish(sessionID, api.Notification{
		Type:    api.NotifyChatAnswer,
		Message: "answer ready",
		Data:    map[string]interface{}{"placeholder": placeholder, "failed": err != nil},
	})
}

// Wait blocks until every outstanding answer has been settled
func (h *ChatHandler) Wait() {
	h.wg.Wait()
}

func shortSession(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
