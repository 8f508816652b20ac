package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenbox/config"
	"zenbox/controllers"
	"zenbox/handlers/api"
	"zenbox/locales"
	"zenbox/middleware"
	"zenbox/models"
	"zenbox/utils"
)

var errBackendDown = errors.New("backend down")

func TestMain(m *testing.M) {
	utils.Log.SetLevel(utils.ERROR)
	if err := utils.InitI18n(locales.FS); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeBackend is an in-memory assistant API
type fakeBackend struct {
	mu sync.Mutex

	emails  []models.Email
	drafts  []models.Draft
	prompts models.Prompts
	reply   string
	answer  string
	ingest  models.IngestResult

	failFetch  bool
	failSave   bool
	failUpload bool
	failQuery  bool

	saved    []models.Draft
	uploads  []string
	ingested int
	deleted  []string
	queries  []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		emails: []models.Email{
			{ID: "e1", Sender: "Sarah Chen", Subject: "Hello", Body: "<p>Quarterly numbers attached</p>", Date: "10:30 AM"},
			{ID: "e2", Sender: "Mark Lee", Subject: "Lunch", Body: "Tomorrow?", Date: "Yesterday", Read: true},
		},
		drafts: []models.Draft{
			{ID: "d-1", EmailReferenceID: "e1", EmailSubject: "Re: Hello", Content: "Thanks Sarah", LastSaved: "09:15 AM"},
		},
		prompts: models.Prompts{Categorization: "tag it", Reply: "be kind", RAG: "answer briefly"},
		reply:   "Thanks for the update.",
		answer:  "You have two emails.",
	}
}

func (f *fakeBackend) FetchEmails(ctx context.Context) ([]models.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFetch {
		return nil, errBackendDown
	}
	return append([]models.Email(nil), f.emails...), nil
}

func (f *fakeBackend) DeleteEmail(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) FetchDrafts(ctx context.Context) ([]models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFetch {
		return nil, errBackendDown
	}
	return append([]models.Draft(nil), f.drafts...), nil
}

func (f *fakeBackend) DeleteDraft(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) SaveDraft(ctx context.Context, draft models.Draft) (models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return models.Draft{}, errBackendDown
	}
	f.saved = append(f.saved, draft)
	return draft, nil
}

func (f *fakeBackend) GenerateReply(ctx context.Context, emailID string) (string, error) {
	return f.reply, nil
}

func (f *fakeBackend) FetchPrompts(ctx context.Context) (models.Prompts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFetch {
		return models.Prompts{}, errBackendDown
	}
	return f.prompts, nil
}

func (f *fakeBackend) UpdatePrompts(ctx context.Context, prompts models.Prompts) (models.Prompts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = prompts
	return prompts, nil
}

func (f *fakeBackend) ResetPrompts(ctx context.Context) (models.Prompts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = models.Prompts{Categorization: "default", Reply: "default", RAG: "default"}
	return f.prompts, nil
}

func (f *fakeBackend) QueryChat(ctx context.Context, query string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.failQuery {
		return "", errBackendDown
	}
	return f.answer, nil
}

func (f *fakeBackend) UploadEmails(ctx context.Context, filename string, data []byte) (models.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload {
		return models.UploadResult{}, errBackendDown
	}
	f.uploads = append(f.uploads, filename)
	return models.UploadResult{Status: "success"}, nil
}

func (f *fakeBackend) TriggerIngest(ctx context.Context) (models.IngestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ingested++
	return f.ingest, nil
}

type testServer struct {
	app     *fiber.App
	pages   *Pages
	backend *fakeBackend
	hub     *api.NotificationHub
	chat    *ChatHandler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Default()
	store := session.New()
	pages := NewPages(store, cfg, []byte("0123456789abcdef0123456789abcdef"))
	pages.now = func() time.Time { return time.Date(2024, 5, 1, 14, 7, 0, 0, time.UTC) }

	backend := newFakeBackend()
	hub := api.NewNotificationHub()
	chats := utils.NewCache[*controllers.Chat](time.Minute)
	t.Cleanup(chats.Close)

	app := fiber.New(fiber.Config{
		Views:        NewEngine(false),
		ViewsLayout:  "layouts/main",
		ErrorHandler: pages.ErrorHandler(),
	})
	app.Use(middleware.LocaleMiddleware())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("csrf", "test-token")
		return c.Next()
	})

	inbox := NewInboxHandler(pages, backend)
	drafts := NewDraftsHandler(pages, backend)
	reply := NewReplyHandler(pages, backend)
	chat := NewChatHandler(pages, backend, hub, chats, time.Hour)
	brain := NewBrainHandler(pages, backend)
	upload := NewUploadHandler(pages, backend, hub, 1<<20)

	app.Get("/", NewLandingHandler(pages).HandleLanding)
	app.Get("/dashboard", inbox.HandleDashboard)
	app.Post("/emails/:id/delete", inbox.HandleDeleteEmail)
	app.Get("/drafts", drafts.HandleDrafts)
	app.Post("/drafts/:id/delete", drafts.HandleDeleteDraft)
	app.Get("/chat", chat.HandleChat)
	app.Get("/brain", brain.HandleBrain)
	app.Post("/brain", brain.HandleSave)
	app.Post("/brain/reset", brain.HandleReset)
	app.Post("/upload", upload.HandleUpload)
	app.Get("/htmx/reply", reply.HandleOpen)
	app.Get("/htmx/reply/generate", reply.HandleGenerate)
	app.Post("/htmx/reply/save", reply.HandleSave)
	app.Get("/htmx/drafts", drafts.HandleDraftsList)
	app.Get("/htmx/drafts/:id/edit", drafts.HandleEditDraft)
	app.Get("/htmx/chat/messages", chat.HandleMessages)
	app.Post("/htmx/chat/messages", chat.HandleSend)
	app.Use(pages.NotFound)

	return &testServer{app: app, pages: pages, backend: backend, hub: hub, chat: chat}
}

func (s *testServer) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func get(target string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func postForm(target string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func partial(req *http.Request) *http.Request {
	req.Header.Set("HX-Request", "true")
	return req
}

func uploadRequest(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("return_to", "/drafts"))
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "session_id" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func TestLandingHasNoTabs(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, get("/"))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Email Assistant")
	assert.Contains(t, body, "Explore App")
	assert.NotContains(t, body, `class="tabs"`)
}

func TestLandingInJapanese(t *testing.T) {
	s := newTestServer(t)

	req := get("/")
	req.Header.Set("Accept-Language", "ja-JP,ja;q=0.9")
	_, body := s.do(t, req)
	assert.Contains(t, body, `lang="ja"`)
	assert.Contains(t, body, "AIメールアシスタント")
}

func TestDashboardListsEmails(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, get("/dashboard"))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Sarah Chen")
	assert.Contains(t, body, "Lunch")
	assert.Contains(t, body, "Select an email to read")
	assert.Contains(t, body, `aria-current="page"`)
	assert.Contains(t, body, "1 unread")
}

func TestDashboardSelection(t *testing.T) {
	s := newTestServer(t)

	_, body := s.do(t, get("/dashboard?email=e1"))
	assert.Contains(t, body, "Quarterly numbers attached")
	assert.Contains(t, body, "/htmx/reply?email=e1")
	assert.NotContains(t, body, "Select an email to read")
}

func TestDashboardDetailFragment(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, partial(get("/dashboard?email=e2")))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Tomorrow?")
	assert.NotContains(t, body, "<html")

	resp, body = s.do(t, partial(get("/dashboard?email=missing")))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Email not found")
}

func TestDashboardBackendDown(t *testing.T) {
	s := newTestServer(t)
	s.backend.failFetch = true

	resp, body := s.do(t, get("/dashboard"))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Emails could not be loaded right now.")
	assert.NotContains(t, body, "Your inbox is empty")
}

func TestDashboardReplyWithoutScript(t *testing.T) {
	s := newTestServer(t)

	_, body := s.do(t, get("/dashboard?email=e1&reply=1"))
	assert.Contains(t, body, "Auto-Reply Draft")
	assert.Contains(t, body, "Thanks for the update.")
	assert.Contains(t, body, `name="email_id" value="e1"`)
}

func TestDeleteEmailFlashesOnNextPage(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, postForm("/emails/e2/delete", url.Values{}))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
	assert.Equal(t, []string{"e2"}, s.backend.deleted)

	_, body := s.do(t, get("/dashboard", sessionCookie(t, resp)))
	assert.Contains(t, body, "Email deleted.")

	// shown once
	_, body = s.do(t, get("/dashboard", sessionCookie(t, resp)))
	assert.NotContains(t, body, "Email deleted.")
}

func TestReplyOverlayLifecycle(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, partial(get("/htmx/reply?email=e1")))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Generating reply...")
	assert.Contains(t, body, "data-generate-url")

	resp, body = s.do(t, partial(get("/htmx/reply/generate?email=e1&subject=Hello")))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Thanks for the update.")
	assert.Contains(t, body, "Re: Hello")

	resp, _ = s.do(t, partial(postForm("/htmx/reply/save", url.Values{
		"mode":          {"reply"},
		"email_id":      {"e1"},
		"email_subject": {"Hello"},
		"content":       {"Sounds good"},
	})))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, EventDraftSaved, resp.Header.Get("X-Zenbox-Event"))

	require.Len(t, s.backend.saved, 1)
	saved := s.backend.saved[0]
	assert.Equal(t, "e1", saved.EmailReferenceID)
	assert.Equal(t, "Re: Hello", saved.EmailSubject)
	assert.Equal(t, "Sounds good", saved.Content)
	assert.Equal(t, "02:07 PM", saved.LastSaved)
}

func TestReplyOpenUnknownEmail(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, partial(get("/htmx/reply?email=nope")))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestReplySaveFailureKeepsOverlay(t *testing.T) {
	s := newTestServer(t)
	s.backend.failSave = true

	resp, body := s.do(t, partial(postForm("/htmx/reply/save", url.Values{
		"mode":          {"draft"},
		"draft_id":      {"d-1"},
		"draft_ref":     {"e1"},
		"draft_subject": {"Re: Hello"},
		"content":       {"Edited"},
	})))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "The draft could not be saved.")
	assert.Contains(t, body, "Edited")
	assert.Contains(t, body, `name="draft_id" value="d-1"`)
}

func TestReplySaveWithoutScriptRedirects(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, postForm("/htmx/reply/save", url.Values{
		"mode":      {"draft"},
		"draft_id":  {"d-1"},
		"draft_ref": {"e1"},
		"content":   {"Edited"},
		"return_to": {"https://evil.example/"},
	}))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/drafts", resp.Header.Get("Location"))
	require.Len(t, s.backend.saved, 1)
	assert.Equal(t, "d-1", s.backend.saved[0].ID)
}

func TestDraftsPage(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, get("/drafts"))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "1 saved draft")
	assert.Contains(t, body, "Thanks Sarah")
	assert.Contains(t, body, "Saved 09:15 AM")

	_, body = s.do(t, get("/drafts?edit=d-1"))
	assert.Contains(t, body, "Edit Draft")
	assert.Contains(t, body, `name="draft_ref" value="e1"`)
}

func TestDraftsListFragment(t *testing.T) {
	s := newTestServer(t)
	s.backend.drafts = nil

	_, body := s.do(t, partial(get("/htmx/drafts")))
	assert.Contains(t, body, "0 saved drafts")
	assert.Contains(t, body, "No drafts yet")
	assert.NotContains(t, body, "<html")
}

func TestEditDraftFragment(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, partial(get("/htmx/drafts/d-1/edit")))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Thanks Sarah")

	resp, _ = s.do(t, partial(get("/htmx/drafts/d-404/edit")))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	s.backend.failFetch = true
	resp, _ = s.do(t, partial(get("/htmx/drafts/d-1/edit")))
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestChatSendAndPoll(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, partial(postForm("/htmx/chat/messages", url.Values{"message": {"How many emails?"}})))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "How many emails?")
	cookie := sessionCookie(t, resp)

	s.chat.Wait()

	_, body = s.do(t, partial(get("/htmx/chat/messages", cookie)))
	assert.Contains(t, body, "You have two emails.")
	assert.Contains(t, body, `data-pending="false"`)
	assert.Equal(t, []string{"How many emails?"}, s.backend.queries)
}

func TestChatFailureShowsErrorReply(t *testing.T) {
	s := newTestServer(t)
	s.backend.failQuery = true

	resp, _ := s.do(t, postForm("/htmx/chat/messages", url.Values{"message": {"hi"}}))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/chat", resp.Header.Get("Location"))

	s.chat.Wait()

	_, body := s.do(t, get("/chat", sessionCookie(t, resp)))
	assert.Contains(t, body, "Sorry, I encountered an error. Please try again.")
}

func TestChatBlankSendIgnored(t *testing.T) {
	s := newTestServer(t)

	_, body := s.do(t, partial(postForm("/htmx/chat/messages", url.Values{"message": {"   "}})))
	s.chat.Wait()
	assert.Empty(t, s.backend.queries)
	assert.Contains(t, body, `data-pending="false"`)
}

func TestChatAnswerPublished(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, postForm("/htmx/chat/messages", url.Values{"message": {"hi"}}))
	cookie := sessionCookie(t, resp)
	_, ch, cancel := s.hub.Subscribe(cookie.Value)
	defer cancel()

	s.chat.Wait()
	s.do(t, partial(postForm("/htmx/chat/messages", url.Values{"message": {"again"}}, cookie)))
	s.chat.Wait()

	select {
	case n := <-ch:
		assert.Equal(t, api.NotifyChatAnswer, n.Type)
	case <-time.After(time.Second):
		t.Fatal("no notification")
	}
}

func TestBrainSaveShowsAck(t *testing.T) {
	s := newTestServer(t)

	_, body := s.do(t, get("/brain"))
	assert.Contains(t, body, "Categorization Prompt")
	assert.Contains(t, body, "be kind")

	resp, _ := s.do(t, postForm("/brain", url.Values{"reply": {"be brief"}}))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, models.Prompts{Categorization: "tag it", Reply: "be brief", RAG: "answer briefly"}, s.backend.prompts)

	_, body = s.do(t, get("/brain", sessionCookie(t, resp)))
	assert.Contains(t, body, "Configuration saved!")
	assert.Contains(t, body, "be brief")
}

func TestBrainAckExpires(t *testing.T) {
	s := newTestServer(t)
	start := s.pages.now()

	resp, _ := s.do(t, postForm("/brain", url.Values{"rag": {"cite sources"}}))
	s.pages.now = func() time.Time { return start.Add(controllers.AckDuration + time.Second) }

	_, body := s.do(t, get("/brain", sessionCookie(t, resp)))
	assert.NotContains(t, body, "Configuration saved!")
}

func TestBrainUnavailable(t *testing.T) {
	s := newTestServer(t)
	s.backend.failFetch = true

	_, body := s.do(t, get("/brain"))
	assert.Contains(t, body, "cannot be edited right now")
	assert.NotContains(t, body, `action="/brain"`)
}

func TestBrainReset(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, postForm("/brain/reset", url.Values{}))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "default", s.backend.prompts.Reply)
}

func TestUploadRejectsInvalidJSON(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, uploadRequest(t, "emails.json", []byte(`{"id":"e1"}`)))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/drafts", resp.Header.Get("Location"))
	assert.Empty(t, s.backend.uploads)
	assert.Zero(t, s.backend.ingested)

	_, body := s.do(t, get("/drafts", sessionCookie(t, resp)))
	assert.Contains(t, body, "That file is not a JSON array of emails.")
}

func TestUploadRejectsOtherExtensions(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, uploadRequest(t, "emails.csv", []byte(`[]`)))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Empty(t, s.backend.uploads)
}

func TestUploadForwardsAndIngests(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, uploadRequest(t, "emails.json", []byte(`[{"id":"e9"},{"id":"e10"}]`)))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, []string{"emails.json"}, s.backend.uploads)
	assert.Equal(t, 1, s.backend.ingested)

	_, body := s.do(t, get("/drafts", sessionCookie(t, resp)))
	assert.Contains(t, body, "Imported 2 emails")
}

func TestUploadNotifiesEveryDashboard(t *testing.T) {
	s := newTestServer(t)
	_, other, cancelOther := s.hub.Subscribe("other-session")
	defer cancelOther()
	_, another, cancelAnother := s.hub.Subscribe("another-session")
	defer cancelAnother()

	resp, _ := s.do(t, uploadRequest(t, "emails.json", []byte(`[{"id":"e9"}]`)))
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	for _, ch := range []<-chan api.Notification{other, another} {
		select {
		case n := <-ch:
			assert.Equal(t, api.NotifyIngestDone, n.Type)
			assert.NotEmpty(t, n.Message)
		case <-time.After(time.Second):
			t.Fatal("no ingest notification")
		}
	}
}

func TestUploadBackendFailure(t *testing.T) {
	s := newTestServer(t)
	s.backend.failUpload = true

	resp, _ := s.do(t, uploadRequest(t, "emails.json", []byte(`[]`)))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Zero(t, s.backend.ingested)
}

func TestNotFoundPage(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, get("/nowhere"))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found")

	resp, body = s.do(t, partial(get("/nowhere")))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Page not found"}`, body)
}

func TestValidateEmailsJSON(t *testing.T) {
	n, err := ValidateEmailsJSON([]byte(` [{"id":"a"}, {"id":"b"}] `))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = ValidateEmailsJSON([]byte(`[]`))
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = ValidateEmailsJSON([]byte(`{"id":"a"}`))
	assert.ErrorIs(t, err, errNotArray)

	_, err = ValidateEmailsJSON([]byte(`[1, 2]`))
	assert.ErrorIs(t, err, errNotObject)

	_, err = ValidateEmailsJSON([]byte(`[{"id":`))
	assert.Error(t, err)

	_, err = ValidateEmailsJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestLocalPath(t *testing.T) {
	assert.Equal(t, "/dashboard?email=e1", localPath("/dashboard?email=e1", "/"))
	assert.Equal(t, "/", localPath("", "/"))
	assert.Equal(t, "/", localPath("https://evil.example/x", "/"))
	assert.Equal(t, "/", localPath("//evil.example/x", "/"))
	assert.Equal(t, "/", localPath(`/\evil.example`, "/"))
	assert.Equal(t, "/", localPath("dashboard", "/"))
}

func TestAvatarAllowList(t *testing.T) {
	h := NewAvatarHandler([]string{"i.pravatar.cc"}, 48, time.Hour, NewAvatarCache())
	t.Cleanup(h.cache.Close)

	assert.True(t, h.Allowed("https://i.pravatar.cc/150?img=1"))
	assert.True(t, h.Allowed("http://I.PRAVATAR.CC/150"))
	assert.False(t, h.Allowed("https://evil.example/a.png"))
	assert.False(t, h.Allowed("https://user@i.pravatar.cc/150"))
	assert.False(t, h.Allowed("ftp://i.pravatar.cc/150"))
	assert.False(t, h.Allowed(""))

	app := fiber.New()
	app.Get("/avatar", h.HandleAvatar)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/avatar?src="+url.QueryEscape("https://evil.example/a.png"), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, AvatarFallback, resp.Header.Get("Location"))
}

func TestAvatarURL(t *testing.T) {
	assert.Equal(t, "", AvatarURL(""))
	assert.Equal(t, "/avatar?src=https%3A%2F%2Fi.pravatar.cc%2F150%3Fimg%3D1", AvatarURL("https://i.pravatar.cc/150?img=1"))
}
