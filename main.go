package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zenbox/assets"
	"zenbox/config"
	"zenbox/controllers"
	"zenbox/handlers/api"
	"zenbox/handlers/web"
	"zenbox/locales"
	"zenbox/middleware"
	"zenbox/storage"
	"zenbox/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/websocket/v2"
)

// chatTTL is how long an idle chat transcript is kept in memory
const chatTTL = 2 * time.Hour

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	flag.Parse()

	utils.Log.Info("Initializing ZenBox...")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		utils.Log.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	utils.Log.SetLevel(utils.ParseLogLevel(cfg.Server.LogLevel))

	if err := utils.InitI18n(locales.FS); err != nil {
		utils.Log.Error("Failed to initialize i18n: %v", err)
	}

	secret := []byte(cfg.Stream.Secret)
	if len(secret) == 0 {
		utils.Log.Warn("stream.secret is not set; generating one, sessions will not survive a restart")
		if secret, err = utils.RandomSecret(32); err != nil {
			utils.Log.Error("Failed to generate secret: %v", err)
			os.Exit(1)
		}
	}
	streamKey, err := utils.DeriveKey(secret, utils.PurposeStreamTicket, 32)
	if err != nil {
		utils.Log.Error("Failed to derive stream key: %v", err)
		os.Exit(1)
	}
	sealKey, err := utils.DeriveKey(secret, utils.PurposeSessionSeal, 32)
	if err != nil {
		utils.Log.Error("Failed to derive session key: %v", err)
		os.Exit(1)
	}

	db, err := storage.InitDB(cfg.Server.DataDir)
	if err != nil {
		utils.Log.Error("Failed to open database: %v", err)
		os.Exit(1)
	}
	sessions, err := storage.NewSessionStore(db, sealKey, 10*time.Minute)
	if err != nil {
		utils.Log.Error("Failed to initialize session storage: %v", err)
		os.Exit(1)
	}

	store := session.New(session.Config{
		Storage:        sessions,
		Expiration:     cfg.SessionExpiration(),
		CookieSecure:   cfg.Session.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})

	backend := api.NewClient(cfg.API.BaseURL, cfg.APITimeout())
	hub := api.NewNotificationHub()
	pages := web.NewPages(store, cfg, streamKey)

	chats := utils.NewCache[*controllers.Chat](5 * time.Minute)
	avatars := web.NewAvatarCache()

	app := fiber.New(fiber.Config{
		Views:        web.NewEngine(cfg.Server.ReloadTemplates),
		ViewsLayout:  "layouts/main",
		ErrorHandler: pages.ErrorHandler(),
		BodyLimit:    cfg.Upload.MaxBytes + 64<<10,
		AppName:      "ZenBox",
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' data:; connect-src 'self' ws: wss:",
	}))

	app.Use(middleware.LocaleMiddleware())

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimitWindow())
	app.Use(limiter.Handler())

	app.Use("/assets", filesystem.New(filesystem.Config{
		Root:   http.FS(assets.FS),
		MaxAge: int((24 * time.Hour).Seconds()),
	}))

	csrf := middleware.DefaultCSRFConfig()
	csrf.CookieSecure = cfg.Session.CookieSecure
	csrf.Skipper = func(c *fiber.Ctx) bool {
		path := c.Path()
		return path == "/ws" || path == "/health"
	}
	app.Use(middleware.CSRFProtection(csrf))

	landingHandler := web.NewLandingHandler(pages)
	inboxHandler := web.NewInboxHandler(pages, backend)
	draftsHandler := web.NewDraftsHandler(pages, backend)
	replyHandler := web.NewReplyHandler(pages, backend)
	chatHandler := web.NewChatHandler(pages, backend, hub, chats, chatTTL)
	brainHandler := web.NewBrainHandler(pages, backend)
	uploadHandler := web.NewUploadHandler(pages, backend, hub, int64(cfg.Upload.MaxBytes))
	avatarHandler := web.NewAvatarHandler(cfg.Avatars.AllowedHosts, cfg.Avatars.Size, cfg.AvatarCacheTTL(), avatars)
	i18nHandler := &api.I18nHandler{}

	// Pages
	app.Get("/", landingHandler.HandleLanding)
	app.Get("/dashboard", inboxHandler.HandleDashboard)
	app.Post("/emails/:id/delete", inboxHandler.HandleDeleteEmail)
	app.Get("/drafts", draftsHandler.HandleDrafts)
	app.Post("/drafts/:id/delete", draftsHandler.HandleDeleteDraft)
	app.Get("/chat", chatHandler.HandleChat)
	app.Get("/brain", brainHandler.HandleBrain)
	app.Post("/brain", brainHandler.HandleSave)
	app.Post("/brain/reset", brainHandler.HandleReset)
	app.Post("/upload", uploadHandler.HandleUpload)
	app.Get("/avatar", avatarHandler.HandleAvatar)

	// HTMX-style fragments requested by the page script
	htmx := app.Group("/htmx")
	{
		htmx.Get("/reply", replyHandler.HandleOpen)
		htmx.Get("/reply/generate", replyHandler.HandleGenerate)
		htmx.Post("/reply/save", replyHandler.HandleSave)
		htmx.Get("/drafts", draftsHandler.HandleDraftsList)
		htmx.Get("/drafts/:id/edit", draftsHandler.HandleEditDraft)
		htmx.Get("/chat/messages", chatHandler.HandleMessages)
		htmx.Post("/chat/messages", chatHandler.HandleSend)
	}

	apiRoutes := app.Group("/api")
	{
		apiRoutes.Get("/i18n/:lang", i18nHandler.GetTranslations)
	}

	app.Get("/ws", hub.Upgrade(streamKey), websocket.New(hub.HandleWebSocket))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	app.Use(pages.NotFound)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		utils.Log.Info("Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			utils.Log.Warn("Shutdown: %v", err)
		}
	}()

	utils.Log.Info("Starting server on port %d (backend %s)...", cfg.Server.Port, backend.BaseURL())
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		utils.Log.Error("Error starting server: %v", err)
	}

	chatHandler.Wait()
	chats.Close()
	avatars.Close()
	limiter.Stop()
	if err := sessions.Close(); err != nil {
		utils.Log.Warn("Failed to close session storage: %v", err)
	}
}
