package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/learnlingo/configs"
	"github.com/anjiri1684/learnlingo/booking"
	"github.com/anjiri1684/learnlingo/catalog"
	"github.com/anjiri1684/learnlingo/database"
	"github.com/anjiri1684/learnlingo/favorites"
	"github.com/anjiri1684/learnlingo/handlers"
	"github.com/anjiri1684/learnlingo/jobs"
	"github.com/anjiri1684/learnlingo/logger"
	"github.com/anjiri1684/learnlingo/notifications"
	"github.com/anjiri1684/learnlingo/routes"
	"github.com/anjiri1684/learnlingo/services"
	"github.com/anjiri1684/learnlingo/websocket"
	"github.com/anjiri1684/learnlingo/workspace"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

var version = "develop"

func main() {
	std := logger.NewStd("LEARNLINGO")
	if err := run(std); err != nil {
		std.Fatalf("🔥 %v", err)
	}
}

func run(std *log.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	host, _ := os.Hostname()
	rollbarLog := logger.NewRollbarLogger(std, logger.RollbarOptions{
		Token:       cfg.RollbarToken,
		Environment: cfg.Env,
		Host:        host,
		Version:     version,
		Enabled:     !cfg.Debug,
	})
	defer rollbarLog.Flush()
	var appLog logger.Logger = rollbarLog

	var (
		store database.Gateway
		users database.UserStore
	)
	if cfg.DemoMode() {
		appLog.Warn("⚠️ DATABASE_URL not set, running on the in-memory store with demo teachers")
		store = database.NewMemory(catalog.Fixtures()...)
		users = database.NewMemoryUsers()
	} else {
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		store = database.NewStore(db)
		users = database.NewGormUsers(db)
	}

	var cache favorites.Cache = favorites.NewMemoryCache()
	if cfg.CacheDir != "" {
		fileCache, err := favorites.NewFileCache(cfg.CacheDir)
		if err != nil {
			return err
		}
		cache = fileCache
	}

	auth := services.NewAuthService(users, cfg.JWTSecret, cfg.JWTExpiration)
	mailer := notifications.NewMailer(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName, appLog)
	bookings := booking.NewFlow(store, mailer, appLog)

	hub := websocket.NewHub(appLog, 256)
	registry := workspace.NewRegistry(auth, store, cache, appLog)
	registry.OnFavoritesChange(hub.PublishFavorites)
	registry.OnSessionChange(hub.PublishSession)

	var uploads *handlers.UploadSigner
	if cfg.CloudinaryURL != "" {
		if uploads, err = handlers.NewUploadSigner(cfg.CloudinaryURL); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go hub.Run(ctx)

	c := cron.New()
	if _, err := c.AddFunc(cfg.ReconcileSchedule, jobs.ReconcileFavorites(registry, appLog, time.Minute)); err != nil {
		return err
	}
	if _, err := c.AddFunc("@hourly", jobs.PruneRevokedTokens(auth, appLog)); err != nil {
		return err
	}
	if _, err := c.AddFunc("@every 10m", jobs.PruneGuestBrowsers(registry, appLog)); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()
	appLog.Info("✅ Cron jobs scheduled successfully.")

	app := routes.NewApp(cfg.AppName, appLog)
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version, " + handlers.BrowseHeader,
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization, " + handlers.BrowseHeader,
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to LearnLingo API",
		})
	})

	h := &handlers.Handler{
		Registry: registry,
		Catalog:  catalog.NewEngine(store, appLog),
		Bookings: bookings,
		Tokens:   auth,
		Hub:      hub,
		Uploads:  uploads,
		Log:      appLog,
	}
	routes.Setup(app, h, auth)

	serverErrors := make(chan error, 1)
	go func() {
		appLog.Info("✅ Server is running on port " + cfg.Port)
		serverErrors <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		appLog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	registry.Reconcile(shutdownCtx)
	bookings.Wait()
	return nil
}
