package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"

	"rsvp.link/configs"
	"rsvp.link/configs/configsdatabase"
	"rsvp.link/configs/configslog"
	admin_handlers "rsvp.link/handlers/admin"
	api_handlers "rsvp.link/handlers/api"
	auth_handlers "rsvp.link/handlers/auth"
	dashboard_handlers "rsvp.link/handlers/dashboard"
	invite_handlers "rsvp.link/handlers/invite"
	"rsvp.link/pkg/sessiontoken"
	"rsvp.link/repositories"
	"rsvp.link/routes"
	"rsvp.link/services"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("config load failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	configslog.InitLogger(cfg.IsProduction())
	defer configslog.SyncLogger()

	db, err := configsdatabase.Connect(cfg)
	if err != nil {
		configslog.SLog.Fatalf("database connection failed: %v", err)
	}
	defer configsdatabase.Close(db)

	// Repositories share the one injected handle.
	userRepo := repositories.NewUserRepository(db)
	invitationRepo := repositories.NewInvitationRepository(db)
	styleRepo := repositories.NewStyleRepository(db)
	configRepo := repositories.NewSystemConfigRepository(db)
	logRepo := repositories.NewNotificationLogRepository(db)

	notificationService := services.NewNotificationService(configRepo, logRepo)
	invitationService := services.NewInvitationService(db, invitationRepo, styleRepo, userRepo, configRepo, notificationService)
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo)
	styleService := services.NewStyleService(styleRepo)
	configService := services.NewConfigService(configRepo)

	codec := sessiontoken.NewCodec(cfg.SessionSecret)

	engine := html.New("./views", ".html")
	app := fiber.New(fiber.Config{
		Views:       engine,
		AppName:     "rsvp.link",
		ProxyHeader: fiber.HeaderXForwardedFor,
	})

	routes.SetupRoutes(app, codec, routes.Handlers{
		Auth:      auth_handlers.NewAuthHandler(authService, codec, cfg.IsProduction()),
		Invite:    invite_handlers.NewInviteHandler(invitationService, configService),
		QR:        api_handlers.NewQRHandler(invitationService, cfg.BaseURL),
		Dashboard: dashboard_handlers.NewDashboardHandler(invitationService, styleService),
		Admin:     admin_handlers.NewAdminHandler(userService, styleService, configService, invitationService, logRepo),
	})

	// Graceful shutdown: stop accepting, drain, then close the DB via defers.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		configslog.SLog.Info("shutdown signal received")
		if err := app.Shutdown(); err != nil {
			configslog.SLog.Errorf("server shutdown failed: %v", err)
		}
	}()

	configslog.SLog.Infof("listening on %s", cfg.ListenAddr)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		configslog.SLog.Fatalf("server stopped: %v", err)
	}
	configslog.SLog.Info("server exited cleanly")
}
