package hosting

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pressplay/src/features/config"
	"pressplay/src/features/history"
	"pressplay/src/features/player"
	"pressplay/src/features/store"
)

// Server is the read-only status server. The kiosk has no control surface;
// this exists so an operator can check on the box without walking up to it.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server. hist may be nil when the ledger is
// disabled.
func NewServer(cfg *config.Manager, storeService *store.Service, playerService *player.Service, hist *history.Service) *Server {
	engine := html.New("./views", ".html")
	engine.Debug(cfg.Get().Logger.Level == "debug")
	engine.AddFunc("timefmt", func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04:05")
	})

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
		AppName:               "Pressplay",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	app.Use(LogAllRequestsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handler := NewHandler(storeService, playerService, hist, cfg)
	app.Get("/", handler.StatusPage)
	app.Get("/status", handler.StatusJSON)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
