package hosting

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"pressplay/src/features/config"
	"pressplay/src/features/history"
	"pressplay/src/features/player"
	"pressplay/src/features/store"
)

const recentPlaybacks = 20

// Handler serves the status endpoints.
type Handler struct {
	store   *store.Service
	player  *player.Service
	history *history.Service
	cfg     *config.Manager
}

// NewHandler creates a new handler for the status endpoints.
func NewHandler(storeService *store.Service, playerService *player.Service, hist *history.Service, cfg *config.Manager) *Handler {
	return &Handler{store: storeService, player: playerService, history: hist, cfg: cfg}
}

// StatusJSON reports the loop's current state as JSON.
func (h *Handler) StatusJSON(c *fiber.Ctx) error {
	count, err := h.store.Count()
	if err != nil {
		slog.Error("Failed to count store files", "error", err)
	}

	status := fiber.Map{
		"state":       h.player.State(),
		"current":     h.player.Current(),
		"session":     h.player.SessionID(),
		"store_files": count,
		"media_path":  h.cfg.Get().MediaPath,
	}
	if h.history != nil {
		if stats, err := h.history.Stats(c.Context()); err == nil {
			status["playbacks"] = stats.Playbacks
			status["imports"] = stats.Imports
			status["files_copied"] = stats.FilesCopied
		}
	}
	return c.JSON(status)
}

// StatusPage renders the HTML status page.
func (h *Handler) StatusPage(c *fiber.Ctx) error {
	count, _ := h.store.Count()

	data := fiber.Map{
		"State":      h.player.State(),
		"Current":    h.player.Current(),
		"StoreFiles": count,
		"MediaPath":  h.cfg.Get().MediaPath,
	}
	if h.history != nil {
		if playbacks, err := h.history.RecentPlaybacks(c.Context(), recentPlaybacks); err == nil {
			data["Playbacks"] = playbacks
		}
		if stats, err := h.history.Stats(c.Context()); err == nil {
			data["Stats"] = stats
		}
	}
	return c.Render("status", data)
}
