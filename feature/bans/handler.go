package bans

import (
	"errors"
	"time"

	"banledger/core/logger"
	"banledger/feature/bans/model"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the ban ledger.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the ban ledger routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	bans := app.Group("/bans")
	bans.Get("/current", h.HandleCurrentBans)
	bans.Get("/offline", h.HandleOfflineBans)
	bans.Post("/offline", h.HandleAddOfflineBan)
	bans.Delete("/offline/:id", h.HandleRemoveOfflineBan)
	bans.Get("/history", h.HandleHistoryRange)
	bans.Get("/history/:id", h.HandleHistory)
	bans.Get("/search", h.HandleSearch)
	bans.Get("/:id/banline", h.HandleBanLine)
	bans.Get("/:id/timeline", h.HandleTimeline)
	bans.Post("/sync", h.HandleSync)
	bans.Post("/backup", h.HandleBackup)

	mentions := app.Group("/mentions")
	mentions.Post("/", h.HandleRecordMentions)
	mentions.Get("/:id", h.HandleFindMentions)
}

// HandleCurrentBans returns the active-ban set.
func (h *Handler) HandleCurrentBans(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	bans, err := h.service.Store().CurrentBans()
	if err != nil {
		l.Error("Failed to read current bans", zap.Error(err))
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"bans": bans, "count": len(bans)})
}

// HandleOfflineBans returns the staged offline bans.
func (h *Handler) HandleOfflineBans(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	bans, err := h.service.Store().OfflineBans()
	if err != nil {
		l.Error("Failed to read offline bans", zap.Error(err))
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"bans": bans, "count": len(bans)})
}

type offlineBanRequest struct {
	ID              string `json:"id"`
	DurationSeconds int64  `json:"duration_seconds"`
	PlayerName      string `json:"player_name"`
	Reason          string `json:"reason"`
}

// HandleAddOfflineBan stages an offline ban. Pass ?force=true to replace
// an existing one.
func (h *Handler) HandleAddOfflineBan(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req offlineBanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	id, err := model.ParseSteamID(req.ID)
	if err != nil {
		return badRequest(c, err)
	}

	now := time.Now().UTC()
	ban := model.OfflineBan{
		ID:          id,
		EnactedTime: &now,
		PlayerName:  req.PlayerName,
		Reason:      req.Reason,
	}
	if req.DurationSeconds > 0 {
		d := time.Duration(req.DurationSeconds) * time.Second
		ban.Duration = &d
	}

	written, err := h.service.Store().AddOfflineBan(ban, c.QueryBool("force"))
	if err != nil {
		l.Error("Failed to stage offline ban", zap.Error(err))
		return internalError(c, err)
	}
	if !written {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "offline ban already staged for this player, use force to replace it",
		})
	}
	l.Info("Staged offline ban", zap.String("player", id.String()))
	return c.Status(fiber.StatusCreated).JSON(ban)
}

// HandleRemoveOfflineBan deletes a staged offline ban.
func (h *Handler) HandleRemoveOfflineBan(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := model.ParseSteamID(c.Params("id"))
	if err != nil {
		return badRequest(c, err)
	}

	deleted, err := h.service.Store().RemoveOfflineBan(id)
	if err != nil {
		l.Error("Failed to remove offline ban", zap.Error(err))
		return internalError(c, err)
	}
	if !deleted {
		return notFound(c, "no offline ban staged for this player")
	}
	return c.JSON(fiber.Map{"removed": id.S64()})
}

// HandleHistory returns a player's full ledger history.
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := model.ParseSteamID(c.Params("id"))
	if err != nil {
		return badRequest(c, err)
	}

	entries, err := h.service.Store().History(id)
	if err != nil {
		l.Error("Failed to read ban history", zap.Error(err))
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}

// HandleHistoryRange returns ledger entries in [from, to), both RFC 3339.
func (h *Handler) HandleHistoryRange(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return badRequest(c, errors.New("invalid or missing from parameter"))
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return badRequest(c, errors.New("invalid or missing to parameter"))
	}

	entries, err := h.service.Store().HistoryRange(from, to)
	if err != nil {
		l.Error("Failed to read ban history range", zap.Error(err))
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}

// HandleSearch runs a full-text query over ban names and reasons. Pass
// the returned cursor as ?after= for the next page.
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	query := c.Query("q")
	if query == "" {
		return badRequest(c, errors.New("missing q parameter"))
	}

	page, err := h.service.Search(query, c.Query("after"))
	if err != nil {
		l.Error("Ban search failed", zap.String("query", query), zap.Error(err))
		return internalError(c, err)
	}
	return c.JSON(page)
}

// HandleBanLine renders a paste-able ban file line for a player.
func (h *Handler) HandleBanLine(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := model.ParseSteamID(c.Params("id"))
	if err != nil {
		return badRequest(c, err)
	}

	line, err := h.service.BanLine(c.Context(), id)
	if errors.Is(err, ErrNoBan) {
		return notFound(c, err.Error())
	}
	if err != nil {
		l.Error("Failed to render ban line", zap.Error(err))
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"line": line})
}

// HandleTimeline returns a player's merged event timeline.
func (h *Handler) HandleTimeline(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := model.ParseSteamID(c.Params("id"))
	if err != nil {
		return badRequest(c, err)
	}

	events, err := h.service.Timeline(id)
	if err != nil {
		l.Error("Failed to build timeline", zap.Error(err))
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"events": events, "count": len(events)})
}

// HandleSync triggers a snapshot sync. Pass ?force=true to override the
// minimum interval.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	stats, err := h.service.Sync(c.Context(), c.QueryBool("force"))
	if errors.Is(err, ErrSyncThrottled) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Ban sync failed", zap.Error(err))
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"added": stats.Added, "removed": stats.Removed})
}

// HandleBackup writes a ledger backup.
func (h *Handler) HandleBackup(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	path, err := h.service.Backup(c.Context())
	if err != nil {
		l.Error("Ledger backup failed", zap.Error(err))
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"path": path})
}

// HandleRecordMentions stores a batch of chat mentions.
func (h *Handler) HandleRecordMentions(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var mentions []model.Mention
	if err := c.BodyParser(&mentions); err != nil {
		return badRequest(c, err)
	}

	recorded, err := h.service.RecordMentions(mentions)
	if err != nil {
		l.Error("Failed to record mentions", zap.Error(err))
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"recorded": recorded})
}

// HandleFindMentions returns all recorded mentions of a player.
func (h *Handler) HandleFindMentions(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := model.ParseSteamID(c.Params("id"))
	if err != nil {
		return badRequest(c, err)
	}

	mentions, err := h.service.FindMentions(id)
	if err != nil {
		l.Error("Failed to read mentions", zap.Error(err))
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"mentions": mentions, "count": len(mentions)})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": message})
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
