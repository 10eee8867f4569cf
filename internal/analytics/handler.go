package analytics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promogame/backend/internal/campaigns"
	"github.com/promogame/backend/internal/middleware"
	"github.com/promogame/backend/internal/models"
	"github.com/promogame/backend/pkg/response"
)

const maxDays = 365

// CampaignStats pairs a campaign summary with its statistics.
type CampaignStats struct {
	Campaign models.CampaignSummary `json:"campaign"`
	Stats    Stats                  `json:"stats"`
}

// Handler serves the statistics views.
type Handler struct {
	campaigns campaigns.Store
	store     Store
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates a statistics handler.
func NewHandler(campaignStore campaigns.Store, store Store, logger *zap.Logger) *Handler {
	return &Handler{campaigns: campaignStore, store: store, logger: logger, now: time.Now}
}

func days(c *gin.Context) (int, bool) {
	v := c.Query("days")
	if v == "" {
		return DefaultDays, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxDays {
		response.BadRequest(c, "days must be between 1 and 365")
		return 0, false
	}
	return n, true
}

// ByCampaign handles GET /campaigns/:id/stats.
func (h *Handler) ByCampaign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid campaign id")
		return
	}
	n, ok := days(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	camp, err := h.campaigns.Get(ctx, id)
	if errors.Is(err, campaigns.ErrNotFound) {
		response.NotFound(c, "campaign not found")
		return
	}
	if err != nil {
		h.logger.Error("load campaign", zap.String("campaign_id", id.String()), zap.Error(err))
		response.Internal(c, "failed to load campaign")
		return
	}
	if camp.UserID != c.MustGet(middleware.ContextUserID).(uuid.UUID) {
		response.Forbidden(c, "not your campaign")
		return
	}
	stats, err := Load(ctx, h.store, id, n, h.now())
	if err != nil {
		h.logger.Error("load stats", zap.String("campaign_id", id.String()), zap.Error(err))
		response.Internal(c, "failed to load statistics")
		return
	}
	response.OK(c, CampaignStats{Campaign: camp.Summary(), Stats: stats})
}

// Overview handles GET /stats: statistics of every campaign the caller owns.
func (h *Handler) Overview(c *gin.Context) {
	n, ok := days(c)
	if !ok {
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ctx := c.Request.Context()
	list, err := h.campaigns.ListByOwner(ctx, userID)
	if err != nil {
		h.logger.Error("list campaigns", zap.String("user_id", userID.String()), zap.Error(err))
		response.Internal(c, "failed to list campaigns")
		return
	}
	now := h.now()
	out := make([]CampaignStats, 0, len(list))
	for _, summary := range list {
		stats, err := Load(ctx, h.store, summary.ID, n, now)
		if err != nil {
			h.logger.Error("load stats", zap.String("campaign_id", summary.ID.String()), zap.Error(err))
			response.Internal(c, "failed to load statistics")
			return
		}
		out = append(out, CampaignStats{Campaign: summary, Stats: stats})
	}
	response.OK(c, out)
}
