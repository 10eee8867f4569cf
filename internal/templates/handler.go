package templates

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promogame/backend/internal/campaigns"
	"github.com/promogame/backend/internal/middleware"
	"github.com/promogame/backend/internal/models"
	"github.com/promogame/backend/pkg/response"
)

// CreateRequest is the body for POST /templates. Either Payload or CampaignID is required;
// CampaignID snapshots one of the caller's campaigns.
type CreateRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Type        models.CampaignType `json:"type"`
	Payload     json.RawMessage     `json:"payload"`
	CampaignID  *uuid.UUID          `json:"campaign_id"`
}

// InstantiateRequest is the optional body for POST /templates/:id/instantiate.
type InstantiateRequest struct {
	Name      string `json:"name"`
	PublicURL string `json:"public_url"`
}

// Handler serves the template routes.
type Handler struct {
	store     Store
	campaigns campaigns.Store
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates a template handler.
func NewHandler(store Store, campaignStore campaigns.Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, campaigns: campaignStore, logger: logger, now: time.Now}
}

// List handles GET /templates?type=.
func (h *Handler) List(c *gin.Context) {
	t := models.CampaignType(c.Query("type"))
	if t != "" && !t.Valid() {
		response.BadRequest(c, "invalid campaign type")
		return
	}
	list, err := h.store.List(c.Request.Context(), t)
	if err != nil {
		h.logger.Error("list templates", zap.Error(err))
		response.Internal(c, "failed to list templates")
		return
	}
	response.OK(c, list)
}

func (h *Handler) load(c *gin.Context) (*Template, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return nil, false
	}
	tpl, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "template not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("load template", zap.Error(err))
		response.Internal(c, "failed to load template")
		return nil, false
	}
	return tpl, true
}

// Get handles GET /templates/:id.
func (h *Handler) Get(c *gin.Context) {
	if tpl, ok := h.load(c); ok {
		response.OK(c, tpl)
	}
}

// Create handles POST /templates (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	tpl := &Template{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Type:        req.Type,
		CreatedBy:   &userID,
		CreatedAt:   h.now(),
	}

	switch {
	case req.CampaignID != nil:
		camp, err := h.campaigns.Get(c.Request.Context(), *req.CampaignID)
		if errors.Is(err, campaigns.ErrNotFound) || (err == nil && camp.UserID != userID) {
			response.NotFound(c, "campaign not found")
			return
		}
		if err != nil {
			response.Internal(c, "failed to load campaign")
			return
		}
		payload, err := Snapshot(camp)
		if err != nil {
			response.Internal(c, "failed to snapshot campaign")
			return
		}
		tpl.Type, tpl.Payload = camp.Type, payload
	case len(req.Payload) > 0 && string(req.Payload) != "null":
		tpl.Payload = req.Payload
	default:
		response.BadRequest(c, "payload or campaign_id is required")
		return
	}
	if !tpl.Type.Valid() {
		response.BadRequest(c, "invalid campaign type")
		return
	}
	if _, err := Instantiate(tpl, userID, tpl.CreatedAt); err != nil {
		response.BadRequest(c, "invalid payload: "+err.Error())
		return
	}

	if err := h.store.Create(c.Request.Context(), tpl); err != nil {
		h.logger.Error("create template", zap.Error(err))
		response.Internal(c, "failed to create template")
		return
	}
	response.Created(c, tpl)
}

// Delete handles DELETE /templates/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "template not found")
			return
		}
		response.Internal(c, "failed to delete template")
		return
	}
	response.NoContent(c)
}

// Instantiate handles POST /templates/:id/instantiate. It creates a draft campaign owned by the
// caller with a fresh id and a unique public URL.
func (h *Handler) Instantiate(c *gin.Context) {
	tpl, ok := h.load(c)
	if !ok {
		return
	}
	var req InstantiateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	camp, err := Instantiate(tpl, userID, h.now())
	if err != nil {
		h.logger.Error("instantiate template", zap.Error(err), zap.String("template_id", tpl.ID.String()))
		response.Internal(c, "template payload is corrupt")
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		camp.Name = name
	}
	base := req.PublicURL
	if base == "" {
		base = camp.Name
	}
	if camp.PublicURL, err = campaigns.UniqueSlug(c.Request.Context(), h.campaigns, base, camp.ID); err != nil {
		response.Internal(c, "failed to create campaign")
		return
	}
	if err := h.campaigns.Create(c.Request.Context(), camp); err != nil {
		if errors.Is(err, campaigns.ErrSlugTaken) {
			response.Conflict(c, "public url already in use")
			return
		}
		h.logger.Error("create campaign from template", zap.Error(err))
		response.Internal(c, "failed to create campaign")
		return
	}
	response.Created(c, camp)
}
