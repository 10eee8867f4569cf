package campaigns

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promogame/backend/internal/campaign"
	"github.com/promogame/backend/internal/editor"
	"github.com/promogame/backend/internal/middleware"
	"github.com/promogame/backend/internal/models"
	"github.com/promogame/backend/pkg/response"
)

// CreateRequest is the body for POST /campaigns.
type CreateRequest struct {
	Type        models.CampaignType `json:"type" binding:"required"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	PublicURL   string              `json:"public_url"`
}

// PreviewRequest is the body for POST /editor/preview.
type PreviewRequest struct {
	Campaign models.Campaign  `json:"campaign"`
	Mutation *editor.Mutation `json:"mutation"`
}

// EditorView is what the editor loads: the campaign, its tabs and the preview.
type EditorView struct {
	Campaign *models.Campaign `json:"campaign"`
	Tabs     []editor.Tab     `json:"tabs"`
	Active   editor.Tab       `json:"active"`
	Preview  editor.Preview   `json:"preview"`
}

func viewOf(s *editor.Shell) EditorView {
	return EditorView{Campaign: s.Campaign, Tabs: s.Tabs, Active: s.Active, Preview: s.Preview()}
}

// Handler handles dashboard campaign and editor endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a campaign handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger, now: time.Now}
}

// owned loads the campaign named by :id and checks that the caller owns it. On failure the
// response has been written.
func (h *Handler) owned(c *gin.Context) (*models.Campaign, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid campaign id")
		return nil, false
	}
	camp, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "campaign not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("load campaign", zap.String("campaign_id", id.String()), zap.Error(err))
		response.Internal(c, "failed to load campaign")
		return nil, false
	}
	if camp.UserID != c.MustGet(middleware.ContextUserID).(uuid.UUID) {
		response.Forbidden(c, "not your campaign")
		return nil, false
	}
	return camp, true
}

// save persists camp and writes the response for store errors.
func (h *Handler) save(c *gin.Context, camp *models.Campaign) bool {
	err := h.store.Save(c.Request.Context(), camp)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrSlugTaken):
		response.Conflict(c, "public url already in use")
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "campaign not found")
	default:
		h.logger.Error("save campaign", zap.String("campaign_id", camp.ID.String()), zap.Error(err))
		response.Internal(c, "failed to save campaign: "+err.Error())
	}
	return false
}

// List handles GET /campaigns.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.store.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list campaigns", zap.Error(err))
		response.Internal(c, "failed to list campaigns")
		return
	}
	response.OK(c, list)
}

// New handles GET /campaigns/new?type=. It returns an unsaved campaign with defaults.
func (h *Handler) New(c *gin.Context) {
	t := models.CampaignType(c.DefaultQuery("type", string(models.TypeQuiz)))
	if !t.Valid() {
		response.BadRequest(c, "invalid campaign type")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	response.OK(c, viewOf(editor.NewShell(campaign.New(t, userID, h.now()))))
}

// Create handles POST /campaigns.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !req.Type.Valid() {
		response.BadRequest(c, "invalid campaign type")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	camp := campaign.New(req.Type, userID, h.now())
	if req.Name != "" {
		camp.Name = req.Name
	}
	camp.Description = req.Description
	base := req.PublicURL
	if base == "" {
		base = camp.Name
	}
	slug, err := UniqueSlug(c.Request.Context(), h.store, base, camp.ID)
	if err != nil {
		h.logger.Error("derive slug", zap.Error(err))
		response.Internal(c, "failed to create campaign")
		return
	}
	camp.PublicURL = slug
	if err := h.store.Create(c.Request.Context(), camp); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, "public url already in use")
			return
		}
		h.logger.Error("create campaign", zap.Error(err))
		response.Internal(c, "failed to create campaign: "+err.Error())
		return
	}
	response.Created(c, camp)
}

// Get handles GET /campaigns/:id.
func (h *Handler) Get(c *gin.Context) {
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	response.OK(c, camp)
}

// Editor handles GET /campaigns/:id/editor.
func (h *Handler) Editor(c *gin.Context) {
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	s := editor.NewShell(camp)
	if tab := c.Query("tab"); tab != "" {
		if err := s.Select(editor.Tab(tab)); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	response.OK(c, viewOf(s))
}

// Replace handles PUT /campaigns/:id with a full campaign body. Identity, owner and counters
// are kept from the stored row.
func (h *Handler) Replace(c *gin.Context) {
	current, ok := h.owned(c)
	if !ok {
		return
	}
	var next models.Campaign
	if err := c.ShouldBindJSON(&next); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !next.Type.Valid() {
		response.BadRequest(c, "invalid campaign type")
		return
	}
	if !next.Status.Valid() {
		next.Status = current.Status
	}
	next.ID, next.UserID = current.ID, current.UserID
	next.Participants, next.CreatedAt = current.Participants, current.CreatedAt
	next.PublicURL = campaign.Slugify(next.PublicURL)
	if next.PublicURL == "" {
		next.PublicURL = current.PublicURL
	}
	if !h.save(c, &next) {
		return
	}
	response.OK(c, &next)
}

// Patch handles PATCH /campaigns/:id: one panel mutation applied and saved.
func (h *Handler) Patch(c *gin.Context) {
	current, ok := h.owned(c)
	if !ok {
		return
	}
	var m editor.Mutation
	if err := c.ShouldBindJSON(&m); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	next, err := editor.Apply(current, m)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !h.save(c, next) {
		return
	}
	s := editor.NewShell(next)
	_ = s.Select(editor.Tab(c.Query("tab")))
	response.OK(c, viewOf(s))
}

// Preview handles POST /editor/preview: the mutation is applied to the posted campaign and
// nothing is saved.
func (h *Handler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	s := editor.NewShell(&req.Campaign)
	if req.Mutation != nil {
		if err := s.Apply(*req.Mutation); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	response.OK(c, viewOf(s))
}

// Delete handles DELETE /campaigns/:id.
func (h *Handler) Delete(c *gin.Context) {
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), camp.ID); err != nil {
		h.logger.Error("delete campaign", zap.String("campaign_id", camp.ID.String()), zap.Error(err))
		response.Internal(c, "failed to delete campaign")
		return
	}
	response.NoContent(c)
}

// AddQuestion handles POST /campaigns/:id/questions. An empty body appends a blank question.
func (h *Handler) AddQuestion(c *gin.Context) {
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	q := campaign.NewQuestion()
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&q); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
	}
	next := campaign.AddQuestion(camp, q)
	if !h.save(c, next) {
		return
	}
	response.Created(c, next.Questions)
}

// RemoveQuestion handles DELETE /campaigns/:id/questions/:qid.
func (h *Handler) RemoveQuestion(c *gin.Context) {
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	next, err := campaign.RemoveQuestion(camp, c.Param("qid"))
	if err != nil {
		response.NotFound(c, "question not found")
		return
	}
	if !h.save(c, next) {
		return
	}
	response.OK(c, next.Questions)
}

// AddField handles POST /campaigns/:id/fields. An empty body appends a blank field.
func (h *Handler) AddField(c *gin.Context) {
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	f := campaign.NewField()
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&f); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
	}
	next := campaign.AddField(camp, f)
	if !h.save(c, next) {
		return
	}
	response.Created(c, next.Fields)
}

// RemoveField handles DELETE /campaigns/:id/fields/:fid.
func (h *Handler) RemoveField(c *gin.Context) {
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	next, err := campaign.RemoveField(camp, c.Param("fid"))
	if err != nil {
		response.NotFound(c, "field not found")
		return
	}
	if !h.save(c, next) {
		return
	}
	response.OK(c, next.Fields)
}
