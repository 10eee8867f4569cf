package play

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
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

// DashboardHandler lets owners review and export the participations of their campaigns.
type DashboardHandler struct {
	campaigns campaigns.Store
	store     Store
	logger    *zap.Logger
}

// NewDashboardHandler creates a participation dashboard handler.
func NewDashboardHandler(campaignStore campaigns.Store, store Store, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{campaigns: campaignStore, store: store, logger: logger}
}

func (h *DashboardHandler) owned(c *gin.Context) (*models.Campaign, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid campaign id")
		return nil, false
	}
	camp, err := h.campaigns.Get(c.Request.Context(), id)
	if errors.Is(err, campaigns.ErrNotFound) {
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

// List handles GET /campaigns/:id/participations.
func (h *DashboardHandler) List(c *gin.Context) {
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	list, err := h.store.ListParticipations(c.Request.Context(), camp.ID)
	if err != nil {
		h.logger.Error("list participations", zap.String("campaign_id", camp.ID.String()), zap.Error(err))
		response.Internal(c, "failed to list participations")
		return
	}
	if list == nil {
		list = []models.Participation{}
	}
	response.OK(c, list)
}

// Export handles GET /campaigns/:id/export: one CSV row per participation with a column
// per form field and per question.
func (h *DashboardHandler) Export(c *gin.Context) {
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	list, err := h.store.ListParticipations(c.Request.Context(), camp.ID)
	if err != nil {
		h.logger.Error("list participations", zap.String("campaign_id", camp.ID.String()), zap.Error(err))
		response.Internal(c, "failed to list participations")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-participations.csv"`, camp.PublicURL))
	if err := WriteCSV(c.Writer, camp, list); err != nil {
		h.logger.Warn("write csv export", zap.String("campaign_id", camp.ID.String()), zap.Error(err))
	}
}

// WriteCSV writes the participations of camp as CSV. Text supplied by owners or
// participants goes through spreadsheetSafe.
func WriteCSV(w io.Writer, camp *models.Campaign, list []models.Participation) error {
	fields := formFields(camp)
	cw := csv.NewWriter(w)
	header := []string{"participation_id", "created_at", "email", "completed", "score"}
	for _, f := range fields {
		header = append(header, spreadsheetSafe(f.Label))
	}
	for _, q := range camp.Questions {
		header = append(header, spreadsheetSafe(q.Text))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range list {
		score := ""
		if p.Score != nil {
			score = strconv.Itoa(*p.Score)
		}
		row := []string{p.ID.String(), p.CreatedAt.UTC().Format(time.RFC3339), spreadsheetSafe(p.Email), strconv.FormatBool(p.Completed), score}
		for _, f := range fields {
			row = append(row, spreadsheetSafe(p.FormData[f.ID]))
		}
		for _, q := range camp.Questions {
			row = append(row, spreadsheetSafe(p.Answers[q.ID]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// spreadsheetSafe prefixes a quote to cells a spreadsheet would evaluate as a formula.
func spreadsheetSafe(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}
