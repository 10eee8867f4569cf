package play

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promogame/backend/internal/campaign"
	"github.com/promogame/backend/internal/campaigns"
	"github.com/promogame/backend/internal/editor"
	"github.com/promogame/backend/internal/games"
	"github.com/promogame/backend/internal/models"
	"github.com/promogame/backend/pkg/response"
)

// Tracker records public-page analytics; implemented by analytics.Recorder.
type Tracker interface {
	Track(ctx context.Context, campaignID uuid.UUID, t models.EventType, metadata any)
}

// PageView is what the public page renders.
type PageView struct {
	Campaign *models.Campaign      `json:"campaign"`
	Status   models.CampaignStatus `json:"status"`
	Steps    []Step                `json:"steps"`
	Render   editor.Preview        `json:"render"`
}

// ParticipateRequest is the body for POST /p/:slug/participations.
type ParticipateRequest struct {
	FormData map[string]string `json:"form_data"`
}

// ParticipateResponse tells the page where to go after the form.
type ParticipateResponse struct {
	ParticipationID uuid.UUID `json:"participation_id"`
	Participants    int       `json:"participants"`
	Next            Step      `json:"next"`
}

// AnswersRequest is the body for POST /p/:slug/participations/:pid/answers.
type AnswersRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// AnswersResponse is the quiz tally.
type AnswersResponse struct {
	Score games.QuizScore `json:"score"`
	Next  Step            `json:"next"`
}

// GameResponse is returned when a game starts. Single-draw games carry their reveal and
// result; stateful games carry a session.
type GameResponse struct {
	Game      models.CampaignType `json:"game"`
	Reveal    any                 `json:"reveal,omitempty"`
	Result    *games.Result       `json:"result,omitempty"`
	SessionID *uuid.UUID          `json:"session_id,omitempty"`
	View      *View               `json:"view,omitempty"`
	Next      Step                `json:"next"`
}

// ActionResponse is returned for every session action.
type ActionResponse struct {
	Outcome any  `json:"outcome,omitempty"`
	View    View `json:"view"`
	Next    Step `json:"next"`
}

// Handler serves the public participation page.
type Handler struct {
	campaigns campaigns.Store
	store     Store
	sessions  SessionStore
	tracker   Tracker
	winners   games.WinnerCap
	logger    *zap.Logger
	now       func() time.Time
	rng       func() *rand.Rand
}

// NewHandler creates a public page handler.
func NewHandler(campaignStore campaigns.Store, store Store, sessions SessionStore, tracker Tracker, winners games.WinnerCap, logger *zap.Logger) *Handler {
	return &Handler{
		campaigns: campaignStore,
		store:     store,
		sessions:  sessions,
		tracker:   tracker,
		winners:   winners,
		logger:    logger,
		now:       time.Now,
		rng:       games.NewRand,
	}
}

// bySlug loads the campaign named by :slug. With open set, campaigns outside their
// active window are refused. On failure the response has been written.
func (h *Handler) bySlug(c *gin.Context, open bool) (*models.Campaign, bool) {
	camp, err := h.campaigns.GetBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, campaigns.ErrNotFound) {
		response.NotFound(c, "campaign not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("load campaign by slug", zap.String("slug", c.Param("slug")), zap.Error(err))
		response.Internal(c, "failed to load campaign")
		return nil, false
	}
	if open && !campaign.IsOpen(camp, h.now()) {
		response.Forbidden(c, "campaign is not open")
		return nil, false
	}
	return camp, true
}

// participation loads :pid and checks it belongs to camp.
func (h *Handler) participation(c *gin.Context, camp *models.Campaign) (*models.Participation, bool) {
	pid, err := uuid.Parse(c.Param("pid"))
	if err != nil {
		response.BadRequest(c, "invalid participation id")
		return nil, false
	}
	p, err := h.store.GetParticipation(c.Request.Context(), pid)
	if errors.Is(err, ErrParticipationNotFound) || (err == nil && p.CampaignID != camp.ID) {
		response.NotFound(c, "participation not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("load participation", zap.String("participation_id", pid.String()), zap.Error(err))
		response.Internal(c, "failed to load participation")
		return nil, false
	}
	if p.Completed {
		response.Conflict(c, "already played")
		return nil, false
	}
	return p, true
}

// finish stores the result of a participation and records the completion event.
func (h *Handler) finish(ctx context.Context, camp *models.Campaign, pid uuid.UUID, res games.Result) error {
	details, err := json.Marshal(res.Details)
	if err != nil {
		return fmt.Errorf("encode result details: %w", err)
	}
	gr := &models.GameResult{
		ID:              uuid.New(),
		CampaignID:      camp.ID,
		ParticipationID: pid,
		GameType:        res.Game,
		Result:          res.Label,
		Won:             res.Won,
		Details:         details,
		CreatedAt:       h.now().UTC(),
	}
	if err := h.store.Complete(ctx, gr); err != nil {
		return err
	}
	h.tracker.Track(ctx, camp.ID, models.EventCompletion, map[string]any{
		"participation_id": pid,
		"result":           res.Label,
		"won":              res.Won,
	})
	return nil
}

func (h *Handler) finishFailed(c *gin.Context, pid uuid.UUID, err error) {
	if errors.Is(err, ErrAlreadyCompleted) {
		response.Conflict(c, "already played")
		return
	}
	h.logger.Error("store result", zap.String("participation_id", pid.String()), zap.Error(err))
	response.Internal(c, "failed to store result")
}

// Page handles GET /p/:slug.
func (h *Handler) Page(c *gin.Context) {
	camp, ok := h.bySlug(c, true)
	if !ok {
		return
	}
	h.tracker.Track(c.Request.Context(), camp.ID, models.EventView, map[string]string{
		"referrer":   c.Request.Referer(),
		"user_agent": c.Request.UserAgent(),
	})
	pub := Public(camp)
	response.OK(c, PageView{
		Campaign: pub,
		Status:   campaign.EffectiveStatus(camp, h.now()),
		Steps:    Steps(camp.Type),
		Render:   editor.Derive(pub),
	})
}

// Participate handles POST /p/:slug/participations.
func (h *Handler) Participate(c *gin.Context) {
	camp, ok := h.bySlug(c, true)
	if !ok {
		return
	}
	var req ParticipateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	data, email, err := CleanForm(formFields(camp), req.FormData)
	if err != nil {
		var fe FieldErrors
		if errors.As(err, &fe) {
			response.Invalid(c, err.Error(), fe)
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	p := &models.Participation{ID: uuid.New(), CampaignID: camp.ID, Email: email, FormData: data}
	if err := h.store.CreateParticipation(ctx, p); err != nil {
		h.logger.Error("create participation", zap.String("campaign_id", camp.ID.String()), zap.Error(err))
		response.Internal(c, "failed to store participation")
		return
	}
	count, err := h.campaigns.IncrementParticipants(ctx, camp.ID)
	if err != nil {
		h.logger.Error("increment participants", zap.String("campaign_id", camp.ID.String()), zap.Error(err))
		response.Internal(c, "failed to count participation")
		return
	}
	meta := map[string]any{"participation_id": p.ID}
	h.tracker.Track(ctx, camp.ID, models.EventParticipation, meta)
	h.tracker.Track(ctx, camp.ID, models.EventFormSubmission, meta)

	next := Next(camp.Type, StepForm)
	if next == StepEnd {
		if err := h.finish(ctx, camp, p.ID, games.Result{Game: camp.Type, Label: "submitted"}); err != nil {
			h.finishFailed(c, p.ID, err)
			return
		}
	}
	response.Created(c, ParticipateResponse{ParticipationID: p.ID, Participants: count, Next: next})
}

// Answers handles POST /p/:slug/participations/:pid/answers.
func (h *Handler) Answers(c *gin.Context) {
	camp, ok := h.bySlug(c, true)
	if !ok {
		return
	}
	if !camp.Type.UsesQuestions() {
		response.BadRequest(c, "campaign has no questions")
		return
	}
	p, ok := h.participation(c, camp)
	if !ok {
		return
	}
	var req AnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ctx := c.Request.Context()
	score := games.ScoreQuiz(camp.Questions, req.Answers)
	var scored *int
	if score.Total > 0 {
		scored = &score.Correct
	}
	if err := h.store.SaveAnswers(ctx, p.ID, req.Answers, scored); err != nil {
		h.logger.Error("save answers", zap.String("participation_id", p.ID.String()), zap.Error(err))
		response.Internal(c, "failed to save answers")
		return
	}
	res := games.Result{
		Game:    camp.Type,
		Label:   fmt.Sprintf("%d/%d", score.Correct, score.Total),
		Won:     score.Total > 0 && score.Correct == score.Total,
		Score:   score.Correct,
		Details: map[string]any{"correct": score.Correct, "total": score.Total, "percent": score.Percent},
	}
	if err := h.finish(ctx, camp, p.ID, res); err != nil {
		h.finishFailed(c, p.ID, err)
		return
	}
	response.OK(c, AnswersResponse{Score: score, Next: Next(camp.Type, StepQuestions)})
}

// StartGame handles POST /p/:slug/participations/:pid/game.
func (h *Handler) StartGame(c *gin.Context) {
	camp, ok := h.bySlug(c, true)
	if !ok {
		return
	}
	if !camp.Type.IsGame() {
		response.BadRequest(c, "campaign has no game")
		return
	}
	p, ok := h.participation(c, camp)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rng := h.rng()

	if Immediate(camp.Type) {
		reveal, res, err := resolve(ctx, camp, rng, h.winners)
		if err != nil {
			h.gameFailed(c, camp, err)
			return
		}
		if err := h.finish(ctx, camp, p.ID, *res); err != nil {
			h.finishFailed(c, p.ID, err)
			return
		}
		response.OK(c, GameResponse{Game: camp.Type, Reveal: reveal, Result: res, Next: StepEnd})
		return
	}

	w, err := deal(camp, rng)
	if err != nil {
		h.gameFailed(c, camp, err)
		return
	}
	now := h.now()
	sess := &Session{
		ID:              uuid.New(),
		CampaignID:      camp.ID,
		ParticipationID: p.ID,
		Game:            camp.Type,
		Seed:            rng.Uint64(),
		StartedAt:       now,
		LastTick:        now,
	}
	if err := store(sess, w); err != nil {
		h.gameFailed(c, camp, err)
		return
	}
	if err := h.sessions.Create(ctx, sess); err != nil {
		h.logger.Error("create game session", zap.String("campaign_id", camp.ID.String()), zap.Error(err))
		response.Internal(c, "failed to start game")
		return
	}
	view := viewOf(camp.Type, w)
	response.Created(c, GameResponse{Game: camp.Type, SessionID: &sess.ID, View: &view, Next: StepGame})
}

func (h *Handler) gameFailed(c *gin.Context, camp *models.Campaign, err error) {
	if errors.Is(err, games.ErrMisconfigured) {
		response.BadRequest(c, err.Error())
		return
	}
	h.logger.Error("play game", zap.String("campaign_id", camp.ID.String()), zap.Error(err))
	response.Internal(c, "failed to play game")
}

// Act handles POST /p/:slug/sessions/:sid/actions. Sessions started before the campaign
// closed can still be finished.
func (h *Handler) Act(c *gin.Context) {
	camp, ok := h.bySlug(c, false)
	if !ok {
		return
	}
	sid, err := uuid.Parse(c.Param("sid"))
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return
	}
	var a Action
	if err := c.ShouldBindJSON(&a); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ctx := c.Request.Context()
	now := h.now()

	var (
		outcome any
		w       widget
	)
	sess, err := h.sessions.Update(ctx, sid, func(s *Session) error {
		if s.CampaignID != camp.ID {
			return ErrSessionNotFound
		}
		var err error
		outcome, w, err = apply(s, a, now)
		return err
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrSessionNotFound):
		response.NotFound(c, "game session not found")
		return
	case errors.Is(err, games.ErrGameOver):
		response.Conflict(c, "game is over")
		return
	case errors.Is(err, games.ErrInvalidMove), errors.Is(err, ErrUnknownAction):
		response.BadRequest(c, err.Error())
		return
	default:
		h.logger.Error("apply game action", zap.String("session_id", sid.String()), zap.Error(err))
		response.Internal(c, "failed to apply action")
		return
	}

	next := StepGame
	if res, done := w.Finished(); done {
		next = StepEnd
		if err := h.finish(ctx, camp, sess.ParticipationID, *res); err != nil {
			h.finishFailed(c, sess.ParticipationID, err)
			return
		}
	}
	response.OK(c, ActionResponse{Outcome: outcome, View: viewOf(sess.Game, w), Next: next})
}
