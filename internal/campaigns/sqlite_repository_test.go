package campaigns

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promogame/backend/internal/campaign"
	"github.com/promogame/backend/internal/games"
	"github.com/promogame/backend/internal/models"
	"github.com/promogame/backend/pkg/database"
)

func openStore(t *testing.T) (*SQLiteRepository, *sql.DB) {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteRepository(db), db
}

func insertUser(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := database.ToMillis(time.Now())
	_, err := db.Exec(`INSERT INTO users (id, email, password_hash, full_name, role, created_at, updated_at)
		VALUES (?, ?, 'x', 'Owner', 'editor', ?, ?)`, id.String(), id.String()+"@example.com", now, now)
	require.NoError(t, err)
	return id
}

func p(v float64) *float64 { return &v }

func TestWheelCampaignSpinSaveReload(t *testing.T) {
	ctx := context.Background()
	store, db := openStore(t)
	owner := insertUser(t, db)

	c := campaign.New(models.TypeWheel, owner, time.Now())
	c.PublicURL = "spin-to-win"
	require.NoError(t, store.Create(ctx, c))

	segments := []models.WheelSegment{
		{Label: "Coffee", Probability: p(1), Color: "#111111"},
		{Label: "Tote bag", Probability: p(1), Color: "#222222"},
		{Label: "Sticker", Probability: p(1), Color: "#333333"},
	}
	cfg := *c.LiveGameConfig().(*models.WheelConfig)
	cfg.Segments = segments
	c = campaign.WithGameConfig(c, &cfg)

	w, err := games.NewWheel(c.LiveGameConfig().(*models.WheelConfig), games.NewRand())
	require.NoError(t, err)
	res, err := w.Spin()
	require.NoError(t, err)
	assert.Contains(t, []string{"Coffee", "Tote bag", "Sticker"}, res.Label)

	require.NoError(t, store.Save(ctx, c))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM wheel_settings WHERE campaign_id = ?`, c.ID.String()).Scan(&n))
	assert.Equal(t, 1, n)

	loaded, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	got := loaded.LiveGameConfig().(*models.WheelConfig)
	require.Len(t, got.Segments, 3)
	for i, s := range got.Segments {
		assert.Equal(t, segments[i].Label, s.Label)
		assert.Equal(t, 1.0, s.Weight())
	}
}

func TestSaveRoundTripsEverySlice(t *testing.T) {
	ctx := context.Background()
	store, db := openStore(t)
	owner := insertUser(t, db)

	c := campaign.New(models.TypeQuiz, owner, time.Now())
	c.PublicURL = "quiz"
	require.NoError(t, store.Create(ctx, c))

	answer := "B"
	c = campaign.AddQuestion(c, models.Question{ID: "q2", Text: "Pick B", Type: "single", Options: []string{"A", "B"}, CorrectAnswer: &answer})
	c = campaign.AddField(c, models.FormField{ID: "city", Label: "City", Type: "select", Options: []string{"Paris", "Lyon"}})
	c.Screens.End.Contrast = &models.ContrastBackground{Enabled: true, Color: "#000", Opacity: 0.5}
	c.Colors.Button = "#123456"
	require.NoError(t, store.Save(ctx, c))

	loaded, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Name, loaded.Name)
	assert.Equal(t, "#123456", loaded.Colors.Button)
	require.Len(t, loaded.Questions, 2)
	assert.Equal(t, "q2", loaded.Questions[1].ID)
	require.NotNil(t, loaded.Questions[1].CorrectAnswer)
	assert.Equal(t, "B", *loaded.Questions[1].CorrectAnswer)
	assert.Nil(t, loaded.Questions[0].CorrectAnswer)
	require.Len(t, loaded.Fields, 3)
	assert.Equal(t, []string{"Paris", "Lyon"}, loaded.Fields[2].Options)
	assert.True(t, loaded.Fields[0].Required)
	require.NotNil(t, loaded.Screens.End.Contrast)
	assert.Equal(t, 0.5, loaded.Screens.End.Contrast.Opacity)
	assert.Empty(t, loaded.GameConfig)

	c, err = campaign.RemoveQuestion(c, "q2")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, c))
	loaded, err = store.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Questions, 1)
}

func TestTypeChangeKeepsStoredSettings(t *testing.T) {
	ctx := context.Background()
	store, db := openStore(t)
	owner := insertUser(t, db)

	c := campaign.New(models.TypeDice, owner, time.Now())
	c.PublicURL = "dice"
	require.NoError(t, store.Create(ctx, c))

	c = campaign.WithType(c, models.TypeMemory)
	require.NoError(t, store.Save(ctx, c))

	loaded, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TypeMemory, loaded.Type)
	assert.Contains(t, loaded.GameConfig, models.TypeDice)
	assert.Contains(t, loaded.GameConfig, models.TypeMemory)
}

func TestGetBySlugFallsBackToID(t *testing.T) {
	ctx := context.Background()
	store, db := openStore(t)
	owner := insertUser(t, db)

	c := campaign.New(models.TypeForm, owner, time.Now())
	c.PublicURL = "my-form"
	require.NoError(t, store.Create(ctx, c))

	bySlug, err := store.GetBySlug(ctx, "my-form")
	require.NoError(t, err)
	assert.Equal(t, c.ID, bySlug.ID)

	byID, err := store.GetBySlug(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "my-form", byID.PublicURL)

	_, err = store.GetBySlug(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSlugUniqueness(t *testing.T) {
	ctx := context.Background()
	store, db := openStore(t)
	owner := insertUser(t, db)

	a := campaign.New(models.TypeWheel, owner, time.Now())
	a.PublicURL = "summer-game"
	require.NoError(t, store.Create(ctx, a))

	slug, err := UniqueSlug(ctx, store, "Summer Game!", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "summer-game-2", slug)

	own, err := UniqueSlug(ctx, store, "Summer Game", a.ID)
	require.NoError(t, err)
	assert.Equal(t, "summer-game", own, "a campaign keeps its own slug")

	b := campaign.New(models.TypeWheel, owner, time.Now())
	b.PublicURL = "other"
	require.NoError(t, store.Create(ctx, b))
	b.PublicURL = "summer-game"
	assert.ErrorIs(t, store.Save(ctx, b), ErrSlugTaken)
}

func TestListDeleteAndParticipants(t *testing.T) {
	ctx := context.Background()
	store, db := openStore(t)
	owner := insertUser(t, db)
	other := insertUser(t, db)

	c := campaign.New(models.TypeScratch, owner, time.Now())
	c.PublicURL = "scratch"
	require.NoError(t, store.Create(ctx, c))

	list, err := store.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "scratch", list[0].PublicURL)
	list, err = store.ListByOwner(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)

	n, err := store.IncrementParticipants(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = store.IncrementParticipants(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, store.Delete(ctx, c.ID))
	_, err = store.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, c.ID), ErrNotFound)
	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM scratch_settings`).Scan(&rows))
	assert.Zero(t, rows)
}

func TestSaveUnknownCampaign(t *testing.T) {
	store, db := openStore(t)
	c := campaign.New(models.TypeQuiz, insertUser(t, db), time.Now())
	assert.ErrorIs(t, store.Save(context.Background(), c), ErrNotFound)
}

func newOwned(t *testing.T, store *SQLiteRepository, owner uuid.UUID) *models.Campaign {
	t.Helper()
	c := campaign.New(models.TypeWheel, owner, time.Now())
	c.PublicURL = "owned-" + c.ID.String()[:8]
	require.NoError(t, store.Create(context.Background(), c))
	return c
}
