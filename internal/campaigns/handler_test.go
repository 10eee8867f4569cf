package campaigns

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promogame/backend/internal/editor"
	"github.com/promogame/backend/internal/middleware"
	"github.com/promogame/backend/internal/models"
)

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// editorView mirrors EditorView without the typed preview config, which is an interface.
type editorView struct {
	Campaign models.Campaign `json:"campaign"`
	Tabs     []editor.Tab    `json:"tabs"`
	Active   editor.Tab      `json:"active"`
	Preview  struct {
		Widget editor.Widget `json:"widget"`
		Colors models.Colors `json:"colors"`
	} `json:"preview"`
}

func newRouter(t *testing.T, user uuid.UUID) (*gin.Engine, *SQLiteRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, _ := openStore(t)
	h := NewHandler(store, zap.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, user); c.Next() })
	r.GET("/campaigns", h.List)
	r.GET("/campaigns/new", h.New)
	r.POST("/campaigns", h.Create)
	r.GET("/campaigns/:id", h.Get)
	r.PUT("/campaigns/:id", h.Replace)
	r.PATCH("/campaigns/:id", h.Patch)
	r.DELETE("/campaigns/:id", h.Delete)
	r.GET("/campaigns/:id/editor", h.Editor)
	r.POST("/campaigns/:id/questions", h.AddQuestion)
	r.DELETE("/campaigns/:id/questions/:qid", h.RemoveQuestion)
	r.POST("/campaigns/:id/fields", h.AddField)
	r.DELETE("/campaigns/:id/fields/:fid", h.RemoveField)
	r.POST("/editor/preview", h.Preview)
	return r, store
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestCampaignLifecycleOverHTTP(t *testing.T) {
	user := uuid.New()
	r, store := newRouter(t, user)
	_, err := store.db.Exec(`INSERT INTO users (id, email, password_hash, full_name, role, created_at, updated_at)
		VALUES (?, 'a@example.com', 'x', 'A', 'editor', 0, 0)`, user.String())
	require.NoError(t, err)

	w := do(t, r, http.MethodPost, "/campaigns", CreateRequest{Type: models.TypeWheel, Name: "Été Festival!"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Campaign](t, w).Data
	assert.Equal(t, "ete-festival", created.PublicURL)
	assert.IsType(t, &models.WheelConfig{}, created.GameConfig[models.TypeWheel])

	w = do(t, r, http.MethodPost, "/campaigns", CreateRequest{Type: models.TypeWheel, Name: "Ete festival"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ete-festival-2", decode[models.Campaign](t, w).Data.PublicURL)

	id := created.ID.String()
	w = do(t, r, http.MethodPatch, "/campaigns/"+id, editor.Mutation{Panel: editor.PanelDesign, Path: "colors.button", Value: []byte(`"#000000"`)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[editorView](t, w).Data
	assert.Equal(t, "#000000", view.Campaign.Colors.Button)
	assert.Equal(t, "#000000", view.Preview.Colors.Button)

	w = do(t, r, http.MethodPatch, "/campaigns/"+id, editor.Mutation{Panel: editor.PanelDesign, Path: "name", Value: []byte(`"x"`)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPatch, "/campaigns/"+id, editor.Mutation{Panel: editor.PanelGeneral, Path: "public_url", Value: []byte(`"ete-festival-2"`)})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/campaigns/"+id+"/editor?tab=content", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[editorView](t, w).Data
	assert.Equal(t, editor.TabContent, view.Active)
	assert.Equal(t, editor.WidgetWheel, view.Preview.Widget)

	w = do(t, r, http.MethodGet, "/campaigns/"+id+"/editor?tab=questions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/campaigns/"+id+"/fields", models.FormField{Label: "Phone", Type: "tel"})
	require.Equal(t, http.StatusCreated, w.Code)
	fields := decode[[]models.FormField](t, w).Data
	require.Len(t, fields, 3)
	assert.NotEmpty(t, fields[2].ID)

	w = do(t, r, http.MethodDelete, "/campaigns/"+id+"/fields/"+fields[2].ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodDelete, "/campaigns/"+id+"/fields/"+fields[2].ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/campaigns", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.CampaignSummary](t, w).Data, 2)

	w = do(t, r, http.MethodDelete, "/campaigns/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, r, http.MethodGet, "/campaigns/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReplaceKeepsIdentity(t *testing.T) {
	user := uuid.New()
	r, store := newRouter(t, user)
	_, err := store.db.Exec(`INSERT INTO users (id, email, password_hash, full_name, role, created_at, updated_at)
		VALUES (?, 'b@example.com', 'x', 'B', 'editor', 0, 0)`, user.String())
	require.NoError(t, err)

	w := do(t, r, http.MethodPost, "/campaigns", CreateRequest{Type: models.TypeQuiz, Name: "Quiz"})
	require.Equal(t, http.StatusCreated, w.Code)
	c := decode[models.Campaign](t, w).Data

	c.Name = "Renamed"
	c.Participants = 99
	c.UserID = uuid.New()
	w = do(t, r, http.MethodPut, "/campaigns/"+c.ID.String(), c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[models.Campaign](t, w).Data
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 0, got.Participants)
	assert.Equal(t, user, got.UserID)
}

func TestForeignCampaignIsForbidden(t *testing.T) {
	owner := uuid.New()
	r, store := newRouter(t, uuid.New())
	_, err := store.db.Exec(`INSERT INTO users (id, email, password_hash, full_name, role, created_at, updated_at)
		VALUES (?, 'c@example.com', 'x', 'C', 'editor', 0, 0)`, owner.String())
	require.NoError(t, err)
	c := newOwned(t, store, owner)

	w := do(t, r, http.MethodGet, "/campaigns/"+c.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, r, http.MethodGet, "/campaigns/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewAndPreviewDoNotPersist(t *testing.T) {
	r, store := newRouter(t, uuid.New())

	w := do(t, r, http.MethodGet, "/campaigns/new?type=memory", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[editorView](t, w).Data
	assert.Equal(t, models.TypeMemory, view.Campaign.Type)
	assert.Equal(t, editor.TabGeneral, view.Active)

	w = do(t, r, http.MethodGet, "/campaigns/new?type=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/editor/preview", map[string]any{
		"campaign": view.Campaign,
		"mutation": editor.Mutation{Panel: editor.PanelGeneral, Path: "type", Value: []byte(`"quiz"`)},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view = decode[editorView](t, w).Data
	assert.Equal(t, editor.WidgetQuiz, view.Preview.Widget)
	assert.Contains(t, view.Tabs, editor.TabQuestions)

	var n int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM campaigns`).Scan(&n))
	assert.Zero(t, n)
}
