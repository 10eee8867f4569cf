package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(fn gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	return w
}

func TestEnvelope(t *testing.T) {
	w := run(func(c *gin.Context) { OK(c, gin.H{"a": 1}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"a":1}}`, w.Body.String())

	w = run(func(c *gin.Context) { NotFound(c, "campaign not found") })
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"campaign not found"}`, w.Body.String())
}

func TestInvalidCarriesFields(t *testing.T) {
	w := run(func(c *gin.Context) { Invalid(c, "invalid form", map[string]string{"email": "required"}) })
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "required", body.Fields["email"])
}
