package play

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promogame/backend/internal/models"
)

func TestWriteCSVNeutralizesFormulas(t *testing.T) {
	score := -2
	camp := &models.Campaign{
		Type:      models.TypeQuiz,
		Fields:    []models.FormField{{ID: "name", Label: "=Name", Type: "text"}},
		Questions: []models.Question{{ID: "q1", Text: "Favourite colour?"}},
	}
	list := []models.Participation{{
		ID:        uuid.New(),
		Email:     "@evil.example",
		FormData:  map[string]string{"name": `=HYPERLINK("http://evil.example","x")`},
		Answers:   map[string]string{"q1": "+blue"},
		Score:     &score,
		CreatedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}, {
		ID:        uuid.New(),
		FormData:  map[string]string{"name": "Ada - Lovelace"},
		Answers:   map[string]string{"q1": "-1"},
		CreatedAt: time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, camp, list))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "'=Name", rows[0][5])
	assert.Equal(t, "Favourite colour?", rows[0][6])

	assert.Equal(t, "'@evil.example", rows[1][2])
	assert.Equal(t, "-2", rows[1][4])
	assert.Equal(t, `'=HYPERLINK("http://evil.example","x")`, rows[1][5])
	assert.Equal(t, "'+blue", rows[1][6])

	assert.Equal(t, "Ada - Lovelace", rows[2][5])
	assert.Equal(t, "'-1", rows[2][6])
}

func TestSpreadsheetSafe(t *testing.T) {
	assert.Equal(t, "", spreadsheetSafe(""))
	assert.Equal(t, "plain", spreadsheetSafe("plain"))
	assert.Equal(t, "'\tcmd", spreadsheetSafe("\tcmd"))
	assert.Equal(t, "'=1+1", spreadsheetSafe("=1+1"))
}
