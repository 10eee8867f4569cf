package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promogame/backend/internal/models"
)

func TestComputeRatesAndSeries(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 3, 15, 0, 0, 0, time.UTC)
	counts := map[models.EventType]int{
		models.EventView:           200,
		models.EventParticipation:  50,
		models.EventFormSubmission: 48,
		models.EventCompletion:     20,
	}
	daily := []DailyCount{
		{Day: "2026-03-01", EventType: models.EventView, Count: 120},
		{Day: "2026-03-01", EventType: models.EventParticipation, Count: 30},
		{Day: "2026-03-03", EventType: models.EventCompletion, Count: 5},
		{Day: "2026-02-20", EventType: models.EventView, Count: 999},
	}
	results := []ResultCount{
		{Result: "Coffee", Won: true, Count: 3},
		{Result: "Try again", Won: false, Count: 1},
	}

	s := Compute(counts, daily, results, from, to)

	assert.Equal(t, 200, s.Views)
	assert.Equal(t, 25.0, s.ConversionRate)
	assert.Equal(t, 40.0, s.CompletionRate)
	assert.Equal(t, 3, s.Wins)

	require.Len(t, s.Daily, 3)
	assert.Equal(t, DailyPoint{Date: "2026-03-01", Views: 120, Participations: 30}, s.Daily[0])
	assert.Equal(t, DailyPoint{Date: "2026-03-02"}, s.Daily[1])
	assert.Equal(t, 5, s.Daily[2].Completions)

	require.Len(t, s.Results, 2)
	assert.Equal(t, 75.0, s.Results[0].Percent)
	assert.Equal(t, 25.0, s.Results[1].Percent)
}

func TestComputeEmptyCampaign(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := Compute(map[models.EventType]int{}, nil, nil, now, now)
	assert.Zero(t, s.ConversionRate)
	assert.Zero(t, s.CompletionRate)
	assert.Len(t, s.Daily, 1)
	assert.NotNil(t, s.Results)
}

func TestPercentRounding(t *testing.T) {
	assert.Equal(t, 33.3, percent(1, 3))
	assert.Equal(t, 66.7, percent(2, 3))
	assert.Equal(t, 0.0, percent(5, 0))
}
