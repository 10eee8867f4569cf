package campaign

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/promogame/backend/internal/models"
)

func TestEffectiveStatusAndIsOpen(t *testing.T) {
	c := &models.Campaign{
		Status:    models.StatusScheduled,
		StartDate: "2026-05-01",
		StartTime: "09:00",
		EndDate:   "2026-05-31",
		EndTime:   "18:00",
	}
	before := time.Date(2026, 4, 30, 12, 0, 0, 0, time.UTC)
	during := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	after := time.Date(2026, 5, 31, 18, 1, 0, 0, time.UTC)

	assert.Equal(t, models.StatusScheduled, EffectiveStatus(c, before))
	assert.False(t, IsOpen(c, before))
	assert.Equal(t, models.StatusActive, EffectiveStatus(c, during))
	assert.True(t, IsOpen(c, during))
	assert.Equal(t, models.StatusEnded, EffectiveStatus(c, after))
	assert.False(t, IsOpen(c, after))

	c.Status = models.StatusDraft
	assert.False(t, IsOpen(c, during))

	open := &models.Campaign{Status: models.StatusActive}
	assert.True(t, IsOpen(open, during))
}

func TestEndDateWithoutClockCoversWholeDay(t *testing.T) {
	c := &models.Campaign{Status: models.StatusActive, EndDate: "2026-05-31"}

	lastSeconds := time.Date(2026, 5, 31, 23, 59, 30, 0, time.UTC)
	midnight := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsOpen(c, lastSeconds))
	assert.Equal(t, models.StatusEnded, EffectiveStatus(c, midnight))
	assert.False(t, IsOpen(c, midnight))

	c.EndTime = "bogus"
	assert.True(t, IsOpen(c, lastSeconds))

	c.EndTime = "18:00"
	assert.False(t, IsOpen(c, time.Date(2026, 5, 31, 18, 0, 0, 0, time.UTC)))
	assert.True(t, IsOpen(c, time.Date(2026, 5, 31, 17, 59, 59, 0, time.UTC)))
}
