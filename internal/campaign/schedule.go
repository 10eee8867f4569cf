package campaign

import (
	"time"

	"github.com/promogame/backend/internal/models"
)

const (
	// DateLayout is the calendar format of start_date/end_date.
	DateLayout = "2006-01-02"
	// ClockLayout is the format of start_time/end_time.
	ClockLayout = "15:04"
)

// window returns the start and end instants of the campaign in loc. A missing or
// malformed bound is reported as zero. The end is exclusive: an end date without a
// usable clock closes at midnight of the following day.
func window(c *models.Campaign, loc *time.Location) (start, end time.Time) {
	start, _ = at(c.StartDate, c.StartTime, loc)
	end, timed := at(c.EndDate, c.EndTime, loc)
	if !end.IsZero() && !timed {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

// at parses date and clock in loc. timed is false when only the date could be used,
// in which case the result is the start of that day.
func at(date, clock string, loc *time.Location) (t time.Time, timed bool) {
	if date == "" {
		return time.Time{}, false
	}
	if clock != "" {
		if t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc); err == nil {
			return t, true
		}
	}
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, false
}

// EffectiveStatus derives the status at now: scheduled campaigns become active once their
// start is reached, and active or scheduled campaigns end after their end bound. Drafts
// stay drafts.
func EffectiveStatus(c *models.Campaign, now time.Time) models.CampaignStatus {
	if c.Status == models.StatusDraft || c.Status == models.StatusEnded {
		return c.Status
	}
	start, end := window(c, now.Location())
	if !end.IsZero() && !now.Before(end) {
		return models.StatusEnded
	}
	if c.Status == models.StatusScheduled && !start.IsZero() && !now.Before(start) {
		return models.StatusActive
	}
	return c.Status
}

// IsOpen reports whether the public page accepts participations at now.
func IsOpen(c *models.Campaign, now time.Time) bool {
	if EffectiveStatus(c, now) != models.StatusActive {
		return false
	}
	start, _ := window(c, now.Location())
	return start.IsZero() || !now.Before(start)
}
