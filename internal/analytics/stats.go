package analytics

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/promogame/backend/internal/models"
)

const dayLayout = "2006-01-02"

// DailyPoint is one day of the activity series.
type DailyPoint struct {
	Date           string `json:"date"`
	Views          int    `json:"views"`
	Participations int    `json:"participations"`
	Submissions    int    `json:"submissions"`
	Completions    int    `json:"completions"`
}

// ResultShare is one bar of the game result distribution.
type ResultShare struct {
	Result  string  `json:"result"`
	Won     bool    `json:"won"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Stats is the statistics view of a campaign, derived from recorded events only.
type Stats struct {
	Views          int           `json:"views"`
	Participations int           `json:"participations"`
	Submissions    int           `json:"submissions"`
	Completions    int           `json:"completions"`
	ConversionRate float64       `json:"conversion_rate"`
	CompletionRate float64       `json:"completion_rate"`
	Wins           int           `json:"wins"`
	Daily          []DailyPoint  `json:"daily"`
	Results        []ResultShare `json:"results"`
}

// Compute builds Stats from aggregate rows. The daily series covers every day from `from` to
// `to` inclusive, with zeros for days without events. Rates are percentages rounded to one
// decimal and are 0 when their denominator is 0.
func Compute(counts map[models.EventType]int, daily []DailyCount, results []ResultCount, from, to time.Time) Stats {
	s := Stats{
		Views:          counts[models.EventView],
		Participations: counts[models.EventParticipation],
		Submissions:    counts[models.EventFormSubmission],
		Completions:    counts[models.EventCompletion],
		Daily:          []DailyPoint{},
		Results:        []ResultShare{},
	}
	s.ConversionRate = percent(s.Participations, s.Views)
	s.CompletionRate = percent(s.Completions, s.Participations)

	byDay := make(map[string]*DailyPoint)
	start := from.UTC().Truncate(24 * time.Hour)
	end := to.UTC().Truncate(24 * time.Hour)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		s.Daily = append(s.Daily, DailyPoint{Date: d.Format(dayLayout)})
	}
	for i := range s.Daily {
		byDay[s.Daily[i].Date] = &s.Daily[i]
	}
	for _, dc := range daily {
		p, ok := byDay[dc.Day]
		if !ok {
			continue
		}
		switch dc.EventType {
		case models.EventView:
			p.Views += dc.Count
		case models.EventParticipation:
			p.Participations += dc.Count
		case models.EventFormSubmission:
			p.Submissions += dc.Count
		case models.EventCompletion:
			p.Completions += dc.Count
		}
	}

	total := 0
	for _, rc := range results {
		total += rc.Count
	}
	for _, rc := range results {
		if rc.Won {
			s.Wins += rc.Count
		}
		s.Results = append(s.Results, ResultShare{
			Result:  rc.Result,
			Won:     rc.Won,
			Count:   rc.Count,
			Percent: percent(rc.Count, total),
		})
	}
	return s
}

func percent(n, d int) float64 {
	if d <= 0 {
		return 0
	}
	return math.Round(float64(n)/float64(d)*1000) / 10
}

// Load queries store and computes the stats of one campaign over the last `days` days.
func Load(ctx context.Context, store Store, campaignID uuid.UUID, days int, now time.Time) (Stats, error) {
	if days <= 0 {
		days = DefaultDays
	}
	to := now.UTC()
	from := to.Truncate(24*time.Hour).AddDate(0, 0, -(days - 1))
	counts, err := store.EventCounts(ctx, campaignID)
	if err != nil {
		return Stats{}, err
	}
	daily, err := store.DailyCounts(ctx, campaignID, from)
	if err != nil {
		return Stats{}, err
	}
	results, err := store.ResultCounts(ctx, campaignID)
	if err != nil {
		return Stats{}, err
	}
	return Compute(counts, daily, results, from, to), nil
}

// DefaultDays is the length of the daily series when none is requested.
const DefaultDays = 30
