package games

import (
	"strings"

	"github.com/promogame/backend/internal/models"
)

// QuizScore is the tally of a quiz submission. Questions without a correct answer are not
// scored.
type QuizScore struct {
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// ScoreQuiz compares answers (question id -> answer) with the correct answers,
// ignoring case and surrounding space.
func ScoreQuiz(questions []models.Question, answers map[string]string) QuizScore {
	var s QuizScore
	for _, q := range questions {
		if q.CorrectAnswer == nil {
			continue
		}
		s.Total++
		if strings.EqualFold(strings.TrimSpace(answers[q.ID]), strings.TrimSpace(*q.CorrectAnswer)) {
			s.Correct++
		}
	}
	if s.Total > 0 {
		s.Percent = float64(s.Correct) / float64(s.Total) * 100
	}
	return s
}
