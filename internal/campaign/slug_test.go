package campaign

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Mon Super Jeu!!":        "mon-super-jeu",
		"  Été   à la plage  ":   "ete-a-la-plage",
		"--Hello__World--":       "hello-world",
		"Quiz #2: the return":    "quiz-2-the-return",
		"!!!":                    "",
		"already-a-slug":         "already-a-slug",
		"Tabs\tand\nnewlines":    "tabs-and-newlines",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestSlugifyShape(t *testing.T) {
	shape := regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)?$`)
	inputs := []string{"A  B", "x_-_y", "Ünïcödé Wörds", "-lead", "trail-", "99 Luftballons!", "日本語 title"}
	for _, in := range inputs {
		assert.Regexp(t, shape, Slugify(in), in)
	}
}
