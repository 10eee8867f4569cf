package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 12, ParseIntDefault("12px", 0))
	assert.Equal(t, -3, ParseIntDefault(" -3 ", 0))
	assert.Equal(t, 7, ParseIntDefault("abc", 7))
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("-", 7))
}

func TestParseFloatDefault(t *testing.T) {
	assert.Equal(t, 0.5, ParseFloatDefault("0.5", 1))
	assert.Equal(t, 12.0, ParseFloatDefault("12.%", 1))
	assert.Equal(t, 3.25, ParseFloatDefault("3.25em", 1))
	assert.Equal(t, 1.0, ParseFloatDefault(".", 1))
	assert.Equal(t, 1.0, ParseFloatDefault("x1", 1))
}
