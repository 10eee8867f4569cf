package campaign

import (
	"strconv"
	"strings"
)

// ParseIntDefault reads the leading integer of s the way form inputs are read: surrounding
// space is ignored, trailing garbage ("12px") is dropped, and fallback is returned when no
// digits lead the string.
func ParseIntDefault(s string, fallback int) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return fallback
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return fallback
	}
	return n
}

// ParseFloatDefault reads the leading decimal number of s, returning fallback when there is none.
func ParseFloatDefault(s string, fallback float64) float64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	sawDigit, sawDot := false, false
	for end < len(s) {
		ch := s[end]
		if ch >= '0' && ch <= '9' {
			sawDigit = true
		} else if ch == '.' && !sawDot {
			sawDot = true
		} else {
			break
		}
		end++
	}
	if !sawDigit {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return fallback
	}
	return f
}
