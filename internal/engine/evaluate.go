package engine

import (
	"strings"

	"streakpeaked-service/internal/domain"
)

// IsCorrect resolves a submitted option against the question's canonical
// answer. The bank stores answers in three encodings, tried in order:
//
//  1. literal option text (case-insensitive, trimmed)
//  2. a single letter A-D naming the option position
//  3. a single digit 1-4 naming the option position
//
// Anything that resolves to none of these is simply not correct; malformed
// or missing answers never panic.
func IsCorrect(selected string, q domain.Question) bool {
	answer := normalize(q.Answer)
	if answer == "" {
		return false
	}
	sel := normalize(selected)
	if sel == answer {
		return true
	}

	idx := optionIndex(q.Options, sel)
	if idx < 0 || len(answer) != 1 {
		return false
	}
	switch c := answer[0]; {
	case c >= 'a' && c <= 'd':
		return idx == int(c-'a')
	case c >= '1' && c <= '4':
		return idx == int(c-'1')
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func optionIndex(options []string, normalized string) int {
	for i, opt := range options {
		if normalize(opt) == normalized {
			return i
		}
	}
	return -1
}
