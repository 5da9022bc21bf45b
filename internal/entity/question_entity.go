package entity

import (
	"strings"

	"github.com/google/uuid"
)

// Question is one quiz-room question with its precomputed answers. The
// generated bank is attached to a session when the nova room opens.
type Question struct {
	Id              uuid.UUID `json:"id"`
	Prompt          string    `json:"prompt"`
	Answer          string    `json:"answer"`
	AcceptedAnswers []string  `json:"accepted_answers,omitempty"`
}

// Matches checks a submitted answer against the canonical answer and any
// accepted variants: case-insensitive, trimmed, exact or substring.
func (q Question) Matches(submitted string) bool {
	sub := strings.ToLower(strings.TrimSpace(submitted))
	if sub == "" {
		return false
	}
	candidates := append([]string{q.Answer}, q.AcceptedAnswers...)
	for _, c := range candidates {
		want := strings.ToLower(strings.TrimSpace(c))
		if want == "" {
			continue
		}
		if sub == want || strings.Contains(want, sub) || strings.Contains(sub, want) {
			return true
		}
	}
	return false
}
