package entity

import "testing"

func TestQuestionMatches(t *testing.T) {
	q := Question{
		Prompt:          "Which city hosted the first performance?",
		Answer:          "New York",
		AcceptedAnswers: []string{"NYC", "New York City"},
	}

	tests := []struct {
		name      string
		submitted string
		want      bool
	}{
		{"exact", "New York", true},
		{"case insensitive", "new york", true},
		{"trimmed", "  New York  ", true},
		{"accepted variant", "nyc", true},
		{"submission contains answer", "it was new york city I think", true},
		{"answer contains submission", "york", true},
		{"wrong answer", "Chicago", false},
		{"empty", "", false},
		{"whitespace only", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := q.Matches(tt.submitted); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.submitted, got, tt.want)
			}
		})
	}
}

func TestSongMatching(t *testing.T) {
	s := Song{
		Id:      "T1",
		Name:    "Starlight",
		Artists: []string{"Muse", "Some Collaborator"},
	}

	if !s.Matches("T1") {
		t.Error("id match failed")
	}
	if !s.Matches("starlight") {
		t.Error("case-insensitive title match failed")
	}
	if s.Matches("t1") {
		t.Error("track ids are case sensitive, lowercase id must not match")
	}
	if s.Matches("D1") {
		t.Error("unrelated guess matched")
	}

	if !s.HasArtist("muse") || !s.HasArtist(" Muse ") {
		t.Error("artist match should ignore case and whitespace")
	}
	if s.HasArtist("Radiohead") {
		t.Error("unknown artist matched")
	}
}
