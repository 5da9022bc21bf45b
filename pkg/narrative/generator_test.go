package narrative

import (
	"context"
	"errors"
	"testing"

	"ophiuchus-be/internal/entity"
	"ophiuchus-be/pkg/llm"
)

// recordingProvider replays scripted responses per model name and
// records which models were asked.
type recordingProvider struct {
	replies map[string]string
	errs    map[string]error
	asked   []string
}

func (p *recordingProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.Generate(ctx, history[len(history)-1].Content, options...)
}

func (p *recordingProvider) Generate(_ context.Context, _ string, options ...llm.Option) (string, error) {
	opts := &llm.Options{}
	for _, o := range options {
		o(opts)
	}
	p.asked = append(p.asked, opts.Model)
	if err := p.errs[opts.Model]; err != nil {
		return "", err
	}
	return p.replies[opts.Model], nil
}

var testSong = entity.Song{Id: "T1", Name: "Starlight", Artists: []string{"Muse"}}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"bare integer", "7", 7, false},
		{"integer in prose", "I'd say 7 out of 10.", 7, false},
		{"leading whitespace", "  9\n", 9, false},
		{"clamped high", "42", 10, false},
		{"zero", "0", 0, false},
		{"no digits", "quite close!", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScore(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseScore(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseScore(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateFallsBackOnOverload(t *testing.T) {
	p := &recordingProvider{
		replies: map[string]string{"backup": "a riddle"},
		errs:    map[string]error{"primary": &llm.StatusError{StatusCode: 503, Body: "overloaded"}},
	}
	g := NewGenerator(p, "primary", "backup")

	out, err := g.InitialClue(context.Background(), testSong)
	if err != nil {
		t.Fatal(err)
	}
	if out != "a riddle" {
		t.Errorf("clue = %q, want the backup reply", out)
	}
	if len(p.asked) != 2 || p.asked[0] != "primary" || p.asked[1] != "backup" {
		t.Errorf("models asked = %v, want [primary backup]", p.asked)
	}
}

func TestGenerateHardErrorDoesNotFallBack(t *testing.T) {
	p := &recordingProvider{
		replies: map[string]string{"backup": "a riddle"},
		errs:    map[string]error{"primary": errors.New("bad prompt")},
	}
	g := NewGenerator(p, "primary", "backup")

	if _, err := g.InitialClue(context.Background(), testSong); err == nil {
		t.Fatal("hard provider error swallowed")
	}
	if len(p.asked) != 1 {
		t.Errorf("models asked = %v, want primary only", p.asked)
	}
}

func TestJudgeMood(t *testing.T) {
	p := &recordingProvider{replies: map[string]string{"m": "8 - they share a wistful pull"}}
	g := NewGenerator(p, "m", "")

	score, err := g.JudgeMood(context.Background(), testSong, testSong)
	if err != nil {
		t.Fatal(err)
	}
	if score != 8 {
		t.Errorf("score = %d, want 8", score)
	}
}

func TestQuizQuestionsParsing(t *testing.T) {
	p := &recordingProvider{replies: map[string]string{"m": "```json\n" + `[
		{"prompt": "q1", "answer": "a1", "accepted_answers": ["alt1"]},
		{"prompt": "q2", "answer": "a2"},
		{"prompt": "q3", "answer": "a3"}
	]` + "\n```"}}
	g := NewGenerator(p, "m", "")

	questions, err := g.QuizQuestions(context.Background(), testSong, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(questions))
	}
	if questions[0].Prompt != "q1" || questions[0].Answer != "a1" {
		t.Errorf("first question = %+v", questions[0])
	}
	if len(questions[0].AcceptedAnswers) != 1 || questions[0].AcceptedAnswers[0] != "alt1" {
		t.Errorf("accepted answers = %v", questions[0].AcceptedAnswers)
	}
}

func TestQuizQuestionsTooFew(t *testing.T) {
	p := &recordingProvider{replies: map[string]string{"m": `[{"prompt": "q1", "answer": "a1"}]`}}
	g := NewGenerator(p, "m", "")

	if _, err := g.QuizQuestions(context.Background(), testSong, 5); err == nil {
		t.Fatal("short question set accepted")
	}
}

func TestIdentityParsing(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr bool
	}{
		{"well formed", `{"title": "Keeper of the Velvet Nebula", "description": "Two sentences."}`, false},
		{"fenced", "```json\n{\"title\": \"Keeper\", \"description\": \"Text.\"}\n```", false},
		{"missing description", `{"title": "Keeper"}`, true},
		{"not json", "a lovely identity", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recordingProvider{replies: map[string]string{"m": tt.reply}}
			g := NewGenerator(p, "m", "")

			identity, err := g.Identity(context.Background(), testSong, "summary")
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && identity.Title == "" {
				t.Error("parsed identity lost its title")
			}
		})
	}
}
