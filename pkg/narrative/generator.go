package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"ophiuchus-be/internal/entity"
	"ophiuchus-be/pkg/llm"
)

// Generator wraps the LLM provider with the game's prompts and response
// parsing. It holds a primary and a fallback model name; a single retry
// on the fallback happens only for overload-class provider errors.
// Session state never flows into this package.
type Generator struct {
	provider      llm.Provider
	primaryModel  string
	fallbackModel string
}

func NewGenerator(provider llm.Provider, primaryModel, fallbackModel string) *Generator {
	return &Generator{
		provider:      provider,
		primaryModel:  primaryModel,
		fallbackModel: fallbackModel,
	}
}

// generate runs the prompt on the primary model and retries once on the
// fallback when the primary is overloaded. Hard errors pass through.
func (g *Generator) generate(ctx context.Context, prompt string) (string, error) {
	out, err := g.provider.Generate(ctx, prompt, llm.WithModel(g.primaryModel))
	if err == nil {
		return out, nil
	}
	if g.fallbackModel != "" && g.fallbackModel != g.primaryModel && llm.IsOverloaded(err) {
		return g.provider.Generate(ctx, prompt, llm.WithModel(g.fallbackModel))
	}
	return "", err
}

// InitialClue writes the riddle shown at quest start. It hints at the
// cosmic song without naming it.
func (g *Generator) InitialClue(ctx context.Context, target entity.Song) (string, error) {
	prompt := fmt.Sprintf(
		"You are the narrator of a cosmic music quest. Write a short, evocative riddle (2-3 sentences) "+
			"hinting at the song %q by %s without ever naming the song or the artist. "+
			"Reply with the riddle only.",
		target.Name, strings.Join(target.Artists, ", "),
	)
	out, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RoomClue writes the reward clue revealed when a room is passed.
func (g *Generator) RoomClue(ctx context.Context, room entity.RoomKind, target entity.Song) (string, error) {
	prompt := fmt.Sprintf(
		"You are the narrator of a cosmic music quest. The player just cleared the %s room. "+
			"Write one sentence that brings them closer to the hidden song %q by %s, "+
			"without naming the song. Reply with the sentence only.",
		room, target.Name, strings.Join(target.Artists, ", "),
	)
	out, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// JudgeMood scores how well a submitted song matches the target song's
// mood, 0-10. The response is parsed for its first integer.
func (g *Generator) JudgeMood(ctx context.Context, submitted, target entity.Song) (int, error) {
	prompt := fmt.Sprintf(
		"Rate from 0 to 10 how closely the emotional mood of the song %q by %s matches "+
			"the mood of %q by %s. Reply with a single integer and nothing else.",
		submitted.Name, strings.Join(submitted.Artists, ", "),
		target.Name, strings.Join(target.Artists, ", "),
	)
	out, err := g.generate(ctx, prompt)
	if err != nil {
		return 0, err
	}
	score, err := parseScore(out)
	if err != nil {
		return 0, fmt.Errorf("parse mood score from %q: %w", out, err)
	}
	return score, nil
}

// OracleAnswer answers a free-text question about the target song's
// artist without revealing the artist's name.
func (g *Generator) OracleAnswer(ctx context.Context, target entity.Song, question string) (string, error) {
	prompt := fmt.Sprintf(
		"You are a cryptic oracle in a music quest. The hidden artist is %s. "+
			"Answer the player's question in one or two sentences without ever naming the artist "+
			"or any of their song titles.\n\nQuestion: %s",
		strings.Join(target.Artists, ", "), question,
	)
	out, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// QuizQuestions builds the nova room's question bank about the target
// song and its artist. The model must reply with a JSON array.
func (g *Generator) QuizQuestions(ctx context.Context, target entity.Song, n int) ([]entity.Question, error) {
	prompt := fmt.Sprintf(
		"Create %d trivia questions about the song %q by %s or its artist. "+
			"Reply with a JSON array only, each element shaped as "+
			`{"prompt": "...", "answer": "...", "accepted_answers": ["..."]}. `+
			"Answers must be short (one to three words).",
		n, target.Name, strings.Join(target.Artists, ", "),
	)
	out, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var questions []entity.Question
	if err := json.Unmarshal([]byte(stripCodeFence(out)), &questions); err != nil {
		return nil, fmt.Errorf("parse quiz questions: %w", err)
	}
	if len(questions) < n {
		return nil, fmt.Errorf("expected %d questions, got %d", n, len(questions))
	}
	return questions[:n], nil
}

// Identity generates the narrative reward for a won quest.
func (g *Generator) Identity(ctx context.Context, target entity.Song, profileSummary string) (*entity.OphiuchusIdentity, error) {
	prompt := fmt.Sprintf(
		"A player has completed a cosmic music quest. Their hidden song was %q by %s. "+
			"Player summary: %s\n"+
			"Invent their celestial identity. Reply with JSON only, shaped as "+
			`{"title": "...", "description": "..."}. `+
			"The title is a mythic name (e.g. \"Keeper of the Velvet Nebula\"); "+
			"the description is 2-3 sentences tying the song to the identity.",
		target.Name, strings.Join(target.Artists, ", "), profileSummary,
	)
	out, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var identity entity.OphiuchusIdentity
	if err := json.Unmarshal([]byte(stripCodeFence(out)), &identity); err != nil {
		return nil, fmt.Errorf("parse identity: %w", err)
	}
	if identity.Title == "" || identity.Description == "" {
		return nil, fmt.Errorf("identity response missing fields")
	}
	return &identity, nil
}

// parseScore pulls the first integer out of a model reply and clamps it
// to the 0-10 judging scale.
func parseScore(out string) (int, error) {
	fields := strings.FieldsFunc(out, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(fields) == 0 {
		return 0, fmt.Errorf("no integer found")
	}
	score, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, err
	}
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score, nil
}

// stripCodeFence removes a markdown ```json fence if the model added one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
