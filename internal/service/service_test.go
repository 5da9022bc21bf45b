package service

// In-memory fakes for the repository and external seams. The session
// repository keeps the same optimistic-version semantics as the GORM
// implementation so conflict paths are testable.

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"ophiuchus-be/internal/entity"
	"ophiuchus-be/internal/pkg/logger"
	"ophiuchus-be/internal/repository/contract"
	"ophiuchus-be/internal/repository/specification"
	"ophiuchus-be/internal/repository/unitofwork"
	"ophiuchus-be/pkg/llm"
	"ophiuchus-be/pkg/narrative"

	"github.com/google/uuid"
)

// --- logger ---

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}

func (nopLogger) Info(string, string, map[string]interface{}) {}

func (nopLogger) Warn(string, string, map[string]interface{}) {}

func (nopLogger) Error(string, string, map[string]interface{}) {}

func (nopLogger) Sync() error { return nil }

var _ logger.ILogger = nopLogger{}

// --- quest session repository ---

type fakeSessionRepo struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*entity.QuestSession
	stored    map[uuid.UUID]int // version the "database" currently holds
	deleted   []uuid.UUID
	deleteErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[uuid.UUID]*entity.QuestSession),
		stored:   make(map[uuid.UUID]int),
	}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.QuestSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Id] = session
	r.stored[session.Id] = session.Version
	return nil
}

func (r *fakeSessionRepo) UpdateWithVersion(_ context.Context, session *entity.QuestSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.stored[session.Id]
	if !ok || current != session.Version {
		return contract.ErrVersionConflict
	}
	r.stored[session.Id] = current + 1
	session.Version = current + 1
	r.sessions[session.Id] = session
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.sessions, id)
	delete(r.stored, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeSessionRepo) matches(s *entity.QuestSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByID:
			if s.Id != v.ID {
				return false
			}
		case specification.ByUserID:
			if s.UserId != v.UserID {
				return false
			}
		case specification.ActiveOnly:
			if s.IsCompleted {
				return false
			}
		}
	}
	return true
}

func (r *fakeSessionRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.QuestSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if r.matches(s, specs) {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.QuestSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.QuestSession
	for _, s := range r.sessions {
		if r.matches(s, specs) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

// --- completed game repository ---

type fakeGameRepo struct {
	games     []*entity.CompletedGame
	createErr error
}

func (r *fakeGameRepo) Create(_ context.Context, game *entity.CompletedGame) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.games = append(r.games, game)
	return nil
}

func (r *fakeGameRepo) FindAllByUserId(_ context.Context, userId uuid.UUID) ([]*entity.CompletedGame, error) {
	var out []*entity.CompletedGame
	for _, g := range r.games {
		if g.UserId == userId {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeGameRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.CompletedGame, error) {
	return nil, nil
}

func (r *fakeGameRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(r.games)), nil
}

// --- player profile repository ---

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*entity.PlayerProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*entity.PlayerProfile)}
}

func (r *fakeProfileRepo) Upsert(_ context.Context, profile *entity.PlayerProfile) error {
	r.profiles[profile.UserId] = profile
	return nil
}

func (r *fakeProfileRepo) FindByUserId(_ context.Context, userId uuid.UUID) (*entity.PlayerProfile, error) {
	return r.profiles[userId], nil
}

func (r *fakeProfileRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.PlayerProfile, error) {
	var out []*entity.PlayerProfile
	for _, p := range r.profiles {
		out = append(out, p)
	}
	return out, nil
}

// --- quiz question repository ---

type fakeQuizRepo struct {
	bank []entity.Question
}

func (r *fakeQuizRepo) Create(_ context.Context, q *entity.Question) error {
	r.bank = append(r.bank, *q)
	return nil
}

func (r *fakeQuizRepo) FindRandom(_ context.Context, n int) ([]entity.Question, error) {
	if n > len(r.bank) {
		n = len(r.bank)
	}
	return r.bank[:n], nil
}

func (r *fakeQuizRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.bank)), nil
}

// --- user repository ---

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.users[user.Id] = user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.users[user.Id] = user
	return nil
}

func (r *fakeUserRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, u := range r.users {
		match := true
		for _, spec := range specs {
			switch v := spec.(type) {
			case specification.ByID:
				if u.Id != v.ID {
					match = false
				}
			case specification.ByEmail:
				if u.Email != v.Email {
					match = false
				}
			}
		}
		if match {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(r.users)), nil
}

// --- unit of work ---

type fakeUow struct {
	sessionRepo *fakeSessionRepo
	gameRepo    *fakeGameRepo
	profileRepo *fakeProfileRepo
	quizRepo    *fakeQuizRepo
	userRepo    *fakeUserRepo

	begins    int
	commits   int
	rollbacks int
}

func newFakeUow() *fakeUow {
	return &fakeUow{
		sessionRepo: newFakeSessionRepo(),
		gameRepo:    &fakeGameRepo{},
		profileRepo: newFakeProfileRepo(),
		quizRepo:    &fakeQuizRepo{},
		userRepo:    newFakeUserRepo(),
	}
}

func (u *fakeUow) Begin(context.Context) error { u.begins++; return nil }

func (u *fakeUow) Commit() error { u.commits++; return nil }

func (u *fakeUow) Rollback() error { u.rollbacks++; return nil }

func (u *fakeUow) QuestSessionRepository() contract.QuestSessionRepository {
	return u.sessionRepo
}
func (u *fakeUow) CompletedGameRepository() contract.CompletedGameRepository {
	return u.gameRepo
}
func (u *fakeUow) PlayerProfileRepository() contract.PlayerProfileRepository {
	return u.profileRepo
}
func (u *fakeUow) QuizQuestionRepository() contract.QuizQuestionRepository {
	return u.quizRepo
}
func (u *fakeUow) UserRepository() contract.UserRepository {
	return u.userRepo
}

type fakeFactory struct {
	uow *fakeUow
}

func (f *fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// --- llm provider ---

// stubProvider routes prompts by their distinguishing phrases so one
// stub serves every narrator call in a test.
type stubProvider struct {
	moodScore   int
	clueErr     error
	identityErr error
	quizErr     error
}

func (p *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if len(history) == 0 {
		return "", errors.New("empty history")
	}
	return p.Generate(ctx, history[len(history)-1].Content, options...)
}

func (p *stubProvider) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	switch {
	case strings.Contains(prompt, "Rate from 0 to 10"):
		return strconv.Itoa(p.moodScore), nil
	case strings.Contains(prompt, "celestial identity"):
		if p.identityErr != nil {
			return "", p.identityErr
		}
		return `{"title": "Keeper of the Velvet Nebula", "description": "Forged in the quiet between stars."}`, nil
	case strings.Contains(prompt, "trivia questions"):
		if p.quizErr != nil {
			return "", p.quizErr
		}
		return `[
			{"prompt": "q1", "answer": "a1"},
			{"prompt": "q2", "answer": "a2"},
			{"prompt": "q3", "answer": "a3"},
			{"prompt": "q4", "answer": "a4"},
			{"prompt": "q5", "answer": "a5"}
		]`, nil
	case strings.Contains(prompt, "cryptic oracle"):
		return "The one you seek favors minor keys.", nil
	default:
		if p.clueErr != nil {
			return "", p.clueErr
		}
		return "A shimmer in the outer arm points your way.", nil
	}
}

var _ llm.Provider = &stubProvider{}

func newTestNarrator(p llm.Provider) *narrative.Generator {
	return narrative.NewGenerator(p, "test-model", "")
}

// --- music catalog ---

type fakeCatalog struct {
	songs     []entity.Song
	searchErr error
	trackErr  error
}

func (c *fakeCatalog) SearchTracks(_ context.Context, _ string, _ int) ([]entity.Song, error) {
	if c.searchErr != nil {
		return nil, c.searchErr
	}
	return c.songs, nil
}

func (c *fakeCatalog) GetTrack(_ context.Context, id string) (*entity.Song, error) {
	if c.trackErr != nil {
		return nil, c.trackErr
	}
	for _, s := range c.songs {
		if s.Id == id {
			song := s
			return &song, nil
		}
	}
	return nil, fmt.Errorf("track %s not found", id)
}

// --- watermill publisher ---

type capturePublisher struct {
	published [][]byte
	err       error
}

func (p *capturePublisher) Publish(_ context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, payload)
	return nil
}

// --- mailer ---

type nopMailer struct{}

func (nopMailer) SendWelcome(string, string) error { return nil }

func (nopMailer) SendQuestSummary(string, string, int, bool) error { return nil }

// --- fixtures ---

var (
	testTarget = entity.Song{Id: "T1", Name: "Starlight", Artists: []string{"Muse"}}
	testDecoy1 = entity.Song{Id: "D1", Name: "Supermassive", Artists: []string{"Muse"}}
	testDecoy2 = entity.Song{Id: "D2", Name: "Black Hole Sun", Artists: []string{"Soundgarden"}}
)

func testQuestions() []entity.Question {
	return []entity.Question{
		{Prompt: "q1", Answer: "a1"},
		{Prompt: "q2", Answer: "a2"},
		{Prompt: "q3", Answer: "a3"},
		{Prompt: "q4", Answer: "a4"},
		{Prompt: "q5", Answer: "a5"},
	}
}

// newTestSession seeds a fresh pending session into the repo and
// returns it alongside its owner id.
func newTestSession(repo *fakeSessionRepo) (*entity.QuestSession, uuid.UUID) {
	userId := uuid.New()
	session := &entity.QuestSession{
		Id:            uuid.New(),
		UserId:        userId,
		TargetSong:    testTarget,
		DecoySongs:    []entity.Song{testDecoy1, testDecoy2},
		InitialClue:   "An opening riddle.",
		QuizQuestions: testQuestions(),
		Version:       1,
	}
	for _, k := range entity.AllRooms {
		session.Room(k)
	}
	repo.Create(context.Background(), session)
	return session, userId
}

// completeAllRooms marks every room passed with the given points so
// final-guess tests can start from an unlocked session.
func completeAllRooms(session *entity.QuestSession, pointsEach int) {
	for _, k := range entity.AllRooms {
		st := session.Room(k)
		st.IsCompleted = true
		st.FinalVerdict = entity.VerdictCorrect
		st.PointsAwarded = pointsEach
	}
	session.RecomputeTotal()
}
