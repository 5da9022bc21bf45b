package service

import (
	"context"
	"errors"
	"fmt"

	"ophiuchus-be/internal/dto"
	"ophiuchus-be/internal/entity"
	"ophiuchus-be/internal/pkg/logger"
	"ophiuchus-be/internal/pkg/serverutils"
	"ophiuchus-be/internal/repository/contract"
	"ophiuchus-be/internal/repository/unitofwork"
	"ophiuchus-be/pkg/narrative"
	"ophiuchus-be/pkg/spotify"

	"github.com/google/uuid"
)

type IRoomService interface {
	SubmitGuess(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, room entity.RoomKind, req *dto.GuessRequest) (*dto.GuessResponse, error)
	SubmitMoodSong(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.MoodSongRequest) (*dto.MoodSongResponse, error)
	QuizQuestions(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.QuizQuestionsResponse, error)
	SubmitQuizAnswers(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.QuizAnswersRequest) (*dto.QuizAnswersResponse, error)
	AskOracle(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.OracleRequest) (*dto.OracleResponse, error)
	SkipRemaining(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SkipResponse, error)
}

type roomService struct {
	uowFactory unitofwork.RepositoryFactory
	catalog    spotify.Catalog
	narrator   *narrative.Generator
	logger     logger.ILogger
}

func NewRoomService(
	uowFactory unitofwork.RepositoryFactory,
	catalog spotify.Catalog,
	narrator *narrative.Generator,
	log logger.ILogger,
) IRoomService {
	return &roomService{
		uowFactory: uowFactory,
		catalog:    catalog,
		narrator:   narrator,
		logger:     log,
	}
}

// guessTarget resolves what a guess room is actually asking for.
func guessTarget(session *entity.QuestSession, room entity.RoomKind) (entity.Song, error) {
	switch room {
	case entity.RoomNebula:
		return session.DecoySongs[0], nil
	case entity.RoomComet:
		return session.DecoySongs[1], nil
	case entity.RoomCradle:
		return session.TargetSong, nil
	}
	return entity.Song{}, serverutils.BadRequest(fmt.Sprintf("room %q does not take a guess", room))
}

// SubmitGuess adjudicates the nebula, cradle and comet rooms. A
// submission against an already completed room is a no-op that returns
// the stored outcome, so client retries never double-count.
func (s *roomService) SubmitGuess(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, room entity.RoomKind, req *dto.GuessRequest) (*dto.GuessResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	target, err := guessTarget(session, room)
	if err != nil {
		return nil, err
	}

	state := session.Room(room)
	if state.IsCompleted {
		return guessOutcome(room, state), nil
	}

	policy := entity.Policies[room]

	var correct bool
	if room == entity.RoomCradle {
		correct = target.HasArtist(req.Guess)
	} else {
		correct = target.Matches(req.Guess)
	}

	// The reward clue is generated before any state is touched; a
	// narrator failure must not consume an attempt.
	clue := ""
	if correct {
		clue, err = s.narrator.RoomClue(ctx, room, session.TargetSong)
		if err != nil {
			s.logger.Error("RoomService", "clue generation failed", map[string]interface{}{"error": err.Error(), "room": string(room)})
			return nil, serverutils.ExternalServiceError("narrator is unavailable")
		}
	}

	state.AttemptsUsed++
	if correct {
		tier := state.AttemptsUsed - 1
		if tier >= len(policy.PointsByAttempt) {
			tier = len(policy.PointsByAttempt) - 1
		}
		state.PointsAwarded = policy.PointsByAttempt[tier]
		state.IsCompleted = true
		state.FinalVerdict = entity.VerdictCorrect
		state.ClueText = clue
	} else if state.AttemptsUsed >= policy.AttemptCap {
		state.PointsAwarded = policy.FailFloor
		state.IsCompleted = true
		state.FinalVerdict = entity.VerdictWrong
		if policy.RevealOnFail {
			answer := target
			state.RevealedAnswer = &answer
		}
	}
	session.RecomputeTotal()

	if err := s.save(ctx, uow, session); err != nil {
		return nil, err
	}
	res := guessOutcome(room, state)
	res.Correct = correct
	return res, nil
}

func guessOutcome(room entity.RoomKind, state *entity.RoomState) *dto.GuessResponse {
	return &dto.GuessResponse{
		Correct:           state.FinalVerdict == entity.VerdictCorrect,
		PointsAwarded:     state.PointsAwarded,
		AttemptsRemaining: state.AttemptsRemaining(room),
		Completed:         state.IsCompleted,
		ClueText:          state.ClueText,
		RevealedAnswer:    state.RevealedAnswer,
	}
}

// SubmitMoodSong runs the aurora room. The submitted song is looked up
// in the catalog, judged for emotional closeness on a 0-10 scale, and
// the room completes once the score reaches the pass threshold. Retries
// are unlimited and only the passing attempt awards points.
func (s *roomService) SubmitMoodSong(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.MoodSongRequest) (*dto.MoodSongResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	state := session.Room(entity.RoomAurora)
	if state.IsCompleted {
		return &dto.MoodSongResponse{
			Score:         state.BestMoodScore,
			Passed:        true,
			PointsAwarded: state.PointsAwarded,
			Completed:     true,
			ClueText:      state.ClueText,
		}, nil
	}

	submitted, err := s.catalog.GetTrack(ctx, req.SongId)
	if err != nil {
		s.logger.Error("RoomService", "mood song lookup failed", map[string]interface{}{"error": err.Error(), "song_id": req.SongId})
		return nil, serverutils.ExternalServiceError("music catalog is unavailable")
	}

	score, err := s.narrator.JudgeMood(ctx, *submitted, session.TargetSong)
	if err != nil {
		s.logger.Error("RoomService", "mood judging failed", map[string]interface{}{"error": err.Error()})
		return nil, serverutils.ExternalServiceError("narrator is unavailable")
	}

	policy := entity.Policies[entity.RoomAurora]
	passed := score >= policy.PassScore

	clue := ""
	if passed {
		clue, err = s.narrator.RoomClue(ctx, entity.RoomAurora, session.TargetSong)
		if err != nil {
			s.logger.Error("RoomService", "clue generation failed", map[string]interface{}{"error": err.Error(), "room": string(entity.RoomAurora)})
			return nil, serverutils.ExternalServiceError("narrator is unavailable")
		}
	}

	state.AttemptsUsed++
	if score > state.BestMoodScore {
		state.BestMoodScore = score
	}
	if passed {
		state.PointsAwarded = score * 10
		state.IsCompleted = true
		state.FinalVerdict = entity.VerdictCorrect
		state.ClueText = clue
	}
	session.RecomputeTotal()

	if err := s.save(ctx, uow, session); err != nil {
		return nil, err
	}
	return &dto.MoodSongResponse{
		Score:         score,
		Passed:        passed,
		PointsAwarded: state.PointsAwarded,
		Completed:     state.IsCompleted,
		ClueText:      state.ClueText,
	}, nil
}

func (s *roomService) QuizQuestions(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.QuizQuestionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	views := make([]dto.QuizQuestionView, len(session.QuizQuestions))
	for i, q := range session.QuizQuestions {
		views[i] = dto.QuizQuestionView{Prompt: q.Prompt}
	}
	return &dto.QuizQuestionsResponse{Questions: views}, nil
}

// SubmitQuizAnswers grades the nova room in a single submission. The
// room completes either way; the clue only unlocks when enough answers
// were right.
func (s *roomService) SubmitQuizAnswers(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.QuizAnswersRequest) (*dto.QuizAnswersResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	state := session.Room(entity.RoomNova)
	if state.IsCompleted {
		return quizOutcome(state), nil
	}

	if len(req.Answers) != len(session.QuizQuestions) {
		return nil, serverutils.BadRequest(fmt.Sprintf("expected %d answers, got %d", len(session.QuizQuestions), len(req.Answers)))
	}

	policy := entity.Policies[entity.RoomNova]

	correct := 0
	for i, q := range session.QuizQuestions {
		if q.Matches(req.Answers[i]) {
			correct++
		}
	}
	passed := correct >= policy.QuizPassCount

	clue := ""
	if passed {
		clue, err = s.narrator.RoomClue(ctx, entity.RoomNova, session.TargetSong)
		if err != nil {
			s.logger.Error("RoomService", "clue generation failed", map[string]interface{}{"error": err.Error(), "room": string(entity.RoomNova)})
			return nil, serverutils.ExternalServiceError("narrator is unavailable")
		}
	}

	state.AttemptsUsed++
	state.QuizCorrectCount = correct
	state.PointsAwarded = correct * policy.PointsPerAnswer
	if correct == 0 {
		state.PointsAwarded = policy.FailFloor
	}
	state.IsCompleted = true
	if passed {
		state.FinalVerdict = entity.VerdictCorrect
		state.ClueText = clue
	} else {
		state.FinalVerdict = entity.VerdictWrong
	}
	session.RecomputeTotal()

	if err := s.save(ctx, uow, session); err != nil {
		return nil, err
	}
	return quizOutcome(state), nil
}

func quizOutcome(state *entity.RoomState) *dto.QuizAnswersResponse {
	return &dto.QuizAnswersResponse{
		CorrectCount:  state.QuizCorrectCount,
		PointsAwarded: state.PointsAwarded,
		Passed:        state.FinalVerdict == entity.VerdictCorrect,
		Completed:     state.IsCompleted,
		ClueText:      state.ClueText,
	}
}

// AskOracle spends one of the cradle room's question budget on a
// free-text question about the hidden artist.
func (s *roomService) AskOracle(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.OracleRequest) (*dto.OracleResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	state := session.Room(entity.RoomCradle)
	policy := entity.Policies[entity.RoomCradle]

	if state.IsCompleted {
		return nil, serverutils.BadRequest("the cradle room is already completed")
	}
	if state.OracleQuestionsUsed >= policy.OracleBudget {
		return nil, serverutils.BadRequest("oracle question budget exhausted")
	}

	answer, err := s.narrator.OracleAnswer(ctx, session.TargetSong, req.Question)
	if err != nil {
		s.logger.Error("RoomService", "oracle answer failed", map[string]interface{}{"error": err.Error()})
		return nil, serverutils.ExternalServiceError("the oracle is unavailable")
	}

	state.OracleQuestionsUsed++
	if err := s.save(ctx, uow, session); err != nil {
		return nil, err
	}
	return &dto.OracleResponse{
		Answer:             answer,
		QuestionsRemaining: policy.OracleBudget - state.OracleQuestionsUsed,
	}, nil
}

// SkipRemaining marks every uncompleted room as completed with zero
// points so the player can jump straight to the final guess.
func (s *roomService) SkipRemaining(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SkipResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	skipped := 0
	for _, k := range entity.AllRooms {
		state := session.Room(k)
		if state.IsCompleted {
			continue
		}
		state.IsCompleted = true
		state.FinalVerdict = entity.VerdictWrong
		state.PointsAwarded = 0
		skipped++
	}

	if skipped > 0 {
		session.RecomputeTotal()
		if err := s.save(ctx, uow, session); err != nil {
			return nil, err
		}
	}
	return &dto.SkipResponse{
		RoomsSkipped:  skipped,
		FinalUnlocked: session.FinalUnlocked(),
	}, nil
}

// save persists the session under its optimistic version check. A lost
// race surfaces as a conflict for the caller to retry against fresh
// state.
func (s *roomService) save(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.QuestSession) error {
	err := uow.QuestSessionRepository().UpdateWithVersion(ctx, session)
	if errors.Is(err, contract.ErrVersionConflict) {
		return serverutils.Conflict("the quest was updated by another request, retry")
	}
	return err
}
