package service

import (
	"context"
	"errors"
	"testing"

	"ophiuchus-be/internal/dto"
	"ophiuchus-be/internal/entity"
	"ophiuchus-be/internal/pkg/serverutils"

	"github.com/google/uuid"
)

func newRoomServiceForTest(uow *fakeUow, provider *stubProvider) IRoomService {
	catalog := &fakeCatalog{songs: []entity.Song{testTarget, testDecoy1, testDecoy2}}
	return NewRoomService(&fakeFactory{uow: uow}, catalog, newTestNarrator(provider), nopLogger{})
}

func TestSubmitGuessPointTiers(t *testing.T) {
	tests := []struct {
		name       string
		room       entity.RoomKind
		wrongFirst int // wrong guesses before the right one
		wantPoints int
	}{
		{"nebula first try", entity.RoomNebula, 0, 100},
		{"nebula second try", entity.RoomNebula, 1, 50},
		{"nebula third try", entity.RoomNebula, 2, 25},
		{"cradle first try", entity.RoomCradle, 0, 100},
		{"cradle second try", entity.RoomCradle, 1, 75},
		{"cradle third try", entity.RoomCradle, 2, 50},
		{"comet first try", entity.RoomComet, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow := newFakeUow()
			session, userId := newTestSession(uow.sessionRepo)
			svc := newRoomServiceForTest(uow, &stubProvider{})
			ctx := context.Background()

			for i := 0; i < tt.wrongFirst; i++ {
				res, err := svc.SubmitGuess(ctx, userId, session.Id, tt.room, &dto.GuessRequest{Guess: "nonsense"})
				if err != nil {
					t.Fatalf("wrong guess %d: %v", i+1, err)
				}
				if res.Correct || res.Completed {
					t.Fatalf("wrong guess %d marked correct/completed", i+1)
				}
			}

			winning := map[entity.RoomKind]string{
				entity.RoomNebula: testDecoy1.Id,
				entity.RoomComet:  testDecoy2.Id,
				entity.RoomCradle: "Muse",
			}[tt.room]

			res, err := svc.SubmitGuess(ctx, userId, session.Id, tt.room, &dto.GuessRequest{Guess: winning})
			if err != nil {
				t.Fatalf("winning guess: %v", err)
			}
			if !res.Correct || !res.Completed {
				t.Fatal("winning guess not marked correct and completed")
			}
			if res.PointsAwarded != tt.wantPoints {
				t.Errorf("points = %d, want %d", res.PointsAwarded, tt.wantPoints)
			}
			if res.ClueText == "" {
				t.Error("winning guess returned no clue")
			}
			if session.TotalPoints != tt.wantPoints {
				t.Errorf("session total = %d, want %d", session.TotalPoints, tt.wantPoints)
			}
		})
	}
}

func TestSubmitGuessExhaustion(t *testing.T) {
	tests := []struct {
		name       string
		room       entity.RoomKind
		attempts   int
		wantPoints int
	}{
		{"nebula floor is zero", entity.RoomNebula, 3, 0},
		{"cradle keeps a floor", entity.RoomCradle, 3, 10},
		{"comet single miss", entity.RoomComet, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow := newFakeUow()
			session, userId := newTestSession(uow.sessionRepo)
			svc := newRoomServiceForTest(uow, &stubProvider{})
			ctx := context.Background()

			var res *dto.GuessResponse
			var err error
			for i := 0; i < tt.attempts; i++ {
				res, err = svc.SubmitGuess(ctx, userId, session.Id, tt.room, &dto.GuessRequest{Guess: "nonsense"})
				if err != nil {
					t.Fatalf("guess %d: %v", i+1, err)
				}
			}

			if !res.Completed || res.Correct {
				t.Fatal("exhausted room should be completed and wrong")
			}
			if res.PointsAwarded != tt.wantPoints {
				t.Errorf("points = %d, want %d", res.PointsAwarded, tt.wantPoints)
			}
			if res.AttemptsRemaining != 0 {
				t.Errorf("attempts remaining = %d, want 0", res.AttemptsRemaining)
			}
			if res.RevealedAnswer == nil {
				t.Error("exhausted room did not reveal its answer")
			}

			// One more submission changes nothing, even with the right answer.
			attemptsBefore := session.Room(tt.room).AttemptsUsed
			late, err := svc.SubmitGuess(ctx, userId, session.Id, tt.room, &dto.GuessRequest{Guess: testDecoy1.Id})
			if err != nil {
				t.Fatal(err)
			}
			if late.Correct || late.PointsAwarded != tt.wantPoints {
				t.Error("late submission altered the stored outcome")
			}
			if session.Room(tt.room).AttemptsUsed != attemptsBefore {
				t.Error("late submission consumed an attempt")
			}
		})
	}
}

func TestSubmitGuessCompletedRoomIsIdempotent(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	svc := newRoomServiceForTest(uow, &stubProvider{})
	ctx := context.Background()

	first, err := svc.SubmitGuess(ctx, userId, session.Id, entity.RoomNebula, &dto.GuessRequest{Guess: testDecoy1.Id})
	if err != nil {
		t.Fatal(err)
	}
	versionAfter := session.Version

	// A retried submission must return the stored outcome untouched,
	// whatever guess it carries.
	again, err := svc.SubmitGuess(ctx, userId, session.Id, entity.RoomNebula, &dto.GuessRequest{Guess: "something else"})
	if err != nil {
		t.Fatal(err)
	}
	if again.PointsAwarded != first.PointsAwarded || !again.Completed {
		t.Error("resubmission changed the stored outcome")
	}
	if session.Room(entity.RoomNebula).AttemptsUsed != 1 {
		t.Errorf("attempts used = %d, want 1", session.Room(entity.RoomNebula).AttemptsUsed)
	}
	if session.Version != versionAfter {
		t.Error("resubmission wrote the session")
	}
}

func TestSubmitGuessClueFailureKeepsAttempt(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	svc := newRoomServiceForTest(uow, &stubProvider{clueErr: errors.New("model down")})
	ctx := context.Background()

	_, err := svc.SubmitGuess(ctx, userId, session.Id, entity.RoomNebula, &dto.GuessRequest{Guess: testDecoy1.Id})
	var apiErr *serverutils.ApiError
	if !errors.As(err, &apiErr) || apiErr.Code != "EXTERNAL_SERVICE_ERROR" {
		t.Fatalf("err = %v, want external service error", err)
	}

	state := session.Room(entity.RoomNebula)
	if state.AttemptsUsed != 0 || state.IsCompleted {
		t.Error("failed clue generation consumed the attempt")
	}
}

func TestSubmitGuessUnknownSessionAndRoom(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	svc := newRoomServiceForTest(uow, &stubProvider{})
	ctx := context.Background()

	_, err := svc.SubmitGuess(ctx, uuid.New(), session.Id, entity.RoomNebula, &dto.GuessRequest{Guess: "x"})
	var apiErr *serverutils.ApiError
	if !errors.As(err, &apiErr) || apiErr.Code != "NOT_FOUND" {
		t.Errorf("foreign user err = %v, want not found", err)
	}

	_, err = svc.SubmitGuess(ctx, userId, session.Id, entity.RoomAurora, &dto.GuessRequest{Guess: "x"})
	if !errors.As(err, &apiErr) || apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("aurora guess err = %v, want validation error", err)
	}
}

func TestSubmitMoodSong(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	ctx := context.Background()

	// Below the pass threshold: no points, room stays open.
	svc := newRoomServiceForTest(uow, &stubProvider{moodScore: 4})
	res, err := svc.SubmitMoodSong(ctx, userId, session.Id, &dto.MoodSongRequest{SongId: testDecoy2.Id})
	if err != nil {
		t.Fatal(err)
	}
	if res.Passed || res.Completed || res.PointsAwarded != 0 {
		t.Errorf("failing attempt: %+v", res)
	}

	// Passing attempt scores ten points per mood point.
	svc = newRoomServiceForTest(uow, &stubProvider{moodScore: 8})
	res, err = svc.SubmitMoodSong(ctx, userId, session.Id, &dto.MoodSongRequest{SongId: testDecoy2.Id})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Passed || !res.Completed {
		t.Fatal("score 8 should pass")
	}
	if res.PointsAwarded != 80 {
		t.Errorf("points = %d, want 80", res.PointsAwarded)
	}
	if res.ClueText == "" {
		t.Error("passing attempt returned no clue")
	}
	if session.Room(entity.RoomAurora).AttemptsUsed != 2 {
		t.Errorf("attempts used = %d, want 2", session.Room(entity.RoomAurora).AttemptsUsed)
	}

	// Completed room replays the stored result.
	res, err = svc.SubmitMoodSong(ctx, userId, session.Id, &dto.MoodSongRequest{SongId: testDecoy1.Id})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Completed || res.PointsAwarded != 80 {
		t.Error("resubmission changed the stored outcome")
	}
}

func TestSubmitQuizAnswers(t *testing.T) {
	tests := []struct {
		name       string
		answers    []string
		wantRight  int
		wantPoints int
		wantPassed bool
	}{
		{"all right", []string{"a1", "a2", "a3", "a4", "a5"}, 5, 100, true},
		{"three right unlocks clue", []string{"a1", "a2", "a3", "x", "x"}, 3, 60, true},
		{"two right fails", []string{"a1", "a2", "x", "x", "x"}, 2, 40, false},
		{"none right gets the floor", []string{"x", "x", "x", "x", "x"}, 0, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow := newFakeUow()
			session, userId := newTestSession(uow.sessionRepo)
			svc := newRoomServiceForTest(uow, &stubProvider{})
			ctx := context.Background()

			res, err := svc.SubmitQuizAnswers(ctx, userId, session.Id, &dto.QuizAnswersRequest{Answers: tt.answers})
			if err != nil {
				t.Fatal(err)
			}
			if res.CorrectCount != tt.wantRight {
				t.Errorf("correct = %d, want %d", res.CorrectCount, tt.wantRight)
			}
			if res.PointsAwarded != tt.wantPoints {
				t.Errorf("points = %d, want %d", res.PointsAwarded, tt.wantPoints)
			}
			if res.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v", res.Passed, tt.wantPassed)
			}
			if !res.Completed {
				t.Error("quiz submission should always complete the room")
			}
			if tt.wantPassed && res.ClueText == "" {
				t.Error("passing quiz returned no clue")
			}
			if !tt.wantPassed && res.ClueText != "" {
				t.Error("failing quiz leaked a clue")
			}
		})
	}
}

func TestSubmitQuizAnswersCountMismatch(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	svc := newRoomServiceForTest(uow, &stubProvider{})

	_, err := svc.SubmitQuizAnswers(context.Background(), userId, session.Id, &dto.QuizAnswersRequest{Answers: []string{"a1"}})
	var apiErr *serverutils.ApiError
	if !errors.As(err, &apiErr) || apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("err = %v, want validation error", err)
	}
	if session.Room(entity.RoomNova).IsCompleted {
		t.Error("rejected submission completed the room")
	}
}

func TestQuizQuestionsNeverCarryAnswers(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	svc := newRoomServiceForTest(uow, &stubProvider{})

	res, err := svc.QuizQuestions(context.Background(), userId, session.Id)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Questions) != len(session.QuizQuestions) {
		t.Fatalf("question count = %d, want %d", len(res.Questions), len(session.QuizQuestions))
	}
	for i, q := range res.Questions {
		if q.Prompt != session.QuizQuestions[i].Prompt {
			t.Errorf("question %d prompt mismatch", i)
		}
	}
}

func TestAskOracle(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	svc := newRoomServiceForTest(uow, &stubProvider{})
	ctx := context.Background()

	budget := entity.Policies[entity.RoomCradle].OracleBudget
	for i := 0; i < budget; i++ {
		res, err := svc.AskOracle(ctx, userId, session.Id, &dto.OracleRequest{Question: "is it old?"})
		if err != nil {
			t.Fatalf("question %d: %v", i+1, err)
		}
		if res.Answer == "" {
			t.Fatal("oracle returned an empty answer")
		}
		if res.QuestionsRemaining != budget-i-1 {
			t.Errorf("remaining = %d, want %d", res.QuestionsRemaining, budget-i-1)
		}
	}

	_, err := svc.AskOracle(ctx, userId, session.Id, &dto.OracleRequest{Question: "one more?"})
	var apiErr *serverutils.ApiError
	if !errors.As(err, &apiErr) || apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("exhausted budget err = %v, want validation error", err)
	}

	// Once the room resolves the oracle goes quiet even with budget left.
	other, otherUser := newTestSession(uow.sessionRepo)
	other.Room(entity.RoomCradle).IsCompleted = true
	if _, err := svc.AskOracle(ctx, otherUser, other.Id, &dto.OracleRequest{Question: "hello?"}); err == nil {
		t.Error("completed cradle still answered oracle questions")
	}
}

func TestSkipRemaining(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	svc := newRoomServiceForTest(uow, &stubProvider{})
	ctx := context.Background()

	// Clear nebula first so skip only covers the rest.
	if _, err := svc.SubmitGuess(ctx, userId, session.Id, entity.RoomNebula, &dto.GuessRequest{Guess: testDecoy1.Id}); err != nil {
		t.Fatal(err)
	}
	totalBefore := session.TotalPoints

	res, err := svc.SkipRemaining(ctx, userId, session.Id)
	if err != nil {
		t.Fatal(err)
	}
	if res.RoomsSkipped != len(entity.AllRooms)-1 {
		t.Errorf("skipped = %d, want %d", res.RoomsSkipped, len(entity.AllRooms)-1)
	}
	if !res.FinalUnlocked {
		t.Error("skip should unlock the final guess")
	}
	// Skipped rooms earn nothing, not even a fail floor.
	if session.TotalPoints != totalBefore {
		t.Errorf("total changed from %d to %d on skip", totalBefore, session.TotalPoints)
	}
	for _, k := range entity.AllRooms {
		st := session.Room(k)
		if !st.IsCompleted {
			t.Errorf("room %s left open after skip", k)
		}
		if k != entity.RoomNebula && st.PointsAwarded != 0 {
			t.Errorf("skipped room %s awarded %d points", k, st.PointsAwarded)
		}
	}

	// A second skip finds nothing to do and must not write.
	versionAfter := session.Version
	res, err = svc.SkipRemaining(ctx, userId, session.Id)
	if err != nil {
		t.Fatal(err)
	}
	if res.RoomsSkipped != 0 || session.Version != versionAfter {
		t.Error("repeated skip was not a no-op")
	}
}

func TestSubmitGuessVersionConflict(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	svc := newRoomServiceForTest(uow, &stubProvider{})

	// Another writer bumps the stored version under us.
	uow.sessionRepo.stored[session.Id] = session.Version + 1

	_, err := svc.SubmitGuess(context.Background(), userId, session.Id, entity.RoomNebula, &dto.GuessRequest{Guess: testDecoy1.Id})
	var apiErr *serverutils.ApiError
	if !errors.As(err, &apiErr) || apiErr.Code != "CONFLICT" {
		t.Errorf("err = %v, want conflict", err)
	}
}
