package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ophiuchus-be/internal/dto"
	"ophiuchus-be/internal/entity"
	"ophiuchus-be/internal/pkg/serverutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRevealServiceForTest(uow *fakeUow, provider *stubProvider, bus *capturePublisher) IRevealService {
	return NewRevealService(&fakeFactory{uow: uow}, newTestNarrator(provider), bus, nil, nopLogger{})
}

func TestSubmitFinalGuessLocked(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	session.Room(entity.RoomNebula).IsCompleted = true
	svc := newRevealServiceForTest(uow, &stubProvider{}, &capturePublisher{})

	_, err := svc.SubmitFinalGuess(context.Background(), userId, session.Id, &dto.FinalGuessRequest{SongId: testTarget.Id})

	var apiErr *serverutils.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code, "final guess must stay locked while rooms are open")
}

func TestSubmitFinalGuessFirstTryWin(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	completeAllRooms(session, 100)
	bus := &capturePublisher{}
	svc := newRevealServiceForTest(uow, &stubProvider{}, bus)

	res, err := svc.SubmitFinalGuess(context.Background(), userId, session.Id, &dto.FinalGuessRequest{SongId: testTarget.Id})
	require.NoError(t, err)

	assert.True(t, res.Correct)
	assert.True(t, res.GameOver)
	assert.Equal(t, entity.FinalBonusFirst, res.PointsEarned)
	wantTotal := 100*len(entity.AllRooms) + entity.FinalBonusFirst
	assert.Equal(t, wantTotal, res.TotalPoints)
	require.NotNil(t, res.CosmicSong)
	assert.Equal(t, testTarget.Id, res.CosmicSong.Id)
	require.NotNil(t, res.Identity)
	assert.NotEmpty(t, res.Identity.Title)

	// Archival: one game record, a recomputed profile, no live session.
	require.Len(t, uow.gameRepo.games, 1)
	game := uow.gameRepo.games[0]
	assert.True(t, game.Won)
	assert.Equal(t, wantTotal, game.TotalPoints)

	profile := uow.profileRepo.profiles[userId]
	require.NotNil(t, profile, "no profile written")
	assert.Equal(t, wantTotal, profile.LifetimePoints)
	assert.Equal(t, 1, profile.GamesPlayed)
	assert.Equal(t, 1, profile.GamesWon)

	assert.Empty(t, uow.sessionRepo.sessions, "live session survived archival")
	assert.Equal(t, 1, uow.commits)

	require.Len(t, bus.published, 1)
	var msg dto.GameCompletedMessage
	require.NoError(t, json.Unmarshal(bus.published[0], &msg))
	assert.Equal(t, userId, msg.UserId)
	assert.True(t, msg.Won)
	assert.Equal(t, wantTotal, msg.TotalPoints)
}

func TestSubmitFinalGuessBonusTiers(t *testing.T) {
	tests := []struct {
		name       string
		wrongFirst int
		wantBonus  int
	}{
		{"second attempt", 1, entity.FinalBonusSecond},
		{"third attempt", 2, entity.FinalBonusThird},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow := newFakeUow()
			session, userId := newTestSession(uow.sessionRepo)
			completeAllRooms(session, 50)
			svc := newRevealServiceForTest(uow, &stubProvider{}, &capturePublisher{})
			ctx := context.Background()

			for i := 0; i < tt.wrongFirst; i++ {
				res, err := svc.SubmitFinalGuess(ctx, userId, session.Id, &dto.FinalGuessRequest{SongId: testDecoy1.Id})
				require.NoError(t, err, "wrong guess %d", i+1)
				require.False(t, res.GameOver, "wrong guess %d ended the game", i+1)
				assert.Equal(t, entity.FinalGuessCap-i-1, res.AttemptsRemaining)
			}

			res, err := svc.SubmitFinalGuess(ctx, userId, session.Id, &dto.FinalGuessRequest{SongId: testTarget.Id})
			require.NoError(t, err)
			assert.True(t, res.Correct)
			assert.Equal(t, tt.wantBonus, res.PointsEarned)
		})
	}
}

func TestSubmitFinalGuessRequiresExactTrackId(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	completeAllRooms(session, 50)
	svc := newRevealServiceForTest(uow, &stubProvider{}, &capturePublisher{})

	// The song title is not accepted, only the track id.
	res, err := svc.SubmitFinalGuess(context.Background(), userId, session.Id, &dto.FinalGuessRequest{SongId: testTarget.Name})
	require.NoError(t, err)
	assert.False(t, res.Correct)

	res, err = svc.SubmitFinalGuess(context.Background(), userId, session.Id, &dto.FinalGuessRequest{SongId: "  " + testTarget.Id + "  "})
	require.NoError(t, err)
	assert.True(t, res.Correct, "surrounding whitespace should be trimmed")
}

func TestSubmitFinalGuessExhaustion(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	completeAllRooms(session, 50)
	svc := newRevealServiceForTest(uow, &stubProvider{}, &capturePublisher{})
	ctx := context.Background()

	var res *dto.FinalGuessResponse
	var err error
	for i := 0; i < entity.FinalGuessCap; i++ {
		res, err = svc.SubmitFinalGuess(ctx, userId, session.Id, &dto.FinalGuessRequest{SongId: testDecoy1.Id})
		require.NoError(t, err, "guess %d", i+1)
	}

	assert.False(t, res.Correct)
	assert.True(t, res.GameOver, "exhaustion should end the game as a loss")
	assert.Equal(t, entity.FinalConsolation, res.PointsEarned)
	require.NotNil(t, res.CosmicSong, "loss did not reveal the cosmic song")
	assert.Equal(t, testTarget.Id, res.CosmicSong.Id)
	assert.Nil(t, res.Identity, "loss fabricated an identity")

	require.Len(t, uow.gameRepo.games, 1)
	assert.False(t, uow.gameRepo.games[0].Won)
	assert.Empty(t, uow.sessionRepo.sessions, "live session survived archival")
}

func TestSubmitFinalGuessIdentityFailureKeepsAttempt(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	completeAllRooms(session, 50)
	svc := newRevealServiceForTest(uow, &stubProvider{identityErr: errors.New("model down")}, &capturePublisher{})

	_, err := svc.SubmitFinalGuess(context.Background(), userId, session.Id, &dto.FinalGuessRequest{SongId: testTarget.Id})

	var apiErr *serverutils.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "EXTERNAL_SERVICE_ERROR", apiErr.Code)
	assert.Zero(t, session.FinalGuessAttempts, "failed identity generation consumed the attempt")
	assert.False(t, session.IsCompleted)
	assert.Empty(t, uow.gameRepo.games, "failed resolution was archived")
}

func TestSubmitFinalGuessDeleteFailureStillSucceeds(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	completeAllRooms(session, 50)
	uow.sessionRepo.deleteErr = errors.New("connection reset")
	svc := newRevealServiceForTest(uow, &stubProvider{}, &capturePublisher{})

	res, err := svc.SubmitFinalGuess(context.Background(), userId, session.Id, &dto.FinalGuessRequest{SongId: testTarget.Id})
	require.NoError(t, err, "delete failure leaked to the caller")
	assert.True(t, res.Correct)
	assert.True(t, res.GameOver)
	assert.Len(t, uow.gameRepo.games, 1, "aggregate write missing despite delete failure")
}

func TestSubmitFinalGuessDuplicateAfterResolution(t *testing.T) {
	// The live session lingers when the archival delete fails; a retried
	// final guess must replay the terminal state without re-archiving.
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	completeAllRooms(session, 50)
	uow.sessionRepo.deleteErr = errors.New("connection reset")
	svc := newRevealServiceForTest(uow, &stubProvider{}, &capturePublisher{})
	ctx := context.Background()

	first, err := svc.SubmitFinalGuess(ctx, userId, session.Id, &dto.FinalGuessRequest{SongId: testTarget.Id})
	require.NoError(t, err)

	again, err := svc.SubmitFinalGuess(ctx, userId, session.Id, &dto.FinalGuessRequest{SongId: testDecoy2.Id})
	require.NoError(t, err)
	assert.True(t, again.GameOver)
	assert.Equal(t, first.TotalPoints, again.TotalPoints, "retry did not replay the stored terminal state")
	assert.Len(t, uow.gameRepo.games, 1, "retry archived the game a second time")
}

func TestArchivalRecomputesLifetimeTotals(t *testing.T) {
	uow := newFakeUow()
	session, userId := newTestSession(uow.sessionRepo)
	completeAllRooms(session, 40)

	// A previous run is already on record.
	uow.gameRepo.games = append(uow.gameRepo.games, &entity.CompletedGame{
		UserId:      userId,
		TotalPoints: 210,
		Won:         false,
	})

	svc := newRevealServiceForTest(uow, &stubProvider{}, &capturePublisher{})
	res, err := svc.SubmitFinalGuess(context.Background(), userId, session.Id, &dto.FinalGuessRequest{SongId: testTarget.Id})
	require.NoError(t, err)

	profile := uow.profileRepo.profiles[userId]
	require.NotNil(t, profile, "no profile written")
	assert.Equal(t, 210+res.TotalPoints, profile.LifetimePoints)
	assert.Equal(t, 2, profile.GamesPlayed)
	assert.Equal(t, 1, profile.GamesWon)
}
