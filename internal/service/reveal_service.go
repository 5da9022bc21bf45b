package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ophiuchus-be/internal/dto"
	"ophiuchus-be/internal/entity"
	"ophiuchus-be/internal/pkg/logger"
	"ophiuchus-be/internal/pkg/serverutils"
	"ophiuchus-be/internal/repository/contract"
	"ophiuchus-be/internal/repository/unitofwork"
	"ophiuchus-be/pkg/events"
	pktNats "ophiuchus-be/pkg/nats"
	"ophiuchus-be/pkg/narrative"

	"github.com/google/uuid"
)

type IRevealService interface {
	SubmitFinalGuess(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.FinalGuessRequest) (*dto.FinalGuessResponse, error)
}

type revealService struct {
	uowFactory       unitofwork.RepositoryFactory
	narrator         *narrative.Generator
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewRevealService(
	uowFactory unitofwork.RepositoryFactory,
	narrator *narrative.Generator,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IRevealService {
	return &revealService{
		uowFactory:       uowFactory,
		narrator:         narrator,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

// finalBonus returns the tiered reward for getting the final guess right
// on a given attempt.
func finalBonus(attempt int) int {
	switch attempt {
	case 1:
		return entity.FinalBonusFirst
	case 2:
		return entity.FinalBonusSecond
	default:
		return entity.FinalBonusThird
	}
}

// SubmitFinalGuess resolves the quest. It is only reachable once every
// room is completed. A correct guess awards the tiered bonus and the
// generated identity; exhausting all attempts awards the consolation and
// reveals the target. Either terminal outcome archives the session and
// deletes the live document.
func (s *revealService) SubmitFinalGuess(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.FinalGuessRequest) (*dto.FinalGuessResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	if session.IsCompleted {
		// Duplicate retry after resolution, before the archival delete
		// landed. Report the stored terminal state instead of erroring.
		return s.terminalResponse(session), nil
	}
	if !session.FinalUnlocked() {
		return nil, serverutils.BadRequest("complete or skip every room before the final guess")
	}
	if session.FinalGuessAttempts >= entity.FinalGuessCap {
		return nil, serverutils.BadRequest("final guess attempts exhausted")
	}

	// The final guess is an exact track-id match, no title fuzziness.
	attempt := session.FinalGuessAttempts + 1
	correct := strings.TrimSpace(req.SongId) == session.TargetSong.Id

	switch {
	case correct:
		// Identity generation runs before any mutation so a narrator
		// failure leaves the attempt unspent and the call retriable.
		identity, err := s.narrator.Identity(ctx, session.TargetSong, profileSummary(session))
		if err != nil {
			s.logger.Error("RevealService", "identity generation failed", map[string]interface{}{"error": err.Error()})
			return nil, serverutils.ExternalServiceError("narrator is unavailable")
		}

		session.FinalGuessAttempts = attempt
		session.FinalBonus = finalBonus(attempt)
		session.Identity = identity
		session.IsCompleted = true
		session.RecomputeTotal()

		if err := s.save(ctx, uow, session); err != nil {
			return nil, err
		}
		s.archive(ctx, uow, session, true)

	case attempt >= entity.FinalGuessCap:
		session.FinalGuessAttempts = attempt
		session.FinalBonus = entity.FinalConsolation
		session.IsCompleted = true
		session.RecomputeTotal()

		if err := s.save(ctx, uow, session); err != nil {
			return nil, err
		}
		s.archive(ctx, uow, session, false)

	default:
		session.FinalGuessAttempts = attempt
		if err := s.save(ctx, uow, session); err != nil {
			return nil, err
		}
		return &dto.FinalGuessResponse{
			Correct:           false,
			AttemptsRemaining: entity.FinalGuessCap - attempt,
		}, nil
	}

	return s.terminalResponse(session), nil
}

func (s *revealService) terminalResponse(session *entity.QuestSession) *dto.FinalGuessResponse {
	target := session.TargetSong
	return &dto.FinalGuessResponse{
		Correct:           session.Identity != nil,
		PointsEarned:      session.FinalBonus,
		AttemptsRemaining: entity.FinalGuessCap - session.FinalGuessAttempts,
		GameOver:          true,
		TotalPoints:       session.TotalPoints,
		CosmicSong:        &target,
		Identity:          session.Identity,
	}
}

// profileSummary condenses the run into the free-text summary the
// identity prompt takes.
func profileSummary(session *entity.QuestSession) string {
	return fmt.Sprintf(
		"Cleared %d of %d rooms, earned %d points, found the song on final attempt %d.",
		session.RoomsCompleted(), len(entity.AllRooms), session.TotalPoints, session.FinalGuessAttempts+1,
	)
}

// archive copies the resolved session into the permanent aggregates and
// then deletes the live document. Step one recomputes the lifetime
// totals from the full game history rather than incrementing, so a
// double archival cannot drift them. A failed delete is logged and left
// for manual cleanup; the caller still gets a success.
func (s *revealService) archive(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.QuestSession, won bool) {
	game := &entity.CompletedGame{
		Id:                 uuid.New(),
		UserId:             session.UserId,
		SessionId:          session.Id,
		TargetSong:         session.TargetSong,
		Identity:           session.Identity,
		TotalPoints:        session.TotalPoints,
		RoomPoints:         session.RoomPoints(),
		FinalGuessAttempts: session.FinalGuessAttempts,
		Won:                won,
		CompletedAt:        time.Now(),
	}

	if err := s.archiveAggregates(ctx, uow, game); err != nil {
		s.logger.Error("RevealService", "archival aggregate write failed", map[string]interface{}{
			"error":      err.Error(),
			"session_id": session.Id.String(),
		})
		return
	}

	if err := uow.QuestSessionRepository().Delete(ctx, session.Id); err != nil {
		// Known failure mode: the aggregate landed but the live session
		// lingers. Not surfaced to the caller, not retried here.
		s.logger.Error("RevealService", "archival session delete failed", map[string]interface{}{
			"error":      err.Error(),
			"session_id": session.Id.String(),
		})
	}

	s.announce(ctx, session, won)
}

func (s *revealService) archiveAggregates(ctx context.Context, uow unitofwork.UnitOfWork, game *entity.CompletedGame) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.CompletedGameRepository().Create(ctx, game); err != nil {
		return err
	}

	history, err := uow.CompletedGameRepository().FindAllByUserId(ctx, game.UserId)
	if err != nil {
		return err
	}

	profile := &entity.PlayerProfile{UserId: game.UserId, UpdatedAt: time.Now()}
	profile.RecomputeFrom(history)
	if err := uow.PlayerProfileRepository().Upsert(ctx, profile); err != nil {
		return err
	}

	return uow.Commit()
}

// announce fans the resolution out to the in-process bus and the
// external event stream. Both are auxiliary; failures are logged only.
func (s *revealService) announce(ctx context.Context, session *entity.QuestSession, won bool) {
	payload, err := json.Marshal(dto.GameCompletedMessage{
		UserId:      session.UserId,
		SessionId:   session.Id,
		SongName:    session.TargetSong.Name,
		TotalPoints: session.TotalPoints,
		Won:         won,
	})
	if err == nil {
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			s.logger.Warn("RevealService", "failed to publish game completion", map[string]interface{}{"error": err.Error()})
		}
	}

	if s.eventPublisher != nil {
		evt := events.New(events.TypeQuestCompleted, map[string]interface{}{
			"user_id":      session.UserId.String(),
			"session_id":   session.Id.String(),
			"total_points": session.TotalPoints,
			"won":          won,
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("RevealService", "failed to publish quest.completed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (s *revealService) save(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.QuestSession) error {
	err := uow.QuestSessionRepository().UpdateWithVersion(ctx, session)
	if errors.Is(err, contract.ErrVersionConflict) {
		return serverutils.Conflict("the quest was updated by another request, retry")
	}
	return err
}
