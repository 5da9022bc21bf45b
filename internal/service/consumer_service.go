package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ophiuchus-be/internal/dto"
	"ophiuchus-be/internal/pkg/logger"
	"ophiuchus-be/internal/pkg/mailer"
	"ophiuchus-be/internal/repository/specification"
	"ophiuchus-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains game-completion messages off the in-process
// bus and performs the slow follow-ups the request path should not wait
// on: refreshing the redis leaderboard entry and mailing the quest
// summary.
type consumerService struct {
	pubSub             *gochannel.GoChannel
	topicName          string
	uowFactory         unitofwork.RepositoryFactory
	leaderboardService ILeaderboardService
	emailService       mailer.IEmailService
	logger             logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	leaderboardService ILeaderboardService,
	emailService mailer.IEmailService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:             pubSub,
		topicName:          topicName,
		uowFactory:         uowFactory,
		leaderboardService: leaderboardService,
		emailService:       emailService,
		logger:             log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.GameCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "failed to unmarshal completion message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed, retrying will not help
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	profile, err := uow.PlayerProfileRepository().FindByUserId(ctx, payload.UserId)
	if err != nil {
		cs.logger.Error("ConsumerService", "failed to load profile", map[string]interface{}{"error": err.Error(), "user_id": payload.UserId.String()})
		msg.Nack()
		return
	}
	if profile == nil {
		// Archival writes the profile before this message fires, so a
		// missing row means the archive itself failed. Nothing to do.
		cs.logger.Warn("ConsumerService", "no profile for completed game", map[string]interface{}{"user_id": payload.UserId.String()})
		msg.Ack()
		return
	}

	if err := cs.leaderboardService.SetScore(ctx, payload.UserId, profile.LifetimePoints); err != nil {
		cs.logger.Error("ConsumerService", "failed to update leaderboard", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: payload.UserId})
	if err == nil && user != nil {
		go func() {
			if emailErr := cs.emailService.SendQuestSummary(user.Email, payload.SongName, payload.TotalPoints, payload.Won); emailErr != nil {
				fmt.Printf("Error sending quest summary email: %v\n", emailErr)
			}
		}()
	}

	cs.logger.Info("ConsumerService", "game completion processed", map[string]interface{}{
		"user_id":      payload.UserId.String(),
		"session_id":   payload.SessionId.String(),
		"total_points": payload.TotalPoints,
	})
	msg.Ack()
}
