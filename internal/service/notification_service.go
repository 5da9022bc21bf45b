package service

import (
	"context"
	"fmt"
	"time"

	"ophiuchus-be/internal/dto"
	"ophiuchus-be/internal/pkg/logger"
	"ophiuchus-be/pkg/events"
	pktNats "ophiuchus-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery defines how real-time pushes reach the browser.
// Implemented by the websocket hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification dto.Notification)
	Broadcast(notification dto.Notification)
}

// NotificationService turns bus events into websocket pushes. Pushes
// are ephemeral; there is no notification inbox.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "quest-notify-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	if s.delivery == nil {
		return nil
	}

	payload := event.Payload()
	notif := dto.Notification{
		Id:        uuid.New(),
		Type:      event.EventType(),
		CreatedAt: time.Now(),
	}

	switch event.EventType() {
	case events.TypeQuestStarted:
		notif.Title = "Quest begun"
		notif.Message = "The five rooms await. Follow the clues to your cosmic song."
	case events.TypeQuestCompleted:
		won, _ := payload["won"].(bool)
		points := payload["total_points"]
		if won {
			notif.Title = "Quest complete"
			notif.Message = fmt.Sprintf("You found your cosmic song and earned %v points!", points)
		} else {
			notif.Title = "Quest ended"
			notif.Message = fmt.Sprintf("The song slipped away. You still earned %v points.", points)
		}
	case events.TypeUserRegistered:
		notif.Title = "Welcome to Ophiuchus"
		notif.Message = "Your account is ready. Start your first quest whenever you like."
	default:
		// Unknown event type, nothing user-facing to push.
		return nil
	}

	uidStr, ok := payload["user_id"].(string)
	if !ok {
		s.logger.Warn("NotificationService", "event missing user_id, skipping push", map[string]interface{}{"type": event.EventType()})
		return nil
	}
	uid, err := uuid.Parse(uidStr)
	if err != nil {
		return nil
	}

	s.delivery.Send(uid, notif)
	return nil
}
