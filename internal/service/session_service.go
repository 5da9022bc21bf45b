package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"ophiuchus-be/internal/dto"
	"ophiuchus-be/internal/entity"
	"ophiuchus-be/internal/pkg/logger"
	"ophiuchus-be/internal/pkg/serverutils"
	"ophiuchus-be/internal/repository/specification"
	"ophiuchus-be/internal/repository/unitofwork"
	"ophiuchus-be/pkg/events"
	pktNats "ophiuchus-be/pkg/nats"
	"ophiuchus-be/pkg/narrative"
	"ophiuchus-be/pkg/spotify"

	"github.com/google/uuid"
)

type ISessionService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateQuestRequest) (*dto.CreateQuestResponse, error)
	Progress(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.ProgressResponse, error)
	Active(ctx context.Context, userId uuid.UUID) (*dto.ProgressResponse, error)
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	catalog        spotify.Catalog
	narrator       *narrative.Generator
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	catalog spotify.Catalog,
	narrator *narrative.Generator,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		catalog:        catalog,
		narrator:       narrator,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// Create draws a hidden target song plus two decoys from the catalog,
// generates the opening riddle and the quiz bank, and persists a fresh
// session with every room pending. All external calls happen before the
// session row exists so a failed generation never leaves partial state.
func (s *sessionService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateQuestRequest) (*dto.CreateQuestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.QuestSessionRepository().FindOne(ctx,
		specification.ByUserID{UserID: userId},
		specification.ActiveOnly{},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, serverutils.Conflict("a quest is already in progress")
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.Unauthorized("unknown user")
	}

	tracks, err := s.catalog.SearchTracks(ctx, req.SeedQuery, 20)
	if err != nil {
		s.logger.Error("SessionService", "catalog search failed", map[string]interface{}{"error": err.Error(), "query": req.SeedQuery})
		return nil, serverutils.ExternalServiceError("music catalog is unavailable")
	}
	if len(tracks) < 3 {
		return nil, serverutils.BadRequest("seed query matched too few songs, try a broader one")
	}

	rand.Shuffle(len(tracks), func(i, j int) { tracks[i], tracks[j] = tracks[j], tracks[i] })
	target := tracks[0]
	decoys := []entity.Song{tracks[1], tracks[2]}

	clue, err := s.narrator.InitialClue(ctx, target)
	if err != nil {
		s.logger.Error("SessionService", "initial clue generation failed", map[string]interface{}{"error": err.Error()})
		return nil, serverutils.ExternalServiceError("narrator is unavailable")
	}

	questions, err := s.quizBank(ctx, uow, target)
	if err != nil {
		return nil, err
	}

	session := &entity.QuestSession{
		Id:             uuid.New(),
		UserId:         userId,
		ExternalUserId: user.ExternalUserId,
		TargetSong:     target,
		DecoySongs:     decoys,
		InitialClue:    clue,
		QuizQuestions:  questions,
		Rooms:          make(map[entity.RoomKind]*entity.RoomState),
		CreatedAt:      time.Now(),
	}
	for _, k := range entity.AllRooms {
		session.Room(k)
	}

	if err := uow.QuestSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.New(events.TypeQuestStarted, map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": session.Id.String(),
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("SessionService", "failed to publish quest.started", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.CreateQuestResponse{
		Id:          session.Id,
		InitialClue: session.InitialClue,
		CreatedAt:   session.CreatedAt,
	}, nil
}

// quizBank asks the narrator for the question set and falls back to the
// precomputed bank in the database when generation fails.
func (s *sessionService) quizBank(ctx context.Context, uow unitofwork.UnitOfWork, target entity.Song) ([]entity.Question, error) {
	n := entity.Policies[entity.RoomNova].QuestionCount

	questions, err := s.narrator.QuizQuestions(ctx, target, n)
	if err == nil {
		return questions, nil
	}
	s.logger.Warn("SessionService", "quiz generation failed, using fallback bank", map[string]interface{}{"error": err.Error()})

	questions, err = uow.QuizQuestionRepository().FindRandom(ctx, n)
	if err != nil {
		return nil, err
	}
	if len(questions) < n {
		return nil, serverutils.ExternalServiceError(fmt.Sprintf("quiz bank holds fewer than %d questions", n))
	}
	return questions, nil
}

func (s *sessionService) Progress(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.ProgressResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}
	return buildProgress(session), nil
}

// Active resolves the caller's in-flight session without needing its id,
// the lookup a reloaded browser tab performs.
func (s *sessionService) Active(ctx context.Context, userId uuid.UUID) (*dto.ProgressResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.QuestSessionRepository().FindOne(ctx,
		specification.ByUserID{UserID: userId},
		specification.ActiveOnly{},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFound("no active quest")
	}
	return buildProgress(session), nil
}

// findOwnedSession loads a session and enforces ownership. Shared by the
// room and reveal services.
func findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId uuid.UUID) (*entity.QuestSession, error) {
	session, err := uow.QuestSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFound("quest session not found")
	}
	return session, nil
}

func buildProgress(session *entity.QuestSession) *dto.ProgressResponse {
	views := make([]dto.RoomView, 0, len(entity.AllRooms))
	for _, k := range entity.AllRooms {
		st := session.Room(k)
		view := dto.RoomView{
			Room:              k,
			Completed:         st.IsCompleted,
			Points:            st.PointsAwarded,
			AttemptsRemaining: st.AttemptsRemaining(k),
			Correct:           st.FinalVerdict == entity.VerdictCorrect,
		}
		if st.IsCompleted {
			view.ClueText = st.ClueText
			view.RevealedAnswer = st.RevealedAnswer
		}
		views = append(views, view)
	}

	return &dto.ProgressResponse{
		Id:                session.Id,
		InitialClue:       session.InitialClue,
		Rooms:             views,
		RoomsCompleted:    session.RoomsCompleted(),
		FinalUnlocked:     session.FinalUnlocked(),
		FinalAttemptsLeft: entity.FinalGuessCap - session.FinalGuessAttempts,
		TotalPoints:       session.TotalPoints,
		IsCompleted:       session.IsCompleted,
	}
}
