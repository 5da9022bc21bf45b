package service

import (
	"context"
	"time"

	"ophiuchus-be/internal/dto"
	"ophiuchus-be/internal/pkg/logger"
	"ophiuchus-be/internal/pkg/serverutils"
	"ophiuchus-be/internal/repository/specification"
	"ophiuchus-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// leaderboardKey is the sorted set holding lifetime points per user.
const leaderboardKey = "ophiuchus:leaderboard"

type ILeaderboardService interface {
	Top(ctx context.Context, limit int) (*dto.LeaderboardResponse, error)
	Profile(ctx context.Context, userId uuid.UUID) (*dto.ProfileResponse, error)
	// SetScore pins a user's leaderboard entry to their recomputed
	// lifetime total. Called by the completion consumer, never from a
	// request path.
	SetScore(ctx context.Context, userId uuid.UUID, lifetimePoints int) error
}

type leaderboardService struct {
	uowFactory unitofwork.RepositoryFactory
	redis      *redis.Client
	logger     logger.ILogger
}

func NewLeaderboardService(uowFactory unitofwork.RepositoryFactory, redisClient *redis.Client, log logger.ILogger) ILeaderboardService {
	return &leaderboardService{
		uowFactory: uowFactory,
		redis:      redisClient,
		logger:     log,
	}
}

// Top reads the ranking from the redis sorted set and falls back to the
// profile table when the set is empty or redis is down. The fallback
// also rebuilds the set so the next call is cheap again.
func (s *leaderboardService) Top(ctx context.Context, limit int) (*dto.LeaderboardResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	if s.redis != nil {
		ranked, err := s.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
		if err != nil {
			s.logger.Warn("LeaderboardService", "redis read failed, falling back to database", map[string]interface{}{"error": err.Error()})
		} else if len(ranked) > 0 {
			entries := make([]dto.LeaderboardEntry, 0, len(ranked))
			for i, z := range ranked {
				userId, err := uuid.Parse(z.Member.(string))
				if err != nil {
					continue
				}
				entries = append(entries, dto.LeaderboardEntry{
					Rank:           i + 1,
					UserId:         userId,
					LifetimePoints: int(z.Score),
				})
			}
			return &dto.LeaderboardResponse{Entries: entries}, nil
		}
	}

	return s.topFromDatabase(ctx, limit)
}

func (s *leaderboardService) topFromDatabase(ctx context.Context, limit int) (*dto.LeaderboardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	profiles, err := uow.PlayerProfileRepository().FindAll(ctx,
		specification.OrderBy{Field: "lifetime_points", Desc: true},
		specification.Pagination{Limit: limit, Offset: 0},
	)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, dto.LeaderboardEntry{
			Rank:           i + 1,
			UserId:         p.UserId,
			LifetimePoints: p.LifetimePoints,
		})

		if s.redis != nil {
			if err := s.redis.ZAdd(ctx, leaderboardKey, redis.Z{
				Score:  float64(p.LifetimePoints),
				Member: p.UserId.String(),
			}).Err(); err != nil {
				s.logger.Warn("LeaderboardService", "redis rebuild failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
	return &dto.LeaderboardResponse{Entries: entries}, nil
}

func (s *leaderboardService) Profile(ctx context.Context, userId uuid.UUID) (*dto.ProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	profile, err := uow.PlayerProfileRepository().FindByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, serverutils.NotFound("no completed quests yet")
	}

	return &dto.ProfileResponse{
		UserId:         profile.UserId,
		LifetimePoints: profile.LifetimePoints,
		GamesPlayed:    profile.GamesPlayed,
		GamesWon:       profile.GamesWon,
		BestGamePoints: profile.BestGamePoints,
		UpdatedAt:      profile.UpdatedAt,
	}, nil
}

func (s *leaderboardService) SetScore(ctx context.Context, userId uuid.UUID, lifetimePoints int) error {
	if s.redis == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return s.redis.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(lifetimePoints),
		Member: userId.String(),
	}).Err()
}
