package dto

import (
	"time"

	"github.com/google/uuid"
)

type LeaderboardEntry struct {
	Rank           int       `json:"rank"`
	UserId         uuid.UUID `json:"user_id"`
	LifetimePoints int       `json:"lifetime_points"`
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

type ProfileResponse struct {
	UserId         uuid.UUID `json:"user_id"`
	LifetimePoints int       `json:"lifetime_points"`
	GamesPlayed    int       `json:"games_played"`
	GamesWon       int       `json:"games_won"`
	BestGamePoints int       `json:"best_game_points"`
	UpdatedAt      time.Time `json:"updated_at"`
}
