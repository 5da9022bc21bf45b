package model

import (
	"time"

	"github.com/google/uuid"
)

type PlayerProfile struct {
	UserId         uuid.UUID `gorm:"type:uuid;primaryKey"`
	LifetimePoints int       `gorm:"not null;default:0;index"`
	GamesPlayed    int       `gorm:"not null;default:0"`
	GamesWon       int       `gorm:"not null;default:0"`
	BestGamePoints int       `gorm:"not null;default:0"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (PlayerProfile) TableName() string {
	return "player_profiles"
}
