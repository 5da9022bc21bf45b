package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CompletedGame rows are append-only; nothing updates them after insert.
type CompletedGame struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId             uuid.UUID      `gorm:"type:uuid;not null;index"`
	SessionId          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	TargetSong         datatypes.JSON `gorm:"type:jsonb;not null"`
	Identity           datatypes.JSON `gorm:"type:jsonb"`
	TotalPoints        int            `gorm:"not null"`
	RoomPoints         datatypes.JSON `gorm:"type:jsonb;not null"`
	FinalGuessAttempts int            `gorm:"not null"`
	Won                bool           `gorm:"not null"`
	CompletedAt        time.Time      `gorm:"not null;index"`
}

func (CompletedGame) TableName() string {
	return "completed_games"
}
