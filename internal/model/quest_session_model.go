package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuestSession persists the live quest document. The song payloads and
// per-room state are JSONB so the document shape can evolve without
// migrations; the scalar columns are what queries filter on.
type QuestSession struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId             uuid.UUID      `gorm:"type:uuid;not null;index"`
	ExternalUserId     string         `gorm:"type:text"`
	TargetSong         datatypes.JSON `gorm:"type:jsonb;not null"`
	DecoySongs         datatypes.JSON `gorm:"type:jsonb;not null"`
	InitialClue        string         `gorm:"type:text"`
	QuizQuestions      datatypes.JSON `gorm:"type:jsonb"`
	Rooms              datatypes.JSON `gorm:"type:jsonb;not null"`
	TotalPoints        int            `gorm:"not null;default:0"`
	FinalBonus         int            `gorm:"not null;default:0"`
	FinalGuessAttempts int            `gorm:"not null;default:0"`
	IsCompleted        bool           `gorm:"not null;default:false;index"`
	Identity           datatypes.JSON `gorm:"type:jsonb"`
	Version            int            `gorm:"not null;default:0"`
	CreatedAt          time.Time      `gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime"`
}

func (QuestSession) TableName() string {
	return "quest_sessions"
}
