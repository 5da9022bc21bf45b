package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuizQuestion is the global fallback bank used when per-session question
// generation is unavailable. Seeded by cmd/seed.
type QuizQuestion struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Prompt          string         `gorm:"type:text;not null"`
	Answer          string         `gorm:"type:text;not null"`
	AcceptedAnswers datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
