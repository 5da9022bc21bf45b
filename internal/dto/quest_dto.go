package dto

import (
	"time"

	"ophiuchus-be/internal/entity"

	"github.com/google/uuid"
)

type CreateQuestRequest struct {
	// SeedQuery seeds the catalog draw for the target and decoy songs,
	// e.g. a favourite artist or genre.
	SeedQuery string `json:"seed_query" validate:"required"`
}

type CreateQuestResponse struct {
	Id          uuid.UUID `json:"id"`
	InitialClue string    `json:"initial_clue"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoomView is the externally observable slice of a room's state. Clue
// text and revealed answers only appear once the room is completed.
type RoomView struct {
	Room              entity.RoomKind `json:"room"`
	Completed         bool            `json:"completed"`
	Points            int             `json:"points"`
	AttemptsRemaining int             `json:"attempts_remaining"`
	Correct           bool            `json:"correct"`
	ClueText          string          `json:"clue_text,omitempty"`
	RevealedAnswer    *entity.Song    `json:"revealed_answer,omitempty"`
}

type ProgressResponse struct {
	Id                uuid.UUID  `json:"id"`
	InitialClue       string     `json:"initial_clue"`
	Rooms             []RoomView `json:"rooms"`
	RoomsCompleted    int        `json:"rooms_completed"`
	FinalUnlocked     bool       `json:"final_unlocked"`
	FinalAttemptsLeft int        `json:"final_attempts_left"`
	TotalPoints       int        `json:"total_points"`
	IsCompleted       bool       `json:"is_completed"`
}

type SkipResponse struct {
	RoomsSkipped  int  `json:"rooms_skipped"`
	FinalUnlocked bool `json:"final_unlocked"`
}
