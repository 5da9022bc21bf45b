package dto

import "ophiuchus-be/internal/entity"

type GuessRequest struct {
	// Guess is a track id for nebula/comet and an artist name for cradle.
	Guess string `json:"guess" validate:"required"`
}

type GuessResponse struct {
	Correct           bool         `json:"correct"`
	PointsAwarded     int          `json:"points_awarded"`
	AttemptsRemaining int          `json:"attempts_remaining"`
	Completed         bool         `json:"completed"`
	ClueText          string       `json:"clue_text,omitempty"`
	RevealedAnswer    *entity.Song `json:"revealed_answer,omitempty"`
}

type MoodSongRequest struct {
	SongId string `json:"song_id" validate:"required"`
}

type MoodSongResponse struct {
	Score         int    `json:"score"`
	Passed        bool   `json:"passed"`
	PointsAwarded int    `json:"points_awarded"`
	Completed     bool   `json:"completed"`
	ClueText      string `json:"clue_text,omitempty"`
}

type QuizAnswersRequest struct {
	Answers []string `json:"answers" validate:"required,min=1"`
}

type QuizAnswersResponse struct {
	CorrectCount  int    `json:"correct_count"`
	PointsAwarded int    `json:"points_awarded"`
	Passed        bool   `json:"passed"`
	Completed     bool   `json:"completed"`
	ClueText      string `json:"clue_text,omitempty"`
}

type QuizQuestionsResponse struct {
	Questions []QuizQuestionView `json:"questions"`
}

// QuizQuestionView never carries the answer.
type QuizQuestionView struct {
	Prompt string `json:"prompt"`
}

type OracleRequest struct {
	Question string `json:"question" validate:"required"`
}

type OracleResponse struct {
	Answer             string `json:"answer"`
	QuestionsRemaining int    `json:"questions_remaining"`
}

type FinalGuessRequest struct {
	SongId string `json:"song_id" validate:"required"`
}

type FinalGuessResponse struct {
	Correct           bool                      `json:"correct"`
	PointsEarned      int                       `json:"points_earned"`
	AttemptsRemaining int                       `json:"attempts_remaining"`
	GameOver          bool                      `json:"game_over"`
	TotalPoints       int                       `json:"total_points,omitempty"`
	CosmicSong        *entity.Song              `json:"cosmic_song,omitempty"`
	Identity          *entity.OphiuchusIdentity `json:"identity,omitempty"`
}
