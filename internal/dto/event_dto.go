package dto

import "github.com/google/uuid"

// GameCompletedMessage travels over the in-process bus from the reveal
// service to the consumer that refreshes the leaderboard cache and
// fires notifications.
type GameCompletedMessage struct {
	UserId      uuid.UUID `json:"user_id"`
	SessionId   uuid.UUID `json:"session_id"`
	SongName    string    `json:"song_name"`
	TotalPoints int       `json:"total_points"`
	Won         bool      `json:"won"`
}
