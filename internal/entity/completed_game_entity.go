package entity

import (
	"time"

	"github.com/google/uuid"
)

// CompletedGame is the immutable per-quest archive record. One row is
// appended when a session resolves; rows are never updated.
type CompletedGame struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	SessionId          uuid.UUID
	TargetSong         Song
	Identity           *OphiuchusIdentity
	TotalPoints        int
	RoomPoints         map[RoomKind]int
	FinalGuessAttempts int
	Won                bool
	CompletedAt        time.Time
}

// PlayerProfile carries a user's lifetime aggregates. The totals are
// always recomputed from the full CompletedGame history, never trusted
// incrementally, so a double archival cannot drift them.
type PlayerProfile struct {
	UserId         uuid.UUID
	LifetimePoints int
	GamesPlayed    int
	GamesWon       int
	BestGamePoints int
	UpdatedAt      time.Time
}

// RecomputeFrom rebuilds the aggregates from history.
func (p *PlayerProfile) RecomputeFrom(games []*CompletedGame) {
	p.LifetimePoints = 0
	p.GamesPlayed = len(games)
	p.GamesWon = 0
	p.BestGamePoints = 0
	for _, g := range games {
		p.LifetimePoints += g.TotalPoints
		if g.Won {
			p.GamesWon++
		}
		if g.TotalPoints > p.BestGamePoints {
			p.BestGamePoints = g.TotalPoints
		}
	}
}
