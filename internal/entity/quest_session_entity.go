package entity

import (
	"time"

	"github.com/google/uuid"
)

const FinalGuessCap = 3

// Final reveal bonus tiers, indexed by the attempt on which the player
// got it right (attempt 3 and the consolation are flat values).
const (
	FinalBonusFirst  = 300
	FinalBonusSecond = 200
	FinalBonusThird  = 100
	FinalConsolation = 25
)

// OphiuchusIdentity is the generated narrative reward, set only when the
// final reveal succeeds.
type OphiuchusIdentity struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageUrl    string `json:"image_url,omitempty"`
}

// QuestSession is the live document for one player's quest. It is created
// at quest start, mutated as rooms are attempted, and deleted once the
// final guess resolves and the summary is archived.
type QuestSession struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	ExternalUserId     string // streaming-service account id
	TargetSong         Song
	DecoySongs         []Song // exactly two, never containing the target
	InitialClue        string
	QuizQuestions      []Question // nova bank, fixed at creation
	Rooms              map[RoomKind]*RoomState
	TotalPoints        int
	FinalBonus         int // tiered reveal bonus or consolation, set once
	FinalGuessAttempts int
	IsCompleted        bool
	Identity           *OphiuchusIdentity
	Version            int // optimistic concurrency check on every write
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// Room returns the state record for a room, creating a pending one on
// first access so callers never see a nil entry.
func (s *QuestSession) Room(kind RoomKind) *RoomState {
	if s.Rooms == nil {
		s.Rooms = make(map[RoomKind]*RoomState)
	}
	if _, ok := s.Rooms[kind]; !ok {
		s.Rooms[kind] = &RoomState{FinalVerdict: VerdictPending}
	}
	return s.Rooms[kind]
}

// RoomsCompleted counts completed rooms.
func (s *QuestSession) RoomsCompleted() int {
	n := 0
	for _, k := range AllRooms {
		if st, ok := s.Rooms[k]; ok && st.IsCompleted {
			n++
		}
	}
	return n
}

// FinalUnlocked reports whether every room is completed, the sole gate
// for the final-guess endpoint.
func (s *QuestSession) FinalUnlocked() bool {
	return s.RoomsCompleted() == len(AllRooms)
}

// RecomputeTotal derives TotalPoints from the stored per-room points plus
// the stored final bonus. Mutations always recompute instead of
// incrementing so a retried request can never double-count.
func (s *QuestSession) RecomputeTotal() {
	sum := s.FinalBonus
	for _, st := range s.Rooms {
		sum += st.PointsAwarded
	}
	s.TotalPoints = sum
}

// RoomPoints returns the per-room point breakdown for archival.
func (s *QuestSession) RoomPoints() map[RoomKind]int {
	out := make(map[RoomKind]int, len(s.Rooms))
	for k, st := range s.Rooms {
		out[k] = st.PointsAwarded
	}
	return out
}
