package entity

// RoomKind identifies one of the five mini-game rooms. Each kind carries
// its own scoring policy; the table below is the single source of truth
// for attempt caps and point tiers.
type RoomKind string

const (
	RoomNebula RoomKind = "nebula" // riddle: guess the first decoy song
	RoomCradle RoomKind = "cradle" // identify the artist of the cosmic song
	RoomComet  RoomKind = "comet"  // single shot: guess the second decoy after a timed reveal
	RoomAurora RoomKind = "aurora" // emotional match: submit any song, judged 0-10
	RoomNova   RoomKind = "nova"   // quiz: five questions against a precomputed bank
)

// AllRooms lists every room in quest order.
var AllRooms = []RoomKind{RoomNebula, RoomCradle, RoomComet, RoomAurora, RoomNova}

func (k RoomKind) Valid() bool {
	switch k {
	case RoomNebula, RoomCradle, RoomComet, RoomAurora, RoomNova:
		return true
	}
	return false
}

type Verdict string

const (
	VerdictPending Verdict = "pending"
	VerdictCorrect Verdict = "correct"
	VerdictWrong   Verdict = "wrong"
)

// ScoringPolicy is the per-room rule set. PointsByAttempt is indexed by
// attempt number (attempt 1 -> index 0). FailFloor is awarded when every
// attempt is spent without a correct answer.
type ScoringPolicy struct {
	AttemptCap      int
	PointsByAttempt []int
	FailFloor       int
	OracleBudget    int // cradle only: free-text questions to the oracle
	PassScore       int // aurora only: minimum mood score out of 10
	QuestionCount   int // nova only
	PointsPerAnswer int // nova only
	QuizPassCount   int // nova only: correct answers needed to unlock the clue
	RevealOnFail    bool
}

// Policies maps every room kind to its configured policy. Keeping the
// five rule sets in one table makes the tier differences (100/50/25 vs
// 100/75/50) explicit instead of buried in per-room code paths.
var Policies = map[RoomKind]ScoringPolicy{
	RoomNebula: {
		AttemptCap:      3,
		PointsByAttempt: []int{100, 50, 25},
		FailFloor:       0,
		RevealOnFail:    true,
	},
	RoomCradle: {
		AttemptCap:      3,
		PointsByAttempt: []int{100, 75, 50},
		FailFloor:       10,
		OracleBudget:    5,
		RevealOnFail:    true,
	},
	RoomComet: {
		AttemptCap:      1,
		PointsByAttempt: []int{100},
		FailFloor:       0,
		RevealOnFail:    true,
	},
	RoomAurora: {
		AttemptCap: 0, // unlimited retries below the pass threshold
		PassScore:  7,
	},
	RoomNova: {
		AttemptCap:      1,
		QuestionCount:   5,
		PointsPerAnswer: 20,
		FailFloor:       10,
		QuizPassCount:   3,
	},
}

// RoomState is the per-room slice of a quest session document.
type RoomState struct {
	ClueText            string  `json:"clue_text,omitempty"`
	AttemptsUsed        int     `json:"attempts_used"`
	OracleQuestionsUsed int     `json:"oracle_questions_used,omitempty"`
	PointsAwarded       int     `json:"points_awarded"`
	IsCompleted         bool    `json:"is_completed"`
	FinalVerdict        Verdict `json:"final_verdict"`
	RevealedAnswer      *Song   `json:"revealed_answer,omitempty"`
	QuizCorrectCount    int     `json:"quiz_correct_count,omitempty"`
	BestMoodScore       int     `json:"best_mood_score,omitempty"`
}

// AttemptsRemaining returns how many guesses are left under the room's
// cap. Unlimited rooms (aurora) report -1.
func (r *RoomState) AttemptsRemaining(kind RoomKind) int {
	p := Policies[kind]
	if p.AttemptCap == 0 {
		return -1
	}
	left := p.AttemptCap - r.AttemptsUsed
	if left < 0 {
		return 0
	}
	return left
}
