package game

// Game tunables. These are fixed for every room; server-level settings
// (port, timeouts, rate limits) live in internal/config.
const (
	MinPlayers       = 3
	MaxPlayers       = 8
	RoundsPerGame    = 2
	PromptsPerPlayer = 2

	AnswerTime         = 90 // seconds
	VoteTime           = 30
	LastLashAnswerTime = 90
	LastLashVoteTime   = 45

	MaxAnswerLength = 100
	MaxNameLength   = 15
	MaxThemeLength  = 120
	RoomCodeLength  = 4

	PointsPerVote = 100
	QuipWitBonus  = 100
	LastLashFirst = 300
)

// Sentinel answers used when a player never submits.
const (
	NoAnswer = "[No answer]"
	Skipped  = "[Skipped]"
)

// Transition holds, in milliseconds.
const (
	voteGraceMs       = 1500
	matchupResultMs   = 4000
	roundScoresMs     = 5000
	lastLashResultsMs = 8000
)
