package game

// Error is a game-rule violation surfaced to the offending connection as an
// ERROR event. Code is the machine-readable half of the wire payload.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	// Authorisation / identity.
	ErrRoomNotFound = &Error{"ROOM_NOT_FOUND", "room not found"}
	ErrInvalidHost  = &Error{"INVALID_HOST", "host identity does not match this room"}
	ErrNotHost      = &Error{"NOT_HOST", "only the host can do that"}
	ErrNotInRoom    = &Error{"NOT_IN_ROOM", "you are not in this room"}

	// Lobby admission.
	ErrInvalidName    = &Error{"INVALID_NAME", "name must be 1 to 15 characters"}
	ErrNameTaken      = &Error{"NAME_TAKEN", "that name is already taken"}
	ErrRoomFull       = &Error{"ROOM_FULL", "room is full"}
	ErrGameInProgress = &Error{"GAME_IN_PROGRESS", "game is already in progress"}

	// Game start.
	ErrNotEnoughPlayers = &Error{"NOT_ENOUGH_PLAYERS", "not enough players to start"}
	ErrWrongState       = &Error{"WRONG_STATE", "that action is not valid right now"}

	// Answer stage.
	ErrPromptNotFound   = &Error{"PROMPT_NOT_FOUND", "prompt not found"}
	ErrNotAssigned      = &Error{"NOT_ASSIGNED", "that prompt is not yours to answer"}
	ErrAlreadySubmitted = &Error{"ALREADY_SUBMITTED", "answer already submitted"}

	// Voting stage.
	ErrOwnMatchup   = &Error{"OWN_MATCHUP", "you cannot vote on your own matchup"}
	ErrAlreadyVoted = &Error{"ALREADY_VOTED", "you already voted"}
	ErrInvalidVote  = &Error{"INVALID_VOTE", "vote must be 1 or 2"}

	// Finale voting.
	ErrCannotVoteSelf = &Error{"CANNOT_VOTE_SELF", "you cannot vote for your own answer"}
	ErrInvalidTarget  = &Error{"INVALID_TARGET", "no such answer to vote for"}

	// Player management.
	ErrPlayerNotFound = &Error{"PLAYER_NOT_FOUND", "player not found"}
)
