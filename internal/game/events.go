package game

// Outbound event names. Payload shapes are documented where each is emitted.
const (
	EvRoomCreated     = "ROOM_CREATED"
	EvRoomJoined      = "ROOM_JOINED"
	EvRoomUpdate      = "ROOM_UPDATE"
	EvGameStarted     = "GAME_STARTED"
	EvPromptPhase     = "PROMPT_PHASE"
	EvReceivePrompts  = "RECEIVE_PROMPTS"
	EvVotingPhase     = "VOTING_PHASE"
	EvVoteMatchup     = "VOTE_MATCHUP"
	EvMatchupResult   = "MATCHUP_RESULT"
	EvRoundScores     = "ROUND_SCORES"
	EvLastWitReveal   = "LAST_WIT_MODE_REVEAL"
	EvLastLashPhase   = "LAST_LASH_PHASE"
	EvLastLashPrompt  = "LAST_LASH_PROMPT"
	EvLastLashVoting  = "LAST_LASH_VOTING"
	EvLastLashResults = "LAST_LASH_RESULTS"
	EvGameOver        = "GAME_OVER"
	EvPlayerSubmitted = "PLAYER_SUBMITTED"
	EvPlayerVoted     = "PLAYER_VOTED"
	EvPlayerKicked    = "PLAYER_KICKED"
	EvGamePaused      = "GAME_PAUSED"
	EvGameResumed     = "GAME_RESUMED"
	EvTimerUpdate     = "TIMER_UPDATE"
	EvRejoinSuccess   = "REJOIN_SUCCESS"
	EvRejoinHost      = "REJOIN_HOST_SUCCESS"
	EvError           = "ERROR"
)

// Emitter is the outbound half of the transport the engine talks to. The
// websocket hub implements it; tests substitute a recording fake.
type Emitter interface {
	EmitToConn(connID, event string, data any)
	EmitToRoom(roomCode, event string, data any)
}
