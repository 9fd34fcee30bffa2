package game

import (
	"log/slog"
	"strings"
	"time"

	"quipwit/internal/prompts"
)

// Engine drives every room through the phase graph. All operations serialise
// on the room's mutex; timer expiries re-enter through the same lock, so a
// handler in flight can never race an expiry on the same room.
type Engine struct {
	emitter Emitter
	source  prompts.Source
	log     *slog.Logger
}

func NewEngine(emitter Emitter, source prompts.Source, log *slog.Logger) *Engine {
	return &Engine{emitter: emitter, source: source, log: log}
}

func (e *Engine) toHostLocked(r *Room, event string, data any) {
	if r.HostConnectionID != "" {
		e.emitter.EmitToConn(r.HostConnectionID, event, data)
	}
}

func (e *Engine) toPlayerLocked(p *Player, event string, data any) {
	if p.Connected && p.ConnectionID != "" {
		e.emitter.EmitToConn(p.ConnectionID, event, data)
	}
}

// StartGame begins round 1. Host only, lobby only, MinPlayers required.
func (e *Engine) StartGame(r *Room, connID, theme string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if connID != r.HostConnectionID {
		return ErrNotHost
	}
	if r.State != StateLobby {
		return ErrGameInProgress
	}
	if len(r.Players) < MinPlayers {
		return ErrNotEnoughPlayers
	}

	theme = clipRunes(strings.TrimSpace(theme), MaxThemeLength)
	r.Theme = theme

	e.log.Info("game started", "room", r.Code, "players", len(r.Players), "theme", theme)
	e.emitter.EmitToRoom(r.Code, EvGameStarted, map[string]any{
		"roomCode": r.Code,
		"theme":    theme,
		"rounds":   RoundsPerGame,
	})
	e.enterPromptLocked(r)
	return nil
}

// SubmitAnswer records one side of a matchup. Local errors never mutate state.
func (e *Engine) SubmitAnswer(r *Room, p *Player, promptID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Paused || r.State != StatePrompt {
		return ErrWrongState
	}
	q := r.promptLocked(promptID)
	if q == nil {
		return ErrPromptNotFound
	}
	side := q.SideOf(p.ID)
	if side == 0 {
		return ErrNotAssigned
	}
	if q.Answered(side) {
		return ErrAlreadySubmitted
	}

	answer := cleanAnswer(text)
	if side == 1 {
		q.Player1Answer = answer
	} else {
		q.Player2Answer = answer
	}
	p.AnswersSubmitted++

	e.emitter.EmitToRoom(r.Code, EvPlayerSubmitted, map[string]any{
		"playerId":  p.ID,
		"name":      p.Name,
		"submitted": p.AnswersSubmitted,
		"total":     len(p.PromptsAssigned),
	})

	if r.allAnswersInLocked() {
		e.stopCountdownLocked(r)
		e.enterVotingLocked(r)
	}
	return nil
}

// SubmitVote counts one vote on the current matchup.
func (e *Engine) SubmitVote(r *Room, p *Player, promptID string, choice int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Paused || r.State != StateVoting || !r.matchupOpen {
		return ErrWrongState
	}
	q := r.promptLocked(promptID)
	if q == nil {
		return ErrPromptNotFound
	}
	if q != r.Prompts[r.CurrentMatchupIndex] {
		return ErrWrongState
	}
	if choice != 1 && choice != 2 {
		return ErrInvalidVote
	}
	if p.ID == q.Player1ID || p.ID == q.Player2ID {
		return ErrOwnMatchup
	}
	if p.HasVoted[promptID] {
		return ErrAlreadyVoted
	}

	if choice == 1 {
		q.Player1Votes++
	} else {
		q.Player2Votes++
	}
	p.HasVoted[promptID] = true

	votesIn := q.Player1Votes + q.Player2Votes
	eligible := len(r.Players) - 2
	e.emitter.EmitToRoom(r.Code, EvPlayerVoted, map[string]any{
		"playerId":    p.ID,
		"votesIn":     votesIn,
		"totalVoters": eligible,
	})

	if votesIn >= eligible {
		e.stopCountdownLocked(r)
		e.closeMatchupLocked(r)
	}
	return nil
}

// SubmitLastLashAnswer records a finale entry, one per player. Mode shape
// violations attach a warning but never reject.
func (e *Engine) SubmitLastLashAnswer(r *Room, p *Player, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Paused || r.State != StateLastLash || !r.lastLashPrompted {
		return ErrWrongState
	}
	ll := r.LastLash
	if ll.answerOf(p.ID) != nil {
		return ErrAlreadySubmitted
	}

	answer := cleanAnswer(text)
	ll.Answers = append(ll.Answers, &LastLashAnswer{
		PlayerID: p.ID,
		Answer:   answer,
		Warning:  validateLastLashAnswer(ll.Mode, ll.Letters, answer),
	})

	e.emitter.EmitToRoom(r.Code, EvPlayerSubmitted, map[string]any{
		"playerId":  p.ID,
		"name":      p.Name,
		"submitted": 1,
		"total":     1,
	})

	if len(ll.Answers) >= len(r.Players) {
		e.stopCountdownLocked(r)
		e.enterLastLashVotingLocked(r)
	}
	return nil
}

// SubmitLastLashVotes records a finale vote. The single-vote variant consumes
// the first entry of the submitted list.
func (e *Engine) SubmitLastLashVotes(r *Room, p *Player, votes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Paused || r.State != StateLastLashVoting || !r.finaleVotingOpen {
		return ErrWrongState
	}
	if len(votes) == 0 {
		return ErrInvalidVote
	}
	ll := r.LastLash
	target := votes[0]
	if _, voted := ll.Votes[p.ID]; voted {
		return ErrAlreadyVoted
	}
	if target == p.ID {
		return ErrCannotVoteSelf
	}
	if ll.answerOf(target) == nil {
		return ErrInvalidTarget
	}

	ll.Votes[p.ID] = target
	e.emitter.EmitToRoom(r.Code, EvPlayerVoted, map[string]any{
		"playerId":    p.ID,
		"votesIn":     len(ll.Votes),
		"totalVoters": len(r.Players),
	})

	if len(ll.Votes) >= len(r.Players) {
		e.stopCountdownLocked(r)
		e.closeFinaleVotingLocked(r)
	}
	return nil
}

// ContinueLastWit is the host acknowledging the mode reveal; it delivers the
// finale prompt to everyone and arms the answer timer.
func (e *Engine) ContinueLastWit(r *Room, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if connID != r.HostConnectionID {
		return ErrNotHost
	}
	if r.Paused || r.State != StateLastLash || r.lastLashPrompted {
		return ErrWrongState
	}
	r.lastLashPrompted = true

	ll := r.LastLash
	payload := map[string]any{
		"prompt":       ll.Prompt,
		"mode":         ll.Mode,
		"letters":      ll.Letters,
		"instructions": ll.Instructions,
		"timeLimit":    LastLashAnswerTime,
	}
	e.toHostLocked(r, EvLastLashPhase, payload)
	for _, p := range r.Players {
		e.toPlayerLocked(p, EvLastLashPrompt, payload)
	}
	e.armCountdownLocked(r, time.Duration(LastLashAnswerTime)*time.Second, true)
	return nil
}

// SkipPlayer fills a lagging player's outstanding answers with the skip
// sentinel and re-checks phase completion. Host only.
func (e *Engine) SkipPlayer(r *Room, connID, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if connID != r.HostConnectionID {
		return ErrNotHost
	}
	if r.Paused {
		return ErrWrongState
	}
	p := r.playerLocked(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}

	switch {
	case r.State == StatePrompt:
		for _, id := range p.PromptsAssigned {
			q := r.promptLocked(id)
			if q == nil {
				continue
			}
			if side := q.SideOf(p.ID); side == 1 && !q.Answered(1) {
				q.Player1Answer = Skipped
			} else if side == 2 && !q.Answered(2) {
				q.Player2Answer = Skipped
			}
		}
		if r.allAnswersInLocked() {
			e.stopCountdownLocked(r)
			e.enterVotingLocked(r)
		}
	case r.State == StateLastLash && r.lastLashPrompted:
		if r.LastLash.answerOf(p.ID) == nil {
			r.LastLash.Answers = append(r.LastLash.Answers, &LastLashAnswer{PlayerID: p.ID, Answer: Skipped})
			if len(r.LastLash.Answers) >= len(r.Players) {
				e.stopCountdownLocked(r)
				e.enterLastLashVotingLocked(r)
			}
		}
	default:
		return ErrWrongState
	}
	return nil
}

// KickPlayer removes a lobby player. The kicked connection is told first.
func (e *Engine) KickPlayer(r *Room, connID, playerID string) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if connID != r.HostConnectionID {
		return nil, ErrNotHost
	}
	if r.State != StateLobby {
		return nil, ErrWrongState
	}
	p := r.removePlayerLocked(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}

	e.toPlayerLocked(p, EvPlayerKicked, map[string]any{"roomCode": r.Code})
	e.emitter.EmitToRoom(r.Code, EvRoomUpdate, r.snapshotLocked())
	return p, nil
}

// PauseGame freezes the room's countdown.
func (e *Engine) PauseGame(r *Room, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if connID != r.HostConnectionID {
		return ErrNotHost
	}
	if r.Paused || r.State == StateLobby || r.State == StateGameOver {
		return ErrWrongState
	}

	r.Paused = true
	r.PausedInState = r.State
	r.pauseTimer = r.timer != nil
	r.pauseTicks = r.timer != nil && r.timer.onTick != nil
	r.PauseRemaining = r.timerRemainingLocked()
	e.stopCountdownLocked(r)

	e.log.Info("game paused", "room", r.Code, "state", r.State, "remaining", r.PauseRemaining)
	e.emitter.EmitToRoom(r.Code, EvGamePaused, map[string]any{"remaining": r.PauseRemaining})
	return nil
}

// ResumeGame re-arms the frozen countdown with the remaining duration. The
// expiry action is resolved from the paused state, not a captured closure.
func (e *Engine) ResumeGame(r *Room, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if connID != r.HostConnectionID {
		return ErrNotHost
	}
	if !r.Paused {
		return ErrWrongState
	}

	r.Paused = false
	remaining := r.PauseRemaining
	hadTimer := r.pauseTimer
	ticks := r.pauseTicks
	pausedState := r.PausedInState
	r.PauseRemaining = 0
	r.PausedInState = ""
	r.pauseTimer = false
	r.pauseTicks = false

	e.log.Info("game resumed", "room", r.Code, "state", pausedState, "remaining", remaining)
	e.emitter.EmitToRoom(r.Code, EvGameResumed, map[string]any{"remaining": remaining})

	if hadTimer {
		if remaining <= 0 {
			if cb := e.callbackFor(pausedState); cb != nil {
				cb(r)
			}
		} else {
			e.armCountdownLocked(r, time.Duration(remaining)*time.Second, ticks)
		}
	}
	return nil
}

// ExtendTime pushes the active countdown's deadline forward.
func (e *Engine) ExtendTime(r *Room, connID string, seconds int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if connID != r.HostConnectionID {
		return ErrNotHost
	}
	if seconds <= 0 {
		seconds = 30
	}

	if r.Paused {
		r.PauseRemaining += seconds
		e.emitter.EmitToRoom(r.Code, EvTimerUpdate, map[string]any{"remaining": r.PauseRemaining})
		return nil
	}
	if r.timer == nil {
		return ErrWrongState
	}
	r.timer.Extend(time.Duration(seconds) * time.Second)
	r.TimerEnd = r.TimerEnd.Add(time.Duration(seconds) * time.Second)
	e.emitter.EmitToRoom(r.Code, EvTimerUpdate, map[string]any{"remaining": r.timerRemainingLocked()})
	return nil
}

// EndGame terminates the game early. In GAME_OVER further host game events
// are ignored.
func (e *Engine) EndGame(r *Room, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if connID != r.HostConnectionID {
		return ErrNotHost
	}
	if r.State == StateGameOver {
		return nil
	}
	e.stopCountdownLocked(r)
	r.Paused = false
	e.finishGameLocked(r)
	return nil
}

// PlayerDisconnected marks the player detached; the room plays on.
func (e *Engine) PlayerDisconnected(r *Room, playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.playerLocked(playerID); p != nil {
		p.Connected = false
		p.ConnectionID = ""
	}
	e.emitter.EmitToRoom(r.Code, EvRoomUpdate, r.snapshotLocked())
}

// HostDisconnected is a soft event: the room continues until reconnection or
// reaping.
func (e *Engine) HostDisconnected(r *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.HostConnectionID = ""
	e.emitter.EmitToRoom(r.Code, EvRoomUpdate, r.snapshotLocked())
}

// RejoinPlayer resends a reconnecting player their current view.
func (e *Engine) RejoinPlayer(r *Room, p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload := map[string]any{
		"roomCode":      r.Code,
		"playerId":      p.ID,
		"name":          p.Name,
		"state":         r.State,
		"round":         r.CurrentRound,
		"score":         r.Scores[p.ID],
		"paused":        r.Paused,
		"timeRemaining": r.timerRemainingLocked(),
	}

	if r.State == StatePrompt {
		pending := make([]map[string]any, 0, len(p.PromptsAssigned))
		for _, id := range p.PromptsAssigned {
			if q := r.promptLocked(id); q != nil && !q.Answered(q.SideOf(p.ID)) {
				pending = append(pending, map[string]any{"id": q.ID, "text": q.Text})
			}
		}
		payload["prompts"] = pending
	}
	if r.State == StateLastLash && r.lastLashPrompted && r.LastLash.answerOf(p.ID) == nil {
		payload["lastLash"] = map[string]any{
			"prompt":       r.LastLash.Prompt,
			"mode":         r.LastLash.Mode,
			"letters":      r.LastLash.Letters,
			"instructions": r.LastLash.Instructions,
		}
	}

	e.toPlayerLocked(p, EvRejoinSuccess, payload)
	e.emitter.EmitToRoom(r.Code, EvRoomUpdate, r.snapshotLocked())
}

// RejoinHost resends the reconnecting host the authoritative room view.
func (e *Engine) RejoinHost(r *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload := map[string]any{
		"roomCode":      r.Code,
		"hostId":        r.HostID,
		"state":         r.State,
		"round":         r.CurrentRound,
		"matchupIndex":  r.CurrentMatchupIndex,
		"matchupCount":  len(r.Prompts),
		"scoreboard":    r.scoreboardLocked(),
		"paused":        r.Paused,
		"timeRemaining": r.timerRemainingLocked(),
		"players":       r.snapshotLocked()["players"],
	}
	e.toHostLocked(r, EvRejoinHost, payload)
	e.emitter.EmitToRoom(r.Code, EvRoomUpdate, r.snapshotLocked())
}
