package game

import (
	"strings"
	"sync"
	"time"
)

// State is a room's position in the phase graph.
type State string

const (
	StateLobby          State = "LOBBY"
	StatePrompt         State = "PROMPT"
	StateVoting         State = "VOTING"
	StateScoring        State = "SCORING"
	StateLastLash       State = "LAST_LASH"
	StateLastLashVoting State = "LAST_LASH_VOTING"
	StateGameOver       State = "GAME_OVER"
)

// Prompt is one matchup: a prompt text assigned to exactly two players.
// IDs are stable within a round, of the form r{round}_p{index}.
type Prompt struct {
	ID            string
	Text          string
	Player1ID     string
	Player2ID     string
	Player1Answer string
	Player2Answer string
	Player1Votes  int
	Player2Votes  int
	IsJinx        bool
	QuipWit       int // 0 none, otherwise 1 or 2
}

// Answered reports whether the given side has an answer recorded.
func (p *Prompt) Answered(side int) bool {
	if side == 1 {
		return p.Player1Answer != ""
	}
	return p.Player2Answer != ""
}

// SideOf returns 1 or 2 for the given player, 0 if not assigned.
func (p *Prompt) SideOf(playerID string) int {
	switch playerID {
	case p.Player1ID:
		return 1
	case p.Player2ID:
		return 2
	}
	return 0
}

// Room owns all state for one game. All mutation goes through the engine or
// the exported membership methods below; both serialise on mu.
type Room struct {
	Code                string
	HostConnectionID    string
	HostID              string
	State               State
	Players             []*Player // join order
	CurrentRound        int       // 0 before start
	Theme               string
	Prompts             []*Prompt
	Scores              map[string]int
	CurrentMatchupIndex int
	UsedPromptTexts     map[string]struct{}
	LastLash            *LastLash
	CreatedAt           time.Time

	// Timer state. TimerEnd is zero when no countdown is armed.
	Paused         bool
	PausedInState  State
	PauseRemaining int // seconds, meaningful only while Paused
	TimerEnd       time.Time

	timer      *countdown
	pauseTicks bool // paused countdown was a ticking one
	pauseTimer bool // a countdown was actually running at pause time

	// Sub-phase markers consulted by the timer resume dispatch.
	matchupOpen      bool // VOTING: current matchup accepting votes
	finaleVotingOpen bool // LAST_LASH_VOTING: votes still accepted
	lastLashPrompted bool // LAST_LASH: prompt sent, answer timer armed

	mu sync.Mutex
}

// NewRoom creates a lobby-state room owned by the given host connection.
func NewRoom(code, hostConnID, hostID string) *Room {
	return &Room{
		Code:             code,
		HostConnectionID: hostConnID,
		HostID:           hostID,
		State:            StateLobby,
		Players:          make([]*Player, 0, MaxPlayers),
		Scores:           make(map[string]int),
		UsedPromptTexts:  make(map[string]struct{}),
		CreatedAt:        time.Now(),
	}
}

// AddPlayer admits a player during LOBBY. Names are unique case-insensitively.
func (r *Room) AddPlayer(p *Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.State != StateLobby {
		return ErrGameInProgress
	}
	if len(r.Players) >= MaxPlayers {
		return ErrRoomFull
	}
	for _, existing := range r.Players {
		if strings.EqualFold(existing.Name, p.Name) {
			return ErrNameTaken
		}
	}

	r.Players = append(r.Players, p)
	r.Scores[p.ID] = 0
	return nil
}

// RemovePlayer deletes a player and their score entry.
func (r *Room) RemovePlayer(playerID string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removePlayerLocked(playerID)
}

func (r *Room) removePlayerLocked(playerID string) *Player {
	for i, p := range r.Players {
		if p.ID == playerID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			delete(r.Scores, playerID)
			return p
		}
	}
	return nil
}

// GetPlayer returns the player with the given ID, or nil.
func (r *Room) GetPlayer(playerID string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerLocked(playerID)
}

func (r *Room) playerLocked(playerID string) *Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// PlayerByConnection returns the player bound to the given connection, or nil.
func (r *Room) PlayerByConnection(connID string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Players {
		if p.ConnectionID == connID {
			return p
		}
	}
	return nil
}

// MarkDisconnected flags a player as detached without removing them.
func (r *Room) MarkDisconnected(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.playerLocked(playerID); p != nil {
		p.Connected = false
		p.ConnectionID = ""
	}
}

// BindConnection reattaches a player to a fresh transport connection.
func (r *Room) BindConnection(playerID, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.playerLocked(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	p.ConnectionID = connID
	p.Connected = true
	return nil
}

// BindHostConnection reattaches the host, provided the host identity matches.
func (r *Room) BindHostConnection(hostID, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.HostID != hostID {
		return ErrInvalidHost
	}
	r.HostConnectionID = connID
	return nil
}

// promptLocked finds a current-round prompt by ID.
func (r *Room) promptLocked(promptID string) *Prompt {
	for _, p := range r.Prompts {
		if p.ID == promptID {
			return p
		}
	}
	return nil
}

// Snapshot returns the read-only view broadcast as ROOM_UPDATE.
func (r *Room) Snapshot() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() map[string]any {
	players := make([]map[string]any, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, map[string]any{
			"id":        p.ID,
			"name":      p.Name,
			"connected": p.Connected,
			"score":     r.Scores[p.ID],
		})
	}
	return map[string]any{
		"roomCode": r.Code,
		"state":    r.State,
		"round":    r.CurrentRound,
		"players":  players,
		"paused":   r.Paused,
	}
}

// StopTimers cancels any armed countdown. Called on teardown so a deleted
// room cannot keep walking its phase chain.
func (r *Room) StopTimers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.TimerEnd = time.Time{}
}

// CurrentState returns the room's phase under the room lock.
func (r *Room) CurrentState() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.State
}

// TimerRemaining returns the whole seconds left on the active countdown.
func (r *Room) TimerRemaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timerRemainingLocked()
}

func (r *Room) timerRemainingLocked() int {
	if r.TimerEnd.IsZero() {
		return 0
	}
	left := time.Until(r.TimerEnd)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}
