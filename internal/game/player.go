package game

import "time"

// Player is a participant identity. The ID outlives any single transport
// connection; ConnectionID is rebound on reconnect.
type Player struct {
	ID           string
	Name         string
	ConnectionID string
	Connected    bool

	// Per-round state, reset when a new round's prompts are dealt.
	PromptsAssigned  []string // prompt IDs
	AnswersSubmitted int
	HasVoted         map[string]bool // prompt IDs voted on this round

	JoinedAt time.Time
}

// NewPlayer creates a connected player bound to the given connection.
func NewPlayer(id, name, connID string) *Player {
	return &Player{
		ID:              id,
		Name:            name,
		ConnectionID:    connID,
		Connected:       true,
		PromptsAssigned: make([]string, 0, PromptsPerPlayer+1),
		HasVoted:        make(map[string]bool),
		JoinedAt:        time.Now(),
	}
}

func (p *Player) resetRound() {
	p.PromptsAssigned = p.PromptsAssigned[:0]
	p.AnswersSubmitted = 0
	p.HasVoted = make(map[string]bool)
}
