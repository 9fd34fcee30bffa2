package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPlayerAdmission(t *testing.T) {
	r := NewRoom("ABCD", "host-conn", "host-id")

	require.NoError(t, r.AddPlayer(NewPlayer("p1", "Alice", "c1")))
	assert.Equal(t, 0, r.Scores["p1"])

	err := r.AddPlayer(NewPlayer("p2", "alice", "c2"))
	assert.ErrorIs(t, err, ErrNameTaken, "names are unique case-insensitively")

	for i := 2; i <= MaxPlayers; i++ {
		require.NoError(t, r.AddPlayer(NewPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Name%d", i), fmt.Sprintf("c%d", i))))
	}
	err = r.AddPlayer(NewPlayer("px", "Overflow", "cx"))
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestAddPlayerLobbyOnly(t *testing.T) {
	r := NewRoom("ABCD", "host-conn", "host-id")
	r.State = StatePrompt

	err := r.AddPlayer(NewPlayer("p1", "Late", "c1"))
	assert.ErrorIs(t, err, ErrGameInProgress)
}

func TestRemovePlayerDropsScore(t *testing.T) {
	r := NewRoom("ABCD", "host-conn", "host-id")
	require.NoError(t, r.AddPlayer(NewPlayer("p1", "Alice", "c1")))
	require.NoError(t, r.AddPlayer(NewPlayer("p2", "Bob", "c2")))

	removed := r.RemovePlayer("p1")
	require.NotNil(t, removed)
	assert.Equal(t, "Alice", removed.Name)
	assert.Len(t, r.Players, 1)
	_, ok := r.Scores["p1"]
	assert.False(t, ok)

	assert.Nil(t, r.RemovePlayer("ghost"))
}

func TestBindHostConnectionChecksIdentity(t *testing.T) {
	r := NewRoom("ABCD", "host-conn", "host-id")

	assert.ErrorIs(t, r.BindHostConnection("impostor", "c9"), ErrInvalidHost)
	assert.Equal(t, "host-conn", r.HostConnectionID)

	require.NoError(t, r.BindHostConnection("host-id", "c9"))
	assert.Equal(t, "c9", r.HostConnectionID)
}

func TestBindConnectionReattaches(t *testing.T) {
	r := NewRoom("ABCD", "host-conn", "host-id")
	require.NoError(t, r.AddPlayer(NewPlayer("p1", "Alice", "c1")))

	r.MarkDisconnected("p1")
	p := r.GetPlayer("p1")
	assert.False(t, p.Connected)
	assert.Empty(t, p.ConnectionID)

	require.NoError(t, r.BindConnection("p1", "c1-new"))
	assert.True(t, p.Connected)
	assert.Equal(t, "c1-new", p.ConnectionID)

	assert.ErrorIs(t, r.BindConnection("ghost", "cx"), ErrPlayerNotFound)
}

func TestSnapshotShape(t *testing.T) {
	r := NewRoom("ABCD", "host-conn", "host-id")
	require.NoError(t, r.AddPlayer(NewPlayer("p1", "Alice", "c1")))
	r.Scores["p1"] = 250

	snap := r.Snapshot()
	assert.Equal(t, "ABCD", snap["roomCode"])
	assert.Equal(t, StateLobby, snap["state"])
	assert.Equal(t, false, snap["paused"])

	players := snap["players"].([]map[string]any)
	require.Len(t, players, 1)
	assert.Equal(t, "Alice", players[0]["name"])
	assert.Equal(t, 250, players[0]["score"])
	assert.Equal(t, true, players[0]["connected"])
}

func TestPromptSides(t *testing.T) {
	q := &Prompt{ID: "r1_p0", Player1ID: "a", Player2ID: "b"}
	assert.Equal(t, 1, q.SideOf("a"))
	assert.Equal(t, 2, q.SideOf("b"))
	assert.Zero(t, q.SideOf("c"))

	assert.False(t, q.Answered(1))
	q.Player1Answer = "something"
	assert.True(t, q.Answered(1))
	assert.False(t, q.Answered(2))
}
