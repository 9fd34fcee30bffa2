package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quipwit/internal/game"
	"quipwit/internal/ws"
)

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, c *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, c.WriteJSON(ws.Envelope{Event: event, Data: raw}))
}

// readEvent drains the connection until the wanted event arrives.
func readEvent(t *testing.T, c *websocket.Conn, want string) map[string]any {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var env ws.Envelope
		require.NoError(t, c.ReadJSON(&env), "waiting for %s", want)
		if env.Event != want {
			continue
		}
		var data map[string]any
		if len(env.Data) > 0 {
			require.NoError(t, json.Unmarshal(env.Data, &data))
		}
		return data
	}
}

func TestCreateRoomOverSocket(t *testing.T) {
	srv, h := newTestServer(t)
	host := dialWS(t, srv)

	send(t, host, "create_room", map[string]any{})
	created := readEvent(t, host, game.EvRoomCreated)

	code := created["roomCode"].(string)
	assert.Len(t, code, game.RoomCodeLength)
	assert.NotEmpty(t, created["hostId"])
	assert.Contains(t, created["joinUrl"].(string), "code="+code)
	if qr, _ := created["qrCode"].(string); qr != "" {
		assert.True(t, strings.HasPrefix(qr, "data:image/png;base64,"))
	}
	assert.Equal(t, 1, h.registry.RoomCount())
}

func TestJoinRoomErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	player := dialWS(t, srv)

	send(t, player, "join_room", map[string]any{"roomCode": "ZZZZ", "playerName": "Alice"})
	errData := readEvent(t, player, game.EvError)
	assert.Equal(t, "ROOM_NOT_FOUND", errData["code"])

	send(t, player, "join_room", map[string]any{"roomCode": "ZZZZ", "playerName": "   "})
	errData = readEvent(t, player, game.EvError)
	assert.Equal(t, "INVALID_NAME", errData["code"])
}

func TestJoinRoomMultibyteName(t *testing.T) {
	srv, _ := newTestServer(t)

	host := dialWS(t, srv)
	send(t, host, "create_room", map[string]any{})
	created := readEvent(t, host, game.EvRoomCreated)
	code := created["roomCode"].(string)

	// Eight two-byte runes: over the limit in bytes, well under it in
	// characters.
	name := strings.Repeat("ö", 8)
	player := dialWS(t, srv)
	send(t, player, "join_room", map[string]any{"roomCode": code, "playerName": name})
	joined := readEvent(t, player, game.EvRoomJoined)
	assert.Equal(t, name, joined["name"])

	tooLong := dialWS(t, srv)
	send(t, tooLong, "join_room", map[string]any{"roomCode": code, "playerName": strings.Repeat("ö", 16)})
	errData := readEvent(t, tooLong, game.EvError)
	assert.Equal(t, "INVALID_NAME", errData["code"])
}

func TestFullGameSetupOverSocket(t *testing.T) {
	srv, _ := newTestServer(t)

	host := dialWS(t, srv)
	send(t, host, "create_room", map[string]any{})
	created := readEvent(t, host, game.EvRoomCreated)
	code := created["roomCode"].(string)

	players := make([]*websocket.Conn, 3)
	for i, name := range []string{"Alice", "Bob", "Carol"} {
		players[i] = dialWS(t, srv)
		send(t, players[i], "join_room", map[string]any{"roomCode": code, "playerName": name})
		joined := readEvent(t, players[i], game.EvRoomJoined)
		assert.Equal(t, name, joined["name"])
		assert.NotEmpty(t, joined["playerId"])
	}

	// The lobby broadcast reaches the host with the full roster.
	update := readEvent(t, host, game.EvRoomUpdate)
	for len(update["players"].([]any)) < 3 {
		update = readEvent(t, host, game.EvRoomUpdate)
	}

	// A duplicate name is rejected without disturbing the lobby.
	late := dialWS(t, srv)
	send(t, late, "join_room", map[string]any{"roomCode": code, "playerName": "alice"})
	errData := readEvent(t, late, game.EvError)
	assert.Equal(t, "NAME_TAKEN", errData["code"])

	// Only the host can start.
	send(t, players[0], "start_game", map[string]any{"roomCode": code})
	errData = readEvent(t, players[0], game.EvError)
	assert.Equal(t, "NOT_HOST", errData["code"])

	send(t, host, "start_game", map[string]any{"roomCode": code, "theme": "space travel"})
	started := readEvent(t, host, game.EvGameStarted)
	assert.Equal(t, "space travel", started["theme"])

	phase := readEvent(t, host, game.EvPromptPhase)
	assert.EqualValues(t, 1, phase["round"])
	assert.EqualValues(t, 3, phase["playerCount"])

	for _, p := range players {
		received := readEvent(t, p, game.EvReceivePrompts)
		assert.Len(t, received["prompts"].([]any), game.PromptsPerPlayer)
		assert.EqualValues(t, game.AnswerTime, received["timeLimit"])
	}

	// Host ends the game early; everyone sees the result.
	send(t, host, "end_game", map[string]any{"roomCode": code})
	over := readEvent(t, host, game.EvGameOver)
	assert.Contains(t, over, "scoreboard")
	readEvent(t, players[0], game.EvGameOver)
}

func TestRejoinOverSocket(t *testing.T) {
	srv, _ := newTestServer(t)

	host := dialWS(t, srv)
	send(t, host, "create_room", map[string]any{})
	created := readEvent(t, host, game.EvRoomCreated)
	code := created["roomCode"].(string)
	hostID := created["hostId"].(string)

	player := dialWS(t, srv)
	send(t, player, "join_room", map[string]any{"roomCode": code, "playerName": "Alice"})
	joined := readEvent(t, player, game.EvRoomJoined)
	playerID := joined["playerId"].(string)

	// Drop and reconnect the player on a fresh socket.
	player.Close()
	reconnected := dialWS(t, srv)
	send(t, reconnected, "rejoin", map[string]any{"roomCode": code, "playerId": playerID})
	success := readEvent(t, reconnected, game.EvRejoinSuccess)
	assert.Equal(t, playerID, success["playerId"])
	assert.Equal(t, "Alice", success["name"])

	// Host reconnects with the matching identity only.
	host.Close()
	newHost := dialWS(t, srv)
	send(t, newHost, "rejoin_host", map[string]any{"roomCode": code, "hostId": "impostor"})
	errData := readEvent(t, newHost, game.EvError)
	assert.Equal(t, "INVALID_HOST", errData["code"])

	send(t, newHost, "rejoin_host", map[string]any{"roomCode": code, "hostId": hostID})
	success = readEvent(t, newHost, game.EvRejoinHost)
	assert.Equal(t, hostID, success["hostId"])
}
