package handlers

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"quipwit/internal/game"
	"quipwit/internal/store"
)

// Inbound event names. Everything the clients send arrives through these.
const (
	evCreateRoom      = "create_room"
	evJoinRoom        = "join_room"
	evRejoin          = "rejoin"
	evRejoinHost      = "rejoin_host"
	evStartGame       = "start_game"
	evSubmitAnswer    = "submit_answer"
	evSubmitVote      = "submit_vote"
	evSubmitLLVotes   = "submit_last_lash_votes"
	evContinueLastWit = "continue_last_wit"
	evSkipPlayer      = "skip_player"
	evKickPlayer      = "kick_player"
	evPauseGame       = "pause_game"
	evResumeGame      = "resume_game"
	evExtendTime      = "extend_time"
	evEndGame         = "end_game"
)

type joinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type rejoinPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type rejoinHostPayload struct {
	RoomCode string `json:"roomCode"`
	HostID   string `json:"hostId"`
}

type startGamePayload struct {
	RoomCode string `json:"roomCode"`
	Theme    string `json:"theme"`
}

type answerPayload struct {
	RoomCode   string `json:"roomCode"`
	PromptID   string `json:"promptId"`
	Answer     string `json:"answer"`
	IsLastLash bool   `json:"isLastLash"`
}

type votePayload struct {
	RoomCode string `json:"roomCode"`
	PromptID string `json:"promptId"`
	Vote     int    `json:"vote"`
}

type lastLashVotesPayload struct {
	RoomCode string   `json:"roomCode"`
	Votes    []string `json:"votes"`
}

type targetPlayerPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type extendTimePayload struct {
	RoomCode string `json:"roomCode"`
	Seconds  int    `json:"seconds"`
}

type roomPayload struct {
	RoomCode string `json:"roomCode"`
}

// HandleEvent dispatches one inbound event. Failures go back to the sending
// connection as an ERROR event; the room is never told.
func (h *Handler) HandleEvent(connID, event string, data json.RawMessage) {
	var err error
	switch event {
	case evCreateRoom:
		err = h.createRoom(connID)
	case evJoinRoom:
		err = h.joinRoom(connID, data)
	case evRejoin:
		err = h.rejoinPlayer(connID, data)
	case evRejoinHost:
		err = h.rejoinHost(connID, data)
	case evStartGame:
		err = h.startGame(connID, data)
	case evSubmitAnswer:
		err = h.submitAnswer(connID, data)
	case evSubmitVote:
		err = h.submitVote(connID, data)
	case evSubmitLLVotes:
		err = h.submitLastLashVotes(connID, data)
	case evContinueLastWit:
		err = h.hostAction(connID, data, h.engine.ContinueLastWit)
	case evSkipPlayer:
		err = h.skipPlayer(connID, data)
	case evKickPlayer:
		err = h.kickPlayer(connID, data)
	case evPauseGame:
		err = h.hostAction(connID, data, h.engine.PauseGame)
	case evResumeGame:
		err = h.hostAction(connID, data, h.engine.ResumeGame)
	case evExtendTime:
		err = h.extendTime(connID, data)
	case evEndGame:
		err = h.hostAction(connID, data, h.engine.EndGame)
	default:
		h.log.Warn("unknown event", "event", event, "conn", connID)
		return
	}
	if err != nil {
		h.emitError(connID, err)
	}
}

// HandleDisconnect fires when a connection drops. Players are marked
// disconnected but stay in the game; a host leaving a finished game takes the
// room with them.
func (h *Handler) HandleDisconnect(connID string) {
	room, role, player, ok := h.registry.FindByConnection(connID)
	if !ok {
		return
	}
	h.registry.Forget(connID)

	switch role {
	case store.RoleHost:
		h.engine.HostDisconnected(room)
		if room.CurrentState() == game.StateGameOver {
			h.registry.DeleteRoom(room.Code)
		}
	case store.RolePlayer:
		if player != nil {
			h.engine.PlayerDisconnected(room, player.ID)
		}
	}
}

func (h *Handler) createRoom(connID string) error {
	hostID := uuid.NewString()
	room := h.registry.CreateRoom(connID, hostID)
	h.hub.JoinRoom(connID, room.Code)

	joinURL := h.joinURL(room.Code)
	qr, err := qrDataURI(joinURL)
	if err != nil {
		// The code itself still works; the host just types it out.
		h.log.Warn("qr code generation failed", "room", room.Code, "error", err)
	}

	h.hub.EmitToConn(connID, game.EvRoomCreated, map[string]any{
		"roomCode":  room.Code,
		"hostId":    hostID,
		"joinUrl":   joinURL,
		"qrCode":    qr,
		"addresses": localAddresses(),
	})
	return nil
}

func (h *Handler) joinRoom(connID string, data json.RawMessage) error {
	var p joinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errBadPayload
	}
	name := strings.TrimSpace(p.PlayerName)
	if name == "" || utf8.RuneCountInString(name) > game.MaxNameLength {
		return game.ErrInvalidName
	}

	room, player, err := h.registry.AddPlayer(p.RoomCode, uuid.NewString(), name, connID)
	if err != nil {
		return err
	}
	h.hub.JoinRoom(connID, room.Code)

	h.hub.EmitToConn(connID, game.EvRoomJoined, map[string]any{
		"roomCode": room.Code,
		"playerId": player.ID,
		"name":     player.Name,
	})
	h.hub.EmitToRoom(room.Code, game.EvRoomUpdate, room.Snapshot())
	h.log.Info("player joined", "room", room.Code, "player", player.Name)
	return nil
}

func (h *Handler) rejoinPlayer(connID string, data json.RawMessage) error {
	var p rejoinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errBadPayload
	}
	room, player, err := h.registry.UpdatePlayerConnection(p.RoomCode, p.PlayerID, connID)
	if err != nil {
		return err
	}
	h.hub.JoinRoom(connID, room.Code)
	h.engine.RejoinPlayer(room, player)
	return nil
}

func (h *Handler) rejoinHost(connID string, data json.RawMessage) error {
	var p rejoinHostPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errBadPayload
	}
	room, err := h.registry.UpdateHostConnection(p.RoomCode, p.HostID, connID)
	if err != nil {
		return err
	}
	h.hub.JoinRoom(connID, room.Code)
	h.engine.RejoinHost(room)
	return nil
}

func (h *Handler) startGame(connID string, data json.RawMessage) error {
	var p startGamePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errBadPayload
	}
	room, err := h.registry.GetRoom(p.RoomCode)
	if err != nil {
		return err
	}
	return h.engine.StartGame(room, connID, p.Theme)
}

func (h *Handler) submitAnswer(connID string, data json.RawMessage) error {
	var p answerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errBadPayload
	}
	room, player, err := h.actingPlayer(connID, p.RoomCode)
	if err != nil {
		return err
	}
	if p.IsLastLash {
		return h.engine.SubmitLastLashAnswer(room, player, p.Answer)
	}
	return h.engine.SubmitAnswer(room, player, p.PromptID, p.Answer)
}

func (h *Handler) submitVote(connID string, data json.RawMessage) error {
	var p votePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errBadPayload
	}
	room, player, err := h.actingPlayer(connID, p.RoomCode)
	if err != nil {
		return err
	}
	return h.engine.SubmitVote(room, player, p.PromptID, p.Vote)
}

func (h *Handler) submitLastLashVotes(connID string, data json.RawMessage) error {
	var p lastLashVotesPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errBadPayload
	}
	room, player, err := h.actingPlayer(connID, p.RoomCode)
	if err != nil {
		return err
	}
	return h.engine.SubmitLastLashVotes(room, player, p.Votes)
}

func (h *Handler) skipPlayer(connID string, data json.RawMessage) error {
	var p targetPlayerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errBadPayload
	}
	room, err := h.registry.GetRoom(p.RoomCode)
	if err != nil {
		return err
	}
	return h.engine.SkipPlayer(room, connID, p.PlayerID)
}

func (h *Handler) kickPlayer(connID string, data json.RawMessage) error {
	var p targetPlayerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errBadPayload
	}
	room, err := h.registry.GetRoom(p.RoomCode)
	if err != nil {
		return err
	}
	kicked, err := h.engine.KickPlayer(room, connID, p.PlayerID)
	if err != nil {
		return err
	}
	if kicked.ConnectionID != "" {
		h.registry.Forget(kicked.ConnectionID)
		h.hub.LeaveRoom(kicked.ConnectionID, room.Code)
	}
	return nil
}

func (h *Handler) extendTime(connID string, data json.RawMessage) error {
	var p extendTimePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errBadPayload
	}
	room, err := h.registry.GetRoom(p.RoomCode)
	if err != nil {
		return err
	}
	return h.engine.ExtendTime(room, connID, p.Seconds)
}

// hostAction covers the host controls that only need the room and the calling
// connection.
func (h *Handler) hostAction(connID string, data json.RawMessage, fn func(*game.Room, string) error) error {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errBadPayload
	}
	room, err := h.registry.GetRoom(p.RoomCode)
	if err != nil {
		return err
	}
	return fn(room, connID)
}
