// Package handlers owns the server's inbound surface: the websocket event
// dispatcher the game runs over, and the small HTTP API around it (network
// discovery, API key management, health).
package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"quipwit/internal/config"
	"quipwit/internal/game"
	"quipwit/internal/prompts"
	"quipwit/internal/store"
	"quipwit/internal/ws"
)

// Handler wires the transport to the registry and the engine.
type Handler struct {
	cfg      *config.ServerConfig
	registry *store.Registry
	engine   *game.Engine
	hub      *ws.Hub
	keys     *config.APIKeyStore
	source   *prompts.Fallback
	log      *slog.Logger
}

func NewHandler(cfg *config.ServerConfig, registry *store.Registry, engine *game.Engine, hub *ws.Hub, keys *config.APIKeyStore, source *prompts.Fallback, log *slog.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		registry: registry,
		engine:   engine,
		hub:      hub,
		keys:     keys,
		source:   source,
		log:      log,
	}
}

var errBadPayload = &game.Error{Code: "BAD_PAYLOAD", Message: "malformed event payload"}

// emitError reports a failed action back to the offending connection only.
func (h *Handler) emitError(connID string, err error) {
	var gerr *game.Error
	if errors.As(err, &gerr) {
		h.hub.EmitToConn(connID, game.EvError, map[string]any{
			"code":    gerr.Code,
			"message": gerr.Message,
		})
		return
	}
	h.log.Error("unexpected handler error", "conn", connID, "error", err)
	h.hub.EmitToConn(connID, game.EvError, map[string]any{
		"code":    "INTERNAL",
		"message": "something went wrong",
	})
}

// actingPlayer resolves a connection to the player it belongs to, checking it
// against the room code the client claims to act in.
func (h *Handler) actingPlayer(connID, roomCode string) (*game.Room, *game.Player, error) {
	room, role, player, ok := h.registry.FindByConnection(connID)
	if !ok || role != store.RolePlayer || player == nil {
		return nil, nil, game.ErrNotInRoom
	}
	if roomCode != "" && !strings.EqualFold(room.Code, roomCode) {
		return nil, nil, game.ErrNotInRoom
	}
	return room, player, nil
}
