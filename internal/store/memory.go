// Package store holds the process-wide room registry. Rooms are memory-only;
// a periodic sweeper reaps rooms past their age limit.
package store

import (
	"crypto/rand"
	"log/slog"
	"strings"
	"sync"
	"time"

	"quipwit/internal/game"
)

// Role describes what a connection is to its room.
type Role string

const (
	RoleHost   Role = "host"
	RolePlayer Role = "player"
)

type connRef struct {
	code     string
	role     Role
	playerID string
}

// Registry maps room codes to rooms and transport connections to their room
// and role. Codes are stored uppercase; lookups are case-insensitive.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*game.Room
	byConn   map[string]connRef
	onDelete func(code string)
	log      *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		rooms:  make(map[string]*game.Room),
		byConn: make(map[string]connRef),
		log:    log,
	}
}

// OnDelete registers a hook run after a room is removed, used to tear down
// transport-level room membership. Set once at wiring time.
func (s *Registry) OnDelete(fn func(code string)) { s.onDelete = fn }

// CreateRoom allocates a fresh code by rejection sampling and registers the
// host connection.
func (s *Registry) CreateRoom(hostConnID, hostID string) *game.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := generateRoomCode()
	for _, taken := s.rooms[code]; taken; _, taken = s.rooms[code] {
		code = generateRoomCode()
	}

	room := game.NewRoom(code, hostConnID, hostID)
	s.rooms[code] = room
	s.byConn[hostConnID] = connRef{code: code, role: RoleHost}
	s.log.Info("room created", "room", code)
	return room
}

// GetRoom looks a room up case-insensitively.
func (s *Registry) GetRoom(code string) (*game.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[strings.ToUpper(code)]
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	return room, nil
}

// AddPlayer admits a player into a lobby and indexes their connection.
func (s *Registry) AddPlayer(code, playerID, name, connID string) (*game.Room, *game.Player, error) {
	room, err := s.GetRoom(code)
	if err != nil {
		return nil, nil, err
	}

	player := game.NewPlayer(playerID, name, connID)
	if err := room.AddPlayer(player); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	s.byConn[connID] = connRef{code: room.Code, role: RolePlayer, playerID: playerID}
	s.mu.Unlock()
	return room, player, nil
}

// RemovePlayer deletes a player from their room and drops the connection
// index entry.
func (s *Registry) RemovePlayer(code, playerID string) {
	room, err := s.GetRoom(code)
	if err != nil {
		return
	}
	if p := room.RemovePlayer(playerID); p != nil && p.ConnectionID != "" {
		s.mu.Lock()
		delete(s.byConn, p.ConnectionID)
		s.mu.Unlock()
	}
}

// MarkPlayerDisconnected flags the player detached without forgetting them.
func (s *Registry) MarkPlayerDisconnected(code, playerID string) {
	if room, err := s.GetRoom(code); err == nil {
		if p := room.GetPlayer(playerID); p != nil && p.ConnectionID != "" {
			s.mu.Lock()
			delete(s.byConn, p.ConnectionID)
			s.mu.Unlock()
		}
		room.MarkDisconnected(playerID)
	}
}

// UpdatePlayerConnection rebinds a reconnecting player and re-indexes the new
// connection.
func (s *Registry) UpdatePlayerConnection(code, playerID, connID string) (*game.Room, *game.Player, error) {
	room, err := s.GetRoom(code)
	if err != nil {
		return nil, nil, err
	}
	p := room.GetPlayer(playerID)
	if p == nil {
		return nil, nil, game.ErrPlayerNotFound
	}

	s.mu.Lock()
	if p.ConnectionID != "" {
		delete(s.byConn, p.ConnectionID)
	}
	s.byConn[connID] = connRef{code: room.Code, role: RolePlayer, playerID: playerID}
	s.mu.Unlock()

	if err := room.BindConnection(playerID, connID); err != nil {
		return nil, nil, err
	}
	return room, p, nil
}

// UpdateHostConnection rebinds the host, permitted only when hostID matches.
func (s *Registry) UpdateHostConnection(code, hostID, connID string) (*game.Room, error) {
	room, err := s.GetRoom(code)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if room.HostConnectionID != "" {
		delete(s.byConn, room.HostConnectionID)
	}
	s.mu.Unlock()

	if err := room.BindHostConnection(hostID, connID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.byConn[connID] = connRef{code: room.Code, role: RoleHost}
	s.mu.Unlock()
	return room, nil
}

// FindByConnection resolves a connection to its room, role, and player.
func (s *Registry) FindByConnection(connID string) (*game.Room, Role, *game.Player, bool) {
	s.mu.RLock()
	ref, ok := s.byConn[connID]
	s.mu.RUnlock()
	if !ok {
		return nil, "", nil, false
	}

	room, err := s.GetRoom(ref.code)
	if err != nil {
		return nil, "", nil, false
	}
	if ref.role == RolePlayer {
		return room, RolePlayer, room.GetPlayer(ref.playerID), true
	}
	return room, RoleHost, nil, true
}

// Forget drops a connection from the reverse index without touching the room.
func (s *Registry) Forget(connID string) {
	s.mu.Lock()
	delete(s.byConn, connID)
	s.mu.Unlock()
}

// DeleteRoom removes a room and every index entry pointing at it. The room's
// countdown is stopped so a reaped mid-game room goes quiet immediately.
func (s *Registry) DeleteRoom(code string) {
	code = strings.ToUpper(code)
	s.mu.Lock()
	room, ok := s.rooms[code]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.rooms, code)
	for connID, ref := range s.byConn {
		if ref.code == code {
			delete(s.byConn, connID)
		}
	}
	s.mu.Unlock()

	room.StopTimers()
	if s.onDelete != nil {
		s.onDelete(code)
	}
	s.log.Info("room deleted", "room", code)
}

// RoomCount reports how many rooms are live.
func (s *Registry) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// CleanupOlderThan reaps rooms past the age limit; returns how many fell.
func (s *Registry) CleanupOlderThan(maxAge time.Duration) int {
	s.mu.RLock()
	stale := make([]string, 0)
	for code, room := range s.rooms {
		if time.Since(room.CreatedAt) > maxAge {
			stale = append(stale, code)
		}
	}
	s.mu.RUnlock()

	for _, code := range stale {
		s.DeleteRoom(code)
	}
	if len(stale) > 0 {
		s.log.Info("reaped stale rooms", "count", len(stale))
	}
	return len(stale)
}

// StartSweeper reaps on the given cadence until stop is closed.
func (s *Registry) StartSweeper(interval, maxAge time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.CleanupOlderThan(maxAge)
			}
		}
	}()
}

// generateRoomCode draws four uppercase letters.
func generateRoomCode() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, game.RoomCodeLength)
	rand.Read(b)
	for i := range b {
		b[i] = letters[b[i]%byte(len(letters))]
	}
	return string(b)
}
