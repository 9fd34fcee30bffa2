package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"time"

	"quipwit/internal/prompts"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// HostPage serves the host screen.
func (h *Handler) HostPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.cfg.Server.StaticDir, "host.html"))
}

// PlayPage serves the player screen.
func (h *Handler) PlayPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.cfg.Server.StaticDir, "play.html"))
}

// Network reports the LAN addresses and port players can connect on.
func (h *Handler) Network(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"addresses": localAddresses(),
		"port":      h.cfg.Server.Port,
	})
}

// ConfigStatus reports whether AI prompt generation is available. The key
// itself is never echoed back.
func (h *Handler) ConfigStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"hasApiKey":   h.keys.HasAPIKey(),
		"aiAvailable": h.source.HasPrimary(),
	})
}

// SetAPIKey stores an Anthropic API key and swaps the prompt source over to
// the live API immediately.
func (h *Handler) SetAPIKey(w http.ResponseWriter, r *http.Request) {
	var p struct {
		APIKey  string `json:"apiKey"`
		Persist bool   `json:"persist"`
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed request body"})
		return
	}
	if err := h.keys.SetAPIKey(p.APIKey, p.Persist); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	h.source.SetPrimary(prompts.NewAnthropicSource(h.keys.GetAPIKey()))
	h.log.Info("api key configured", "persisted", p.Persist)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// TestAPIKey checks a key against the live API: the one in the request body
// if present, otherwise the stored one.
func (h *Handler) TestAPIKey(w http.ResponseWriter, r *http.Request) {
	var p struct {
		APIKey string `json:"apiKey"`
	}
	// Body is optional; absence means test the stored key.
	json.NewDecoder(r.Body).Decode(&p)

	key := p.APIKey
	if key == "" {
		key = h.keys.GetAPIKey()
	}
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"valid": false, "error": "no api key configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := prompts.NewAnthropicSource(key).Validate(ctx); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}

// Ready reports liveness plus how many rooms are being hosted.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"rooms":  h.registry.RoomCount(),
	})
}
