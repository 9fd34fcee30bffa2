package prompts

import (
	"context"
	"log/slog"
	"sync"
)

// Fallback shadows a remote source with the local generator: on error or a
// short batch it tops up locally, so callers can treat the source as
// infallible. The primary can be swapped at runtime when an API key is
// configured after startup.
type Fallback struct {
	mu      sync.RWMutex
	primary Source
	local   *LocalSource
	log     *slog.Logger
}

// NewFallback wraps primary. A nil primary degrades to local-only.
func NewFallback(primary Source, log *slog.Logger) *Fallback {
	return &Fallback{primary: primary, local: NewLocalSource(), log: log}
}

// SetPrimary replaces the remote source; nil reverts to local-only.
func (f *Fallback) SetPrimary(primary Source) {
	f.mu.Lock()
	f.primary = primary
	f.mu.Unlock()
}

// HasPrimary reports whether a remote source is configured.
func (f *Fallback) HasPrimary() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.primary != nil
}

func (f *Fallback) currentPrimary() Source {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.primary
}

func (f *Fallback) GeneratePrompts(ctx context.Context, count int, seen map[string]struct{}, theme string) ([]string, error) {
	var out []string
	if primary := f.currentPrimary(); primary != nil {
		var err error
		out, err = primary.GeneratePrompts(ctx, count, seen, theme)
		if err != nil {
			f.log.Warn("remote prompt generation failed, falling back", "error", err, "have", len(out))
		}
	}
	if len(out) < count {
		extra, _ := f.local.GeneratePrompts(ctx, count-len(out), seen, theme)
		out = append(out, extra...)
	}
	return out, nil
}

func (f *Fallback) GenerateLastLash(ctx context.Context, seen map[string]struct{}, theme string) (Finale, error) {
	if primary := f.currentPrimary(); primary != nil {
		finale, err := primary.GenerateLastLash(ctx, seen, theme)
		if err == nil {
			return finale, nil
		}
		f.log.Warn("remote finale generation failed, falling back", "error", err)
	}
	return f.local.GenerateLastLash(ctx, seen, theme)
}
