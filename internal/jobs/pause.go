package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"matric-memory/internal/obslog"
)

const pauseStateConfigKey = "job_pause_state"

// pauseStateJSON is the exact shape persisted at public.system_config
// under key job_pause_state.
type pauseStateJSON struct {
	GlobalPaused   bool      `json:"global_paused"`
	PausedArchives []string  `json:"paused_archives"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PauseState is the two-layer pause mechanism: a lock-free atomic for the
// global flag and an RWMutex-guarded set for per-archive pauses, so every
// claim tick reads without contention. Every mutation writes through to
// public.system_config so state survives a restart.
type PauseState struct {
	global   atomic.Bool
	mu       sync.RWMutex
	archives map[string]struct{}
	pool     *pgxpool.Pool
}

// NewPauseState constructs an empty, unpaused state bound to pool.
func NewPauseState(pool *pgxpool.Pool) *PauseState {
	return &PauseState{
		archives: make(map[string]struct{}),
		pool:     pool,
	}
}

// Load reads the persisted pause state from public.system_config on
// startup. Absence of the row is not an error — the state starts unpaused.
func (p *PauseState) Load(ctx context.Context) error {
	var raw []byte
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM public.system_config WHERE key = $1`, pauseStateConfigKey).Scan(&raw)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		obslog.FromContext(ctx).Info("no persisted job pause state, starting unpaused")
		return nil
	}

	var state pauseStateJSON
	if err := json.Unmarshal(raw, &state); err != nil {
		return err
	}

	p.global.Store(state.GlobalPaused)
	p.mu.Lock()
	p.archives = make(map[string]struct{}, len(state.PausedArchives))
	for _, a := range state.PausedArchives {
		p.archives[a] = struct{}{}
	}
	p.mu.Unlock()
	return nil
}

// IsGloballyPaused is the lock-free read path checked on every claim tick.
func (p *PauseState) IsGloballyPaused() bool {
	return p.global.Load()
}

// pausedList returns a snapshot of the currently paused archive schemas,
// suitable for passing as a query parameter.
func (p *PauseState) pausedList() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.archives))
	for a := range p.archives {
		out = append(out, a)
	}
	return out
}

// IsArchivePaused reports whether schema's job processing is paused.
func (p *PauseState) IsArchivePaused(schema string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, paused := p.archives[schema]
	return paused
}

// SetGlobalPause flips the global flag and persists the new state.
// Pausing does not cancel jobs already running; resuming does not replay
// skipped ticks.
func (p *PauseState) SetGlobalPause(ctx context.Context, paused bool) error {
	p.global.Store(paused)
	return p.persist(ctx)
}

// SetArchivePaused adds or removes schema from the paused set and persists.
func (p *PauseState) SetArchivePaused(ctx context.Context, schema string, paused bool) error {
	p.mu.Lock()
	if paused {
		p.archives[schema] = struct{}{}
	} else {
		delete(p.archives, schema)
	}
	p.mu.Unlock()
	return p.persist(ctx)
}

func (p *PauseState) persist(ctx context.Context) error {
	p.mu.RLock()
	archives := make([]string, 0, len(p.archives))
	for a := range p.archives {
		archives = append(archives, a)
	}
	p.mu.RUnlock()

	state := pauseStateJSON{
		GlobalPaused:   p.global.Load(),
		PausedArchives: archives,
		UpdatedAt:      time.Now(),
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO public.system_config (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, pauseStateConfigKey, raw)
	return err
}
