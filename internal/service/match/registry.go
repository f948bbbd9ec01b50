package match

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
)

// LiveMatch is the spectator view of a match still being played.
type LiveMatch struct {
	ID        string          `json:"match_id"`
	Variant   domain.Variant  `json:"variant"`
	Agents    [2]string       `json:"agents"`
	Moves     int             `json:"moves"`
	Board     domain.Snapshot `json:"board"`
	StartedAt time.Time       `json:"started_at"`
}

type liveEntry struct {
	match  LiveMatch
	cancel context.CancelFunc
}

// Registry tracks matches in flight so they can be listed and cancelled.
type Registry struct {
	matches map[string]*liveEntry // matchID → entry
	mu      sync.RWMutex
	logger  *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		matches: make(map[string]*liveEntry),
		logger:  logger,
	}
}

func (r *Registry) add(m LiveMatch, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.matches[m.ID] = &liveEntry{match: m, cancel: cancel}
	r.logger.Debug("live match registered", zap.String("match_id", m.ID),
		zap.String("p1", m.Agents[0]), zap.String("p2", m.Agents[1]))
}

func (r *Registry) update(id string, moves int, board domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.matches[id]; ok {
		e.match.Moves = moves
		e.match.Board = board
	}
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.matches, id)
}

func (r *Registry) Get(id string) (LiveMatch, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.matches[id]
	if !ok {
		return LiveMatch{}, false
	}
	return e.match, true
}

// List returns the live matches, oldest first.
func (r *Registry) List() []LiveMatch {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]LiveMatch, 0, len(r.matches))
	for _, e := range r.matches {
		out = append(out, e.match)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

// Cancel aborts a live match. It reports false when no such match is running.
func (r *Registry) Cancel(id string) bool {
	r.mu.RLock()
	e, ok := r.matches[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	r.logger.Info("cancelling live match", zap.String("match_id", id))
	e.cancel()
	return true
}

// CancelAll aborts every live match; used on shutdown.
func (r *Registry) CancelAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.matches {
		e.cancel()
	}
}
