package services

import (
	"sync"

	"github.com/google/uuid"
)

// ConfirmAction names a destructive operation guarded by two-step
// confirmation.
type ConfirmAction string

const (
	ActionDeleteEntry ConfirmAction = "delete_entry"
	ActionDeleteUser  ConfirmAction = "delete_user"
)

// pendingKey scopes a pending confirmation to one session, one action and
// one target, so switching targets while a confirmation is pending can
// never apply the old confirmation to the new target.
type pendingKey struct {
	session uuid.UUID
	action  ConfirmAction
	target  uuid.UUID
}

// ConfirmGuard tracks armed delete confirmations per session. Each guarded
// operation moves Idle -> PendingConfirm on Request, then back to Idle on
// Confirm or Cancel. State is in-memory only; it is per connected session
// and discarded on logout.
type ConfirmGuard struct {
	mu      sync.Mutex
	pending map[pendingKey]struct{}
}

func NewConfirmGuard() *ConfirmGuard {
	return &ConfirmGuard{pending: make(map[pendingKey]struct{})}
}

// Request arms a confirmation for the target. Arming is idempotent.
func (g *ConfirmGuard) Request(session uuid.UUID, action ConfirmAction, target uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending[pendingKey{session, action, target}] = struct{}{}
}

// Confirm consumes an armed confirmation and reports whether one was
// pending for exactly this target. The caller executes the operation only
// on true.
func (g *ConfirmGuard) Confirm(session uuid.UUID, action ConfirmAction, target uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := pendingKey{session, action, target}
	if _, ok := g.pending[key]; !ok {
		return false
	}
	delete(g.pending, key)
	return true
}

// Cancel disarms a pending confirmation, if any.
func (g *ConfirmGuard) Cancel(session uuid.UUID, action ConfirmAction, target uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, pendingKey{session, action, target})
}

// Pending reports whether a confirmation is armed for the target.
func (g *ConfirmGuard) Pending(session uuid.UUID, action ConfirmAction, target uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.pending[pendingKey{session, action, target}]
	return ok
}

// ClearSession drops every pending confirmation belonging to a session.
// Called on logout so a fresh login starts with no armed state.
func (g *ConfirmGuard) ClearSession(session uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key := range g.pending {
		if key.session == session {
			delete(g.pending, key)
		}
	}
}
