// Package session holds the client-side state of the interview in progress.
package session

import (
	"fmt"
	"sync"

	"github.com/jonathan/excel-interviewer/internal/types"
)

// InvariantError reports a snapshot that would break the session's invariants.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("session invariant violated: %s", e.Message)
}

// Record is a finished session kept in history.
type Record struct {
	ID            string
	CandidateName string
	Snapshot      *types.InterviewSession
}

// Context is the explicitly passed session state. The zero value is not usable; call New.
type Context struct {
	mu            sync.RWMutex
	id            string
	candidateName string
	snapshot      *types.InterviewSession
	draft         string
	timer         *Timer
	history       []Record
}

// New creates an empty Context. clock may be nil to use the wall clock.
func New(clock Clock) *Context {
	return &Context{timer: NewTimer(clock)}
}

// Begin makes start the active session, clearing the draft, the snapshot and the timer.
func (c *Context) Begin(start types.StartInterviewResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = start.InterviewID
	c.candidateName = start.CandidateName
	c.snapshot = nil
	c.draft = ""
	c.timer.Stop()
}

// ActiveID returns the id of the active session, or "" when there is none.
func (c *Context) ActiveID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

// CandidateName returns the candidate name of the active session.
func (c *Context) CandidateName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.candidateName
}

// Draft returns the answer being composed.
func (c *Context) Draft() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draft
}

// SetDraft replaces the answer being composed.
func (c *Context) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// ClearDraft empties the answer being composed.
func (c *Context) ClearDraft() {
	c.SetDraft("")
}

// Timer returns the per-question timer.
func (c *Context) Timer() *Timer {
	return c.timer
}

// Snapshot returns a copy of the last applied snapshot, or nil.
func (c *Context) Snapshot() *types.InterviewSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return nil
	}
	cp := *c.snapshot
	return &cp
}

// Apply replaces the stored snapshot wholesale. The previous snapshot is kept when next
// would move progress past the total, move status backwards, or belongs to another session.
func (c *Context) Apply(next types.InterviewSession) error {
	if next.Progress.Current < 0 || next.Progress.Current > next.Progress.Total {
		return &InvariantError{Message: fmt.Sprintf("progress %d/%d out of range",
			next.Progress.Current, next.Progress.Total)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.id != "" && next.ID != "" && next.ID != c.id {
		return &InvariantError{Message: fmt.Sprintf("snapshot for %s applied to session %s", next.ID, c.id)}
	}
	if prev := c.snapshot; prev != nil && prev.Status.Terminal() && prev.Status != next.Status {
		return &InvariantError{Message: fmt.Sprintf("status cannot change from %s to %s", prev.Status, next.Status)}
	}

	if c.id == "" {
		c.id = next.ID
	}
	if next.CandidateName != "" {
		c.candidateName = next.CandidateName
	}
	c.snapshot = &next
	return nil
}

// Finish moves the active session into history and clears it.
func (c *Context) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id == "" {
		return
	}
	c.history = append(c.history, Record{ID: c.id, CandidateName: c.candidateName, Snapshot: c.snapshot})
	c.clearActiveLocked()
}

// History returns finished sessions, oldest first.
func (c *Context) History() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Record, len(c.history))
	copy(out, c.history)
	return out
}

// Reset returns the context to its initial state, history included.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearActiveLocked()
	c.history = nil
}

func (c *Context) clearActiveLocked() {
	c.id = ""
	c.candidateName = ""
	c.snapshot = nil
	c.draft = ""
	c.timer.Stop()
}
