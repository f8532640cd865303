// Package workspace keeps the per-browser state of the web UI: the uploaded
// question bank, the current test and its last scored report.
package workspace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pavelanni/testgen/internal/model"
	"github.com/pavelanni/testgen/internal/quiz"
)

// ErrNoSession is returned when an operation needs a generated test.
var ErrNoSession = errors.New("no test has been generated")

// Workspace is the state of one browser. All access goes through its methods,
// which serialise on mu.
type Workspace struct {
	ID string

	mu       sync.Mutex
	table    *model.Table
	session  *quiz.Session
	report   *model.Report
	lastSeen time.Time
}

// Table returns the loaded question bank, or nil.
func (w *Workspace) Table() *model.Table {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.table
}

// SetTable replaces the question bank and discards the current test and report.
func (w *Workspace) SetTable(t *model.Table) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.table = t
	w.session = nil
	w.report = nil
}

// Session returns the current test, or nil.
func (w *Workspace) Session() *quiz.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

// StartSession replaces the current test; a nil session just discards it.
// The previous report is discarded either way.
func (w *Workspace) StartSession(s *quiz.Session) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session = s
	w.report = nil
}

// WithSession runs fn on the current test while holding the workspace lock.
func (w *Workspace) WithSession(fn func(*quiz.Session) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session == nil {
		return ErrNoSession
	}
	return fn(w.session)
}

// Report returns the last scored report, or nil.
func (w *Workspace) Report() *model.Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.report
}

// SetReport stores a scored report.
func (w *Workspace) SetReport(r *model.Report) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.report = r
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Registry maps workspace tokens to workspaces.
type Registry struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace
	now        func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		workspaces: make(map[string]*Workspace),
		now:        time.Now,
	}
}

// Create registers a fresh workspace under a random token.
func (r *Registry) Create() (*Workspace, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	ws := &Workspace{ID: token, lastSeen: r.now()}
	r.mu.Lock()
	r.workspaces[token] = ws
	r.mu.Unlock()
	slog.Debug("created workspace", "workspace", token[:8])
	return ws, nil
}

// Get returns the workspace for token and marks it as used, or nil if unknown.
func (r *Registry) Get(token string) *Workspace {
	r.mu.Lock()
	ws := r.workspaces[token]
	r.mu.Unlock()
	if ws != nil {
		ws.touch(r.now())
	}
	return ws
}

// Delete removes a workspace.
func (r *Registry) Delete(token string) {
	r.mu.Lock()
	delete(r.workspaces, token)
	r.mu.Unlock()
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// CleanupExpired removes workspaces idle for longer than ttl and returns how
// many were removed.
func (r *Registry) CleanupExpired(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for token, ws := range r.workspaces {
		if ws.idleSince().Before(cutoff) {
			delete(r.workspaces, token)
			removed++
		}
	}
	return removed
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

type ctxKey struct{}

// NewContext stores a workspace in the request context.
func NewContext(ctx context.Context, ws *Workspace) context.Context {
	return context.WithValue(ctx, ctxKey{}, ws)
}

// FromContext retrieves the workspace from context, or nil.
func FromContext(ctx context.Context) *Workspace {
	ws, _ := ctx.Value(ctxKey{}).(*Workspace)
	return ws
}
