// Package state provides SQLite-based persistence for Stride.
package state

import "io"

// SessionStore handles session-related persistence operations.
type SessionStore interface {
	CreateSession(s *Session) error
	GetSession(id string) (*Session, error)
	GetActiveSession() (*Session, error)
	FinishSession(id, status string) error
	ListSessions(limit int) ([]Session, error)
}

// JournalStore records phase and item outcomes for a session.
type JournalStore interface {
	RecordPhase(r *PhaseRecord) error
	ListPhases(sessionID string) ([]PhaseRecord, error)
	RecordItem(r *ItemRecord) error
	ListItems(sessionID string) ([]ItemRecord, error)
}

// Migrator handles database schema migrations.
// Separating this allows clients to depend only on migration functionality.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// Store defines the interface for state persistence. The run loop works
// against this interface rather than the concrete SQLite implementation.
type Store interface {
	io.Closer
	Migrator
	SessionStore
	JournalStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ Store        = (*DB)(nil)
	_ Migrator     = (*DB)(nil)
	_ SessionStore = (*DB)(nil)
	_ JournalStore = (*DB)(nil)
)
