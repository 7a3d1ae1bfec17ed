// Package service coordinates the repertoire core: line ingestion, tree
// deletion, review scheduling, and user accounts, over a SQLite store.
package service

import (
	"errors"

	"repertoire/internal/scheduler"
	"repertoire/internal/server/storage"
)

// Sentinel errors surfaced to the transport layer. Validation errors carry
// the offending rule; the HTTP handlers map them to status codes.
var (
	ErrStorageDisabled = errors.New("storage disabled")

	ErrEntryNotFound  = errors.New("entry not found")
	ErrEntryForbidden = errors.New("entry belongs to another user")

	ErrEmptyOrMismatchedLine  = errors.New("line must be non-empty with equal SAN and UCI move counts")
	ErrLineEndsOnOpponentMove = errors.New("line must end on the studying color's own move")
	ErrInvalidMoveInLine      = errors.New("line contains an invalid move")
)

// Service coordinates repertoire state, user management, and storage
type Service struct {
	store     *storage.Store
	jwtSecret []byte
	cfg       scheduler.Config
}

// New creates a new service instance with optional storage
func New(store *storage.Store, jwtSecret []byte) *Service {
	return &Service{
		store:     store,
		jwtSecret: jwtSecret,
		cfg:       scheduler.DefaultConfig(),
	}
}

// SchedulerConfig returns the active scheduling tunables.
func (s *Service) SchedulerConfig() scheduler.Config {
	return s.cfg
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Shutdown gracefully shuts down the service
func (s *Service) Shutdown() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
