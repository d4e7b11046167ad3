package store

import (
	"errors"

	"sjsage522/hotdealbot/internal/deal"
)

// ErrInvalidStatus is returned when an insert carries a status outside the
// four known values.
var ErrInvalidStatus = errors.New("invalid deal status")

// DealStore persists every deal ever seen, keyed by URL, and drives triage
// through the status field.
type DealStore interface {
	// Exists reports whether a deal with the given URL has been persisted,
	// regardless of status. Callers must check this before scoring: scoring
	// is the expensive step.
	Exists(url string) (bool, error)

	// Insert persists a new deal and returns its surrogate id. A duplicate
	// URL is a normal negative result (inserted=false), not an error, and
	// never overwrites the stored record.
	Insert(url, title string, finalPrice int, totalScore float64, status deal.Status) (id uint64, inserted bool, err error)

	// SetStatus updates the status of an existing deal. Returns false when
	// the status is not one of the four known values or no deal with that id
	// exists; stored state is untouched in either case.
	SetStatus(id uint64, status deal.Status) (bool, error)

	// ListByStatus returns all deals with the given status, newest first.
	ListByStatus(status deal.Status) ([]deal.Deal, error)

	// Close releases the underlying database.
	Close() error
}
