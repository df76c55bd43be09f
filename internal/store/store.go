package store

import (
	"errors"

	"github.com/roamline/staykeeper/internal/models"
)

// ErrNoDraft is returned by LoadDraft when no draft is stored.
var ErrNoDraft = errors.New("no draft reservation stored")

// ErrMalformedDraft is returned when a stored draft fails schema validation.
// The offending row is cleared before the error is returned, so a retry
// observes an empty slot.
var ErrMalformedDraft = errors.New("stored draft is malformed")

// Store defines the interface for local persistence operations.
type Store interface {
	// Draft slot methods. At most one draft exists; SaveDraft replaces
	// any prior one unconditionally and ClearDraft is idempotent.
	SaveDraft(draft *models.DraftReservation) error
	LoadDraft() (*models.DraftReservation, error)
	ClearDraft() error

	// Confirmed-list cache methods. ReplaceConfirmed swaps the whole
	// cached list for the latest remote snapshot.
	ReplaceConfirmed(reservations []*models.ConfirmedReservation) error
	ListConfirmed() ([]*models.ConfirmedReservation, error)

	Close() error
}
