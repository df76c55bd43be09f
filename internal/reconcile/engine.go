package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/roamline/staykeeper/internal/logger"
	"github.com/roamline/staykeeper/internal/models"
	"github.com/roamline/staykeeper/internal/service"
	"github.com/roamline/staykeeper/internal/store"
)

// Engine merges the local draft slot with the remote confirmed-reservation
// list into one ordered view, and owns the draft's state transitions:
// expiry eviction on read and promotion on checkout success.
type Engine struct {
	Logger  *logger.Logger
	Store   store.Store
	Remote  service.ReservationSource
	Gateway service.CheckoutGateway

	// Optional post-promotion hooks; nil disables them.
	Calendar service.StayExporter
	Email    service.ConfirmationSender

	// Now supplies the clock; nil means time.Now. Injected so TTL logic
	// is deterministically testable.
	Now func() time.Time

	// TTL overrides DefaultTTL when positive.
	TTL time.Duration

	// PendingFirst places the pending item ahead of completed ones.
	PendingFirst bool
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) ttl() time.Duration {
	if e.TTL > 0 {
		return e.TTL
	}
	return DefaultTTL
}

// BuildView produces the merged reservation view at the current instant.
func (e *Engine) BuildView(ctx context.Context) ([]models.DisplayItem, error) {
	return e.BuildViewAt(ctx, e.now())
}

// BuildViewAt produces the merged view for a caller-supplied instant.
// Exposed for testing with a deterministic clock.
func (e *Engine) BuildViewAt(ctx context.Context, now time.Time) ([]models.DisplayItem, error) {
	confirmed := e.fetchConfirmed(ctx)
	draft := e.snapshotDraft(now)
	return MergeView(confirmed, draft, e.PendingFirst), nil
}

// fetchConfirmed reads the remote confirmed list and refreshes the local
// cache, falling back to the cached snapshot when the remote is unreachable.
func (e *Engine) fetchConfirmed(ctx context.Context) []*models.ConfirmedReservation {
	confirmed, err := e.Remote.ListConfirmed(ctx)
	if err != nil {
		e.Logger.Warn("Remote reservation list unavailable, using cached snapshot", logger.Action("reconcile"), logger.Error(err))
		cached, cerr := e.Store.ListConfirmed()
		if cerr != nil {
			e.Logger.Error("Confirmed cache unavailable", logger.Action("reconcile"), logger.Error(cerr))
			return nil
		}
		return cached
	}

	if err := e.Store.ReplaceConfirmed(confirmed); err != nil {
		e.Logger.Warn("Failed to refresh confirmed cache", logger.Action("reconcile"), logger.Error(err))
	}
	return confirmed
}

// snapshotDraft reads the draft slot exactly once and decides expiry against
// a single clock sample. Expired or unreadable drafts are treated as absent;
// expiry eviction happens here, as a by-product of the read.
func (e *Engine) snapshotDraft(now time.Time) *models.DraftReservation {
	draft, err := e.Store.LoadDraft()
	switch {
	case errors.Is(err, store.ErrNoDraft):
		return nil
	case errors.Is(err, store.ErrMalformedDraft):
		e.Logger.Warn("Discarded malformed draft", logger.Action("draft_load"), logger.Error(err))
		return nil
	case err != nil:
		e.Logger.Error("Draft store unavailable, treating draft as absent", logger.Action("draft_load"), logger.Error(err))
		return nil
	}

	if IsExpired(draft.SavedAt, now, e.ttl()) {
		e.Logger.Info("Draft expired, evicting",
			logger.Action("draft_expiry"),
			logger.SavedAt(draft.SavedAt),
			logger.Elapsed(Age(draft.SavedAt, now)),
			logger.TTL(e.ttl()))
		if cerr := e.Store.ClearDraft(); cerr != nil {
			e.Logger.Error("Failed to evict expired draft", logger.Action("draft_expiry"), logger.Error(cerr))
		}
		return nil
	}
	return draft
}

// MergeView derives the ordered display list from a confirmed set, an
// optional valid draft, and the ordering preference. Pure function: the
// confirmed list keeps its encounter order and at most one pending item
// is emitted.
func MergeView(confirmed []*models.ConfirmedReservation, draft *models.DraftReservation, pendingFirst bool) []models.DisplayItem {
	items := make([]models.DisplayItem, 0, len(confirmed)+1)

	if draft != nil && pendingFirst {
		items = append(items, models.PendingItem(draft))
	}
	for _, c := range confirmed {
		items = append(items, models.CompletedItem(c))
	}
	if draft != nil && !pendingFirst {
		items = append(items, models.PendingItem(draft))
	}
	return items
}

// SaveDraft stamps and stores a new draft, replacing any existing one.
// Write failures are surfaced: the draft the guest just built may be lost
// and the caller must be able to warn them.
func (e *Engine) SaveDraft(reservation models.Reservation) (*models.DraftReservation, error) {
	if reservation.Nights == 0 {
		reservation.Nights = reservation.NightCount()
	}
	draft := &models.DraftReservation{
		SavedAt:     e.now().UTC(),
		Reservation: reservation,
	}
	if err := e.Store.SaveDraft(draft); err != nil {
		e.Logger.Error("Failed to save draft", logger.Action("draft_save"), logger.Hotel(reservation.HotelID), logger.Error(err))
		return nil, err
	}
	e.Logger.Info("Draft saved",
		logger.Action("draft_save"),
		logger.Hotel(reservation.HotelID),
		logger.Room(reservation.RoomID),
		logger.SavedAt(draft.SavedAt))
	return draft, nil
}

// DiscardDraft drops the draft slot on explicit guest request.
func (e *Engine) DiscardDraft() error {
	if err := e.Store.ClearDraft(); err != nil {
		e.Logger.Error("Failed to discard draft", logger.Action("draft_discard"), logger.Error(err))
		return err
	}
	e.Logger.Info("Draft discarded", logger.Action("draft_discard"))
	return nil
}

// Checkout attempts to pay for the current draft. On gateway success the
// draft is promoted: the slot is cleared unconditionally and the hooks run.
// On any other outcome the draft is left untouched for retry.
func (e *Engine) Checkout(ctx context.Context, payment service.PaymentDetails) (*models.ConfirmedReservation, error) {
	return e.CheckoutAt(ctx, payment, e.now())
}

// CheckoutAt is Checkout with a caller-supplied instant for the TTL check.
// Exposed for testing with a deterministic clock.
func (e *Engine) CheckoutAt(ctx context.Context, payment service.PaymentDetails, now time.Time) (*models.ConfirmedReservation, error) {
	draft := e.snapshotDraft(now)
	if draft == nil {
		return nil, store.ErrNoDraft
	}

	confirmed, err := e.Gateway.Checkout(ctx, &draft.Reservation, payment)
	if err != nil {
		e.Logger.Warn("Checkout did not succeed, draft retained",
			logger.Action("checkout"),
			logger.Status("rejected"),
			logger.Hotel(draft.Reservation.HotelID),
			logger.Error(err))
		return nil, err
	}

	e.promote(ctx, confirmed)
	return confirmed, nil
}

// promote evicts the draft after a confirmed-and-paid checkout. The success
// signal alone authorizes the clear; the slot held only the intent that this
// checkout just fulfilled.
func (e *Engine) promote(ctx context.Context, confirmed *models.ConfirmedReservation) {
	if err := e.Store.ClearDraft(); err != nil {
		e.Logger.Error("Failed to clear draft after checkout success",
			logger.Action("promotion"),
			logger.Reservation(confirmed.ID),
			logger.Error(err))
	} else {
		e.Logger.Info("Draft promoted",
			logger.Action("promotion"),
			logger.Reservation(confirmed.ID),
			logger.Status(confirmed.PaymentStatus))
	}

	// Fold the new reservation into the cache so an offline view already
	// contains it before the next remote refresh.
	cached, err := e.Store.ListConfirmed()
	if err == nil {
		if err := e.Store.ReplaceConfirmed(append(cached, confirmed)); err != nil {
			e.Logger.Warn("Failed to cache promoted reservation", logger.Action("promotion"), logger.Error(err))
		}
	}

	if e.Calendar != nil {
		if err := e.Calendar.ExportStay(ctx, confirmed); err != nil {
			e.Logger.Warn("Failed to export stay to calendar", logger.Action("calendar_export"), logger.Reservation(confirmed.ID), logger.Error(err))
		} else {
			e.Logger.Info("Stay exported to calendar", logger.Action("calendar_export"), logger.Reservation(confirmed.ID))
		}
	}
	if e.Email != nil {
		if err := e.Email.SendConfirmation(confirmed); err != nil {
			e.Logger.Warn("Failed to send confirmation email", logger.Action("confirmation_email"), logger.Reservation(confirmed.ID), logger.Error(err))
		} else {
			e.Logger.Info("Confirmation email sent", logger.Action("confirmation_email"), logger.Guest(confirmed.GuestDetails.Email))
		}
	}
}
