package models

import "time"

// ItemKind discriminates the two DisplayItem variants.
type ItemKind string

const (
	KindPending   ItemKind = "pending"
	KindCompleted ItemKind = "completed"
)

// DisplayItem is one row of the merged reservation view: either the local
// unpaid draft or a confirmed reservation from the remote system. Exactly
// one of Draft/Confirmed is set, according to Kind. Items are recomputed on
// every reconciliation pass and never persisted.
type DisplayItem struct {
	Kind      ItemKind              `json:"kind"`
	Draft     *Reservation          `json:"draft,omitempty"`
	SavedAt   time.Time             `json:"saved_at,omitempty"`
	Confirmed *ConfirmedReservation `json:"confirmed,omitempty"`
}

// PendingItem wraps a valid local draft for display.
func PendingItem(d *DraftReservation) DisplayItem {
	return DisplayItem{
		Kind:    KindPending,
		Draft:   &d.Reservation,
		SavedAt: d.SavedAt,
	}
}

// CompletedItem wraps a confirmed remote reservation for display.
func CompletedItem(c *ConfirmedReservation) DisplayItem {
	return DisplayItem{
		Kind:      KindCompleted,
		Confirmed: c,
	}
}
