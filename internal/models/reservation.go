package models

import "time"

// Reservation lifecycle states, as reported by the remote booking API.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// Payment states, as reported by the remote booking API.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
	PaymentFailed   = "failed"
)

// GuestDetails identifies the guest a reservation is held for.
type GuestDetails struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// Reservation is the booking payload a guest assembles before paying.
// The hotel/room name and price fields are denormalized for display so
// the UI never needs a remote round trip to render a draft.
type Reservation struct {
	HotelID         string       `json:"hotel_id" validate:"required"`
	RoomID          string       `json:"room_id" validate:"required"`
	CheckIn         time.Time    `json:"check_in" validate:"required"`
	CheckOut        time.Time    `json:"check_out" validate:"required,gtfield=CheckIn"`
	NumberOfGuests  int          `json:"number_of_guests" validate:"required,gt=0"`
	GuestDetails    GuestDetails `json:"guest_details" validate:"required"`
	SpecialRequests string       `json:"special_requests,omitempty"`

	HotelName  string  `json:"hotel_name,omitempty"`
	RoomName   string  `json:"room_name,omitempty"`
	TotalPrice float64 `json:"total_price,omitempty"`
	Currency   string  `json:"currency,omitempty"`
	Nights     int     `json:"nights,omitempty"`
}

// NightCount returns the stay length in nights: the calendar-date
// difference, so check-in and check-out hours never change it.
func (r *Reservation) NightCount() int {
	in := r.CheckIn.UTC().Truncate(24 * time.Hour)
	out := r.CheckOut.UTC().Truncate(24 * time.Hour)
	return int(out.Sub(in).Hours() / 24)
}

// DraftReservation is the single unpaid reservation held on this device.
type DraftReservation struct {
	SavedAt     time.Time   `json:"saved_at" validate:"required"`
	Reservation Reservation `json:"reservation" validate:"required"`
}

// ConfirmedReservation is a paid reservation owned by the remote system.
// This client only ever reads it.
type ConfirmedReservation struct {
	ID             string       `json:"id"`
	HotelID        string       `json:"hotel_id"`
	RoomID         string       `json:"room_id"`
	CheckIn        time.Time    `json:"check_in"`
	CheckOut       time.Time    `json:"check_out"`
	NumberOfGuests int          `json:"number_of_guests"`
	GuestDetails   GuestDetails `json:"guest_details"`
	HotelName      string       `json:"hotel_name,omitempty"`
	RoomName       string       `json:"room_name,omitempty"`
	TotalPrice     float64      `json:"total_price,omitempty"`
	Currency       string       `json:"currency,omitempty"`
	Nights         int          `json:"nights,omitempty"`
	Status         string       `json:"status"`
	PaymentStatus  string       `json:"payment_status"`
	CreatedAt      time.Time    `json:"created_at"`
}
