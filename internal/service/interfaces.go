package service

import (
	"context"

	"github.com/roamline/staykeeper/internal/models"
)

// ReservationSource abstracts the remote confirmed-reservation list for testability.
type ReservationSource interface {
	ListConfirmed(ctx context.Context) ([]*models.ConfirmedReservation, error)
}

// CheckoutGateway abstracts the remote checkout/payment call for testability.
// A successful call has created a confirmed, paid reservation remotely; any
// error means no remote record was created.
type CheckoutGateway interface {
	Checkout(ctx context.Context, reservation *models.Reservation, payment PaymentDetails) (*models.ConfirmedReservation, error)
}

// StayExporter abstracts calendar export of a paid stay for testability.
type StayExporter interface {
	ExportStay(ctx context.Context, reservation *models.ConfirmedReservation) error
}

// ConfirmationSender abstracts booking-confirmation email delivery for testability.
type ConfirmationSender interface {
	SendConfirmation(reservation *models.ConfirmedReservation) error
}

// PaymentDetails carries the guest's payment credentials into a checkout
// attempt. The token is a gateway-issued opaque handle, never raw card data.
type PaymentDetails struct {
	Token  string `json:"token"`
	Method string `json:"method,omitempty"`
}
