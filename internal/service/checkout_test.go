package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/roamline/staykeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutReservation() *models.Reservation {
	return &models.Reservation{
		HotelID:        "hotel-1",
		RoomID:         "room-12",
		CheckIn:        time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
		CheckOut:       time.Date(2026, 3, 12, 11, 0, 0, 0, time.UTC),
		NumberOfGuests: 2,
		GuestDetails: models.GuestDetails{
			Name:  "Alice Morgan",
			Email: "alice@example.com",
			Phone: "+15550100",
		},
		TotalPrice: 240,
		Currency:   "USD",
	}
}

func TestCheckout_Success(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/payments/checkout/", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		gotKey = r.Header.Get("X-Idempotency-Key")

		var req checkoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hotel-1", req.Reservation.HotelID)
		assert.Equal(t, "tok_success", req.Payment.Token)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message": "Pago procesado exitosamente", "data": {"id": "res-77", "status": "confirmed", "payment_status": "paid"}}`))
	}))
	defer srv.Close()

	client, err := NewCheckoutService(srv.URL, "token-1")
	require.NoError(t, err)

	confirmed, err := client.Checkout(context.Background(), checkoutReservation(), PaymentDetails{Token: "tok_success"})
	require.NoError(t, err)
	assert.Equal(t, "res-77", confirmed.ID)
	assert.Equal(t, models.PaymentPaid, confirmed.PaymentStatus)
	assert.NotEmpty(t, gotKey)
}

func TestCheckout_FreshIdempotencyKeyPerAttempt(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("X-Idempotency-Key"))
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error": "Su tarjeta fue rechazada", "error_code": "card_declined"}`))
	}))
	defer srv.Close()

	client, err := NewCheckoutService(srv.URL, "token-1")
	require.NoError(t, err)

	_, _ = client.Checkout(context.Background(), checkoutReservation(), PaymentDetails{Token: "tok_fail"})
	_, _ = client.Checkout(context.Background(), checkoutReservation(), PaymentDetails{Token: "tok_fail"})

	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
}

func TestCheckout_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{
			name:     "card declined",
			status:   http.StatusPaymentRequired,
			body:     `{"error": "Su tarjeta fue rechazada", "error_code": "card_declined"}`,
			wantCode: "card_declined",
		},
		{
			name:     "insufficient funds",
			status:   http.StatusPaymentRequired,
			body:     `{"error": "Fondos insuficientes", "error_code": "insufficient_funds"}`,
			wantCode: "insufficient_funds",
		},
		{
			name:     "expired card via 400",
			status:   http.StatusBadRequest,
			body:     `{"error": "Tarjeta expirada", "error_code": "expired_card"}`,
			wantCode: "expired_card",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := NewCheckoutService(srv.URL, "token-1")
			require.NoError(t, err)

			_, err = client.Checkout(context.Background(), checkoutReservation(), PaymentDetails{Token: "tok_fail"})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCheckoutRejected)

			var rejection *RejectionError
			require.True(t, errors.As(err, &rejection))
			assert.Equal(t, tt.wantCode, rejection.Code)
		})
	}
}

func TestCheckout_ServerErrorIsNotRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewCheckoutService(srv.URL, "token-1")
	require.NoError(t, err)

	_, err = client.Checkout(context.Background(), checkoutReservation(), PaymentDetails{Token: "tok_success"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCheckoutRejected)
}

func TestCheckout_UnpaidResponseRejectedAsInconsistent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"id": "res-1", "payment_status": "pending"}}`))
	}))
	defer srv.Close()

	client, err := NewCheckoutService(srv.URL, "token-1")
	require.NoError(t, err)

	_, err = client.Checkout(context.Background(), checkoutReservation(), PaymentDetails{Token: "tok_success"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment_status")
}

func TestRejectionErrorMessage(t *testing.T) {
	err := &RejectionError{Code: "card_declined", Message: "declined"}
	assert.Contains(t, err.Error(), "card_declined")
	assert.ErrorIs(t, err, ErrCheckoutRejected)

	noCode := &RejectionError{Message: "declined"}
	assert.NotContains(t, noCode.Error(), "()")
}
