package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/roamline/staykeeper/internal/models"
)

// ErrCheckoutRejected marks a checkout the gateway refused (declined card,
// insufficient funds, expired card). The caller keeps the draft and may retry.
var ErrCheckoutRejected = errors.New("checkout rejected by payment gateway")

// RejectionError carries the gateway's rejection code alongside
// ErrCheckoutRejected for errors.Is matching.
type RejectionError struct {
	Code    string
	Message string
}

func (e *RejectionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("checkout rejected: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("checkout rejected: %s", e.Message)
}

func (e *RejectionError) Unwrap() error { return ErrCheckoutRejected }

// CheckoutService drives the booking API's combined create-and-pay call.
// A success response means the remote system holds a confirmed reservation
// with payment_status "paid"; any error means no remote record was created.
type CheckoutService struct {
	baseURL string
	token   string
	client  *http.Client

	// newIdempotencyKey is swappable in tests.
	newIdempotencyKey func() string
}

// NewCheckoutService creates a checkout client against the booking API.
func NewCheckoutService(baseURL, token string) (*CheckoutService, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("booking API base URL is required")
	}
	return &CheckoutService{
		baseURL:           baseURL,
		token:             token,
		client:            &http.Client{Timeout: 30 * time.Second},
		newIdempotencyKey: uuid.NewString,
	}, nil
}

type checkoutRequest struct {
	Reservation models.Reservation `json:"reservation"`
	Payment     PaymentDetails     `json:"payment"`
}

type checkoutEnvelope struct {
	Message string                       `json:"message,omitempty"`
	Data    *models.ConfirmedReservation `json:"data"`
}

// Checkout submits the draft's reservation with the guest's payment token.
// Each attempt carries a fresh idempotency key so a crash-and-retry cannot
// double-charge.
func (s *CheckoutService) Checkout(ctx context.Context, reservation *models.Reservation, payment PaymentDetails) (*models.ConfirmedReservation, error) {
	body, err := json.Marshal(checkoutRequest{Reservation: *reservation, Payment: payment})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/payments/checkout/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", s.newIdempotencyKey())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var envelope checkoutEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return nil, fmt.Errorf("failed to decode checkout response: %w", err)
		}
		if envelope.Data == nil {
			return nil, fmt.Errorf("checkout response missing reservation data")
		}
		if envelope.Data.PaymentStatus != models.PaymentPaid {
			return nil, fmt.Errorf("checkout returned payment_status %q, expected %q", envelope.Data.PaymentStatus, models.PaymentPaid)
		}
		return envelope.Data, nil

	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusBadRequest:
		var apiErr apiError
		if derr := json.NewDecoder(resp.Body).Decode(&apiErr); derr == nil && apiErr.Error != "" {
			return nil, &RejectionError{Code: apiErr.ErrorCode, Message: apiErr.Error}
		}
		return nil, &RejectionError{Message: fmt.Sprintf("gateway returned %d", resp.StatusCode)}

	default:
		return nil, fmt.Errorf("checkout failed with status %d", resp.StatusCode)
	}
}
