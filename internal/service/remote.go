package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/roamline/staykeeper/internal/models"
)

// RemoteService reads the guest's confirmed reservations from the hotel
// booking API. It never mutates remote state.
type RemoteService struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemoteService creates a client for the booking API at baseURL,
// authenticating with the guest's bearer token.
func NewRemoteService(baseURL, token string) (*RemoteService, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("booking API base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid booking API base URL: %w", err)
	}
	return &RemoteService{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// listEnvelope mirrors the booking API's list responses.
type listEnvelope struct {
	Count int                            `json:"count"`
	Data  []*models.ConfirmedReservation `json:"data"`
}

// apiError mirrors the booking API's error responses.
type apiError struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code,omitempty"`
}

// ListConfirmed fetches the guest's paid reservations in the order the
// remote source returns them.
func (s *RemoteService) ListConfirmed(ctx context.Context) ([]*models.ConfirmedReservation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/reservations/?payment_status=paid", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reservations: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if derr := json.NewDecoder(resp.Body).Decode(&apiErr); derr == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("booking API returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("booking API returned %d", resp.StatusCode)
	}

	var envelope listEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode reservation list: %w", err)
	}
	return envelope.Data, nil
}
