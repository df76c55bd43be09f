package service

import (
	"context"
	"fmt"

	"github.com/roamline/staykeeper/internal/models"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarService inserts paid stays into the guest's Google Calendar.
type CalendarService struct {
	srv    *calendar.Service
	config CalendarConfig
}

func NewCalendarService(ctx context.Context, config CalendarConfig) (*CalendarService, error) {
	tokenJSON, err := config.LoadServiceAccountToken()
	if err != nil {
		return nil, err
	}

	srv, err := calendar.NewService(ctx, option.WithAuthCredentialsJSON(option.ServiceAccount, tokenJSON))
	if err != nil {
		return nil, err
	}

	return &CalendarService{srv: srv, config: config}, nil
}

// ExportStay adds the stay as an all-day event spanning check-in to check-out.
func (s *CalendarService) ExportStay(ctx context.Context, reservation *models.ConfirmedReservation) error {
	summary := "Hotel stay"
	if reservation.HotelName != "" {
		summary = fmt.Sprintf("Hotel stay: %s", reservation.HotelName)
	}

	event := &calendar.Event{
		Summary:     summary,
		Location:    reservation.HotelName,
		Description: fmt.Sprintf("Reservation %s, room %s, %d guest(s)", reservation.ID, reservation.RoomName, reservation.NumberOfGuests),
		Start:       &calendar.EventDateTime{Date: reservation.CheckIn.UTC().Format("2006-01-02")},
		End:         &calendar.EventDateTime{Date: reservation.CheckOut.UTC().Format("2006-01-02")},
	}

	if _, err := s.srv.Events.Insert(s.config.CalendarID, event).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to insert stay event: %w", err)
	}
	return nil
}
