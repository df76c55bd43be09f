package service

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/roamline/staykeeper/internal/models"
)

type EmailService struct {
	from          string
	password      string
	host          string
	port          string
	testEmailOnly string // If set, all emails go to this address (for testing)

	sendMailFn func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service using SMTP
func NewEmailService(smtpHost, smtpPort, username, password, fromEmail, testEmailOnly string) (*EmailService, error) {
	if smtpHost == "" || username == "" || password == "" {
		return nil, fmt.Errorf("SMTP configuration incomplete")
	}

	return &EmailService{
		from:          fromEmail,
		password:      password,
		host:          smtpHost,
		port:          smtpPort,
		testEmailOnly: testEmailOnly,
		sendMailFn:    smtp.SendMail,
	}, nil
}

// SendConfirmation emails the guest their booking confirmation.
func (s *EmailService) SendConfirmation(reservation *models.ConfirmedReservation) error {
	to := reservation.GuestDetails.Email
	if to == "" {
		return fmt.Errorf("reservation %s has no guest email", reservation.ID)
	}

	// Override recipient for testing if TEST_EMAIL_ONLY is set
	actualRecipient := to
	if s.testEmailOnly != "" {
		actualRecipient = s.testEmailOnly
	}

	hotelName := reservation.HotelName
	if hotelName == "" {
		hotelName = reservation.HotelID
	}

	subject := fmt.Sprintf("Booking confirmed - %s", hotelName)
	body := fmt.Sprintf(`Hello %s,

Your reservation is confirmed and paid!

Hotel: %s
Room: %s
Check-in: %s
Check-out: %s
Guests: %d
Total: %.2f %s
Confirmation number: %s

`, reservation.GuestDetails.Name,
		hotelName,
		reservation.RoomName,
		reservation.CheckIn.Format("Monday, 2 January 2006"),
		reservation.CheckOut.Format("Monday, 2 January 2006"),
		reservation.NumberOfGuests,
		reservation.TotalPrice,
		reservation.Currency,
		reservation.ID)

	// Add note if email is being sent to test address
	if s.testEmailOnly != "" && to != actualRecipient {
		body += fmt.Sprintf("[TEST MODE] Original recipient: %s\n\n", to)
	}

	body += fmt.Sprintf(`We look forward to welcoming you on %s.

Best regards,
The booking team
`, reservation.CheckIn.Format(time.DateOnly))

	message := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s", s.from, actualRecipient, subject, body)

	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	addr := s.host + ":" + s.port

	if err := s.sendMailFn(addr, auth, s.from, []string{actualRecipient}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send confirmation to %s: %w", actualRecipient, err)
	}

	return nil
}
