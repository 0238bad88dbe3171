package service

import (
	"context"
	"fmt"
	"time"

	"carhire-backend/internal/domain"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(ctx context.Context, to, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)

	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendBookingCreatedNotification(ctx context.Context, email, name, bookingNumber string, from, to time.Time) error {
	subject := fmt.Sprintf("Booking %s created", bookingNumber)
	plainText := fmt.Sprintf("Hello %s,\n\nBooking %s has been created for %s through %s.\n\nBest regards,\nThe CarHire Team",
		name, bookingNumber, from.Format("Jan 2, 2006"), to.Format("Jan 2, 2006"))
	htmlContent := fmt.Sprintf(`<html><body><h2>Booking Created</h2><p>Booking <strong>%s</strong> has been created for %s through %s.</p></body></html>`,
		bookingNumber, from.Format("Jan 2, 2006"), to.Format("Jan 2, 2006"))
	return s.send(ctx, email, name, subject, plainText, htmlContent)
}

func (s *emailService) SendBookingStatusNotification(ctx context.Context, email, name, bookingNumber string, status domain.BookingStatus) error {
	subject := fmt.Sprintf("Booking %s update", bookingNumber)
	plainText := fmt.Sprintf("Hello %s,\n\nThe status of booking %s is now: %s.\n\nBest regards,\nThe CarHire Team", name, bookingNumber, status)
	htmlContent := fmt.Sprintf(`<html><body><h2>Booking Update</h2><p>The status of booking <strong>%s</strong> is now: <strong>%s</strong>.</p></body></html>`, bookingNumber, status)
	return s.send(ctx, email, name, subject, plainText, htmlContent)
}

func (s *emailService) SendApprovalRequestNotification(ctx context.Context, adminEmail, staffName, bookingNumber string) error {
	subject := fmt.Sprintf("Approval required: booking %s", bookingNumber)
	plainText := fmt.Sprintf("%s created booking %s with a paid status. It is awaiting your approval.", staffName, bookingNumber)
	htmlContent := fmt.Sprintf(`<html><body><h2>Approval Required</h2><p><strong>%s</strong> created booking <strong>%s</strong> with a paid status. It is awaiting your approval.</p></body></html>`, staffName, bookingNumber)
	return s.send(ctx, adminEmail, "", subject, plainText, htmlContent)
}

func (s *emailService) SendApprovalOutcomeNotification(ctx context.Context, email, bookingNumber string, approved bool, notes string) error {
	outcome := "approved"
	if !approved {
		outcome = "rejected"
	}
	subject := fmt.Sprintf("Booking %s %s", bookingNumber, outcome)
	plainText := fmt.Sprintf("Booking %s has been %s.", bookingNumber, outcome)
	if notes != "" {
		plainText += fmt.Sprintf("\n\nNotes: %s", notes)
	}
	htmlContent := fmt.Sprintf(`<html><body><p>Booking <strong>%s</strong> has been %s.</p>`, bookingNumber, outcome)
	if notes != "" {
		htmlContent += fmt.Sprintf(`<p>Notes: %s</p>`, notes)
	}
	htmlContent += `</body></html>`
	return s.send(ctx, email, "", subject, plainText, htmlContent)
}

func (s *emailService) SendCancelRequestNotification(ctx context.Context, adminEmail, driverName, bookingNumber string) error {
	subject := fmt.Sprintf("Cancellation requested: booking %s", bookingNumber)
	plainText := fmt.Sprintf("%s requested cancellation of booking %s.", driverName, bookingNumber)
	htmlContent := fmt.Sprintf(`<html><body><p><strong>%s</strong> requested cancellation of booking <strong>%s</strong>.</p></body></html>`, driverName, bookingNumber)
	return s.send(ctx, adminEmail, "", subject, plainText, htmlContent)
}
