package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/logger"
	"fieldmatch-backend/internal/repository"
)

// EmailSender is any backend able to deliver a plain-text email.
type EmailSender interface {
	Send(ctx context.Context, to, toName, subject, body string) error
}

type smtpSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPSender(host string, port int, username, password, from string) EmailSender {
	return &smtpSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *smtpSender) Send(ctx context.Context, to, toName, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetAddressHeader("To", to, toName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	logger.ExternalServiceCall("smtp", "DialAndSend", "to", to)
	err := d.DialAndSend(m)
	logger.ExternalServiceResult("smtp", "DialAndSend", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

type sendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) EmailSender {
	return &sendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridSender) Send(ctx context.Context, to, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	logger.ExternalServiceCall("sendgrid", "Send", "to", to)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// EmailSink emails each recipient that has an address on file.
type EmailSink struct {
	users  repository.UserDirectory
	sender EmailSender
}

func NewEmailSink(users repository.UserDirectory, sender EmailSender) *EmailSink {
	return &EmailSink{users: users, sender: sender}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Deliver(ctx context.Context, event domain.MatchEvent) error {
	msg, ok := Render(event)
	if !ok || len(event.RecipientUserIDs) == 0 {
		return nil
	}
	contacts, err := s.users.GetContacts(ctx, event.RecipientUserIDs)
	if err != nil {
		return fmt.Errorf("load recipient contacts: %w", err)
	}

	var errs []error
	for _, userID := range event.RecipientUserIDs {
		contact, ok := contacts[userID]
		if !ok || contact.Email == "" {
			logger.Debug("Skipping email for user without address", "userID", userID, "eventID", event.ID)
			continue
		}
		body := fmt.Sprintf("Hello %s,\n\n%s\n\nBest regards,\nThe FieldMatch Team", contact.Name, msg.Body)
		if err := s.sender.Send(ctx, contact.Email, contact.Name, msg.Title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
