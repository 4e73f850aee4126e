package email

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendConfirmationEmail(toEmail, code string) error
	SendRecoveryEmail(toEmail, code string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	FromName   string
	FromEmail  string
	ConfirmURL string // Frontend URL the confirmation code is appended to
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

const confirmationBody = `
	<p>Click here in order to confirm your email address.</p>
	<a href="%s">Confirm email.</a>
`

// SendConfirmationEmail sends an email with a confirmation link
func (s *EmailServiceImpl) SendConfirmationEmail(toEmail, code string) error {
	// Without credentials, log the code instead of sending (development mode)
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("code", code).
			Msg("SMTP credentials not configured - confirmation email not sent")
		return nil
	}

	subject := "CasPortal Email Confirmation"
	body := fmt.Sprintf(confirmationBody, s.config.ConfirmURL+code)

	return s.sendHTMLEmail(toEmail, subject, body)
}

const recoveryBody = `
	<p>Click here in order to recover your password.</p>
	<a href="%s">Recover password.</a>
`

// SendRecoveryEmail sends an email with a password recovery link
func (s *EmailServiceImpl) SendRecoveryEmail(toEmail, code string) error {
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("code", code).
			Msg("SMTP credentials not configured - recovery email not sent")
		return nil
	}

	subject := "CasPortal Password Recovery"
	body := fmt.Sprintf(recoveryBody, s.config.ConfirmURL+code)

	return s.sendHTMLEmail(toEmail, subject, body)
}

// sendHTMLEmail sends an HTML email
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth(
		"",
		s.config.Username,
		s.config.Password,
		s.config.Host,
	)

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		"To":           toEmail,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + htmlBody

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{toEmail}, []byte(message)); err != nil {
		s.logger.Error().Err(err).Str("toEmail", toEmail).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
