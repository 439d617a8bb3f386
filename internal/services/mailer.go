package services

import (
	"fmt"
	"time"

	mail "github.com/go-mail/mail/v2"
)

// Mailer sends password-reset mail over SMTP. A nil *Mailer is valid and
// means mail delivery is not configured.
type Mailer struct {
	dialer *mail.Dialer
	sender string
}

// NewMailer builds a Mailer for the given SMTP settings.
func NewMailer(host string, port int, username, password, sender string) *Mailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = 5 * time.Second
	return &Mailer{dialer: dialer, sender: sender}
}

// SendResetToken mails the reset token and user id to recipient.
func (m *Mailer) SendResetToken(recipient, token string, userID int64) error {
	if m == nil {
		return fmt.Errorf("mailer not configured")
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", "Ubrary password reset")
	msg.SetBody("text/plain", fmt.Sprintf(
		"A password reset was requested for your Ubrary account.\n\n"+
			"Token: %s\nUser ID: %d\n\n"+
			"The token is valid for a limited time and can be used once.\n"+
			"If you did not request this, ignore this message.\n", token, userID))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}
