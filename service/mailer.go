package service

import (
	"fmt"

	"bitwise74/avatar-api/config"

	"github.com/spf13/viper"
	"github.com/wneessen/go-mail"
)

// Mailer dispatches verification and password reset links over SMTP.
// When SMTP is disabled the handlers return the links in the response
// body instead, which must never happen in production.
type Mailer struct {
	enabled bool
}

func NewMailer() *Mailer {
	return &Mailer{enabled: viper.GetBool("smtp.enabled")}
}

func (m *Mailer) Enabled() bool {
	return m.enabled
}

// VerificationURL builds the link a user clicks to verify their email
func (m *Mailer) VerificationURL(token string) string {
	return fmt.Sprintf("%s/api/verify-email?token=%s", config.BaseURL(), token)
}

// ResetURL builds the link a user follows to pick a new password
func (m *Mailer) ResetURL(token string) string {
	return fmt.Sprintf("%s/auth/reset-password?token=%s", config.BaseURL(), token)
}

func (m *Mailer) SendVerification(to, token string) error {
	body := fmt.Sprintf("Click <a href='%s'>here</a> to verify your account.<br><br>This link will expire in 24 hours.", m.VerificationURL(token))
	return m.send(to, "Verify your email address", body)
}

func (m *Mailer) SendReset(to, token string) error {
	body := fmt.Sprintf("Click <a href='%s'>here</a> to reset your password.<br><br>This link will expire in 1 hour.", m.ResetURL(token))
	return m.send(to, "Reset your password", body)
}

func (m *Mailer) send(to, subject, body string) error {
	from := viper.GetString("smtp.sender")

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return fmt.Errorf("failed to set sender address, %w", err)
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("failed to set recipient address, %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	opts := []mail.Option{
		mail.WithPort(viper.GetInt("smtp.port")),
	}

	if password := viper.GetString("smtp.password"); password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(from),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(viper.GetString("smtp.host"), opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client, %w", err)
	}

	return client.DialAndSend(msg)
}
