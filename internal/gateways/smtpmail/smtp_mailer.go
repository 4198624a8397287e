package smtpmail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/skillgrove/skillgrove_app/internal/apperrors"
	portssvc "github.com/skillgrove/skillgrove_app/internal/core/ports/services"
	"github.com/skillgrove/skillgrove_app/internal/platform/config"
)

const staffWelcomeBody = `Hi %s,

An account has been created for you on Skillgrove by your organisation.

Sign in with this email address and the temporary password below. You will be
asked to choose your own password on first login.

Temporary password: %s

%s/login
`

const passwordResetBody = `Hi %s,

We received a request to reset your Skillgrove password. Open the link below
to choose a new one. The link expires in 24 hours.

%s

If you did not request this, you can ignore this email.
`

type smtpMailer struct {
	dialer      *gomail.Dialer
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSMTPMailer creates the transactional mailer backed by plain SMTP.
func NewSMTPMailer(cfg *config.Config) portssvc.Mailer {
	return &smtpMailer{
		dialer:      gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		fromAddress: cfg.SMTPFromAddress,
		fromName:    cfg.SMTPFromName,
		frontendURL: cfg.FrontendBaseURL,
	}
}

// Ensure smtpMailer implements portssvc.Mailer
var _ portssvc.Mailer = (*smtpMailer)(nil)

func (m *smtpMailer) SendStaffWelcomeEmail(ctx context.Context, to string, name string, tempPassword string) error {
	msg := m.newMessage(to, "Welcome to Skillgrove")
	msg.SetBody("text/plain", fmt.Sprintf(staffWelcomeBody, name, tempPassword, m.frontendURL))
	return m.send(ctx, msg)
}

func (m *smtpMailer) SendPasswordResetEmail(ctx context.Context, to string, name string, resetURL string) error {
	msg := m.newMessage(to, "Reset your Skillgrove password")
	msg.SetBody("text/plain", fmt.Sprintf(passwordResetBody, name, resetURL))
	return m.send(ctx, msg)
}

func (m *smtpMailer) newMessage(to string, subject string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.fromAddress, m.fromName))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	return msg
}

// send runs the blocking SMTP dial in a goroutine so callers can bail out on
// context cancellation.
func (m *smtpMailer) send(ctx context.Context, msg *gomail.Message) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return apperrors.NewAppError(502, "failed to send email", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
