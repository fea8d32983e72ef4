package email

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/circuitbreaker"
)

// Sender delivers a rendered message to the patient
type Sender interface {
	Send(ctx context.Context, msg *model.EmailMessage) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// dialer is the subset of gomail.Dialer the SMTP sender uses
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpSender struct {
	dialer   dialer
	from     string
	fromName string
	breaker  *circuitbreaker.CircuitBreaker
}

// NewSMTPSender sends through an SMTP relay. Consecutive transport failures
// open the breaker and further sends fail fast until it half-opens.
func NewSMTPSender(cfg SMTPConfig) Sender {
	return newSMTPSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From, cfg.FromName)
}

func newSMTPSender(d dialer, from, fromName string) *smtpSender {
	return &smtpSender{
		dialer:   d,
		from:     from,
		fromName: fromName,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:                "smtp",
			MaxRequests:         1,
			Timeout:             30 * time.Second,
			ConsecutiveFailures: 3,
		}),
	}
}

func (s *smtpSender) Send(ctx context.Context, msg *model.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	if s.fromName != "" {
		m.SetAddressHeader("From", s.from, s.fromName)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}

	if err := s.breaker.Execute(func() error { return s.dialer.DialAndSend(m) }); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}

// NoopSender logs messages instead of sending them
type NoopSender struct{}

func (NoopSender) Send(_ context.Context, msg *model.EmailMessage) error {
	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("email delivery disabled, message not sent")
	return nil
}
