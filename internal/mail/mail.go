// Package mail submits plain-text messages to the configured SMTP relay.
package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/infrademo/infrademo/internal/app/metrics"
	"github.com/infrademo/infrademo/internal/config"
	"github.com/infrademo/infrademo/pkg/logger"
)

// Message is one outbound plain-text mail.
type Message struct {
	To      string
	From    string
	Subject string
	Body    string
}

const sendTimeout = 10 * time.Second

// Sender talks to the MailHog relay: plain SMTP, no TLS, no auth.
type Sender struct {
	host string
	port int
	log  *logger.Logger
}

// NewSender creates a sender for the configured relay.
func NewSender(cfg config.MailConfig, log *logger.Logger) *Sender {
	return &Sender{host: cfg.Host, port: cfg.Port, log: log}
}

// Send composes and submits one message. Malformed addresses fail here
// before any connection is dialed.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithTLSPolicy(gomail.NoTLS),
		gomail.WithTimeout(sendTimeout),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	err = client.DialAndSendWithContext(ctx, m)
	metrics.RecordMailDelivery(err == nil)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	s.log.Infof("email sent to %s", msg.To)
	return nil
}
