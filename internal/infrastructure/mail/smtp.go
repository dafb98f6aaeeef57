package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/workforce-verify/internal/pkg/id"
	"gopkg.in/gomail.v2"
)

// dialer is the part of *gomail.Dialer the provider needs.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPProvider sends through a plain SMTP relay (Mailpit or MailHog in development).
type SMTPProvider struct {
	dialer dialer
	from   Sender
}

func NewSMTPProvider(host string, port int, username, password string, from Sender) *SMTPProvider {
	return &SMTPProvider{dialer: gomail.NewDialer(host, port, username, password), from: from}
}

func (p *SMTPProvider) Name() string { return "smtp" }

func (p *SMTPProvider) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	messageID := id.MessageID(domainOf(p.from.Address))

	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.from.Address, p.from.Name)
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/html", msg.HTML)
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp: %w", err)
	}
	return messageID, nil
}

func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 {
		return addr[i+1:]
	}
	return ""
}
