package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendgridClient is the part of *sendgrid.Client the provider needs.
type sendgridClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGridProvider sends through the SendGrid v3 mail API.
type SendGridProvider struct {
	client  sendgridClient
	from    Sender
	sandbox bool
}

func NewSendGridProvider(apiKey string, from Sender, sandbox bool) *SendGridProvider {
	return &SendGridProvider{client: sendgrid.NewSendClient(apiKey), from: from, sandbox: sandbox}
}

func (p *SendGridProvider) Name() string { return "sendgrid" }

func (p *SendGridProvider) Send(ctx context.Context, msg Message) (string, error) {
	from := sgmail.NewEmail(p.from.Name, p.from.Address)
	to := sgmail.NewEmail(msg.ToName, msg.To)
	m := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)
	if p.sandbox {
		ms := sgmail.NewMailSettings()
		ms.SetSandboxMode(sgmail.NewSetting(true))
		m.MailSettings = ms
	}

	resp, err := p.client.SendWithContext(ctx, m)
	if err != nil {
		return "", fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return headerValue(resp.Headers, "X-Message-Id"), nil
}

func headerValue(h map[string][]string, key string) string {
	if vs := h[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}
