package mail

import (
	"context"
	"fmt"

	"github.com/workforce-verify/internal/config"
	"github.com/workforce-verify/internal/domain"
	"go.uber.org/zap"
)

// DeliveryResult describes one accepted send.
type DeliveryResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Service   string `json:"service"`
}

// Dispatcher sends through a single configured provider. There is no in-call
// fallback: a provider failure is a delivery failure.
type Dispatcher struct {
	provider Provider
	log      *zap.Logger
}

func NewDispatcher(provider Provider, log *zap.Logger) *Dispatcher {
	return &Dispatcher{provider: provider, log: log}
}

// NewDispatcherFromConfig picks SendGrid when an API key is configured and SMTP otherwise.
func NewDispatcherFromConfig(cfg config.Mail, log *zap.Logger) *Dispatcher {
	from := Sender{Address: cfg.From, Name: cfg.FromName}
	var p Provider
	if cfg.SendGridAPIKey != "" {
		p = NewSendGridProvider(cfg.SendGridAPIKey, from, cfg.SendGridSandbox)
	} else {
		p = NewSMTPProvider(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, from)
	}
	log.Info("mail provider selected", zap.String("service", p.Name()), zap.Bool("sandbox", cfg.SendGridAPIKey != "" && cfg.SendGridSandbox))
	return NewDispatcher(p, log)
}

// Service names the active provider.
func (d *Dispatcher) Service() string { return d.provider.Name() }

// Send delivers msg. Failures wrap domain.ErrDeliveryFailed.
func (d *Dispatcher) Send(ctx context.Context, msg Message) (DeliveryResult, error) {
	if msg.To == "" || msg.Subject == "" || msg.HTML == "" {
		return DeliveryResult{Service: d.provider.Name()}, fmt.Errorf("incomplete message: %w", domain.ErrDeliveryFailed)
	}
	messageID, err := d.provider.Send(ctx, msg)
	if err != nil {
		d.log.Error("email delivery failed",
			zap.String("service", d.provider.Name()),
			zap.String("to", msg.To),
			zap.Error(err),
		)
		return DeliveryResult{Service: d.provider.Name()}, fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	d.log.Info("email sent",
		zap.String("service", d.provider.Name()),
		zap.String("to", msg.To),
		zap.String("message_id", messageID),
	)
	return DeliveryResult{Success: true, MessageID: messageID, Service: d.provider.Name()}, nil
}
