package mail

import "context"

// Message is a single outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Provider delivers a Message through one transport and returns the provider's
// message id when it reports one.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) (string, error)
}

// Sender identifies who outbound mail comes from.
type Sender struct {
	Address string
	Name    string
}
