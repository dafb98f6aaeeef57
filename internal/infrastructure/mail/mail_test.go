package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workforce-verify/internal/config"
	"github.com/workforce-verify/internal/domain"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type fakeSendGrid struct {
	got  *sgmail.SGMailV3
	resp *rest.Response
	err  error
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, m *sgmail.SGMailV3) (*rest.Response, error) {
	f.got = m
	return f.resp, f.err
}

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

type stubProvider struct {
	name string
	id   string
	err  error
	got  []Message
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Send(_ context.Context, msg Message) (string, error) {
	s.got = append(s.got, msg)
	return s.id, s.err
}

var testMsg = Message{To: "alice@x.com", Subject: "Hi", HTML: "<p>482913</p>", Text: "482913"}

func TestSendGridProvider_ReturnsMessageID(t *testing.T) {
	fc := &fakeSendGrid{resp: &rest.Response{StatusCode: 202, Headers: map[string][]string{"X-Message-Id": {"sg-1"}}}}
	p := &SendGridProvider{client: fc, from: Sender{Address: "noreply@x.com", Name: "WorkForce"}}

	id, err := p.Send(context.Background(), testMsg)
	require.NoError(t, err)
	assert.Equal(t, "sg-1", id)
	assert.Equal(t, "Hi", fc.got.Subject)
	assert.Nil(t, fc.got.MailSettings)
}

func TestSendGridProvider_SandboxMode(t *testing.T) {
	fc := &fakeSendGrid{resp: &rest.Response{StatusCode: 200}}
	p := &SendGridProvider{client: fc, sandbox: true}

	_, err := p.Send(context.Background(), testMsg)
	require.NoError(t, err)
	require.NotNil(t, fc.got.MailSettings)
	require.NotNil(t, fc.got.MailSettings.SandboxMode)
	assert.True(t, *fc.got.MailSettings.SandboxMode.Enable)
}

func TestSendGridProvider_Non2xxIsError(t *testing.T) {
	fc := &fakeSendGrid{resp: &rest.Response{StatusCode: 401, Body: "unauthorized"}}
	p := &SendGridProvider{client: fc}
	_, err := p.Send(context.Background(), testMsg)
	assert.ErrorContains(t, err, "status 401")
}

func TestSMTPProvider_SetsMessageID(t *testing.T) {
	fd := &fakeDialer{}
	p := &SMTPProvider{dialer: fd, from: Sender{Address: "noreply@workforce-app.com", Name: "WorkForce"}}

	id, err := p.Send(context.Background(), testMsg)
	require.NoError(t, err)
	require.Len(t, fd.sent, 1)
	assert.Equal(t, []string{id}, fd.sent[0].GetHeader("Message-ID"))
	assert.True(t, strings.HasSuffix(id, "@workforce-app.com>"))
	assert.Equal(t, []string{"Hi"}, fd.sent[0].GetHeader("Subject"))
}

func TestSMTPProvider_DialError(t *testing.T) {
	p := &SMTPProvider{dialer: &fakeDialer{err: errors.New("connection refused")}}
	_, err := p.Send(context.Background(), testMsg)
	assert.ErrorContains(t, err, "connection refused")
}

func TestDispatcher_Success(t *testing.T) {
	sp := &stubProvider{name: "sendgrid", id: "m-1"}
	res, err := NewDispatcher(sp, zap.NewNop()).Send(context.Background(), testMsg)
	require.NoError(t, err)
	assert.Equal(t, DeliveryResult{Success: true, MessageID: "m-1", Service: "sendgrid"}, res)
}

func TestDispatcher_FailureWrapsDeliveryError(t *testing.T) {
	sp := &stubProvider{name: "smtp", err: errors.New("421 try later")}
	res, err := NewDispatcher(sp, zap.NewNop()).Send(context.Background(), testMsg)
	assert.ErrorIs(t, err, domain.ErrDeliveryFailed)
	assert.False(t, res.Success)
	assert.Equal(t, "smtp", res.Service)
}

func TestDispatcher_RejectsIncompleteMessage(t *testing.T) {
	sp := &stubProvider{name: "smtp"}
	_, err := NewDispatcher(sp, zap.NewNop()).Send(context.Background(), Message{To: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrDeliveryFailed)
	assert.Empty(t, sp.got)
}

func TestNewDispatcherFromConfig_PicksProvider(t *testing.T) {
	d := NewDispatcherFromConfig(config.Mail{SendGridAPIKey: "SG.key", From: "a@x.com"}, zap.NewNop())
	assert.Equal(t, "sendgrid", d.Service())

	d = NewDispatcherFromConfig(config.Mail{SMTPHost: "localhost", SMTPPort: 1025, From: "a@x.com"}, zap.NewNop())
	assert.Equal(t, "smtp", d.Service())
}

func TestVerificationEmail_Render(t *testing.T) {
	e := VerificationEmail{ProductName: "WorkForce", RecipientName: "Alice Smith", CompanyName: "Acme", Code: "004213", TTL: 30 * time.Minute, Year: 2026}
	msg, err := e.Render("alice@x.com")
	require.NoError(t, err)

	assert.Equal(t, "Your WorkForce Verification Code", msg.Subject)
	assert.Contains(t, msg.HTML, "004213")
	assert.Contains(t, msg.Text, "004213")
	assert.Contains(t, msg.HTML, "Hello Alice Smith,")
	assert.Contains(t, msg.HTML, "This code will expire in 30 minutes")
	assert.Contains(t, msg.HTML, "Acme")
	assert.Equal(t, "alice@x.com", msg.To)
}

func TestVerificationEmail_ResendAndDefaults(t *testing.T) {
	e := VerificationEmail{ProductName: "WorkForce", Code: "482913", TTL: 15 * time.Minute, Resend: true}
	msg, err := e.Render("bob@x.com")
	require.NoError(t, err)

	assert.Equal(t, "Your New WorkForce Verification Code", msg.Subject)
	assert.Contains(t, msg.HTML, "Hello there,")
	assert.Contains(t, msg.HTML, "expire in 15 minutes")
	assert.Contains(t, msg.HTML, "new verification code")
}

func TestVerificationEmail_EscapesNames(t *testing.T) {
	e := VerificationEmail{ProductName: "WorkForce", RecipientName: "<script>x</script>", Code: "111111", TTL: time.Minute}
	msg, err := e.Render("a@x.com")
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestTestEmail(t *testing.T) {
	msg, err := TestEmail("WorkForce", "ops@x.com", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "WorkForce Email Test", msg.Subject)
	assert.Contains(t, msg.HTML, "01 Mar 2026")
}
