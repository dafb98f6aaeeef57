package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

// VerificationEmail is the data rendered into a verification code email.
type VerificationEmail struct {
	ProductName   string
	RecipientName string
	CompanyName   string
	Code          string
	TTL           time.Duration
	Resend        bool
	Year          int
}

const verificationHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 10px;">
  <div style="text-align: center; margin-bottom: 20px;">
    <span style="font-size: 24px; font-weight: bold;">{{.ProductName}}</span>
  </div>
  <h2 style="color: #333; text-align: center;">Your Verification Code</h2>
  <p style="color: #555; line-height: 1.5;">Hello {{.Greeting}},</p>
  <p style="color: #555; line-height: 1.5;">{{.Intro}}</p>
  <div style="text-align: center; margin: 30px 0;">
    <div style="background-color: #f5f5f5; padding: 15px; border-radius: 8px; font-size: 32px; font-weight: bold; letter-spacing: 5px;">{{.Code}}</div>
    <p style="color: #777; font-size: 14px; margin-top: 10px;">This code will expire in {{.Minutes}} minutes</p>
  </div>
  <p style="color: #555; line-height: 1.5;">If you didn't request this code, you can safely ignore this email.</p>
  <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #e0e0e0; text-align: center; color: #888; font-size: 12px;">
    <p>&copy; {{.Year}} {{.ProductName}}. All rights reserved.</p>
    {{if .CompanyName}}<p>{{.CompanyName}}</p>{{end}}
  </div>
</div>`

const verificationText = `Hello {{.Greeting}},

{{.Intro}}

    {{.Code}}

This code will expire in {{.Minutes}} minutes.

If you didn't request this code, you can safely ignore this email.
{{if .CompanyName}}
{{.CompanyName}}{{end}}
`

const testHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">{{.ProductName}} Email Test</h2>
  <p style="color: #555; line-height: 1.5;">This is a test email sent at {{.SentAt}}. If you can read it, outbound mail is working.</p>
</div>`

var (
	verificationHTMLTmpl = htmltemplate.Must(htmltemplate.New("verification").Parse(verificationHTML))
	verificationTextTmpl = texttemplate.Must(texttemplate.New("verification").Parse(verificationText))
	testHTMLTmpl         = htmltemplate.Must(htmltemplate.New("test").Parse(testHTML))
)

type verificationView struct {
	VerificationEmail
	Greeting string
	Intro    string
	Minutes  int
}

// Subject returns the first-issue or resend subject line.
func (e VerificationEmail) Subject() string {
	if e.Resend {
		return fmt.Sprintf("Your New %s Verification Code", e.ProductName)
	}
	return fmt.Sprintf("Your %s Verification Code", e.ProductName)
}

// Render builds the message for to. The code appears verbatim in both bodies.
func (e VerificationEmail) Render(to string) (Message, error) {
	if e.Year == 0 {
		e.Year = time.Now().Year()
	}
	view := verificationView{
		VerificationEmail: e,
		Greeting:          strings.TrimSpace(e.RecipientName),
		Intro:             "Please use the code below to verify your email address:",
		Minutes:           int(e.TTL.Round(time.Minute) / time.Minute),
	}
	if view.Greeting == "" {
		view.Greeting = "there"
	}
	if e.Resend {
		view.Intro = "You requested a new verification code. Please use the code below to verify your email address:"
	}

	var html, text bytes.Buffer
	if err := verificationHTMLTmpl.Execute(&html, view); err != nil {
		return Message{}, fmt.Errorf("render verification html: %w", err)
	}
	if err := verificationTextTmpl.Execute(&text, view); err != nil {
		return Message{}, fmt.Errorf("render verification text: %w", err)
	}
	return Message{
		To:      to,
		ToName:  strings.TrimSpace(e.RecipientName),
		Subject: e.Subject(),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// TestEmail renders the operator connectivity check message.
func TestEmail(productName, to string, sentAt time.Time) (Message, error) {
	var html bytes.Buffer
	err := testHTMLTmpl.Execute(&html, struct {
		ProductName string
		SentAt      string
	}{productName, sentAt.UTC().Format(time.RFC1123)})
	if err != nil {
		return Message{}, fmt.Errorf("render test email: %w", err)
	}
	return Message{
		To:      to,
		Subject: productName + " Email Test",
		HTML:    html.String(),
		Text:    fmt.Sprintf("This is a test email sent at %s.", sentAt.UTC().Format(time.RFC1123)),
	}, nil
}
