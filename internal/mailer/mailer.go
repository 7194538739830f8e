package mailer

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	mail "gopkg.in/mail.v2"
)

const (
	FromName                  = "Souq"
	maxRetries                = 3
	OrderConfirmationTemplate = "order_confirmation.tmpl"
)

//go:embed "templates"
var FS embed.FS

var ErrNotConfigured = errors.New("mailer: smtp host not configured")

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}

// SMTPMailer renders an embedded template and delivers it over SMTP.
type SMTPMailer struct {
	dialer    *mail.Dialer
	fromEmail string
	backoff   time.Duration
}

func NewSMTP(host string, port int, username, password, fromEmail string) (*SMTPMailer, error) {
	if host == "" {
		return nil, ErrNotConfigured
	}
	d := mail.NewDialer(host, port, username, password)
	d.Timeout = 10 * time.Second
	return &SMTPMailer{dialer: d, fromEmail: fromEmail, backoff: time.Second}, nil
}

// Render executes the "subject" and "body" blocks of templateFile.
func Render(templateFile string, data any) (subject, body string, err error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return "", "", err
	}

	var s, b bytes.Buffer
	if err := tmpl.ExecuteTemplate(&s, "subject", data); err != nil {
		return "", "", err
	}
	if err := tmpl.ExecuteTemplate(&b, "body", data); err != nil {
		return "", "", err
	}
	return s.String(), b.String(), nil
}

// Send returns the number of the attempt that succeeded.
func (m *SMTPMailer) Send(templateFile, username, email string, data any) (int, error) {
	subject, body, err := Render(templateFile, data)
	if err != nil {
		return 0, err
	}

	msg := mail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, FromName)
	msg.SetAddressHeader("To", email, username)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		if lastErr = m.dialer.DialAndSend(msg); lastErr == nil {
			return i, nil
		}
		// exponential backoff
		time.Sleep(m.backoff * time.Duration(1<<(i-1)))
	}
	return maxRetries, fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}

// OrderLine and OrderEmail feed OrderConfirmationTemplate. Strings are
// already in the customer's language.
type OrderLine struct {
	Name      string
	Quantity  int
	LineTotal string
}

type OrderEmail struct {
	Subject     string
	Dir         string
	Greeting    string
	OrderNumber string
	Lines       []OrderLine
	Discount    string
	Total       string
	Currency    string
}
