package notifier

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"FuelWatch/internal/model"
)

// Notifier delivers the weekly report with the spreadsheet attached.
type Notifier interface {
	SendReport(sheetPath string, ds model.Dataset) error
}

// EmailNotifier sends the report over SMTP.
type EmailNotifier struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string
	Subject    string
}

func NewEmailNotifier(host string, port int, username, password, from string, recipients []string, subject string) *EmailNotifier {
	return &EmailNotifier{
		Host:       host,
		Port:       port,
		Username:   username,
		Password:   password,
		From:       from,
		Recipients: recipients,
		Subject:    subject,
	}
}

// SendReport composes and sends the report email, attaching the
// spreadsheet. A single attempt: any failure surfaces to the caller.
func (n *EmailNotifier) SendReport(sheetPath string, ds model.Dataset) error {
	if len(n.Recipients) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.From)
	m.SetHeader("To", n.Recipients...)
	m.SetHeader("Subject", n.Subject)
	m.SetBody("text/plain", FormatReportBody(ds))
	m.Attach(sheetPath)

	d := gomail.NewDialer(n.Host, n.Port, n.Username, n.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}
