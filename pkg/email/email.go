package email

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// Attachment is an in-memory file sent with a message.
type Attachment struct {
	Name string
	Data []byte
}

// Sender is the transport used by EmailService; gomail's dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService sends the store's report emails
type EmailService struct {
	config EmailConfig
	sender Sender
}

// NewEmailService creates a new email service backed by SMTP
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{
		config: config,
		sender: gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUsername, config.SMTPPassword),
	}
}

// NewEmailServiceWithSender lets callers swap the transport.
func NewEmailServiceWithSender(config EmailConfig, sender Sender) *EmailService {
	return &EmailService{config: config, sender: sender}
}

// DailyReport is the data rendered into the end-of-day email.
type DailyReport struct {
	StoreName   string
	Date        string
	Currency    string
	Sales       string
	Expenses    string
	Investments string
	Orders      int
	UdharTotal  string
	LowStock    []string
}

// SendDailyReport emails the summary to every recipient with the xlsx attached.
func (s *EmailService) SendDailyReport(to []string, report DailyReport, attachment *Attachment) error {
	if len(to) == 0 {
		return nil
	}

	body, err := renderDailyReport(report)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromEmail, s.config.FromName)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", fmt.Sprintf("%s daily report - %s", report.StoreName, report.Date))
	m.SetBody("text/html", body)

	if attachment != nil {
		data := attachment.Data
		m.Attach(attachment.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func renderDailyReport(report DailyReport) (string, error) {
	var buf bytes.Buffer
	if err := dailyReportTemplate.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var dailyReportTemplate = template.Must(template.New("daily_report").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Daily report</title>
</head>
<body style="margin: 0; padding: 24px; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background-color: #f4f4f5;">
    <table width="100%" cellpadding="0" cellspacing="0" style="max-width: 520px; margin: 0 auto; background: #ffffff; border-radius: 8px;">
        <tr>
            <td style="padding: 24px 32px; border-bottom: 1px solid #e4e4e7;">
                <h2 style="margin: 0; color: #18181b;">{{.StoreName}}</h2>
                <p style="margin: 4px 0 0; color: #71717a;">Summary for {{.Date}}</p>
            </td>
        </tr>
        <tr>
            <td style="padding: 24px 32px;">
                <table width="100%" cellpadding="6" cellspacing="0" style="color: #27272a;">
                    <tr><td>Sales</td><td align="right">{{.Currency}} {{.Sales}}</td></tr>
                    <tr><td>Expenses</td><td align="right">{{.Currency}} {{.Expenses}}</td></tr>
                    <tr><td>Investments</td><td align="right">{{.Currency}} {{.Investments}}</td></tr>
                    <tr><td>Bills issued</td><td align="right">{{.Orders}}</td></tr>
                    <tr><td>Outstanding udhar</td><td align="right">{{.Currency}} {{.UdharTotal}}</td></tr>
                </table>
                {{if .LowStock}}
                <h4 style="margin: 24px 0 8px; color: #b91c1c;">Low stock</h4>
                <ul style="margin: 0; padding-left: 18px; color: #3f3f46;">
                    {{range .LowStock}}<li>{{.}}</li>{{end}}
                </ul>
                {{end}}
            </td>
        </tr>
    </table>
</body>
</html>`))
