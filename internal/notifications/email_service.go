package notifications

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
	"time"
)

// EmailService renders and delivers a single notification email
type EmailService interface {
	SendNotification(ctx context.Context, notification *EmailNotification) error
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
	Timeout   time.Duration
}

type SMTPEmailService struct {
	config    *SMTPConfig
	templates map[NotificationType]*template.Template
}

func NewSMTPEmailService(config *SMTPConfig) (*SMTPEmailService, error) {
	if err := validateSMTPConfig(config); err != nil {
		return nil, err
	}

	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	service := &SMTPEmailService{
		config:    config,
		templates: make(map[NotificationType]*template.Template),
	}
	service.loadTemplates()

	return service, nil
}

func validateSMTPConfig(config *SMTPConfig) error {
	if config == nil {
		return fmt.Errorf("SMTP config is nil")
	}
	if config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if config.Username == "" {
		return fmt.Errorf("SMTP username is required")
	}
	if config.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

func (s *SMTPEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	log.Printf("📧 [SMTP] Sending %s notification to %s (%s)",
		notification.Type,
		notification.RecipientEmail,
		notification.RecipientName,
	)

	tmpl, ok := s.templates[notification.Type]
	if !ok {
		return fmt.Errorf("no email template for notification type %s", notification.Type)
	}

	data := map[string]interface{}{
		"RecipientName": notification.RecipientName,
	}
	for k, v := range notification.TemplateData {
		data[k] = v
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render template for %s: %w", notification.Type, err)
	}

	return s.send(notification.RecipientEmail, notification.Subject, body.String())
}

func (s *SMTPEmailService) send(to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if !s.config.UseTLS {
		return smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, []byte(msg.String()))
	}

	// STARTTLS by hand so we can control the TLS config
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: s.config.Host}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth failed: %w", err)
	}
	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := writer.Write([]byte(msg.String())); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish message body: %w", err)
	}

	return client.Quit()
}

func (s *SMTPEmailService) loadTemplates() {
	s.templates[NotificationTicketIssued] = template.Must(template.New("ticket_issued").Parse(`
<h2>Your booking is confirmed ✈️</h2>
<p>Hi {{.RecipientName}},</p>
<p>Your tickets are booked and ready:</p>
<ul>
{{range .TicketCodes}}<li><strong>{{.}}</strong></li>{{end}}
</ul>
<p>Total charged: <strong>{{.TotalAmount}}</strong></p>
<p>You can look up any ticket with its code at any time. Safe travels!</p>
`))

	s.templates[NotificationRefundApproved] = template.Must(template.New("refund_approved").Parse(`
<h2>Refund approved</h2>
<p>Hi {{.RecipientName}},</p>
<p>Your refund request for ticket <strong>{{.TicketCode}}</strong> has been approved.</p>
<p>Refund amount: <strong>{{.RefundAmount}}</strong></p>
<p>The amount will be returned to your original payment method within 5-7 business days.</p>
`))

	s.templates[NotificationRefundRejected] = template.Must(template.New("refund_rejected").Parse(`
<h2>Refund request update</h2>
<p>Hi {{.RecipientName}},</p>
<p>Unfortunately your refund request for ticket <strong>{{.TicketCode}}</strong> was not approved.</p>
<p>Reason: {{.Reason}}</p>
<p>Your ticket remains valid for travel.</p>
`))

	s.templates[NotificationRescheduleApproved] = template.Must(template.New("reschedule_approved").Parse(`
<h2>Reschedule confirmed</h2>
<p>Hi {{.RecipientName}},</p>
<p>Your ticket <strong>{{.TicketCode}}</strong> has been moved to flight <strong>{{.NewFlightID}}</strong>.</p>
<p>Check the ticket with its code for your updated seat and departure details.</p>
`))
}
