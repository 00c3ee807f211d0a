package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendCancellationNotice(n CancellationNotice) error
	SendBookingNotice(n BookingNotice) error
}

// CancellationNotice tells one participant that the other cancelled
type CancellationNotice struct {
	ToEmail     string
	ToName      string
	CancelledBy string
	With        string
	Datetime    time.Time
	Reason      string
}

// BookingNotice tells a faculty member that a slot was booked
type BookingNotice struct {
	ToEmail  string
	ToName   string
	Student  string
	Datetime time.Time
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
}

// Configured reports whether enough settings exist to actually send mail
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
	send   func(to, message string) error
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	s := &EmailServiceImpl{
		config: config,
		logger: logger,
	}
	s.send = s.sendSMTP
	return s
}

var cancellationTmpl = template.Must(template.New("cancel").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<p>Hello {{.ToName}},</p>
		<p>Your consultation with {{.With}} on <strong>{{.When}}</strong> was cancelled by the {{.CancelledBy}}.</p>
		<p>Reason: {{.Reason}}</p>
		<p>The UniConsult Team</p>
	</div>
</body>
</html>`))

var bookingTmpl = template.Must(template.New("booking").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<p>Hello {{.ToName}},</p>
		<p>{{.Student}} booked a consultation with you on <strong>{{.When}}</strong>.</p>
		<p>The UniConsult Team</p>
	</div>
</body>
</html>`))

const whenLayout = "Mon 02 Jan 2006 15:04 UTC"

// SendCancellationNotice emails the counterpart of a cancelled consultation
func (s *EmailServiceImpl) SendCancellationNotice(n CancellationNotice) error {
	body, err := render(cancellationTmpl, struct {
		CancellationNotice
		When string
	}{n, n.Datetime.UTC().Format(whenLayout)})
	if err != nil {
		return err
	}
	return s.deliver(n.ToEmail, "Consultation cancelled", body)
}

// SendBookingNotice emails the faculty member of a new booking
func (s *EmailServiceImpl) SendBookingNotice(n BookingNotice) error {
	body, err := render(bookingTmpl, struct {
		BookingNotice
		When string
	}{n, n.Datetime.UTC().Format(whenLayout)})
	if err != nil {
		return err
	}
	return s.deliver(n.ToEmail, "New consultation booked", body)
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

func (s *EmailServiceImpl) deliver(toEmail, subject, htmlBody string) error {
	// Without SMTP credentials the mail is only logged (development)
	if !s.config.Configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Msg("SMTP credentials not configured - email not sent")
		return nil
	}
	return s.send(toEmail, s.buildMessage(toEmail, subject, htmlBody))
}

func (s *EmailServiceImpl) buildMessage(toEmail, subject, htmlBody string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", toEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return b.String()
}

// sendSMTP sends a prepared message
func (s *EmailServiceImpl) sendSMTP(toEmail, message string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, []byte(message)); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create SMTP client")
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write([]byte(message)); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
