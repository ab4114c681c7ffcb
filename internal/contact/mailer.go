package contact

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

// ErrNotConfigured is returned when required SMTP settings are missing. The
// handler fails closed on it rather than attempting a partial send.
var ErrNotConfigured = errors.New("email service is not configured")

// SMTPSettings is the operator-supplied mail relay configuration.
type SMTPSettings struct {
	Host string
	Port int
	User string
	Pass string
	// Secure forces implicit TLS on or off. When nil the connection is
	// implicit TLS iff Port is 465, otherwise STARTTLS is attempted.
	Secure *bool
	// From overrides the From header. When empty the header shows the
	// submitter's name with the SMTP account as the actual mailbox.
	From      string
	Recipient string
}

// Configured reports whether the settings are complete enough to send.
func (s SMTPSettings) Configured() bool {
	return s.Host != "" && s.Port != 0 && s.User != "" && s.Pass != ""
}

// UseImplicitTLS reports whether the connection itself should be TLS.
func (s SMTPSettings) UseImplicitTLS() bool {
	if s.Secure != nil {
		return *s.Secure
	}
	return s.Port == 465
}

// Message is a composed contact notification ready for dispatch.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

var headerSanitizer = strings.NewReplacer("\r", "", "\n", "")

// sanitizeHeader strips CR/LF from a user-supplied value before it is
// written into a MIME header, so a submission cannot smuggle extra headers
// (e.g. a Bcc) into the composed message.
func sanitizeHeader(v string) string {
	return headerSanitizer.Replace(v)
}

// Compose builds the notification email for one validated payload. Reply-To
// is the submitter so the operator can answer directly; the envelope sender
// stays the authenticated SMTP account so replies never silently originate
// from the visitor's unverified address.
func Compose(s SMTPSettings, p Payload) *Message {
	name := sanitizeHeader(p.FullName())
	email := sanitizeHeader(p.Email)

	from := s.From
	if from == "" {
		from = fmt.Sprintf("%q <%s>", name, s.User)
	}

	body := strings.TrimSpace(p.Message)

	return &Message{
		From:    from,
		To:      s.Recipient,
		ReplyTo: email,
		Subject: "New portfolio inquiry from " + name,
		Text: strings.Join([]string{
			"Name: " + name,
			"Email: " + email,
			"",
			body,
		}, "\n"),
		HTML: renderHTML(name, email, body),
	}
}

func renderHTML(name, email, body string) string {
	escaped := strings.ReplaceAll(html.EscapeString(body), "\n", "<br />")
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; line-height: 1.6;">`)
	b.WriteString("<h2>New portfolio inquiry</h2>")
	b.WriteString("<p><strong>Name:</strong> " + html.EscapeString(name) + "</p>")
	b.WriteString("<p><strong>Email:</strong> " + html.EscapeString(email) + "</p>")
	b.WriteString("<hr />")
	b.WriteString("<p>" + escaped + "</p>")
	b.WriteString("</div>")
	return b.String()
}

// encode renders the message as a multipart/alternative MIME document.
func (m *Message) encode() []byte {
	var buf bytes.Buffer
	parts := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", m.From)
	fmt.Fprintf(&buf, "To: %s\r\n", m.To)
	fmt.Fprintf(&buf, "Reply-To: %s\r\n", m.ReplyTo)
	fmt.Fprintf(&buf, "Subject: %s\r\n", m.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n", parts.Boundary())
	buf.WriteString("\r\n")

	textPart, _ := parts.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/plain; charset="UTF-8"`},
	})
	textPart.Write([]byte(m.Text))

	htmlPart, _ := parts.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="UTF-8"`},
	})
	htmlPart.Write([]byte(m.HTML))

	parts.Close()
	return buf.Bytes()
}

// Sender delivers a composed message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPSender sends messages through the configured relay. The connection
// carries a deadline so a hung relay cannot hold a request open forever.
type SMTPSender struct {
	settings SMTPSettings
	timeout  time.Duration
}

func NewSMTPSender(settings SMTPSettings) *SMTPSender {
	return &SMTPSender{
		settings: settings,
		timeout:  30 * time.Second,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if !s.settings.Configured() {
		return ErrNotConfigured
	}

	addr := net.JoinHostPort(s.settings.Host, strconv.Itoa(s.settings.Port))
	dialer := &net.Dialer{Timeout: s.timeout}

	var conn net.Conn
	var err error
	if s.settings.UseImplicitTLS() {
		tlsDialer := &tls.Dialer{
			NetDialer: dialer,
			Config:    &tls.Config{ServerName: s.settings.Host},
		}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	conn.SetDeadline(time.Now().Add(s.timeout))

	client, err := smtp.NewClient(conn, s.settings.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SMTP handshake failed: %w", err)
	}
	defer client.Close()

	if !s.settings.UseImplicitTLS() {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.settings.Host}); err != nil {
				return fmt.Errorf("STARTTLS failed: %w", err)
			}
		}
	}

	if ok, _ := client.Extension("AUTH"); ok {
		auth := smtp.PlainAuth("", s.settings.User, s.settings.Pass, s.settings.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	// Envelope sender is the authenticated mailbox, not the From header.
	if err := client.Mail(s.settings.User); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(msg.encode()); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close email data: %w", err)
	}

	return client.Quit()
}
