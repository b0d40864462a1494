package smtp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"github.com/sjpiano/paytrack/internal/config"
)

// Mailer sends receipt emails.
type Mailer interface {
	// SendWithAttachment delivers a plain-text body plus one PDF attachment
	// to the recipient. The configured audit BCC address is always copied.
	SendWithAttachment(to, subject, body, filename string, attachment []byte) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	auditBCC string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		auditBCC: cfg.AuditBCC,
	}
}

func (m *mailer) SendWithAttachment(to, subject, body, filename string, attachment []byte) error {
	msg, err := m.buildMessage(to, subject, body, filename, attachment)
	if err != nil {
		return err
	}

	recipients := []string{to}
	if m.auditBCC != "" {
		recipients = append(recipients, m.auditBCC)
	}

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return smtp.SendMail(addr, auth, m.from, recipients, msg)
}

// buildMessage assembles a multipart/mixed MIME message: one text part, one
// base64 PDF part. The BCC recipient is deliberately absent from the headers;
// it only appears on the envelope.
func (m *mailer) buildMessage(to, subject, body, filename string, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", m.from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	textPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, fmt.Errorf("create text part: %w", err)
	}
	fmt.Fprintf(textPart, "%s\r\n", body)

	pdfPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/pdf"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", filename)},
	})
	if err != nil {
		return nil, fmt.Errorf("create attachment part: %w", err)
	}
	enc := base64.NewEncoder(base64.StdEncoding, pdfPart)
	if _, err := enc.Write(attachment); err != nil {
		return nil, fmt.Errorf("encode attachment: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finish attachment: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close message: %w", err)
	}
	return buf.Bytes(), nil
}
