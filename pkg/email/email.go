package email

import (
	"fmt"
	"net/smtp"
)

// Message is a single outbound mail. From is the address interested parties
// should reply to; the authenticated SMTP account stays the envelope sender.
type Message struct {
	To      string
	From    string
	Subject string
	Text    string
}

// Sender delivers messages to a mail relay.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender sends plain text email through a plain-auth SMTP relay.
type SMTPSender struct {
	host     string
	port     string
	sender   string
	password string
}

// NewSMTPSender creates a sender bound to the given relay credentials.
func NewSMTPSender(host, port, sender, password string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		sender:   sender,
		password: password,
	}
}

// Send delivers the message over SMTP.
func (s *SMTPSender) Send(msg Message) error {
	auth := smtp.PlainAuth("", s.sender, s.password, s.host)

	replyTo := msg.From
	if replyTo == "" {
		replyTo = s.sender
	}

	body := []byte("To: " + msg.To + "\r\n" +
		"From: " + s.sender + "\r\n" +
		"Reply-To: " + replyTo + "\r\n" +
		"Subject: " + msg.Subject + "\r\n" +
		"\r\n" + msg.Text + "\r\n")

	address := s.host + ":" + s.port

	if err := smtp.SendMail(address, auth, s.sender, []string{msg.To}, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
