package services

import (
	"errors"
	"log"

	"gopkg.in/gomail.v2"
)

// Mailer dispatches outgoing mail. The SMTP implementation is installed in
// main; tests install fakes.
type Mailer interface {
	Send(subject, body string, recipients []string, replyTo string) error
}

// Mail is the process-wide mail dispatcher. Nil means mail is not configured.
var Mail Mailer

// ErrNoAdminsConfigured is returned when a contact relay has nowhere to go.
var ErrNoAdminsConfigured = errors.New("no admin recipients configured")

// SMTPMailer sends mail through an SMTP relay using gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(subject, body string, recipients []string, replyTo string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject)
	if replyTo != "" {
		msg.SetHeader("Reply-To", replyTo)
	}
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}

// MailAdminsContact relays a validated contact or hosting message to the
// configured admin recipients, with the submitter as Reply-To. A missing
// recipient list is a configuration error: logged, nothing sent.
func MailAdminsContact(subjectPrefix, subject, body string, admins []string, replyTo string) error {
	log.Printf("contact form from %s", replyTo)

	if len(admins) == 0 {
		log.Printf("ERROR: ADMIN_EMAILS not configured, can not send message")
		return ErrNoAdminsConfigured
	}
	if Mail == nil {
		log.Printf("ERROR: mail dispatcher not configured, can not send message")
		return ErrNoAdminsConfigured
	}

	return Mail.Send(subjectPrefix+subject, body, admins, replyTo)
}
