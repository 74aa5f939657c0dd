package mailer

import (
	"gopkg.in/gomail.v2"
)

// Message is a rendered email ready for transport.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer is the outbound transport. Send failures are surfaced to the
// caller; nothing retries automatically.
type Mailer interface {
	Send(msg Message) error
}

// SMTP delivers mail through a gomail dialer.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(host string, port int, user, pass, from string) *SMTP {
	return &SMTP{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (s *SMTP) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	if msg.TextBody != "" {
		m.SetBody("text/plain", msg.TextBody)
		if msg.HTMLBody != "" {
			m.AddAlternative("text/html", msg.HTMLBody)
		}
	} else {
		m.SetBody("text/html", msg.HTMLBody)
	}

	return s.dialer.DialAndSend(m)
}
