package mail

import (
	"log/slog"

	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends mail off the request path: handlers enqueue, a single worker
// goroutine drains the queue. Send failures are logged and never surfaced.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	queue  chan Message
	log    *slog.Logger
	done   chan struct{}
}

func New(host string, port int, user, password, from string, log *slog.Logger) *Mailer {
	m := &Mailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
		queue:  make(chan Message, 64),
		log:    log,
		done:   make(chan struct{}),
	}
	go m.run()
	return m
}

// Enqueue never blocks the caller. A full queue drops the message with a log
// line, matching the best-effort contract of outbound mail.
func (m *Mailer) Enqueue(to, subject, html string) {
	select {
	case m.queue <- Message{To: to, Subject: subject, HTML: html}:
	default:
		m.log.Warn("mail queue full, dropping message", "to", to, "subject", subject)
	}
}

func (m *Mailer) run() {
	defer close(m.done)
	for msg := range m.queue {
		gm := gomail.NewMessage()
		gm.SetHeader("From", m.from)
		gm.SetHeader("To", msg.To)
		gm.SetHeader("Subject", msg.Subject)
		gm.SetBody("text/html", msg.HTML)
		if err := m.dialer.DialAndSend(gm); err != nil {
			m.log.Error("mail send failed", "to", msg.To, "subject", msg.Subject, "error", err)
		}
	}
}

// Close drains the queue and stops the worker.
func (m *Mailer) Close() {
	close(m.queue)
	<-m.done
}
