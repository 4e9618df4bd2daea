package mailer

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Host     string
	Port     string
	From     string
	Password string
}

type Mailer struct {
	cfg Config
	log *zerolog.Logger
}

func New(cfg Config, log *zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// SendConfirmation mails the ticket identifier right after a registration is
// created. Registrations without an email address are skipped silently.
func (m *Mailer) SendConfirmation(to, fullName, eventName, ticketPayload string) error {
	if to == "" {
		return nil
	}
	subject := fmt.Sprintf("You're in: %s", eventName)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour registration for %s is confirmed.\nYour ticket ID is %s — present its QR code at the door.\n\nSee you there!",
		fullName, eventName, ticketPayload,
	)
	return m.send(to, subject, body)
}

// SendReminder mails the day-before reminder scheduled via the delayed queue.
func (m *Mailer) SendReminder(to, fullName, eventName string, date time.Time, address string) error {
	if to == "" {
		return nil
	}
	subject := fmt.Sprintf("Reminder: %s", eventName)
	body := fmt.Sprintf(
		"Hi %s,\n\n%s is happening on %s at %s.\nDon't forget your ticket QR code.",
		fullName, eventName, date.Format("January 2, 2006"), address,
	)
	return m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From, to, subject, body,
	)

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		m.log.Warn().Str("to", to).Err(err).Msg("failed to send email")
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}
