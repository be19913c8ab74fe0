package config

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail/v2"
)

// SendMail delivers an HTML message through the configured SMTP server.
func SendMail(s Settings, to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	if s.SMTPHost == "" || s.SMTPFrom == "" {
		return fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}

	port := s.SMTPPort
	if port == 0 {
		port = 587
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.SMTPFrom)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := mail.NewDialer(s.SMTPHost, port, s.SMTPUser, s.SMTPPass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         s.SMTPHost,
		InsecureSkipVerify: s.SMTPSkipTLSVerify, // dev only
	}

	return d.DialAndSend(m)
}

// MailConfigured reports whether SMTP settings are complete enough to send.
func (s Settings) MailConfigured() bool {
	return s.SMTPHost != "" && s.SMTPFrom != ""
}
