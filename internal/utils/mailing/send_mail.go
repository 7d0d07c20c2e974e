package mailing

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"recipehub/internal/config"
)

type (
	Mailer interface {
		Send(toEmail string, subject string, body string) error
	}

	smtpMailer struct {
		host     string
		port     int
		sender   string
		email    string
		password string
	}
)

func NewMailer(cfg *config.Config) Mailer {
	return &smtpMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		sender:   cfg.SMTPSenderName,
		email:    cfg.SMTPAuthEmail,
		password: cfg.SMTPAuthPassword,
	}
}

func (m *smtpMailer) Send(toEmail string, subject string, body string) error {
	mailer := gomail.NewMessage()
	mailer.SetHeader("From", fmt.Sprintf("%s <%s>", m.sender, m.email))
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.host, m.port, m.email, m.password)
	return dialer.DialAndSend(mailer)
}
