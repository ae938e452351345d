package services

import (
	"fmt"

	"towerhub-api/config"

	"github.com/go-mail/mail/v2"
	"github.com/rs/zerolog"
)

// EmailService interface pour l'envoi d'emails
type EmailService interface {
	Send(to, subject, body string) error
}

// LogEmailService implémentation qui log les emails (pour développement)
type LogEmailService struct {
	logger zerolog.Logger
}

func NewLogEmailService(logger zerolog.Logger) *LogEmailService {
	return &LogEmailService{logger: logger}
}

func (s *LogEmailService) Send(to, subject, body string) error {
	s.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("email not sent, SMTP disabled")
	return nil
}

// SMTPEmailService pour l'envoi réel d'emails via SMTP
type SMTPEmailService struct {
	dialer *mail.Dialer
	from   string
	logger zerolog.Logger
}

func NewSMTPEmailService(cfg config.SMTPConfig, logger zerolog.Logger) *SMTPEmailService {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	// Pour les serveurs locaux comme Mailpit, désactiver TLS
	if cfg.Host == "localhost" || cfg.Host == "127.0.0.1" {
		d.TLSConfig = nil
		d.StartTLSPolicy = mail.NoStartTLS
	}
	return &SMTPEmailService{dialer: d, from: cfg.From, logger: logger}
}

func (s *SMTPEmailService) Send(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}

	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// NewEmailService crée le service email approprié selon la configuration
func NewEmailService(cfg *config.Config, logger zerolog.Logger) EmailService {
	if cfg.SMTP.Enabled() {
		return NewSMTPEmailService(cfg.SMTP, logger)
	}
	logger.Info().Msg("SMTP_HOST not configured, using log email service")
	return NewLogEmailService(logger)
}
