package email

import (
	"fmt"

	"github.com/SorrisoKids/clinic-go/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Service sends clinic notification emails. All sends are best-effort: a
// failed send is logged and never fails the operation that triggered it.
type Service struct {
	cfg    *config.Config
	dialer *gomail.Dialer
	log    zerolog.Logger
}

// NewService creates the email service. When SMTP credentials are not
// configured the service is disabled and sends become logged no-ops, so
// registration and booking still work in development.
func NewService(cfg *config.Config, log zerolog.Logger) *Service {
	s := &Service{cfg: cfg, log: log.With().Str("component", "email").Logger()}

	if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
		s.log.Warn().Msg("SMTP credentials not configured, email sending disabled")
		return s
	}

	s.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return s
}

// Enabled reports whether the service has a configured SMTP transport.
func (s *Service) Enabled() bool {
	return s.dialer != nil
}

func (s *Service) send(to, subject, htmlBody string) error {
	if !s.Enabled() {
		s.log.Info().Str("to", to).Str("subject", subject).Msg("email disabled, skipping send")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", s.cfg.SMTPFromName, s.cfg.SMTPFromEmail))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
