package email

import "fmt"

// The Send* methods log their own failures and return nothing; callers invoke
// them in a goroutine so the triggering operation never blocks or fails on a
// bad SMTP day.

// SendVerification emails a guardian their account activation link.
func (s *Service) SendVerification(to, name, token string) {
	link := fmt.Sprintf("%s/api/auth/verify-email?token=%s", s.cfg.BaseURL, token)
	if err := s.send(to, "Confirm your email - Sorriso Kids", verificationTemplate(name, link)); err != nil {
		s.log.Error().Err(err).Str("to", to).Msg("failed to send verification email")
		return
	}
	s.log.Info().Str("to", to).Msg("verification email sent")
}

// SendPasswordReset emails a single-use reset link.
func (s *Service) SendPasswordReset(to, token string) {
	link := fmt.Sprintf("%s/auth/reset-password?token=%s", s.cfg.BaseURL, token)
	if err := s.send(to, "Password reset - Sorriso Kids", passwordResetTemplate(link)); err != nil {
		s.log.Error().Err(err).Str("to", to).Msg("failed to send password reset email")
		return
	}
	s.log.Info().Str("to", to).Msg("password reset email sent")
}

// SendAppointmentConfirmation emails the guardian after a booking.
func (s *Service) SendAppointmentConfirmation(to, childName, dentistName, date, startTime string) {
	body := appointmentConfirmationTemplate(childName, dentistName, date, startTime)
	if err := s.send(to, "Appointment confirmed - Sorriso Kids", body); err != nil {
		s.log.Error().Err(err).Str("to", to).Msg("failed to send appointment confirmation")
		return
	}
	s.log.Info().Str("to", to).Msg("appointment confirmation sent")
}

// SendDentistWelcome emails an approved volunteer their new credentials.
func (s *Service) SendDentistWelcome(to, name, tempPassword string) {
	link := fmt.Sprintf("%s/auth/dentist/login", s.cfg.BaseURL)
	body := dentistWelcomeTemplate(name, to, tempPassword, link)
	if err := s.send(to, "Your volunteer application was approved", body); err != nil {
		s.log.Error().Err(err).Str("to", to).Msg("failed to send dentist welcome email")
		return
	}
	s.log.Info().Str("to", to).Msg("dentist welcome email sent")
}
