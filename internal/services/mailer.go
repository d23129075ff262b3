package services

import (
	"context"

	"github.com/nutqapp/nutq-backend/internal/logger"
)

// Mailer is the delivery port for account emails. Delivery itself is an
// external collaborator; the default implementation only logs, with the
// code redacted by the logger.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
	SendPasswordResetCode(ctx context.Context, email, code string) error
}

type logMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) Mailer {
	return &logMailer{log: log.With("service", "LogMailer")}
}

func (m *logMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	m.log.Info("Verification code issued", "email", email, "code", code)
	return nil
}

func (m *logMailer) SendPasswordResetCode(ctx context.Context, email, code string) error {
	m.log.Info("Password reset code issued", "email", email, "code", code)
	return nil
}
