package service

import (
	"context"

	"shoe-store/internal/domain"

	"go.uber.org/zap"
)

// Notifier delivers account messages to users
type Notifier interface {
	SendPasswordResetCode(ctx context.Context, user *domain.User, code string) error
}

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier writes notifications to the log instead of sending email
func NewLogNotifier(logger *zap.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) SendPasswordResetCode(ctx context.Context, user *domain.User, code string) error {
	n.logger.Info("Password reset code issued",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("code", code),
	)
	return nil
}
