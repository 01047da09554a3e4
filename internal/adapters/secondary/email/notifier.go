package email

import (
	"context"
	"log/slog"

	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

// LogNotifier delivers notifications to the log instead of a mail server.
type LogNotifier struct {
	userRepo ports.UserRepository
	logger   *slog.Logger
}

var _ ports.Notifier = (*LogNotifier)(nil)

// NewLogNotifier needs the user store to look up recipient addresses.
func NewLogNotifier(userRepo ports.UserRepository, logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{
		userRepo: userRepo,
		logger:   logger.With("component", "email_notifier"),
	}
}

// Notify runs off the request path, so failures are logged and dropped.
func (n *LogNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	user, err := n.userRepo.GetByID(ctx, params.RecipientUserID)
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to get user for notification",
			"user_id", params.RecipientUserID,
			"error", err,
		)
		return
	}

	n.logger.InfoContext(ctx, "mock email sent",
		"to_email", user.Email,
		"subject", params.Subject,
		"message", params.Message,
		"ticket_id", params.TicketID,
	)
}
