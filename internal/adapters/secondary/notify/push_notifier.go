package notify

import (
	"context"
	"log/slog"

	"github.com/oakline/fieldops-backend/internal/core/ports"
)

// MockPushNotifier is a secondary adapter that mocks the mobile push
// gateway used by the field app. It implements the ports.Notifier
// interface.
type MockPushNotifier struct {
	logger *slog.Logger
}

// NewMockPushNotifier creates a new mock notifier.
func NewMockPushNotifier() ports.Notifier {
	return &MockPushNotifier{
		logger: slog.Default().With("component", "push_notifier"),
	}
}

// NewMockPushNotifierWithLogger creates a new mock notifier with a custom logger.
func NewMockPushNotifierWithLogger(logger *slog.Logger) ports.Notifier {
	return &MockPushNotifier{
		logger: logger.With("component", "push_notifier"),
	}
}

// Notify logs the notification to the console instead of calling the push
// gateway. It runs in a separate goroutine and should handle its own errors.
func (n *MockPushNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	n.logger.Info("mock push notification sent",
		"tech_id", params.TechID,
		"tech_name", params.TechName,
		"subject", params.Subject,
		"message", params.Message,
		"job_id", params.JobID,
	)
}
