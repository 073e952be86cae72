package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// LogNotifier stands in for a real mail provider; it only writes a log line.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) SendWelcomeEmail(ctx context.Context, in WelcomeEmailInput) error {
	if err := simulateProvider(ctx); err != nil {
		return err
	}

	slog.Default().InfoContext(ctx, "notification.welcome_email",
		"email", in.Email,
		"first_name", in.FirstName,
	)
	return nil
}

func (n *LogNotifier) SendCommentNotification(ctx context.Context, in CommentNotificationInput) error {
	if err := simulateProvider(ctx); err != nil {
		return err
	}

	slog.Default().InfoContext(ctx, "notification.comment",
		"email", in.Email,
		"post_title", in.PostTitle,
	)
	return nil
}

func simulateProvider(ctx context.Context) error {
	// Optional: simulate slow provider
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	// Optional: simulate provider outage
	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	return nil
}
