package notifications_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inkwell/bloghub/internal/notifications"
)

type fakeNotifier struct {
	welcomeFn func(ctx context.Context, in notifications.WelcomeEmailInput) error
	commentFn func(ctx context.Context, in notifications.CommentNotificationInput) error
}

func (f *fakeNotifier) SendWelcomeEmail(ctx context.Context, in notifications.WelcomeEmailInput) error {
	if f.welcomeFn != nil {
		return f.welcomeFn(ctx, in)
	}
	return nil
}

func (f *fakeNotifier) SendCommentNotification(ctx context.Context, in notifications.CommentNotificationInput) error {
	if f.commentFn != nil {
		return f.commentFn(ctx, in)
	}
	return nil
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	boom := errors.New("provider down")

	inner := &fakeNotifier{
		welcomeFn: func(ctx context.Context, in notifications.WelcomeEmailInput) error {
			return boom
		},
	}

	n := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		FailureThreshold: 2,
		Cooldown:         time.Hour, // never half-opens during the test
	})

	in := notifications.WelcomeEmailInput{Email: "jo@example.com"}

	for i := 0; i < 2; i++ {
		if err := n.SendWelcomeEmail(context.Background(), in); !errors.Is(err, boom) {
			t.Fatalf("call %d: got %v, want provider error", i, err)
		}
	}

	if err := n.SendWelcomeEmail(context.Background(), in); !errors.Is(err, notifications.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestCircuitStaysClosedOnSuccess(t *testing.T) {
	inner := &fakeNotifier{}
	n := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{})

	for i := 0; i < 5; i++ {
		if err := n.SendCommentNotification(context.Background(), notifications.CommentNotificationInput{Email: "a@b.c"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}
