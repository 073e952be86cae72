package notifications

import "context"

type WelcomeEmailInput struct {
	Email     string
	FirstName string
}

type CommentNotificationInput struct {
	Email       string // the post author's address
	PostTitle   string
	CommentBody string
}

type Notifier interface {
	SendWelcomeEmail(ctx context.Context, input WelcomeEmailInput) error
	SendCommentNotification(ctx context.Context, input CommentNotificationInput) error
}
