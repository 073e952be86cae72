package jobs

import (
	"encoding/json"
	"time"
)

const (
	TypeWelcomeEmail        = "user.welcome_email"
	TypeCommentNotification = "comment.notification"
)

func IsValidType(t string) bool {
	switch t {
	case TypeWelcomeEmail, TypeCommentNotification:
		return true
	default:
		return false
	}
}

// WelcomeEmailPayload is enqueued right after registration.
type WelcomeEmailPayload struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	RequestedAt time.Time `json:"requestedAt"`
}

func (p WelcomeEmailPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// CommentNotificationPayload tells a post author about a new comment.
// Payload stays ID-based and minimal; the worker loads details from DB.
type CommentNotificationPayload struct {
	CommentID   string    `json:"commentId"`
	PostID      string    `json:"postId"`
	AuthorID    string    `json:"authorId"` // the post author being notified
	RequestedAt time.Time `json:"requestedAt"`
	RequestID   string    `json:"requestId,omitempty"`
}

func (p CommentNotificationPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
