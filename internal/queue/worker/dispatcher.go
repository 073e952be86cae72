package worker

import (
	"context"
	"fmt"

	"github.com/inkwell/bloghub/internal/domain/comment"
	"github.com/inkwell/bloghub/internal/domain/job"
	"github.com/inkwell/bloghub/internal/domain/post"
	"github.com/inkwell/bloghub/internal/domain/user"
	"github.com/inkwell/bloghub/internal/jobs"
	"github.com/inkwell/bloghub/internal/notifications"
)

type UserGetter interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type PostGetter interface {
	GetByID(ctx context.Context, id string) (post.Post, error)
}

type CommentGetter interface {
	GetByID(ctx context.Context, id string) (comment.Comment, error)
}

// Dispatcher decodes a claimed job's payload and routes it to the notifier.
// Payloads are ID-based, so the current state is loaded from the DB here; a
// comment or user deleted since enqueue makes the job a no-op, not a failure.
type Dispatcher struct {
	users    UserGetter
	posts    PostGetter
	comments CommentGetter
	notifier notifications.Notifier
}

func NewDispatcher(users UserGetter, posts PostGetter, comments CommentGetter, notifier notifications.Notifier) *Dispatcher {
	return &Dispatcher{
		users:    users,
		posts:    posts,
		comments: comments,
		notifier: notifier,
	}
}

func (d *Dispatcher) Execute(ctx context.Context, j job.Job) error {
	payload, err := jobs.DecodePayload(j.Type, j.Payload)

	if err != nil {
		return err
	}

	switch p := payload.(type) {
	case jobs.WelcomeEmailPayload:
		return d.notifier.SendWelcomeEmail(ctx, notifications.WelcomeEmailInput{
			Email:     p.Email,
			FirstName: p.FirstName,
		})

	case jobs.CommentNotificationPayload:
		return d.sendCommentNotification(ctx, p)

	default:
		return fmt.Errorf("%w: %s", jobs.ErrInvalidJobType, j.Type)
	}
}

func (d *Dispatcher) sendCommentNotification(ctx context.Context, p jobs.CommentNotificationPayload) error {
	author, err := d.users.GetByID(ctx, p.AuthorID)

	if err != nil {
		if err == user.ErrNotFound {
			return nil // author gone, nothing to deliver
		}
		return err
	}

	pst, err := d.posts.GetByID(ctx, p.PostID)

	if err != nil {
		if err == post.ErrNotFound {
			return nil
		}
		return err
	}

	cmt, err := d.comments.GetByID(ctx, p.CommentID)

	if err != nil {
		if err == comment.ErrNotFound {
			return nil
		}
		return err
	}

	return d.notifier.SendCommentNotification(ctx, notifications.CommentNotificationInput{
		Email:       author.Email,
		PostTitle:   pst.Title,
		CommentBody: cmt.Body,
	})
}
