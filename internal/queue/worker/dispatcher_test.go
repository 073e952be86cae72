package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/inkwell/bloghub/internal/domain/comment"
	"github.com/inkwell/bloghub/internal/domain/job"
	"github.com/inkwell/bloghub/internal/domain/post"
	"github.com/inkwell/bloghub/internal/domain/user"
	"github.com/inkwell/bloghub/internal/jobs"
	"github.com/inkwell/bloghub/internal/notifications"
	"github.com/inkwell/bloghub/internal/queue/worker"
)

type fakeUsers struct {
	getFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{ID: id, Email: "author@example.com"}, nil
}

type fakePosts struct {
	getFn func(ctx context.Context, id string) (post.Post, error)
}

func (f *fakePosts) GetByID(ctx context.Context, id string) (post.Post, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return post.Post{ID: id, Title: "A Post"}, nil
}

type fakeComments struct {
	getFn func(ctx context.Context, id string) (comment.Comment, error)
}

func (f *fakeComments) GetByID(ctx context.Context, id string) (comment.Comment, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return comment.Comment{ID: id, Body: "nice"}, nil
}

type recordingNotifier struct {
	welcomes []notifications.WelcomeEmailInput
	comments []notifications.CommentNotificationInput
	err      error
}

func (r *recordingNotifier) SendWelcomeEmail(ctx context.Context, in notifications.WelcomeEmailInput) error {
	r.welcomes = append(r.welcomes, in)
	return r.err
}

func (r *recordingNotifier) SendCommentNotification(ctx context.Context, in notifications.CommentNotificationInput) error {
	r.comments = append(r.comments, in)
	return r.err
}

func mustJSON(t *testing.T, v interface{ JSON() (json.RawMessage, error) }) json.RawMessage {
	t.Helper()

	raw, err := v.JSON()

	if err != nil {
		t.Fatalf("payload encode: %v", err)
	}
	return raw
}

func TestDispatcherWelcomeEmail(t *testing.T) {
	n := &recordingNotifier{}
	d := worker.NewDispatcher(&fakeUsers{}, &fakePosts{}, &fakeComments{}, n)

	j := job.Job{
		ID:   "j-1",
		Type: jobs.TypeWelcomeEmail,
		Payload: mustJSON(t, jobs.WelcomeEmailPayload{
			UserID:      "u-1",
			Email:       "new@example.com",
			FirstName:   "Sam",
			RequestedAt: time.Now().UTC(),
		}),
	}

	if err := d.Execute(context.Background(), j); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(n.welcomes) != 1 || n.welcomes[0].Email != "new@example.com" {
		t.Fatalf("welcome email not delivered: %+v", n.welcomes)
	}
}

func TestDispatcherCommentNotificationLoadsState(t *testing.T) {
	n := &recordingNotifier{}
	d := worker.NewDispatcher(&fakeUsers{}, &fakePosts{}, &fakeComments{}, n)

	j := job.Job{
		ID:   "j-2",
		Type: jobs.TypeCommentNotification,
		Payload: mustJSON(t, jobs.CommentNotificationPayload{
			CommentID:   "c-1",
			PostID:      "p-1",
			AuthorID:    "u-1",
			RequestedAt: time.Now().UTC(),
		}),
	}

	if err := d.Execute(context.Background(), j); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(n.comments) != 1 {
		t.Fatalf("expected one delivery, got %d", len(n.comments))
	}

	got := n.comments[0]

	if got.Email != "author@example.com" || got.PostTitle != "A Post" || got.CommentBody != "nice" {
		t.Fatalf("delivery built from wrong state: %+v", got)
	}
}

func TestDispatcherSkipsDeletedEntities(t *testing.T) {
	n := &recordingNotifier{}

	d := worker.NewDispatcher(
		&fakeUsers{getFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{}, user.ErrNotFound
		}},
		&fakePosts{},
		&fakeComments{},
		n,
	)

	j := job.Job{
		ID:   "j-3",
		Type: jobs.TypeCommentNotification,
		Payload: mustJSON(t, jobs.CommentNotificationPayload{
			CommentID: "c-1",
			PostID:    "p-1",
			AuthorID:  "gone",
		}),
	}

	if err := d.Execute(context.Background(), j); err != nil {
		t.Fatalf("deleted author should be a no-op, got %v", err)
	}

	if len(n.comments) != 0 {
		t.Fatalf("no delivery expected, got %+v", n.comments)
	}
}

func TestDispatcherRejectsUnknownType(t *testing.T) {
	d := worker.NewDispatcher(&fakeUsers{}, &fakePosts{}, &fakeComments{}, &recordingNotifier{})

	j := job.Job{ID: "j-4", Type: "nonsense", Payload: json.RawMessage(`{}`)}

	if err := d.Execute(context.Background(), j); !errors.Is(err, jobs.ErrInvalidJobType) {
		t.Fatalf("got %v, want invalid job type", err)
	}
}
