package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/bloghub/internal/auth"
	"github.com/inkwell/bloghub/internal/domain/comment"
	"github.com/inkwell/bloghub/internal/domain/post"
	"github.com/inkwell/bloghub/internal/http/handlers"
	"github.com/inkwell/bloghub/internal/jobs"
)

type fakeCommentStore struct {
	createFn func(ctx context.Context, postID, authorID, body string) (comment.Comment, error)
	getFn    func(ctx context.Context, id string) (comment.Comment, error)
	listFn   func(ctx context.Context, postID string, limit int, afterCreatedAt time.Time, afterID string) ([]comment.Comment, *string, bool, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeCommentStore) Create(ctx context.Context, postID, authorID, body string) (comment.Comment, error) {
	if f.createFn != nil {
		return f.createFn(ctx, postID, authorID, body)
	}
	return comment.Comment{ID: newUUID(), PostID: postID, AuthorID: authorID, Body: body}, nil
}

func (f *fakeCommentStore) GetByID(ctx context.Context, id string) (comment.Comment, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return comment.Comment{}, comment.ErrNotFound
}

func (f *fakeCommentStore) ListByPostCursor(ctx context.Context, postID string, limit int, afterCreatedAt time.Time, afterID string) ([]comment.Comment, *string, bool, error) {
	if f.listFn != nil {
		return f.listFn(ctx, postID, limit, afterCreatedAt, afterID)
	}
	return []comment.Comment{}, nil, false, nil
}

func (f *fakeCommentStore) SoftDelete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakePostGetter struct {
	getFn func(ctx context.Context, id string) (post.Post, error)
}

func (f *fakePostGetter) GetByID(ctx context.Context, id string) (post.Post, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return post.Post{}, post.ErrNotFound
}

func newCommentsRouter(h *handlers.CommentsHandler, userID, role string) *gin.Engine {
	r := gin.New()

	if userID != "" {
		r.Use(identity(userID, role))
	}

	r.GET("/posts/:postId/comments", h.ListByPost)
	r.POST("/posts/:postId/comments", h.Create)
	r.DELETE("/comments/:commentId", h.Delete)

	return r
}

func TestCreateCommentNotifiesPostAuthor(t *testing.T) {
	postAuthor := newUUID()
	commenter := newUUID()
	postID := newUUID()

	posts := &fakePostGetter{
		getFn: func(ctx context.Context, id string) (post.Post, error) {
			return post.Post{ID: postID, AuthorID: postAuthor, Status: post.StatusPublished}, nil
		},
	}

	enq := &fakeEnqueuer{}

	h := handlers.NewCommentsHandler(&fakeCommentStore{}, posts, enq)
	r := newCommentsRouter(h, commenter, auth.RoleUser)

	body, _ := json.Marshal(map[string]any{"body": "great read"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/posts/"+postID+"/comments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	if len(enq.jobs) != 1 || enq.jobs[0].Type != jobs.TypeCommentNotification {
		t.Fatalf("notification not enqueued: %+v", enq.jobs)
	}

	var payload jobs.CommentNotificationPayload

	if err := json.Unmarshal(enq.jobs[0].Payload, &payload); err != nil {
		t.Fatalf("payload decode: %v", err)
	}

	if payload.AuthorID != postAuthor || payload.PostID != postID {
		t.Fatalf("payload targets wrong entities: %+v", payload)
	}
}

func TestCreateCommentOnOwnPostSkipsNotification(t *testing.T) {
	author := newUUID()
	postID := newUUID()

	posts := &fakePostGetter{
		getFn: func(ctx context.Context, id string) (post.Post, error) {
			return post.Post{ID: postID, AuthorID: author, Status: post.StatusPublished}, nil
		},
	}

	enq := &fakeEnqueuer{}

	h := handlers.NewCommentsHandler(&fakeCommentStore{}, posts, enq)
	r := newCommentsRouter(h, author, auth.RoleUser)

	body, _ := json.Marshal(map[string]any{"body": "replying to myself"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/posts/"+postID+"/comments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	if len(enq.jobs) != 0 {
		t.Fatalf("self-comment should not notify: %+v", enq.jobs)
	}
}

func TestCreateCommentOnDraftIsNotFound(t *testing.T) {
	postID := newUUID()

	posts := &fakePostGetter{
		getFn: func(ctx context.Context, id string) (post.Post, error) {
			return post.Post{ID: postID, AuthorID: newUUID(), Status: post.StatusDraft}, nil
		},
	}

	h := handlers.NewCommentsHandler(&fakeCommentStore{}, posts, &fakeEnqueuer{})
	r := newCommentsRouter(h, newUUID(), auth.RoleUser)

	body, _ := json.Marshal(map[string]any{"body": "hello?"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/posts/"+postID+"/comments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestDeleteCommentAuthorization(t *testing.T) {
	commentAuthor := newUUID()
	commentID := newUUID()

	store := &fakeCommentStore{
		getFn: func(ctx context.Context, id string) (comment.Comment, error) {
			return comment.Comment{ID: commentID, AuthorID: commentAuthor}, nil
		},
	}

	h := handlers.NewCommentsHandler(store, &fakePostGetter{}, &fakeEnqueuer{})

	cases := []struct {
		name   string
		userID string
		role   string
		want   int
	}{
		{name: "stranger", userID: newUUID(), role: auth.RoleUser, want: http.StatusForbidden},
		{name: "the author", userID: commentAuthor, role: auth.RoleUser, want: http.StatusNoContent},
		{name: "an admin", userID: newUUID(), role: auth.RoleAdmin, want: http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newCommentsRouter(h, tc.userID, tc.role)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/comments/"+commentID, nil)
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestListCommentsPassesCursor(t *testing.T) {
	postID := newUUID()

	var gotLimit int

	store := &fakeCommentStore{
		listFn: func(ctx context.Context, gotPost string, limit int, afterCreatedAt time.Time, afterID string) ([]comment.Comment, *string, bool, error) {
			gotLimit = limit
			return []comment.Comment{{ID: newUUID(), PostID: gotPost}}, nil, false, nil
		},
	}

	posts := &fakePostGetter{
		getFn: func(ctx context.Context, id string) (post.Post, error) {
			return post.Post{ID: postID, AuthorID: newUUID(), Status: post.StatusPublished}, nil
		},
	}

	h := handlers.NewCommentsHandler(store, posts, &fakeEnqueuer{})
	r := newCommentsRouter(h, "", "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts/"+postID+"/comments?limit=7", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	if gotLimit != 7 {
		t.Fatalf("limit = %d, want 7", gotLimit)
	}
}

func TestListCommentsOnMissingPostIsNotFound(t *testing.T) {
	listed := false

	store := &fakeCommentStore{
		listFn: func(ctx context.Context, postID string, limit int, afterCreatedAt time.Time, afterID string) ([]comment.Comment, *string, bool, error) {
			listed = true
			return []comment.Comment{}, nil, false, nil
		},
	}

	h := handlers.NewCommentsHandler(store, &fakePostGetter{}, &fakeEnqueuer{})
	r := newCommentsRouter(h, "", "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts/"+newUUID()+"/comments", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	if listed {
		t.Fatal("comments listed for a missing post")
	}
}

func TestListCommentsOnDraftFollowsPostVisibility(t *testing.T) {
	draft := post.Post{ID: newUUID(), AuthorID: newUUID(), Status: post.StatusDraft}

	posts := &fakePostGetter{
		getFn: func(ctx context.Context, id string) (post.Post, error) {
			return draft, nil
		},
	}

	cases := []struct {
		name   string
		userID string
		role   string
		want   int
	}{
		{name: "anonymous", userID: "", role: "", want: http.StatusNotFound},
		{name: "stranger", userID: newUUID(), role: auth.RoleUser, want: http.StatusNotFound},
		{name: "the author", userID: draft.AuthorID, role: auth.RoleUser, want: http.StatusOK},
		{name: "an admin", userID: newUUID(), role: auth.RoleAdmin, want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := handlers.NewCommentsHandler(&fakeCommentStore{}, posts, &fakeEnqueuer{})
			r := newCommentsRouter(h, tc.userID, tc.role)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/posts/"+draft.ID+"/comments", nil)
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}
