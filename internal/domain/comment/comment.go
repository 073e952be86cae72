package comment

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("comment not found")

type Comment struct {
	ID        string     `json:"id"`
	PostID    string     `json:"postId"`
	AuthorID  string     `json:"authorId"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"-"`
}

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required,min=1,max=2000"`
}
