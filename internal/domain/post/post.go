package post

import (
	"errors"
	"time"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

var (
	ErrNotFound  = errors.New("post not found")
	ErrSlugTaken = errors.New("post slug already taken")
)

type Post struct {
	ID         string     `json:"id"`
	AuthorID   string     `json:"authorId"`
	CategoryID *string    `json:"categoryId,omitempty"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Excerpt    string     `json:"excerpt,omitempty"`
	Content    string     `json:"content"`
	Status     string     `json:"status"`
	Tags       []string   `json:"tags,omitempty"`
	LikeCount  int        `json:"likeCount"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	DeletedAt  *time.Time `json:"-"`
}

// with pointers if optional, it will be nil
type ListPostsFilter struct {
	AuthorID   *string
	CategoryID *string
	TagSlug    *string
	Status     *string
	Limit      int
}

type CreatePostRequest struct {
	Title      string   `json:"title" binding:"required,min=3,max=200"`
	Excerpt    string   `json:"excerpt" binding:"omitempty,max=500"`
	Content    string   `json:"content" binding:"required"`
	Status     string   `json:"status" binding:"omitempty,oneof=draft published"`
	CategoryID *string  `json:"categoryId" binding:"omitempty,uuid"`
	TagIDs     []string `json:"tagIds" binding:"omitempty,dive,uuid"`
}

// a full update payload, might switch to a patch which optionally provides means for partial updates.
type UpdatePostRequest struct {
	Title      string   `json:"title" binding:"required,min=3,max=200"`
	Excerpt    string   `json:"excerpt" binding:"omitempty,max=500"`
	Content    string   `json:"content" binding:"required"`
	Status     string   `json:"status" binding:"omitempty,oneof=draft published"`
	CategoryID *string  `json:"categoryId" binding:"omitempty,uuid"`
	TagIDs     []string `json:"tagIds" binding:"omitempty,dive,uuid"`
}
