package tag

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("tag not found")
	ErrSlugTaken = errors.New("tag slug already taken")
)

type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required,min=2,max=50"`
}
