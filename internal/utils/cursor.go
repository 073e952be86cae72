package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

type PostCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

type CommentCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

func EncodePostCursor(createdAt time.Time, id string) (string, error) {
	b, err := json.Marshal(PostCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodePostCursor(cursor string) (PostCursor, error) {
	if cursor == "" {
		return PostCursor{}, errors.New("empty cursor")
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return PostCursor{}, err
	}

	var c PostCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return PostCursor{}, err
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return PostCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}

func EncodeCommentCursor(createdAt time.Time, id string) (string, error) {
	b, err := json.Marshal(CommentCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeCommentCursor(cursor string) (CommentCursor, error) {
	if cursor == "" {
		return CommentCursor{}, errors.New("empty cursor")
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return CommentCursor{}, err
	}
	var c CommentCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return CommentCursor{}, err
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return CommentCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}
