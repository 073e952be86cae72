package jobs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodePayload unmarshals and validates a raw payload for the given job type.
func DecodePayload(jobType string, raw []byte) (any, error) {
	if !IsValidType(jobType) {
		return nil, ErrInvalidJobType
	}
	if len(raw) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch jobType {
	case TypeWelcomeEmail:
		var p WelcomeEmailPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		if strings.TrimSpace(p.UserID) == "" || strings.TrimSpace(p.Email) == "" {
			return nil, ErrInvalidJobPayload
		}
		return p, nil

	case TypeCommentNotification:
		var p CommentNotificationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		if strings.TrimSpace(p.CommentID) == "" || strings.TrimSpace(p.PostID) == "" || strings.TrimSpace(p.AuthorID) == "" {
			return nil, ErrInvalidJobPayload
		}
		return p, nil

	default:
		return nil, ErrInvalidJobType
	}
}
