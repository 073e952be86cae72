package jobs_test

import (
	"errors"
	"testing"
	"time"

	"github.com/inkwell/bloghub/internal/jobs"
)

func TestDecodePayloadRoundTrip(t *testing.T) {
	in := jobs.CommentNotificationPayload{
		CommentID:   "c-1",
		PostID:      "p-1",
		AuthorID:    "u-1",
		RequestedAt: time.Now().UTC(),
	}

	raw, err := in.JSON()

	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := jobs.DecodePayload(jobs.TypeCommentNotification, raw)

	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	got, ok := out.(jobs.CommentNotificationPayload)

	if !ok {
		t.Fatalf("decoded wrong type: %T", out)
	}

	if got.CommentID != in.CommentID || got.PostID != in.PostID || got.AuthorID != in.AuthorID {
		t.Fatalf("payload mismatch: %+v vs %+v", got, in)
	}
}

func TestDecodePayloadRejections(t *testing.T) {
	tests := []struct {
		name    string
		jobType string
		raw     string
		wantErr error
	}{
		{name: "unknown_type", jobType: "nonsense", raw: `{}`, wantErr: jobs.ErrInvalidJobType},
		{name: "empty_payload", jobType: jobs.TypeWelcomeEmail, raw: ``, wantErr: jobs.ErrInvalidJobPayload},
		{name: "bad_json", jobType: jobs.TypeWelcomeEmail, raw: `{`, wantErr: jobs.ErrInvalidJobPayload},
		{name: "missing_fields", jobType: jobs.TypeWelcomeEmail, raw: `{"userId":""}`, wantErr: jobs.ErrInvalidJobPayload},
		{name: "missing_comment_fields", jobType: jobs.TypeCommentNotification, raw: `{"commentId":"x"}`, wantErr: jobs.ErrInvalidJobPayload},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			_, err := jobs.DecodePayload(tt.jobType, []byte(tt.raw))

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}
