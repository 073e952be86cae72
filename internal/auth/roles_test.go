package auth_test

import (
	"errors"
	"testing"

	"github.com/inkwell/bloghub/internal/auth"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		caller   string
		wantErr  error
	}{
		{
			name:     "empty_requirement_allows_anyone",
			required: nil,
			caller:   "",
			wantErr:  nil,
		},
		{
			name:     "anonymous_denied_when_roles_required",
			required: []string{"user"},
			caller:   "",
			wantErr:  auth.ErrNoIdentity,
		},
		{
			name:     "admin_bypasses_any_requirement",
			required: []string{"editor"},
			caller:   auth.RoleAdmin,
			wantErr:  nil,
		},
		{
			name:     "member_of_required_set_allowed",
			required: []string{"editor", "user"},
			caller:   auth.RoleUser,
			wantErr:  nil,
		},
		{
			name:     "non_member_forbidden",
			required: []string{auth.RoleAdmin},
			caller:   auth.RoleUser,
			wantErr:  auth.ErrRoleForbidden,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			err := auth.Authorize(tt.required, tt.caller)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authorize(%v, %q) = %v, want %v", tt.required, tt.caller, err, tt.wantErr)
			}
		})
	}
}
