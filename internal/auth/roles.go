package auth

import "errors"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	// ErrNoIdentity means no verified caller was present at all.
	ErrNoIdentity = errors.New("missing identity")
	// ErrRoleForbidden means the caller is authenticated but its role does
	// not satisfy the endpoint's requirement.
	ErrRoleForbidden = errors.New("role not permitted")
)

// Authorize decides whether a caller's role satisfies an endpoint's required
// role set. Precedence is explicit:
//
//  1. an empty required set allows everyone (including anonymous callers)
//  2. absence of a verified caller denies
//  3. admin always passes
//  4. otherwise the caller's role must be a member of the required set
func Authorize(required []string, callerRole string) error {
	if len(required) == 0 {
		return nil
	}

	if callerRole == "" {
		return ErrNoIdentity
	}

	if callerRole == RoleAdmin {
		return nil
	}

	for _, r := range required {
		if callerRole == r {
			return nil
		}
	}

	return ErrRoleForbidden
}
