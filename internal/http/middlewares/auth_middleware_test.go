package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/bloghub/internal/auth"
	"github.com/inkwell/bloghub/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newManager() *auth.Manager {
	return auth.NewManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
}

func protectedRouter(m *middlewares.AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	chain := append([]gin.HandlerFunc{m.RequireAuth()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		role, _ := middlewares.RoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": id, "role": role})
	})

	r.GET("/protected", chain...)
	return r
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	m := middlewares.NewAuthMiddleware(newManager())
	r := protectedRouter(m)

	cases := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "empty bearer", header: "Bearer   "},
		{name: "garbage token", header: "Bearer not.a.jwt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)

			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	mgr := newManager()
	m := middlewares.NewAuthMiddleware(mgr)
	r := protectedRouter(m)

	token, err := mgr.GenerateAccessToken("user-1", "sam@example.com", auth.RoleUser)

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestRequireAuthRejectsRefreshTokenOnAccessRoute(t *testing.T) {
	mgr := newManager()
	m := middlewares.NewAuthMiddleware(mgr)
	r := protectedRouter(m)

	refreshRaw, _, _, err := mgr.GenerateRefreshToken("user-1", "sam@example.com", auth.RoleUser)

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refreshRaw)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token passed an access gate: %d", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	mgr := newManager()
	m := middlewares.NewAuthMiddleware(mgr)

	cases := []struct {
		name     string
		role     string
		required []string
		want     int
	}{
		{name: "admin passes admin gate", role: auth.RoleAdmin, required: []string{auth.RoleAdmin}, want: http.StatusOK},
		{name: "user fails admin gate", role: auth.RoleUser, required: []string{auth.RoleAdmin}, want: http.StatusForbidden},
		{name: "admin passes user gate", role: auth.RoleAdmin, required: []string{auth.RoleUser}, want: http.StatusOK},
		{name: "empty requirement passes", role: auth.RoleUser, required: nil, want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := protectedRouter(m, m.RequireRole(tc.required...))

			token, err := mgr.GenerateAccessToken("user-1", "sam@example.com", tc.role)

			if err != nil {
				t.Fatalf("generate: %v", err)
			}

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestRequireRoleWithoutIdentityIsUnauthorized(t *testing.T) {
	m := middlewares.NewAuthMiddleware(newManager())

	r := gin.New()
	// RequireRole mounted without RequireAuth, so no identity on context
	r.GET("/admin", m.RequireRole(auth.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	mgr := newManager()
	m := middlewares.NewAuthMiddleware(mgr)

	r := gin.New()
	r.GET("/public", m.OptionalAuth(), func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})

	// bad token still passes, just anonymously
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	// good token attaches identity
	token, err := mgr.GenerateAccessToken("user-9", "sam@example.com", auth.RoleUser)

	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() == `{"userId":""}` {
		t.Fatalf("identity not attached: %d %s", w.Code, w.Body.String())
	}
}
