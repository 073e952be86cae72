package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/inkwell/bloghub/internal/auth"
	"github.com/inkwell/bloghub/internal/config"
	"github.com/inkwell/bloghub/internal/domain/job"
	"github.com/inkwell/bloghub/internal/domain/user"
	"github.com/inkwell/bloghub/internal/http/middlewares"
	"github.com/inkwell/bloghub/internal/jobs"
	"github.com/inkwell/bloghub/internal/repo/postgres"
	"github.com/inkwell/bloghub/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, email, passwordHash, firstName, lastName, role string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type RefreshTokenStore interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	Create(ctx context.Context, tx pgx.Tx, row postgres.RefreshTokenRow) error
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (postgres.RefreshTokenRow, error)
	Revoke(ctx context.Context, tx pgx.Tx, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, tx pgx.Tx, userID string) error
}

type JobEnqueuer interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

type AuthHandler struct {
	users        UserStore
	jwt          *auth.Manager
	refreshStore RefreshTokenStore
	enqueuer     JobEnqueuer
	cfg          config.Config
}

func NewAuthHandler(users UserStore, jwtManager *auth.Manager, refreshStore RefreshTokenStore, enqueuer JobEnqueuer, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:        users,
		jwt:          jwtManager,
		refreshStore: refreshStore,
		enqueuer:     enqueuer,
		cfg:          cfg,
	}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	// new accounts always start as plain users
	u, err := h.users.Create(cctx, req.Email, hash, req.FirstName, req.LastName, auth.RoleUser)

	if err != nil {
		if errors.Is(err, user.ErrEmailAlreadyUsed) {
			RespondConflict(ctx, "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	h.enqueueWelcomeEmail(cctx, u)

	pair, err := h.jwt.GenerateTokenPair(u.ID, u.Email, u.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate tokens")
		return
	}

	if err := h.storeRefreshToken(cctx, u.ID, pair); err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setRefreshCookie(ctx, pair.RefreshToken, pair.RefreshExpiresAt)

	ctx.JSON(http.StatusCreated, gin.H{
		"accessToken": pair.AccessToken,
		"user":        u,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondUnauthorized(ctx, "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Email or password is incorrect.")
		return
	}

	pair, err := h.jwt.GenerateTokenPair(foundUser.ID, foundUser.Email, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate tokens")
		return
	}

	if err := h.storeRefreshToken(cctx, foundUser.ID, pair); err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setRefreshCookie(ctx, pair.RefreshToken, pair.RefreshExpiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": pair.AccessToken,
		"user":        foundUser,
	})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// token outlived the account
			RespondUnauthorized(ctx, "Account no longer exists")
			return
		}
		RespondInternal(ctx, "Could not load profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

// Refresh rotates the whole session: the presented refresh token is revoked
// inside a row-locked tx and a brand new pair is issued. The old row keeps a
// replaced_by link to the new one for audit.
func (h *AuthHandler) Refresh(ctx *gin.Context) {
	raw, err := ctx.Cookie(h.refreshCookieName())

	if err != nil || raw == "" {
		RespondUnauthorized(ctx, "Missing refresh token")
		return
	}

	claims, err := h.jwt.VerifyRefreshToken(raw)

	if err != nil {
		RespondUnauthorized(ctx, "Invalid refresh token")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	tx, err := h.refreshStore.BeginTx(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	defer func() { _ = tx.Rollback(cctx) }()

	row, err := h.refreshStore.GetForUpdate(cctx, tx, claims.JTI)

	if err != nil {
		RespondUnauthorized(ctx, "Invalid refresh token")
		return
	}

	if row.RevokedAt != nil {
		RespondUnauthorized(ctx, "Invalid refresh token")
		return
	}

	if time.Now().UTC().After(row.ExpiresAt) {
		RespondUnauthorized(ctx, "Refresh token expired.")
		return
	}

	// hash must match the presented token (prevents token substitution)
	if row.TokenHash != h.jwt.HashRefreshToken(raw) {
		RespondUnauthorized(ctx, "Invalid refresh token")
		return
	}

	pair, err := h.jwt.GenerateTokenPair(row.UserID, claims.Email, claims.Role)

	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	// revoke old, insert new
	if err := h.refreshStore.Revoke(cctx, tx, row.ID, &pair.RefreshJTI); err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	newRow := postgres.RefreshTokenRow{
		ID:        pair.RefreshJTI,
		UserID:    row.UserID,
		TokenHash: h.jwt.HashRefreshToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshExpiresAt,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.refreshStore.Create(cctx, tx, newRow); err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	if err := tx.Commit(cctx); err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	h.setRefreshCookie(ctx, pair.RefreshToken, pair.RefreshExpiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": pair.AccessToken,
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(h.refreshCookieName())

	if err != nil || raw == "" {
		// still clear cookie to be safe
		h.clearRefreshCookie(ctx)
		ctx.Status(http.StatusNoContent)
		return
	}

	claims, err := h.jwt.VerifyRefreshToken(raw)
	if err != nil {
		h.clearRefreshCookie(ctx)
		ctx.Status(http.StatusNoContent)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	tx, err := h.refreshStore.BeginTx(cctx)
	if err != nil {
		h.clearRefreshCookie(ctx)
		ctx.Status(http.StatusNoContent)
		return
	}
	defer func() { _ = tx.Rollback(cctx) }()

	// revoke that one token (idempotent)
	_ = h.refreshStore.Revoke(cctx, tx, claims.JTI, nil)
	_ = tx.Commit(cctx)

	h.clearRefreshCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// ChangePassword rehashes the credential and kills every open session for the
// user, forcing re-login everywhere.
func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnauthorized(ctx, "Account no longer exists")
			return
		}
		RespondInternal(ctx, "Could not change password")
		return
	}

	if err := security.CheckPassword(u.PasswordHash, req.OldPassword); err != nil {
		RespondUnauthorized(ctx, "Old password is incorrect.")
		return
	}

	hash, err := security.HashPassword(req.NewPassword)

	if err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	if err := h.users.UpdatePassword(cctx, userID, hash); err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	tx, err := h.refreshStore.BeginTx(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}
	defer func() { _ = tx.Rollback(cctx) }()

	if err := h.refreshStore.RevokeAllForUser(cctx, tx, userID); err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	if err := tx.Commit(cctx); err != nil {
		RespondInternal(ctx, "Could not change password")
		return
	}

	h.clearRefreshCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Helper functions

func (h *AuthHandler) enqueueWelcomeEmail(ctx context.Context, u user.User) {
	if h.enqueuer == nil {
		return
	}

	payload, err := jobs.WelcomeEmailPayload{
		UserID:      u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		RequestedAt: time.Now().UTC(),
	}.JSON()

	if err != nil {
		slog.Warn("welcome email payload encode failed", "err", err, "user_id", u.ID)
		return
	}

	key := "welcome:" + u.ID

	// best effort: a lost welcome email never blocks registration
	_, err = h.enqueuer.Create(ctx, job.CreateRequest{
		Type:           jobs.TypeWelcomeEmail,
		Payload:        payload,
		IdempotencyKey: &key,
	})

	if err != nil {
		slog.Warn("welcome email enqueue failed", "err", err, "user_id", u.ID)
	}
}

func (h *AuthHandler) storeRefreshToken(ctx context.Context, userID string, pair auth.TokenPair) error {
	tx, err := h.refreshStore.BeginTx(ctx)

	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row := postgres.RefreshTokenRow{
		ID:        pair.RefreshJTI,
		UserID:    userID,
		TokenHash: h.jwt.HashRefreshToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshExpiresAt,
		CreatedAt: time.Now().UTC(),
	}

	err = h.refreshStore.Create(ctx, tx, row)

	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (h *AuthHandler) refreshCookieName() string {
	return "refresh_token"
}

func (h *AuthHandler) setRefreshCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		h.refreshCookieName(),
		raw,
		maxAge,
		"/auth",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearRefreshCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		h.refreshCookieName(),
		"",
		-1,
		"/auth",
		"",
		secure,
		true,
	)
}
