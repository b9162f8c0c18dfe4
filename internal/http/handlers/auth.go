package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/planhub/planhub/internal/config"
	"github.com/planhub/planhub/internal/domain/user"
	"github.com/planhub/planhub/internal/http/middlewares"
	"github.com/planhub/planhub/internal/observability"
	"github.com/planhub/planhub/internal/security"
	"github.com/planhub/planhub/internal/session"
)

// Keep these interfaces small so tests can fake them easily.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, email, username, passwordHash string) (user.User, error)
}

type UserStore interface {
	UserReader
	UserWriter
}

// The login page error is intentionally identical for unknown email and
// wrong password, so the endpoint cannot be used to enumerate accounts.
const (
	errEmailTaken  = "Email уже занят"
	errBadLogin    = "Неверный email или пароль"
	handlerTimeout = 3 * time.Second
)

type AuthHandler struct {
	users      UserStore
	sessions   session.Store
	sessionTTL time.Duration
	prom       *observability.Prom
}

func NewAuthHandler(users UserStore, sessions session.Store, sessionTTL time.Duration, prom *observability.Prom) *AuthHandler {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}

	return &AuthHandler{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		prom:       prom,
	}
}

func (h *AuthHandler) RegisterPage(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"view": "register"})
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindForm(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(handlerTimeout)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, req.Email, req.Username, hash)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			// re-render the form with the duplicate-email message; no user
			// row was written and no session is issued
			ctx.JSON(http.StatusBadRequest, gin.H{
				"view":  "register",
				"error": errEmailTaken,
			})
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	h.startSession(ctx, u.ID)
}

func (h *AuthHandler) LoginPage(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"view": "login"})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindForm(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(handlerTimeout)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil || !security.VerifyPassword(req.Password, foundUser.PasswordHash) {
		if h.prom != nil {
			h.prom.LoginFailures.Inc()
		}

		ctx.JSON(http.StatusUnauthorized, gin.H{
			"view":  "login",
			"error": errBadLogin,
		})
		return
	}

	h.startSession(ctx, foundUser.ID)
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	token, err := ctx.Cookie(middlewares.SessionCookie)

	if err == nil && token != "" {
		// Destroy is idempotent; a stale cookie is not an error
		cctx, cancel := config.WithTimeout(handlerTimeout)
		defer cancel()

		if err := h.sessions.Destroy(cctx, token); err == nil && h.prom != nil {
			h.prom.SessionsActive.Dec()
		}
	}

	h.clearSessionCookie(ctx)
	ctx.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) startSession(ctx *gin.Context, userID string) {
	cctx, cancel := config.WithTimeout(handlerTimeout)
	defer cancel()

	token, err := h.sessions.Create(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	if h.prom != nil {
		h.prom.SessionsActive.Inc()
	}

	h.setSessionCookie(ctx, token)
	ctx.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	ctx.SetCookie(middlewares.SessionCookie, token, int(h.sessionTTL.Seconds()), "/", "", false, true)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	ctx.SetCookie(middlewares.SessionCookie, "", -1, "/", "", false, true)
}
