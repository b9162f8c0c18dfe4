package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/planhub/planhub/internal/session"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "session_id"

type SessionMiddleware struct {
	sessions session.Store
}

func NewSessionMiddleware(sessions session.Store) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

// Load resolves the session cookie when present and stashes the user id on
// the context. It never aborts; pages that work anonymously use this.
func (m *SessionMiddleware) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)

		if err == nil && token != "" {
			userID, err := m.sessions.Resolve(c.Request.Context(), token)

			if err == nil {
				c.Set(CtxUserID, userID)
				c.Set(CtxToken, token)
			} else if !errors.Is(err, session.ErrNotFound) {
				// backend failure; treat the request as anonymous
				_ = c.Error(err)
			}
		}

		c.Next()
	}
}

// RequirePage redirects anonymous callers to the login page. Page routes
// never reach their handler without a resolved user id.
func (m *SessionMiddleware) RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserIDFromContext(c); !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAction rejects anonymous callers with the structured failure shape
// the task action endpoints return.
func (m *SessionMiddleware) RequireAction() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserIDFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Not authenticated",
			})
			return
		}

		c.Next()
	}
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func TokenFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxToken)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok && token != ""
}
