package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planhub/planhub/internal/domain/user"
	"github.com/planhub/planhub/internal/http/handlers"
	"github.com/planhub/planhub/internal/http/middlewares"
	"github.com/planhub/planhub/internal/security"
	"github.com/planhub/planhub/internal/session"
)

// Keep Gin quiet during tests
func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementation of the handlers.UserStore interface

type fakeUserStore struct {
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	getByIDFn    func(ctx context.Context, id string) (user.User, error)
	createFn     func(ctx context.Context, email, username, passwordHash string) (user.User, error)
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserStore) Create(ctx context.Context, email, username, passwordHash string) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, email, username, passwordHash)
	}
	return user.User{}, nil
}

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middlewares.SessionCookie {
			return c
		}
	}
	return nil
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		form           url.Values
		storeSetUp     func(*fakeUserStore)
		wantStatusCode int
		wantSession    bool
	}{
		{
			name: "success",
			form: url.Values{
				"email":    {"new@example.com"},
				"username": {"newuser"},
				"password": {"longenough"},
			},
			storeSetUp: func(f *fakeUserStore) {
				f.createFn = func(ctx context.Context, email, username, passwordHash string) (user.User, error) {
					return user.User{ID: "u-1", Email: email, Username: username, PasswordHash: passwordHash}, nil
				}
			},
			wantStatusCode: http.StatusSeeOther,
			wantSession:    true,
		},
		{
			name: "duplicate_email",
			form: url.Values{
				"email":    {"taken@example.com"},
				"username": {"whoever"},
				"password": {"longenough"},
			},
			storeSetUp: func(f *fakeUserStore) {
				f.createFn = func(ctx context.Context, email, username, passwordHash string) (user.User, error) {
					return user.User{}, user.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantSession:    false,
		},
		{
			name: "validation_error",
			form: url.Values{
				"email": {"not-an-email"},
			},
			storeSetUp: func(f *fakeUserStore) {
				// invalid input never reaches the store
			},
			wantStatusCode: http.StatusBadRequest,
			wantSession:    false,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUserStore{}

			if tt.storeSetUp != nil {
				tt.storeSetUp(store)
			}

			sessions := session.NewMemoryStore(time.Hour)
			defer sessions.Close()

			h := handlers.NewAuthHandler(store, sessions, time.Hour, nil)

			r := setupRouter(http.MethodPost, "/register", h.Register)

			w := postForm(r, "/register", tt.form)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			cookie := sessionCookie(w)

			if tt.wantSession && cookie == nil {
				t.Fatal("expected a session cookie, got none")
			}

			if !tt.wantSession && cookie != nil {
				t.Fatalf("expected no session cookie, got %q", cookie.Value)
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	hash, err := security.HashPassword("correct-horse")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	known := user.User{ID: "u-1", Email: "user@example.com", Username: "ivanov", PasswordHash: hash}

	store := &fakeUserStore{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			if email == known.Email {
				return known, nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	newRouter := func() (*gin.Engine, *session.MemoryStore) {
		sessions := session.NewMemoryStore(time.Hour)

		h := handlers.NewAuthHandler(store, sessions, time.Hour, nil)

		return setupRouter(http.MethodPost, "/login", h.Login), sessions
	}

	t.Run("valid_credentials", func(t *testing.T) {
		r, sessions := newRouter()
		defer sessions.Close()

		w := postForm(r, "/login", url.Values{
			"email":    {known.Email},
			"password": {"correct-horse"},
		})

		if w.Code != http.StatusSeeOther {
			t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusSeeOther, w.Body.String())
		}

		cookie := sessionCookie(w)

		if cookie == nil {
			t.Fatal("expected a session cookie")
		}

		userID, err := sessions.Resolve(context.Background(), cookie.Value)

		if err != nil {
			t.Fatalf("cookie token did not resolve: %v", err)
		}

		if userID != known.ID {
			t.Fatalf("token resolved to %q, want %q", userID, known.ID)
		}
	})

	t.Run("wrong_password_and_unknown_email_look_identical", func(t *testing.T) {
		r, sessions := newRouter()
		defer sessions.Close()

		wrongPassword := postForm(r, "/login", url.Values{
			"email":    {known.Email},
			"password": {"wrong"},
		})

		unknownEmail := postForm(r, "/login", url.Values{
			"email":    {"nobody@example.com"},
			"password": {"whatever"},
		})

		if wrongPassword.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
			t.Fatalf("got statuses %d and %d, want both %d",
				wrongPassword.Code, unknownEmail.Code, http.StatusUnauthorized)
		}

		// enumeration guard: both failures carry the same payload
		if wrongPassword.Body.String() != unknownEmail.Body.String() {
			t.Fatalf("failure payloads differ:\n%s\n%s",
				wrongPassword.Body.String(), unknownEmail.Body.String())
		}

		if sessionCookie(wrongPassword) != nil || sessionCookie(unknownEmail) != nil {
			t.Fatal("failed logins must not issue sessions")
		}
	})
}

func TestLogoutHandler(t *testing.T) {
	sessions := session.NewMemoryStore(time.Hour)
	defer sessions.Close()

	token, err := sessions.Create(context.Background(), "u-1")

	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	h := handlers.NewAuthHandler(&fakeUserStore{}, sessions, time.Hour, nil)

	r := setupRouter(http.MethodGet, "/logout", h.Logout)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middlewares.SessionCookie, Value: token})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusSeeOther)
	}

	if _, err := sessions.Resolve(context.Background(), token); err == nil {
		t.Fatal("session should be destroyed after logout")
	}

	cookie := sessionCookie(w)

	if cookie == nil || cookie.Value != "" {
		t.Fatal("logout should clear the session cookie")
	}

	// logout with no cookie is harmless
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/logout", nil))

	if w2.Code != http.StatusSeeOther {
		t.Fatalf("got status %d, want %d", w2.Code, http.StatusSeeOther)
	}
}
