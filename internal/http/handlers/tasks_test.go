package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planhub/planhub/internal/domain/task"
	"github.com/planhub/planhub/internal/domain/user"
	"github.com/planhub/planhub/internal/http/handlers"
	"github.com/planhub/planhub/internal/http/middlewares"
	"github.com/planhub/planhub/internal/repo/memory"
	"github.com/planhub/planhub/internal/session"
)

// testApp wires the task routes the way the real router does, with
// in-memory repos and sessions.
type testApp struct {
	engine   *gin.Engine
	tasks    *memory.TasksRepo
	sessions *session.MemoryStore
}

func newTestApp(users handlers.UserReader) *testApp {
	tasks := memory.NewTasksRepo()
	sessions := session.NewMemoryStore(time.Hour)

	h := handlers.NewTasksHandler(tasks, users)
	sessionMW := middlewares.NewSessionMiddleware(sessions)

	r := gin.New()
	r.Use(sessionMW.Load())

	r.GET("/", h.Home)
	r.POST("/tasks", sessionMW.RequirePage(), h.CreateTask)
	r.POST("/tasks/:id/toggle", sessionMW.RequireAction(), h.ToggleTask)
	r.POST("/tasks/:id/delete", sessionMW.RequireAction(), h.DeleteTask)

	return &testApp{engine: r, tasks: tasks, sessions: sessions}
}

func (a *testApp) Close() {
	a.sessions.Close()
}

func (a *testApp) login(t *testing.T, userID string) *http.Cookie {
	t.Helper()

	token, err := a.sessions.Create(context.Background(), userID)

	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	return &http.Cookie{Name: middlewares.SessionCookie, Value: token}
}

func (a *testApp) do(method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request

	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	return w
}

func staticUsers(u user.User) handlers.UserReader {
	return &fakeUserStore{
		getByIDFn: func(ctx context.Context, id string) (user.User, error) {
			if id == u.ID {
				return u, nil
			}
			return user.User{}, user.ErrNotFound
		},
	}
}

func taskForm(title, at, day string) url.Values {
	return url.Values{
		"title":       {title},
		"task_time":   {at},
		"priority":    {"high"},
		"category":    {"work"},
		"day_of_week": {day},
	}
}

func TestHomeAnonymous(t *testing.T) {
	app := newTestApp(&fakeUserStore{})
	defer app.Close()

	w := app.do(http.MethodGet, "/", nil, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}

	var view struct {
		Username    *string `json:"username"`
		SelectedDay string  `json:"selectedDay"`
		Progress    struct {
			Total      int     `json:"total"`
			Percentage float64 `json:"percentage"`
		} `json:"progress"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("bad view model: %v", err)
	}

	if view.Username != nil {
		t.Fatalf("anonymous view should have no username, got %q", *view.Username)
	}

	if view.SelectedDay != "monday" {
		t.Fatalf("default day should be monday, got %q", view.SelectedDay)
	}

	if view.Progress.Total != 0 || view.Progress.Percentage != 0 {
		t.Fatal("anonymous progress should be all zero")
	}
}

func TestHomeUnknownDayFallsBack(t *testing.T) {
	app := newTestApp(&fakeUserStore{})
	defer app.Close()

	w := app.do(http.MethodGet, "/?day=someday", nil, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}

	if !strings.Contains(w.Body.String(), `"selectedDay":"monday"`) {
		t.Fatalf("unknown day should fall back to monday, body=%s", w.Body.String())
	}
}

func TestHomeAuthenticated(t *testing.T) {
	owner := user.User{ID: "u-1", Email: "a@example.com", Username: "ivanov"}

	app := newTestApp(staticUsers(owner))
	defer app.Close()

	cookie := app.login(t, owner.ID)

	if _, err := app.tasks.Create(context.Background(), task.CreateTaskRequest{
		Title: "standup", TaskTime: "09:30", Priority: "high", Category: "work", DayOfWeek: "monday",
	}, owner.ID); err != nil {
		t.Fatalf("seed task: %v", err)
	}

	w := app.do(http.MethodGet, "/?day=monday", nil, cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	body := w.Body.String()

	if !strings.Contains(body, `"username":"ivanov"`) {
		t.Fatalf("view should carry the username, body=%s", body)
	}

	if !strings.Contains(body, "standup") {
		t.Fatalf("view should list the day's tasks, body=%s", body)
	}
}

func TestCreateTaskRequiresSession(t *testing.T) {
	app := newTestApp(&fakeUserStore{})
	defer app.Close()

	w := app.do(http.MethodPost, "/tasks", taskForm("T", "10:00", "friday"), nil)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusSeeOther)
	}

	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("anonymous create should redirect to /login, got %q", loc)
	}
}

func TestCreateTaskRedirectsToDay(t *testing.T) {
	owner := user.User{ID: "u-1", Username: "ivanov"}

	app := newTestApp(staticUsers(owner))
	defer app.Close()

	cookie := app.login(t, owner.ID)

	w := app.do(http.MethodPost, "/tasks", taskForm("T", "10:00", "friday"), cookie)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusSeeOther, w.Body.String())
	}

	if loc := w.Header().Get("Location"); loc != "/?day=friday" {
		t.Fatalf("create should redirect to the task's day, got %q", loc)
	}

	created, err := app.tasks.ListForUserAndDay(context.Background(), owner.ID, task.Friday)

	if err != nil || len(created) != 1 {
		t.Fatalf("task was not stored: err=%v n=%d", err, len(created))
	}
}

func TestToggleUnauthenticated(t *testing.T) {
	app := newTestApp(&fakeUserStore{})
	defer app.Close()

	w := app.do(http.MethodPost, "/tasks/some-id/toggle", nil, nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusUnauthorized)
	}

	if !strings.Contains(w.Body.String(), `"Not authenticated"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

// Two users; B cannot see or flip A's task, A can flip it both ways.
func TestToggleOwnershipScenario(t *testing.T) {
	app := newTestApp(&fakeUserStore{})
	defer app.Close()

	cookieA := app.login(t, "user-a")
	cookieB := app.login(t, "user-b")

	created, err := app.tasks.Create(context.Background(), task.CreateTaskRequest{
		Title: "T", TaskTime: "09:00", Priority: "low", DayOfWeek: "monday",
	}, "user-a")

	if err != nil {
		t.Fatalf("seed task: %v", err)
	}

	// B's toggle fails exactly like a missing task
	w := app.do(http.MethodPost, "/tasks/"+created.ID+"/toggle", nil, cookieB)

	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"Task not found"`) {
		t.Fatalf("foreign toggle: status %d body %s", w.Code, w.Body.String())
	}

	missing := app.do(http.MethodPost, "/tasks/does-not-exist/toggle", nil, cookieB)

	if missing.Body.String() != w.Body.String() {
		t.Fatalf("foreign and missing tasks must fail identically:\n%s\n%s",
			w.Body.String(), missing.Body.String())
	}

	// A flips it to completed
	w = app.do(http.MethodPost, "/tasks/"+created.ID+"/toggle", nil, cookieA)

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"completed":true`) {
		t.Fatalf("owner toggle: status %d body %s", w.Code, w.Body.String())
	}

	// and back
	w = app.do(http.MethodPost, "/tasks/"+created.ID+"/toggle", nil, cookieA)

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"completed":false`) {
		t.Fatalf("second toggle: status %d body %s", w.Code, w.Body.String())
	}
}

func TestDeleteTask(t *testing.T) {
	app := newTestApp(&fakeUserStore{})
	defer app.Close()

	cookie := app.login(t, "user-a")

	created, err := app.tasks.Create(context.Background(), task.CreateTaskRequest{
		Title: "T", TaskTime: "09:00", Priority: "low", DayOfWeek: "monday",
	}, "user-a")

	if err != nil {
		t.Fatalf("seed task: %v", err)
	}

	w := app.do(http.MethodPost, "/tasks/"+created.ID+"/delete", nil, cookie)

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":true`) {
		t.Fatalf("delete: status %d body %s", w.Code, w.Body.String())
	}

	// already gone
	w = app.do(http.MethodPost, "/tasks/"+created.ID+"/delete", nil, cookie)

	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"success":false`) {
		t.Fatalf("second delete: status %d body %s", w.Code, w.Body.String())
	}
}
