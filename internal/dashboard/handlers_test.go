package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/chapter-dash/internal/auth"
	"github.com/jimdaga/chapter-dash/internal/events"
	"github.com/jimdaga/chapter-dash/internal/kv"
	"github.com/jimdaga/chapter-dash/internal/session"
)

type testApp struct {
	router    *gin.Engine
	directory *session.KVDirectory
	cookies   []*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir, err := session.NewKVDirectory(kv.NewMemoryStore())
	if err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}

	r := gin.New()
	r.Use(sessions.Sessions("chapterdash_session", cookie.NewStore([]byte("test-secret"))))
	auth.RegisterRoutes(r, auth.NewHandlers(dir, false, nil), true)

	svc := NewService(events.NewStaticCatalog(events.SampleEvents()), Options{
		Policy:      events.DefaultPolicy(),
		TimelineCap: 3,
	})
	h := NewHandler(svc, dir, nil, nil, nil)
	h.now = func() time.Time { return time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC) }

	protected := r.Group("/")
	protected.Use(auth.RequireAuth())
	RegisterRoutes(protected, h)

	return &testApp{router: r, directory: dir}
}

func (a *testApp) do(method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	for _, c := range a.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		a.cookies = cookies
	}
	return w
}

func (a *testApp) signIn(t *testing.T, email string) {
	t.Helper()
	w := a.do(http.MethodGet, "/auth/dev?email="+email+"&name=Ada+Lovelace", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("expected sign-in redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %s", loc)
	}
}

func TestDashboardRedirectsWithoutSession(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusFound {
		t.Errorf("expected status 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %s", loc)
	}
}

func TestDashboardHTMXRedirect(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/dashboard", map[string]string{"HX-Request": "true"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
	if got := w.Header().Get("HX-Redirect"); got != "/login" {
		t.Errorf("expected HX-Redirect /login, got %q", got)
	}
}

func TestDashboardRendersForSignedInMember(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "ada@example.com")

	w := app.do(http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var view View
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode view: %v", err)
	}

	if view.Profile.Email != "ada@example.com" {
		t.Errorf("expected ada@example.com, got %q", view.Profile.Email)
	}
	if view.Profile.Initials != "AL" {
		t.Errorf("expected initials AL, got %q", view.Profile.Initials)
	}
	if view.Events.RegisteredCount != 2 || view.Events.UpcomingCount != 3 || view.Events.OngoingCount != 0 {
		t.Errorf("unexpected counts %d/%d/%d", view.Events.RegisteredCount, view.Events.UpcomingCount, view.Events.OngoingCount)
	}
	if view.Events.OngoingEmpty != NoOngoingMessage {
		t.Errorf("expected empty ongoing message, got %q", view.Events.OngoingEmpty)
	}
	if view.Summary.TotalEvents != 5 || view.Summary.AttendancePercent != 40 {
		t.Errorf("unexpected summary %+v", view.Summary)
	}
	if view.Theme != "light" {
		t.Errorf("expected light theme by default, got %s", view.Theme)
	}
}

func TestDashboardRedirectsWhenAccountRemoved(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "ada@example.com")

	if err := app.directory.Put(context.Background(), nil); err != nil {
		t.Fatalf("failed to clear directory: %v", err)
	}

	w := app.do(http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusFound {
		t.Errorf("expected status 302, got %d", w.Code)
	}
}

func TestToggleThemePersists(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "ada@example.com")

	w := app.do(http.MethodPost, "/preferences/theme/toggle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"theme":"dark"`) {
		t.Errorf("expected dark theme, got %s", w.Body.String())
	}

	w = app.do(http.MethodGet, "/preferences/theme", nil)
	if !strings.Contains(w.Body.String(), `"theme":"dark"`) {
		t.Errorf("expected stored dark theme, got %s", w.Body.String())
	}

	w = app.do(http.MethodPost, "/preferences/theme/toggle", nil)
	if !strings.Contains(w.Body.String(), `"theme":"light"`) {
		t.Errorf("expected toggle back to light, got %s", w.Body.String())
	}
}

func TestCalendarExport(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "ada@example.com")

	w := app.do(http.MethodGet, "/dashboard/events.ics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("expected text/calendar, got %s", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "AI/ML Workshop") {
		t.Errorf("unexpected calendar body %s", body)
	}
	if strings.Contains(body, "Monthly Meetup") {
		t.Error("expected only registered events in the export")
	}
}
