package cli

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/dmitrijs2005/identitykeeper/internal/client/client"
	"github.com/dmitrijs2005/identitykeeper/internal/client/config"
)

type fakeClient struct {
	loggedIn bool

	regArgs   []string
	regErr    error
	loginUser string
	loginPass string
	loginErr  error
	logoutErr error
	revoked   int64
	changeCur string
	changeNew string
	changeErr error
	profile   *client.Session
	updFirst  *string
	updLast   *string
	pingErr   error
	closed    bool
}

func (f *fakeClient) Register(_ context.Context, first, last, email, password string) (string, error) {
	f.regArgs = []string{first, last, email, password}
	return "USER-NEW0-0001", f.regErr
}
func (f *fakeClient) Login(_ context.Context, email, password string) (*client.Session, error) {
	f.loginUser, f.loginPass = email, password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.loggedIn = true
	return &client.Session{AccountID: "USER-ADA0-0001", Email: email, FirstName: "Ada"}, nil
}
func (f *fakeClient) Logout(context.Context) (int64, error) {
	f.loggedIn = false
	return f.revoked, f.logoutErr
}
func (f *fakeClient) ChangePassword(_ context.Context, cur, next string) error {
	f.changeCur, f.changeNew = cur, next
	return f.changeErr
}
func (f *fakeClient) Profile(context.Context) (*client.Session, error) { return f.profile, nil }
func (f *fakeClient) UpdateProfile(_ context.Context, first, last *string) (*client.Session, error) {
	f.updFirst, f.updLast = first, last
	return f.profile, nil
}
func (f *fakeClient) Ping(context.Context) error { return f.pingErr }
func (f *fakeClient) LoggedIn() bool             { return f.loggedIn }
func (f *fakeClient) Close() error               { f.closed = true; return nil }

func newTestApp(f *fakeClient) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{client: f, out: &out, config: &config.Config{RequestTimeout: time.Second}}, &out
}

func silenceLog(t *testing.T) {
	t.Helper()
	old := log.Writer()
	log.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { log.SetOutput(old) })
}

func TestIsLoggedIn(t *testing.T) {
	if (&App{}).isLoggedIn() {
		t.Fatalf("expected isLoggedIn() == false without a client")
	}
	a, _ := newTestApp(&fakeClient{loggedIn: true})
	if !a.isLoggedIn() {
		t.Fatalf("expected isLoggedIn() == true when the client holds a session")
	}
}

func TestSetMode_ChangesAndLogsOnce(t *testing.T) {
	app := &App{}
	var buf bytes.Buffer

	old := log.Default().Writer()
	defer log.SetOutput(old)
	log.SetOutput(&buf)

	app.setMode(ModeOnline)
	if app.Mode != ModeOnline {
		t.Fatalf("expected mode to be %q, got %q", ModeOnline, app.Mode)
	}
	if got := buf.String(); got == "" {
		t.Fatalf("expected log output on mode change, got empty")
	}

	buf.Reset()

	app.setMode(ModeOnline)
	if got := buf.String(); got != "" {
		t.Fatalf("expected no log output when mode doesn't change, got: %q", got)
	}

	app.setMode(ModeOffline)
	if app.Mode != ModeOffline {
		t.Fatalf("expected mode to be %q, got %q", ModeOffline, app.Mode)
	}
}

func TestCheckOnline(t *testing.T) {
	silenceLog(t)

	f := &fakeClient{}
	a, _ := newTestApp(f)

	a.checkOnline(context.Background())
	if a.Mode != ModeOnline {
		t.Fatalf("want online, got %q", a.Mode)
	}

	f.pingErr = client.ErrUnavailable
	a.checkOnline(context.Background())
	if a.Mode != ModeOffline {
		t.Fatalf("want offline, got %q", a.Mode)
	}
}

func TestStartOnlineStatusWatcher_StopsOnCancel(t *testing.T) {
	silenceLog(t)

	a, _ := newTestApp(&fakeClient{pingErr: errors.New("down")})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
