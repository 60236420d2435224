package airdna

import (
	"context"
	"errors"
	"testing"

	"rentalscout/internal/browser/browsertest"
)

const loginURL = "https://auth.test/login"

const loginForm = `<html><body><form>
	<input id="loginId" type="email">
	<input id="password" type="password">
	<button id="submit-button" type="submit">Log in</button>
</form></body></html>`

func newAuth(creds Credentials) *Authenticator {
	return NewAuthenticator(creds, AuthOptions{LoginURL: loginURL})
}

var creds = Credentials{Email: "host@example.com", Password: "s3cret"}

func TestLoginSubmitsCredentials(t *testing.T) {
	p := browsertest.NewPage()
	p.Routes[loginURL] = loginForm
	p.ClickRoutes["#submit-button"] = "https://app.airdna.co/data"
	a := newAuth(creds)

	if err := a.Login(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.State() != StateAuthenticated {
		t.Fatalf("expected authenticated, got %s", a.State())
	}
	if p.Typed["#loginId"] != creds.Email || p.Typed["#password"] != creds.Password {
		t.Fatalf("credentials not typed: %v", p.Typed)
	}
	if len(p.Clicks) != 1 {
		t.Fatalf("expected one submit click, got %v", p.Clicks)
	}
}

func TestLoginAlreadyAuthenticated(t *testing.T) {
	p := browsertest.NewPage()
	p.Routes[loginURL] = `<html><body><button aria-label="Account menu">Me</button></body></html>`
	a := newAuth(creds)

	if err := a.Login(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.State() != StateAuthenticated || len(p.Typed) != 0 {
		t.Fatalf("expected short-circuit without typing, state=%s typed=%v", a.State(), p.Typed)
	}

	// Authenticated is sticky; no second navigation.
	if err := a.Login(context.Background(), p); err != nil || len(p.Navigations) != 1 {
		t.Fatalf("expected no further navigation, got %d (%v)", len(p.Navigations), err)
	}
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		setup func(p *browsertest.Page)
		step  string
	}{
		{
			name:  "missing credentials",
			creds: Credentials{Email: "host@example.com"},
			setup: func(p *browsertest.Page) { p.Routes[loginURL] = loginForm },
			step:  "credentials",
		},
		{
			name:  "navigation error",
			creds: creds,
			setup: func(p *browsertest.Page) { p.NavErrors[loginURL] = []error{errors.New("net::ERR_CONNECTION_RESET")} },
			step:  "navigate",
		},
		{
			name:  "no password field",
			creds: creds,
			setup: func(p *browsertest.Page) {
				p.Routes[loginURL] = `<html><body><form><input id="loginId"></form></body></html>`
			},
			step: "password input",
		},
		{
			name:  "submit never visible",
			creds: creds,
			setup: func(p *browsertest.Page) {
				p.Routes[loginURL] = loginForm
				p.Hidden["#submit-button"] = true
			},
			step: "submit button",
		},
		{
			name:  "no navigation after submit",
			creds: creds,
			setup: func(p *browsertest.Page) { p.Routes[loginURL] = loginForm },
			step:  "submit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := browsertest.NewPage()
			tt.setup(p)
			a := newAuth(tt.creds)

			err := a.Login(context.Background(), p)
			if !errors.Is(err, ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
			var authErr *AuthError
			if !errors.As(err, &authErr) || authErr.Step != tt.step {
				t.Fatalf("expected failure at %q, got %v", tt.step, err)
			}
			if a.State() != StateFailed {
				t.Fatalf("expected failed state, got %s", a.State())
			}
		})
	}
}

func TestLoginFailedIsTerminal(t *testing.T) {
	p := browsertest.NewPage()
	p.Routes[loginURL] = `<html><body><p>maintenance</p></body></html>`
	a := newAuth(creds)

	first := a.Login(context.Background(), p)
	if first == nil {
		t.Fatalf("expected first login to fail")
	}

	p.Routes[loginURL] = loginForm
	p.ClickRoutes["#submit-button"] = "https://app.airdna.co/data"
	second := a.Login(context.Background(), p)
	if second != first {
		t.Fatalf("expected the original error, got %v", second)
	}
	if len(p.Navigations) != 1 {
		t.Fatalf("failed authenticator must not touch the page again, navigated %d times", len(p.Navigations))
	}
}

func TestStateString(t *testing.T) {
	want := map[State]string{
		StateUnauthenticated: "unauthenticated",
		StateAuthenticating:  "authenticating",
		StateAuthenticated:   "authenticated",
		StateFailed:          "failed",
		State(9):             "State(9)",
	}
	for s, w := range want {
		if s.String() != w {
			t.Errorf("State(%d).String() = %q, want %q", int(s), s.String(), w)
		}
	}
}

func TestCredentialsCheck(t *testing.T) {
	if err := (Credentials{Email: "a@b.co", Password: "pw"}).Check(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range []Credentials{{}, {Email: "a@b.co"}, {Password: "pw"}} {
		if err := c.Check(); !errors.Is(err, ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed for %+v, got %v", c, err)
		}
	}
}
