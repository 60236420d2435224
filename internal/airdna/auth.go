// Package airdna signs into the AirDNA analytics site and reads Rentalizer projections.
package airdna

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"rentalscout/internal/browser"
)

// ErrAuthFailed is returned for any failed login. Callers skip enrichment for the run.
var ErrAuthFailed = errors.New("airdna authentication failed")

// DefaultLoginURL is the OAuth entry point that redirects back to the data app.
const DefaultLoginURL = "https://auth.airdna.co/oauth2/authorize?tenantId=1fb206a8-177b-4684-af1f-8fff7cc153a0&client_id=5f040464-0aef-48a1-a1d1-daa9fbf81415&redirect_uri=https%3A%2F%2Fapp.airdna.co&response_type=code&scope=profile%20openid&state=%7B%22path%22%3A%22%2Fdata%22%2C%22search%22%3A%22%22%7D"

// State of a login attempt.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Credentials for the analytics account.
type Credentials struct {
	Email    string
	Password string
}

// Check reports missing credentials as an AuthError so callers can fail before
// opening a browser.
func (c Credentials) Check() error {
	if c.Email == "" || c.Password == "" {
		return &AuthError{Step: "credentials", Err: errors.New("email and password are required")}
	}
	return nil
}

// AuthOptions holds the login page selectors and timings.
type AuthOptions struct {
	LoginURL string

	AccountMenu   string // present only when already signed in
	Form          string
	EmailInput    string
	PasswordInput string
	SubmitButton  string

	TypingDelay    time.Duration
	NavTimeout     time.Duration
	ElementTimeout time.Duration
}

// DefaultAuthOptions returns the selectors of the current login form.
func DefaultAuthOptions() AuthOptions {
	return AuthOptions{
		LoginURL:       DefaultLoginURL,
		AccountMenu:    `button[aria-label="Account menu"]`,
		Form:           "form",
		EmailInput:     "#loginId",
		PasswordInput:  "#password",
		SubmitButton:   "#submit-button",
		TypingDelay:    50 * time.Millisecond,
		NavTimeout:     30 * time.Second,
		ElementTimeout: 10 * time.Second,
	}
}

// AuthError records which login step failed.
type AuthError struct {
	Step string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%v at %s: %v", ErrAuthFailed, e.Step, e.Err)
}

func (e *AuthError) Unwrap() []error { return []error{ErrAuthFailed, e.Err} }

// Authenticator drives one login on one browser session. It is not reused across runs.
type Authenticator struct {
	creds Credentials
	opts  AuthOptions
	state State
	err   error
}

// NewAuthenticator creates an authenticator in the unauthenticated state. Zero
// options fall back to DefaultAuthOptions.
func NewAuthenticator(creds Credentials, opts AuthOptions) *Authenticator {
	def := DefaultAuthOptions()
	if opts.LoginURL == "" {
		opts.LoginURL = def.LoginURL
	}
	if opts.AccountMenu == "" {
		opts.AccountMenu = def.AccountMenu
	}
	if opts.Form == "" {
		opts.Form = def.Form
	}
	if opts.EmailInput == "" {
		opts.EmailInput = def.EmailInput
	}
	if opts.PasswordInput == "" {
		opts.PasswordInput = def.PasswordInput
	}
	if opts.SubmitButton == "" {
		opts.SubmitButton = def.SubmitButton
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = def.NavTimeout
	}
	if opts.ElementTimeout <= 0 {
		opts.ElementTimeout = def.ElementTimeout
	}
	return &Authenticator{creds: creds, opts: opts}
}

// State returns the current login state.
func (a *Authenticator) State() State {
	return a.state
}

// Login signs in on page. It returns immediately if already authenticated, and a
// failed login stays failed: later calls return the original error without retrying.
func (a *Authenticator) Login(ctx context.Context, page browser.Page) error {
	switch a.state {
	case StateAuthenticated:
		return nil
	case StateFailed:
		return a.err
	}

	a.state = StateAuthenticating
	if err := a.login(ctx, page); err != nil {
		a.state = StateFailed
		a.err = err
		log.Printf("❌ [airdna] login failed: %v", err)
		return err
	}

	a.state = StateAuthenticated
	log.Println("✅ [airdna] logged in")
	return nil
}

func (a *Authenticator) login(ctx context.Context, page browser.Page) error {
	if err := a.creds.Check(); err != nil {
		return err
	}

	navCtx, cancel := context.WithTimeout(ctx, a.opts.NavTimeout)
	defer cancel()
	if err := page.Navigate(navCtx, a.opts.LoginURL); err != nil {
		return &AuthError{Step: "navigate", Err: err}
	}

	if page.Has(a.opts.AccountMenu) {
		log.Println("[airdna] already logged in")
		return nil
	}

	steps := []struct {
		step     string
		selector string
		visible  bool
	}{
		{"login form", a.opts.Form, false},
		{"email input", a.opts.EmailInput, true},
		{"password input", a.opts.PasswordInput, true},
	}
	for _, s := range steps {
		if err := a.waitFor(ctx, page, s.selector, s.visible); err != nil {
			return &AuthError{Step: s.step, Err: err}
		}
	}

	if err := page.Type(ctx, a.opts.EmailInput, a.creds.Email, a.opts.TypingDelay); err != nil {
		return &AuthError{Step: "type email", Err: err}
	}
	if err := page.Type(ctx, a.opts.PasswordInput, a.creds.Password, a.opts.TypingDelay); err != nil {
		return &AuthError{Step: "type password", Err: err}
	}

	if err := a.waitFor(ctx, page, a.opts.SubmitButton, true); err != nil {
		return &AuthError{Step: "submit button", Err: err}
	}

	submitCtx, cancelSubmit := context.WithTimeout(ctx, a.opts.NavTimeout)
	defer cancelSubmit()
	if err := page.ClickAndWait(submitCtx, a.opts.SubmitButton); err != nil {
		return &AuthError{Step: "submit", Err: err}
	}
	return nil
}

func (a *Authenticator) waitFor(ctx context.Context, page browser.Page, selector string, visible bool) error {
	waitCtx, cancel := context.WithTimeout(ctx, a.opts.ElementTimeout)
	defer cancel()
	return page.WaitFor(waitCtx, selector, visible)
}
