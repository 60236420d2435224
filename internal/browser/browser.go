// Package browser owns headless browser sessions. Callers receive an explicit
// Session handle; there is no shared browser instance.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"rentalscout/internal/retry"
)

var (
	ErrLaunch   = errors.New("browser launch failed")
	ErrTimeout  = errors.New("browser operation timed out")
	ErrNotFound = errors.New("element not found")
	ErrBlocked  = errors.New("blocked by target site")
)

// Launcher starts independent browser sessions.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// Session is one browser process (or one remote connection).
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is the subset of page automation the pipeline needs. Every call may fail
// with ErrTimeout or ErrNotFound.
type Page interface {
	// Navigate loads url and waits for the page to settle.
	Navigate(ctx context.Context, url string) error
	URL() string
	// WaitFor blocks until selector is present (and visible if requested).
	WaitFor(ctx context.Context, selector string, visible bool) error
	// WaitAny returns the index of the first selector to appear.
	WaitAny(ctx context.Context, selectors ...string) (int, error)
	// Has checks for selector without waiting.
	Has(selector string) bool
	HTML() (string, error)
	// Type enters text one character at a time with delay between characters.
	Type(ctx context.Context, selector, text string, delay time.Duration) error
	// ClickAndWait clicks selector and waits for the resulting navigation.
	ClickAndWait(ctx context.Context, selector string) error
	Close() error
}

// LaunchError is returned when a session could not be acquired.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string { return fmt.Sprintf("%v: %v", ErrLaunch, e.Err) }
func (e *LaunchError) Unwrap() []error { return []error{ErrLaunch, e.Err} }

// WithSession acquires a session, runs fn and always releases the session exactly
// once, including when fn panics.
func WithSession(ctx context.Context, l Launcher, fn func(Session) error) (err error) {
	sess, err := l.Launch(ctx)
	if err != nil {
		var le *LaunchError
		if errors.As(err, &le) {
			return err
		}
		return &LaunchError{Err: err}
	}
	if sess == nil {
		return &LaunchError{Err: errors.New("launcher returned no session")}
	}

	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Printf("⚠️  [browser] error closing session: %v", cerr)
		}
	}()

	return fn(sess)
}

// WithPage opens a page on sess for the duration of fn.
func WithPage(ctx context.Context, sess Session, fn func(Page) error) error {
	page, err := sess.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			log.Printf("⚠️  [browser] error closing page: %v", cerr)
		}
	}()
	return fn(page)
}

// blockMarkers appear in the final URL when the site redirects to a captcha or error page.
var blockMarkers = []string{"captcha", "error"}

// IsBlockedURL reports whether url looks like a block or challenge page.
func IsBlockedURL(url string) bool {
	lower := strings.ToLower(url)
	for _, m := range blockMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// IsBlocked is the retry predicate for block pages.
func IsBlocked(err error) bool {
	return errors.Is(err, ErrBlocked)
}

// Navigate loads url under the retry policy. Each attempt gets its own timeout and a
// redirect to a block page ends the loop immediately.
func Navigate(ctx context.Context, page Page, url string, policy retry.Policy, timeout time.Duration) error {
	if policy.Permanent == nil {
		policy.Permanent = IsBlocked
	}
	return policy.Do(ctx, "navigate", func(ctx context.Context) error {
		attemptCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if err := page.Navigate(attemptCtx, url); err != nil {
			return err
		}
		if current := page.URL(); IsBlockedURL(current) {
			return fmt.Errorf("%w: redirected to %s", ErrBlocked, current)
		}
		return nil
	})
}
