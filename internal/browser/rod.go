package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// RodOptions configures how browsers are started.
type RodOptions struct {
	Headless bool
	// ChromeBin overrides Chromium discovery.
	ChromeBin string
	// ControlURL connects to an already running browser instead of launching one.
	ControlURL string
	UserAgent  string
}

// RodLauncher launches a fresh browser per session so search and analytics
// sessions never share navigation state.
type RodLauncher struct {
	opts RodOptions
}

// NewRodLauncher creates a launcher for go-rod backed sessions.
func NewRodLauncher(opts RodOptions) *RodLauncher {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	return &RodLauncher{opts: opts}
}

// Launch starts (or connects to) a browser.
func (r *RodLauncher) Launch(ctx context.Context) (Session, error) {
	controlURL := r.opts.ControlURL
	var l *launcher.Launcher

	if controlURL == "" {
		l = r.newLauncher()
		u, err := l.Launch()
		if err != nil {
			return nil, &LaunchError{Err: err}
		}
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, &LaunchError{Err: fmt.Errorf("failed to connect to browser: %w", err)}
	}
	// Keep the browser alive past the launch context; pages get their own contexts.
	b = b.Context(context.Background())

	log.Println("✅ [browser] session started")
	return &rodSession{browser: b, launcher: l, userAgent: r.opts.UserAgent}, nil
}

func (r *RodLauncher) newLauncher() *launcher.Launcher {
	l := launcher.New().
		Headless(r.opts.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-extensions").
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-backgrounding-occluded-windows").
		Set("window-size", "1920,1080").
		Set("user-agent", r.opts.UserAgent)

	if bin := resolveChromium(r.opts.ChromeBin); bin != "" {
		log.Printf("🔍 [browser] using Chromium at: %s", bin)
		l = l.Bin(bin)
	}

	if inContainer() {
		l = l.Set("disable-setuid-sandbox").
			Set("no-first-run").
			Set("disable-default-apps")
	}
	return l
}

type rodSession struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	userAgent string
}

func (s *rodSession) NewPage(ctx context.Context) (Page, error) {
	p, err := stealth.Page(s.browser)
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      s.userAgent,
		AcceptLanguage: "en-US,en;q=0.9",
	}); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to set user agent: %w", err)
	}

	if _, err := p.SetExtraHeaders([]string{
		"Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"Upgrade-Insecure-Requests", "1",
	}); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to set headers: %w", err)
	}

	return &rodPage{page: p}, nil
}

func (s *rodSession) Close() error {
	err := s.browser.Close()
	if s.launcher != nil {
		s.launcher.Kill()
	}
	return err
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return classify(fmt.Errorf("navigation to %s failed: %w", url, err))
	}
	if err := page.WaitLoad(); err != nil {
		return classify(fmt.Errorf("page load failed: %w", err))
	}
	return nil
}

func (p *rodPage) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *rodPage) WaitFor(ctx context.Context, selector string, visible bool) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return classify(fmt.Errorf("waiting for %s: %w", selector, err))
	}
	if visible {
		if err := el.Context(ctx).WaitVisible(); err != nil {
			return classify(fmt.Errorf("waiting for %s to be visible: %w", selector, err))
		}
	}
	return nil
}

func (p *rodPage) WaitAny(ctx context.Context, selectors ...string) (int, error) {
	matched := -1
	race := p.page.Context(ctx).Race()
	for i, sel := range selectors {
		i := i
		race = race.Element(sel).Handle(func(*rod.Element) error {
			matched = i
			return nil
		})
	}
	if _, err := race.Do(); err != nil {
		return -1, classify(fmt.Errorf("waiting for any of %v: %w", selectors, err))
	}
	return matched, nil
}

func (p *rodPage) Has(selector string) bool {
	has, _, err := p.page.Has(selector)
	return err == nil && has
}

func (p *rodPage) HTML() (string, error) {
	return p.page.HTML()
}

func (p *rodPage) Type(ctx context.Context, selector, text string, delay time.Duration) error {
	page := p.page.Context(ctx)
	el, err := page.Element(selector)
	if err != nil {
		return classify(fmt.Errorf("input %s: %w", selector, err))
	}
	if err := el.Focus(); err != nil {
		return classify(err)
	}
	for _, r := range text {
		if err := page.InsertText(string(r)); err != nil {
			return classify(err)
		}
		select {
		case <-ctx.Done():
			return classify(ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil
}

func (p *rodPage) ClickAndWait(ctx context.Context, selector string) error {
	page := p.page.Context(ctx)
	el, err := page.Element(selector)
	if err != nil {
		return classify(fmt.Errorf("click %s: %w", selector, err))
	}
	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return classify(fmt.Errorf("click %s: %w", selector, err))
	}
	wait()
	return classify(ctx.Err())
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var notFound *rod.ElementNotFoundError
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
