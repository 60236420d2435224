// Package browsertest provides an in-memory browser for tests. Pages are served
// from HTML fixtures keyed by URL and selectors are evaluated with goquery.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rentalscout/internal/browser"
)

const blankPage = "<html><head></head><body></body></html>"

// Page is a scriptable browser.Page.
type Page struct {
	mu sync.Mutex

	// Routes maps a URL to the HTML served after navigating to it.
	Routes map[string]string
	// Redirects maps a requested URL to the URL the page ends up on.
	Redirects map[string]string
	// NavErrors are returned, in order, for successive navigations to a URL.
	NavErrors map[string][]error
	// Delays simulate slow navigations; the context still wins.
	Delays map[string]time.Duration
	// ClickRoutes maps a clicked selector to the URL the click navigates to.
	ClickRoutes map[string]string
	// Hidden selectors are present in the DOM but never become visible.
	Hidden map[string]bool

	url    string
	html   string
	closed bool

	Navigations []string
	Typed       map[string]string
	Clicks      []string
}

// NewPage returns a page with empty routing tables.
func NewPage() *Page {
	return &Page{
		Routes:      map[string]string{},
		Redirects:   map[string]string{},
		NavErrors:   map[string][]error{},
		Delays:      map[string]time.Duration{},
		ClickRoutes: map[string]string{},
		Hidden:      map[string]bool{},
		Typed:       map[string]string{},
		html:        blankPage,
	}
}

// SetHTML replaces the current document without navigating.
func (p *Page) SetHTML(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html = html
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	p.Navigations = append(p.Navigations, url)
	delay := p.Delays[url]
	var navErr error
	if errs := p.NavErrors[url]; len(errs) > 0 {
		navErr = errs[0]
		p.NavErrors[url] = errs[1:]
	}
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", browser.ErrTimeout, ctx.Err())
		case <-time.After(delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", browser.ErrTimeout, err)
	}
	if navErr != nil {
		return navErr
	}

	p.load(url)
	return nil
}

func (p *Page) load(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	final := url
	if to, ok := p.Redirects[url]; ok {
		final = to
	}
	p.url = final
	if html, ok := p.Routes[final]; ok {
		p.html = html
	} else {
		p.html = blankPage
	}
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) WaitFor(ctx context.Context, selector string, visible bool) error {
	if !p.Has(selector) {
		return fmt.Errorf("%w: %s", browser.ErrTimeout, selector)
	}
	if visible {
		p.mu.Lock()
		hidden := p.Hidden[selector]
		p.mu.Unlock()
		if hidden {
			return fmt.Errorf("%w: %s not visible", browser.ErrTimeout, selector)
		}
	}
	return ctxErr(ctx)
}

func (p *Page) WaitAny(ctx context.Context, selectors ...string) (int, error) {
	for i, sel := range selectors {
		if p.Has(sel) {
			return i, ctxErr(ctx)
		}
	}
	return -1, fmt.Errorf("%w: none of %v", browser.ErrTimeout, selectors)
}

func (p *Page) Has(selector string) bool {
	doc, err := p.doc()
	if err != nil {
		return false
	}
	return doc.Find(selector).Length() > 0
}

func (p *Page) HTML() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.html, nil
}

func (p *Page) Type(ctx context.Context, selector, text string, delay time.Duration) error {
	if !p.Has(selector) {
		return fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
	}
	if err := ctxErr(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	p.Typed[selector] += text
	p.mu.Unlock()
	return nil
}

func (p *Page) ClickAndWait(ctx context.Context, selector string) error {
	if !p.Has(selector) {
		return fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
	}
	p.mu.Lock()
	p.Clicks = append(p.Clicks, selector)
	target, ok := p.ClickRoutes[selector]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: no navigation after clicking %s", browser.ErrTimeout, selector)
	}
	return p.Navigate(ctx, target)
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) doc() (*goquery.Document, error) {
	p.mu.Lock()
	html := p.html
	p.mu.Unlock()
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", browser.ErrTimeout, err)
	}
	return nil
}

// Session hands out a single page.
type Session struct {
	mu     sync.Mutex
	page   *Page
	closes int
}

func (s *Session) NewPage(ctx context.Context) (browser.Page, error) {
	return s.page, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

// Closes returns how many times Close was called.
func (s *Session) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// Launcher creates sessions around pages produced by NewPage.
type Launcher struct {
	mu sync.Mutex

	// NewPage builds the page for each launched session.
	NewPage func() *Page
	// Err makes Launch fail.
	Err error

	Sessions []*Session
}

// NewLauncher returns a launcher whose sessions all share page.
func NewLauncher(page *Page) *Launcher {
	return &Launcher{NewPage: func() *Page { return page }}
}

func (l *Launcher) Launch(ctx context.Context) (browser.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	page := NewPage()
	if l.NewPage != nil {
		page = l.NewPage()
	}
	s := &Session{page: page}
	l.Sessions = append(l.Sessions, s)
	return s, nil
}

// Open returns the number of sessions that were never closed.
func (l *Launcher) Open() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	open := 0
	for _, s := range l.Sessions {
		if s.Closes() == 0 {
			open++
		}
	}
	return open
}
