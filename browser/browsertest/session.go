// Package browsertest provides an in-memory browser.Session backed by a
// scripted site, for tests of code that drives a browser.
package browsertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raushankrgupta/style-auditor/browser"
)

// Node is one element of a scripted page.
type Node struct {
	Key      string
	Styles   map[string]string
	Detached bool
}

// Page is a scripted document.
type Page struct {
	Status    int   // 0 means 200
	NavErr    error // returned by Navigate when set
	NeverIdle bool
	HTML      string
	CSSVars   map[string]string
	// Nodes maps a selector to its matches in document order. Several
	// selectors may list the same Key to model overlapping matches.
	Nodes map[string][]Node
	// QueryErr fails QuerySelector for the given selector.
	QueryErr map[string]error
	// WidthStyles overrides body styles per viewport width.
	WidthStyles map[int]map[string]string
	// BeforeQuery is called with the selector at the start of every
	// QuerySelector on this page.
	BeforeQuery func(selector string)
}

// Query records one QuerySelector call.
type Query struct {
	Selector string
	Ordinal  int
}

// Site is a set of pages shared by every session it opens.
type Site struct {
	Pages map[string]*Page
	// OpenErr fails Open when set.
	OpenErr error
	// ResizeLag is how many LayoutWidth polls report the old width after
	// a resize.
	ResizeLag int

	mu       sync.Mutex
	sessions []*Session
}

// NewSite returns an empty site.
func NewSite() *Site {
	return &Site{Pages: map[string]*Page{}}
}

// Open creates a session on the site.
func (s *Site) Open(ctx context.Context) (browser.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	sess := &Session{site: s, width: 1440, height: 900}
	s.mu.Lock()
	s.sessions = append(s.sessions, sess)
	s.mu.Unlock()
	return sess, nil
}

// Sessions returns every session opened so far.
func (s *Site) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Session implements browser.Session over a Site.
type Session struct {
	site *Site

	mu          sync.Mutex
	url         string
	current     *Page
	width       int
	height      int
	lagLeft     int
	prevWidth   int
	queries     []Query
	screenshots int
	resizes     [][2]int
	closed      bool
}

type element struct {
	node *Node
}

func (e *element) Key() string { return e.node.Key }

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return &browser.NavigationError{URL: url, Err: err}
	}
	page, ok := s.site.Pages[url]
	if !ok {
		return &browser.NavigationError{URL: url, Err: fmt.Errorf("net::ERR_NAME_NOT_RESOLVED")}
	}
	if page.NavErr != nil {
		return &browser.NavigationError{URL: url, Err: page.NavErr}
	}
	if page.Status != 0 && (page.Status < 200 || page.Status >= 300) {
		return &browser.NavigationError{URL: url, Status: page.Status}
	}
	s.mu.Lock()
	s.url = url
	s.current = page
	s.mu.Unlock()
	return nil
}

func (s *Session) page() (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, fmt.Errorf("no page loaded")
	}
	return s.current, nil
}

func (s *Session) WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error {
	p, err := s.page()
	if err != nil {
		return err
	}
	if p.NeverIdle {
		select {
		case <-time.After(timeout):
			return browser.ErrIdleTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Session) ResizeViewport(ctx context.Context, width, height int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prevWidth = s.width
	s.width, s.height = width, height
	s.lagLeft = s.site.ResizeLag
	s.resizes = append(s.resizes, [2]int{width, height})
	return nil
}

func (s *Session) LayoutWidth(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lagLeft > 0 {
		s.lagLeft--
		return s.prevWidth, nil
	}
	return s.width, nil
}

func (s *Session) QuerySelector(ctx context.Context, selector string, ordinal int) (browser.Element, error) {
	p, err := s.page()
	if err != nil {
		return nil, err
	}
	if p.BeforeQuery != nil {
		p.BeforeQuery(selector)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.queries = append(s.queries, Query{Selector: selector, Ordinal: ordinal})
	s.mu.Unlock()

	if err := p.QueryErr[selector]; err != nil {
		return nil, err
	}
	nodes := p.Nodes[selector]
	if ordinal >= len(nodes) {
		return nil, nil
	}
	return &element{node: &nodes[ordinal]}, nil
}

func (s *Session) ReadComputedStyle(ctx context.Context, el browser.Element, props []string) (map[string]string, error) {
	e, ok := el.(*element)
	if !ok {
		return nil, fmt.Errorf("browsertest: foreign element %T", el)
	}
	if e.node.Detached {
		return nil, browser.ErrDetached
	}

	styles := e.node.Styles
	s.mu.Lock()
	width := s.width
	page := s.current
	s.mu.Unlock()
	if override, ok := page.WidthStyles[width]; ok && e.node.Key == "/html/body" {
		styles = override
	}

	out := make(map[string]string)
	for _, p := range props {
		if v, ok := styles[p]; ok {
			out[p] = v
		}
	}
	return out, nil
}

func (s *Session) Screenshot(ctx context.Context, el browser.Element, fullPage bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.screenshots++
	s.mu.Unlock()
	return []byte("\x89PNG fake"), nil
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	p, err := s.page()
	if err != nil {
		return "", err
	}
	return p.HTML, nil
}

func (s *Session) URL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, nil
}

func (s *Session) CSSVariables(ctx context.Context) (map[string]string, error) {
	p, err := s.page()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(p.CSSVars))
	for k, v := range p.CSSVars {
		out[k] = v
	}
	return out, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Queries returns the QuerySelector calls made so far.
func (s *Session) Queries() []Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Query, len(s.queries))
	copy(out, s.queries)
	return out
}

// Resizes returns every viewport size applied.
func (s *Session) Resizes() [][2]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][2]int, len(s.resizes))
	copy(out, s.resizes)
	return out
}

func (s *Session) Screenshots() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screenshots
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
