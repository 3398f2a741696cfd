package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromeDPSession drives one Chrome tab over the DevTools protocol.
type ChromeDPSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	navTimeout  time.Duration
	logger      *zap.Logger

	mu        sync.Mutex
	mainFrame cdp.FrameID
	idle      chan struct{}
	done      bool
}

type cdpElement struct {
	path string
	key  string
}

func (e *cdpElement) Key() string { return e.key }

// NewChromeDPSession launches Chrome and prepares a tab. The browser is
// started eagerly so launch failures surface here.
func NewChromeDPSession(opts Options) (*ChromeDPSession, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(opts.UserAgent),
		chromedp.WindowSize(defaultWindowWidth, defaultWindowHeight),
	)
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	// Chrome refuses to start sandboxed as root, as in most containers.
	if os.Geteuid() == 0 {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	taskCtx, cancel := chromedp.NewContext(allocCtx)

	s := &ChromeDPSession{
		ctx:         taskCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		navTimeout:  opts.NavigationTimeout,
		logger:      opts.Logger,
		idle:        make(chan struct{}),
	}

	chromedp.ListenTarget(taskCtx, s.onEvent)

	// The first Run launches Chrome bound to the context it is given, so it
	// runs on the tab context itself and never on a derived timeout.
	if err := chromedp.Run(taskCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp launch error: %w", err)
	}
	if c := chromedp.FromContext(taskCtx); c != nil && c.Target != nil {
		s.mu.Lock()
		s.mainFrame = cdp.FrameID(c.Target.TargetID)
		s.mu.Unlock()
	}

	headers := map[string]interface{}{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
	}

	startCtx, startCancel := context.WithTimeout(taskCtx, opts.NavigationTimeout)
	defer startCancel()
	err := chromedp.Run(startCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers(headers)),
		page.SetLifecycleEventsEnabled(true),
	)
	if err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp start error: %w", err)
	}

	s.logger.Debug("[ChromeDP] session started", zap.Bool("headless", opts.Headless))
	return s, nil
}

func (s *ChromeDPSession) onEvent(ev interface{}) {
	if e, ok := ev.(*page.EventLifecycleEvent); ok {
		s.lifecycle(e.FrameID, e.Name)
	}
}

// lifecycle tracks network idle of the main frame. Subframe events are
// ignored so an iframe settling first cannot release a wait.
func (s *ChromeDPSession) lifecycle(frame cdp.FrameID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if frame != s.mainFrame {
		return
	}
	switch name {
	case "init":
		s.rearm()
	case "networkIdle":
		if !s.done {
			s.done = true
			close(s.idle)
		}
	}
}

func (s *ChromeDPSession) resetIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rearm()
}

// rearm opens a fresh idle channel. s.mu must be held.
func (s *ChromeDPSession) rearm() {
	if s.done {
		s.idle = make(chan struct{})
		s.done = false
	}
}

// bridge derives a context from the tab context that is also cancelled when
// ctx is done, so run deadlines abort in-flight protocol calls.
func (s *ChromeDPSession) bridge(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (s *ChromeDPSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := s.bridge(ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

func (s *ChromeDPSession) Navigate(ctx context.Context, url string) error {
	s.resetIdle()

	navCtx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()
	runCtx, stop := s.bridge(navCtx)
	defer stop()

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(url))
	if err != nil {
		if navCtx.Err() != nil {
			err = navCtx.Err()
		}
		return &NavigationError{URL: url, Err: err}
	}
	if resp != nil {
		return checkStatus(url, int(resp.Status))
	}
	return nil
}

func (s *ChromeDPSession) WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-idle:
		return nil
	case <-timer.C:
		return ErrIdleTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ChromeDPSession) ResizeViewport(ctx context.Context, width, height int) error {
	return s.run(ctx, chromedp.EmulateViewport(int64(width), int64(height)))
}

func (s *ChromeDPSession) LayoutWidth(ctx context.Context) (int, error) {
	var width int
	err := s.run(ctx, chromedp.Evaluate(call(layoutWidthFn), &width))
	return width, err
}

func (s *ChromeDPSession) QuerySelector(ctx context.Context, selector string, ordinal int) (Element, error) {
	path := jsPath(selector, ordinal)
	expr := fmt.Sprintf("(() => { const el = %s; return el ? (%s)(el) : ''; })()", path, xpathFn)

	var key string
	if err := s.run(ctx, chromedp.Evaluate(expr, &key)); err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	if key == "" {
		return nil, nil
	}
	return &cdpElement{path: path, key: key}, nil
}

func (s *ChromeDPSession) ReadComputedStyle(ctx context.Context, el Element, props []string) (map[string]string, error) {
	ce, ok := el.(*cdpElement)
	if !ok {
		return nil, fmt.Errorf("chromedp: foreign element %T", el)
	}
	var out map[string]string
	if err := s.run(ctx, chromedp.Evaluate(call(computedStyleFn, ce.path, jsStrings(props)), &out)); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrDetached
	}
	return out, nil
}

func (s *ChromeDPSession) Screenshot(ctx context.Context, el Element, fullPage bool) ([]byte, error) {
	var buf []byte
	var action chromedp.Action
	switch {
	case el == nil && fullPage:
		action = chromedp.FullScreenshot(&buf, 100)
	case el == nil:
		action = chromedp.CaptureScreenshot(&buf)
	default:
		ce, ok := el.(*cdpElement)
		if !ok {
			return nil, fmt.Errorf("chromedp: foreign element %T", el)
		}
		action = chromedp.Screenshot(ce.path, &buf, chromedp.ByJSPath)
	}
	if err := s.run(ctx, action); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *ChromeDPSession) HTML(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (s *ChromeDPSession) URL(ctx context.Context) (string, error) {
	var loc string
	err := s.run(ctx, chromedp.Location(&loc))
	return loc, err
}

func (s *ChromeDPSession) CSSVariables(ctx context.Context) (map[string]string, error) {
	vars := map[string]string{}
	err := s.run(ctx, chromedp.Evaluate(call(cssVariablesFn), &vars))
	return vars, err
}

func (s *ChromeDPSession) Close() error {
	s.cancel()
	s.allocCancel()
	return nil
}
