// Package browser wraps the headless browser engines used by the auditor.
// Every engine exposes the same narrow Session so the analysis code never
// depends on chromedp or selenium directly.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrIdleTimeout is returned by WaitForNetworkIdle when the network did
	// not go quiet before the deadline. Callers usually carry on.
	ErrIdleTimeout = errors.New("network idle not reached before deadline")

	// ErrDetached is returned when an element vanished between query and read.
	ErrDetached = errors.New("element is no longer attached")
)

// NavigationError reports a failed page load, either a transport error or a
// non-2xx document response.
type NavigationError struct {
	URL    string
	Status int
	Err    error
}

func (e *NavigationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("navigate %s: status %d", e.URL, e.Status)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// checkStatus returns a NavigationError for a known non-2xx status. Zero
// means the engine could not tell.
func checkStatus(url string, status int) error {
	if status == 0 || (status >= 200 && status < 300) {
		return nil
	}
	return &NavigationError{URL: url, Status: status}
}

// Element is a handle to a matched DOM element.
type Element interface {
	// Key is the element's absolute XPath, stable for the current document.
	Key() string
}

// Session is one browser tab driven by the auditor.
type Session interface {
	Navigate(ctx context.Context, url string) error
	WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error
	ResizeViewport(ctx context.Context, width, height int) error
	// LayoutWidth is the current layout viewport width in CSS pixels.
	LayoutWidth(ctx context.Context) (int, error)
	// QuerySelector returns the ordinal-th match of selector, or nil.
	QuerySelector(ctx context.Context, selector string, ordinal int) (Element, error)
	ReadComputedStyle(ctx context.Context, el Element, props []string) (map[string]string, error)
	// Screenshot captures el, or the page when el is nil.
	Screenshot(ctx context.Context, el Element, fullPage bool) ([]byte, error)
	HTML(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
	CSSVariables(ctx context.Context) (map[string]string, error)
	Close() error
}

const (
	EngineChromeDP = "chromedp"
	EngineSelenium = "selenium"
	EngineAuto     = "auto"
)

// ValidEngine reports whether name is a known engine.
func ValidEngine(name string) bool {
	switch name {
	case EngineChromeDP, EngineSelenium, EngineAuto:
		return true
	}
	return false
}
