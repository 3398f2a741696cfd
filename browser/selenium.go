package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"go.uber.org/zap"
)

// SeleniumSession drives Chrome through a private chromedriver process.
type SeleniumSession struct {
	service *selenium.Service
	driver  selenium.WebDriver
	port    int
	ports   *PortManager
	logger  *zap.Logger
	width   int
	height  int
}

type seleniumElement struct {
	we  selenium.WebElement
	key string
}

func (e *seleniumElement) Key() string { return e.key }

// NewSeleniumSession starts chromedriver on a port from ports and opens a
// browser window.
func NewSeleniumSession(opts Options, ports *PortManager) (*SeleniumSession, error) {
	port, err := ports.GetPort()
	if err != nil {
		return nil, fmt.Errorf("port error: %w", err)
	}

	service, err := selenium.NewChromeDriverService(opts.ChromeDriverPath, port)
	if err != nil {
		ports.ReleasePort(port)
		return nil, fmt.Errorf("error starting Chrome driver service: %w", err)
	}

	args := []string{
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-extensions",
		"--disable-gpu",
		fmt.Sprintf("--window-size=%d,%d", defaultWindowWidth, defaultWindowHeight),
		fmt.Sprintf("--user-agent=%s", opts.UserAgent),
	}
	if opts.Headless {
		args = append(args, "--headless=new")
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{
		Args:            args,
		ExcludeSwitches: []string{"enable-automation"},
	})

	driver, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", port))
	if err != nil {
		service.Stop()
		ports.ReleasePort(port)
		return nil, fmt.Errorf("error creating WebDriver: %w", err)
	}

	if err := driver.SetPageLoadTimeout(opts.NavigationTimeout); err != nil {
		opts.Logger.Warn("[Selenium] could not set page load timeout", zap.Error(err))
	}

	return &SeleniumSession{
		service: service,
		driver:  driver,
		port:    port,
		ports:   ports,
		logger:  opts.Logger,
		width:   defaultWindowWidth,
		height:  defaultWindowHeight,
	}, nil
}

func (s *SeleniumSession) exec(fn string, args ...interface{}) (interface{}, error) {
	if args == nil {
		args = []interface{}{}
	}
	return s.driver.ExecuteScript(webdriverBody(fn), args)
}

func (s *SeleniumSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	if err := s.driver.Get(url); err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	// WebDriver loads error pages without complaint; the status comes from
	// the navigation timing entry.
	v, err := s.exec(navigationStatusFn)
	if err != nil {
		s.logger.Debug("[Selenium] navigation status unavailable", zap.String("url", url), zap.Error(err))
		return nil
	}
	status, _ := v.(float64)
	return checkStatus(url, int(status))
}

// WaitForNetworkIdle polls document.readyState; WebDriver has no view of
// network activity.
func (s *SeleniumSession) WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		state, err := s.exec(readyStateFn)
		if err == nil && state == "complete" {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrIdleTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (s *SeleniumSession) ResizeViewport(ctx context.Context, width, height int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.driver.ResizeWindow("", width, height); err != nil {
		return err
	}
	s.width, s.height = width, height
	return nil
}

func (s *SeleniumSession) LayoutWidth(ctx context.Context) (int, error) {
	v, err := s.exec(layoutWidthFn)
	if err != nil {
		return 0, err
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("unexpected innerWidth %T", v)
	}
	return int(n), nil
}

func (s *SeleniumSession) QuerySelector(ctx context.Context, selector string, ordinal int) (Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	elems, err := s.driver.FindElements(selenium.ByCSSSelector, selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	if ordinal >= len(elems) {
		return nil, nil
	}
	we := elems[ordinal]
	key, err := s.exec(xpathFn, we)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	k, _ := key.(string)
	return &seleniumElement{we: we, key: k}, nil
}

func (s *SeleniumSession) ReadComputedStyle(ctx context.Context, el Element, props []string) (map[string]string, error) {
	se, ok := el.(*seleniumElement)
	if !ok {
		return nil, fmt.Errorf("selenium: foreign element %T", el)
	}
	v, err := s.exec(computedStyleFn, se.we, props)
	if err != nil {
		return nil, err
	}
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil, ErrDetached
	}
	out := make(map[string]string, len(raw))
	for k, val := range raw {
		if str, ok := val.(string); ok {
			out[k] = str
		}
	}
	return out, nil
}

// Screenshot captures el or the window. For a full page capture the window
// is stretched to the document height and restored afterwards.
func (s *SeleniumSession) Screenshot(ctx context.Context, el Element, fullPage bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if el != nil {
		se, ok := el.(*seleniumElement)
		if !ok {
			return nil, fmt.Errorf("selenium: foreign element %T", el)
		}
		return se.we.Screenshot(true)
	}
	if !fullPage {
		return s.driver.Screenshot()
	}

	v, err := s.exec(scrollHeightFn)
	if err != nil {
		return nil, err
	}
	if h, ok := v.(float64); ok && int(h) > s.height {
		if err := s.driver.ResizeWindow("", s.width, int(h)); err == nil {
			defer s.driver.ResizeWindow("", s.width, s.height)
		}
	}
	return s.driver.Screenshot()
}

func (s *SeleniumSession) HTML(ctx context.Context) (string, error) {
	return s.driver.PageSource()
}

func (s *SeleniumSession) URL(ctx context.Context) (string, error) {
	return s.driver.CurrentURL()
}

func (s *SeleniumSession) CSSVariables(ctx context.Context) (map[string]string, error) {
	v, err := s.exec(cssVariablesFn)
	if err != nil {
		return nil, err
	}
	raw, _ := v.(map[string]interface{})
	out := make(map[string]string, len(raw))
	for k, val := range raw {
		if str, ok := val.(string); ok {
			out[k] = str
		}
	}
	return out, nil
}

func (s *SeleniumSession) Close() error {
	err := s.driver.Quit()
	if stopErr := s.service.Stop(); err == nil {
		err = stopErr
	}
	s.ports.ReleasePort(s.port)
	return err
}
