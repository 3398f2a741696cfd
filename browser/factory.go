package browser

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	defaultWindowWidth  = 1440
	defaultWindowHeight = 900
	defaultUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

// Options configures how sessions are opened.
type Options struct {
	Engine            string
	Headless          bool
	UserAgent         string
	NavigationTimeout time.Duration
	ChromeDriverPath  string
	SeleniumBasePort  int
	SeleniumPorts     int
	Logger            *zap.Logger
}

func (o *Options) defaults() {
	if o.Engine == "" {
		o.Engine = EngineChromeDP
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = 60 * time.Second
	}
	if o.ChromeDriverPath == "" {
		o.ChromeDriverPath = "/usr/local/bin/chromedriver"
	}
	if o.SeleniumBasePort <= 0 {
		o.SeleniumBasePort = 4444
	}
	if o.SeleniumPorts <= 0 {
		o.SeleniumPorts = 16
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Factory opens sessions for the configured engine.
type Factory struct {
	opts  Options
	ports *PortManager
}

// NewFactory validates opts and returns a Factory.
func NewFactory(opts Options) (*Factory, error) {
	opts.defaults()
	if !ValidEngine(opts.Engine) {
		return nil, fmt.Errorf("unknown browser engine %q", opts.Engine)
	}
	return &Factory{
		opts:  opts,
		ports: NewPortManager(opts.SeleniumBasePort, opts.SeleniumPorts),
	}, nil
}

// Engine returns the configured engine name.
func (f *Factory) Engine() string { return f.opts.Engine }

// Open starts a new session. With the auto engine ChromeDP is tried first
// and Selenium is the fallback.
func (f *Factory) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := f.opts.Logger

	switch f.opts.Engine {
	case EngineChromeDP:
		return NewChromeDPSession(f.opts)
	case EngineSelenium:
		return NewSeleniumSession(f.opts, f.ports)
	}

	s, err := NewChromeDPSession(f.opts)
	if err == nil {
		log.Debug("[Browser] ChromeDP session opened")
		return s, nil
	}
	log.Warn("[Browser] ChromeDP failed, trying Selenium", zap.Error(err))

	sel, selErr := NewSeleniumSession(f.opts, f.ports)
	if selErr != nil {
		return nil, fmt.Errorf("all engines failed: chromedp: %v; selenium: %w", err, selErr)
	}
	log.Debug("[Browser] Selenium session opened")
	return sel, nil
}
