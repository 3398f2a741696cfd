// Package analysis runs a style audit against a target site: it discovers
// the pages to visit, samples each one in its own browser session, applies
// the device viewports and merges everything into one Result.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raushankrgupta/style-auditor/aggregator"
	"github.com/raushankrgupta/style-auditor/browser"
	"github.com/raushankrgupta/style-auditor/models"
	"github.com/raushankrgupta/style-auditor/sampler"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ErrTargetUnreachable is returned when the first navigation to the target
// fails. The Outcome is still valid and holds an empty Result.
var ErrTargetUnreachable = errors.New("target unreachable")

// ErrBrowserLaunch is returned when no browser session could be opened for
// discovery.
var ErrBrowserLaunch = errors.New("browser launch failed")

// ScreenshotDir is the artifact directory screenshots are written under.
const ScreenshotDir = "screenshots"

// Opener opens browser sessions. *browser.Factory implements it.
type Opener interface {
	Open(ctx context.Context) (browser.Session, error)
}

// Options controls a run.
type Options struct {
	TargetURL          string
	Engine             string
	Pages              []models.PageDescriptor
	Catalog            sampler.Catalog
	Viewports          []models.ViewportProfile
	Concurrency        int
	RunTimeout         time.Duration
	IdleTimeout        time.Duration
	SettleDelay        time.Duration
	ViewportSettle     time.Duration
	SamplesPerSelector int
	Screenshots        bool
	CaptureComponents  bool
}

// Screenshot is a captured image and its artifact name.
type Screenshot struct {
	Name string
	Data []byte
}

// Outcome is everything a run produced.
type Outcome struct {
	Result      *aggregator.Result
	Manifest    *models.RunManifest
	Screenshots []Screenshot
}

// Runner executes one audit run.
type Runner struct {
	opts   Options
	opener Opener
	logger *zap.Logger

	mu    sync.Mutex
	state models.RunState
}

// NewRunner fills in defaults for unset options.
func NewRunner(opts Options, opener Opener, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.Pages) == 0 {
		opts.Pages = DefaultPages()
	}
	if len(opts.Catalog) == 0 {
		opts.Catalog = sampler.DefaultCatalog
	}
	if len(opts.Viewports) == 0 {
		opts.Viewports = models.Viewports
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 10 * time.Minute
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Second
	}
	if opts.SamplesPerSelector <= 0 || opts.SamplesPerSelector > sampler.MaxSamplesPerSelector {
		opts.SamplesPerSelector = sampler.MaxSamplesPerSelector
	}
	return &Runner{
		opts:   opts,
		opener: opener,
		logger: logger,
		state:  models.StateIdle,
	}
}

// State returns the current run state.
func (r *Runner) State() models.RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// advance moves the run to next. Concurrent tasks report the same phase
// repeatedly, so staying in the current state is not a transition.
func (r *Runner) advance(next models.RunState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == next {
		return nil
	}
	s, err := r.state.Next(next)
	if err != nil {
		return err
	}
	r.state = s
	return nil
}

type target struct {
	desc models.PageDescriptor
	url  string
	skip string
}

type taskResult struct {
	page      models.PageResult
	result    *aggregator.Result
	shots     []Screenshot
	viewports []string
}

// Run performs the audit. It returns ErrTargetUnreachable (wrapped) when the
// target cannot be loaded and ErrBrowserLaunch when no session opens; in
// every case the returned Outcome is usable.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	manifest := &models.RunManifest{
		RunID:     uuid.NewString(),
		TargetURL: r.opts.TargetURL,
		Engine:    r.opts.Engine,
		StartedAt: time.Now(),
	}
	out := &Outcome{Result: aggregator.New(), Manifest: manifest}

	ctx, cancel := context.WithTimeout(ctx, r.opts.RunTimeout)
	defer cancel()

	log := r.logger.With(zap.String("run_id", manifest.RunID), zap.String("target", r.opts.TargetURL))
	log.Info("[Analysis] run started", zap.Int("pages", len(r.opts.Pages)), zap.Int("concurrency", r.opts.Concurrency))

	homeURL, html, err := r.discover(ctx)
	if err != nil {
		return out, r.abort(ctx, manifest, err, log)
	}
	if err := r.advance(models.StateSampling); err != nil {
		return out, err
	}

	targets := r.resolve(homeURL, html)

	p := pool.New().WithMaxGoroutines(r.opts.Concurrency)
	results := make([]taskResult, len(targets)+1)
	for i, t := range targets {
		if t.skip != "" {
			results[i] = taskResult{page: models.Skipped(t.desc.Name, t.url, t.skip)}
			log.Warn("[Analysis] page skipped", zap.String("page", t.desc.Name), zap.String("reason", t.skip))
			continue
		}
		p.Go(func() {
			results[i] = r.analysePage(ctx, t.desc, t.url)
		})
	}
	p.Go(func() {
		results[len(targets)] = r.analyseResponsive(ctx)
	})
	p.Wait()

	for _, res := range results {
		out.Result.Merge(res.result)
		out.Screenshots = append(out.Screenshots, res.shots...)
		manifest.Pages = append(manifest.Pages, res.page)
		manifest.Viewports = append(manifest.Viewports, res.viewports...)
	}

	if err := r.advance(models.StateSampling); err != nil {
		return out, err
	}
	if err := r.advance(models.StateDone); err != nil {
		return out, err
	}
	manifest.State = models.StateDone
	manifest.FinishedAt = time.Now()

	ok, failed, skipped := manifest.Counts()
	log.Info("[Analysis] run finished",
		zap.Int("ok", ok),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
		zap.Duration("elapsed", manifest.FinishedAt.Sub(manifest.StartedAt)))
	return out, nil
}

// abort records a run that stopped during discovery. Only a navigation
// failure of the target makes it unreachable. Cancellation leaves every page
// skipped and the run done.
func (r *Runner) abort(ctx context.Context, m *models.RunManifest, err error, log *zap.Logger) error {
	var (
		navErr *browser.NavigationError
		reason string
		runErr error
	)
	switch {
	case ctx.Err() != nil:
		reason = interruptReason(ctx)
		runErr = fmt.Errorf("discovery interrupted: %w", ctx.Err())
		log.Warn("[Analysis] run interrupted during discovery", zap.Error(err))
	case errors.Is(err, ErrBrowserLaunch):
		reason = "browser unavailable"
		runErr = err
		log.Error("[Analysis] browser could not be started", zap.Error(err))
	case errors.As(err, &navErr):
		reason = "target unreachable"
		runErr = fmt.Errorf("%w: %v", ErrTargetUnreachable, err)
		log.Error("[Analysis] target unreachable", zap.Error(err))
	default:
		reason = "discovery failed"
		runErr = err
		log.Error("[Analysis] discovery failed", zap.Error(err))
	}

	for _, d := range r.opts.Pages {
		m.Pages = append(m.Pages, models.Skipped(d.Name, d.URL, reason))
	}
	m.Error = err.Error()
	m.FinishedAt = time.Now()

	if ctx.Err() != nil {
		if stateErr := r.advance(models.StateSampling); stateErr != nil {
			return stateErr
		}
		if stateErr := r.advance(models.StateDone); stateErr != nil {
			return stateErr
		}
		m.State = models.StateDone
		return runErr
	}
	if stateErr := r.advance(models.StateFailed); stateErr != nil {
		return stateErr
	}
	m.State = models.StateFailed
	return runErr
}

// discover loads the target once and returns its final URL and rendered HTML.
func (r *Runner) discover(ctx context.Context) (string, string, error) {
	if err := r.advance(models.StateNavigating); err != nil {
		return "", "", err
	}

	sess, err := r.opener.Open(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}
	defer sess.Close()

	if err := sess.Navigate(ctx, r.opts.TargetURL); err != nil {
		return "", "", err
	}
	r.waitIdle(ctx, sess, "discovery")

	html, err := sess.HTML(ctx)
	if err != nil {
		r.logger.Warn("[Analysis] could not read home page html", zap.Error(err))
	}
	final, err := sess.URL(ctx)
	if err != nil || final == "" {
		final = r.opts.TargetURL
	}
	return final, html, nil
}

// resolve turns descriptors into concrete URLs, in descriptor order.
func (r *Runner) resolve(homeURL, html string) []target {
	targets := make([]target, 0, len(r.opts.Pages))
	for _, d := range r.opts.Pages {
		t := target{desc: d}
		switch {
		case d.URL != "":
			u, err := resolveURL(r.opts.TargetURL, d.URL)
			if err != nil {
				t.url, t.skip = d.URL, err.Error()
			} else {
				t.url = u
			}
		case d.LinkSelector != "":
			u, err := discoverLink(html, homeURL, d.LinkSelector)
			if err != nil {
				t.skip = err.Error()
			} else {
				t.url = u
			}
		default:
			t.url = r.opts.TargetURL
		}
		targets = append(targets, t)
	}
	return targets
}

func (r *Runner) waitIdle(ctx context.Context, sess browser.Session, page string) {
	err := sess.WaitForNetworkIdle(ctx, r.opts.IdleTimeout)
	if err == nil {
		return
	}
	if errors.Is(err, browser.ErrIdleTimeout) {
		r.logger.Warn("[Analysis] network idle not reached, continuing", zap.String("page", page))
		return
	}
	r.logger.Debug("[Analysis] idle wait failed", zap.String("page", page), zap.Error(err))
}

func (r *Runner) settle(ctx context.Context) error {
	if r.opts.SettleDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.opts.SettleDelay):
		return nil
	}
}

// cutShort marks a task stopped mid-walk as skipped. What it collected so
// far stays in the result.
func (t taskResult) cutShort(ctx context.Context) taskResult {
	t.page.Status = models.PageSkipped
	t.page.Reason = interruptReason(ctx)
	t.page.Duration = time.Since(t.page.StartedAt)
	return t
}

func interruptReason(ctx context.Context) string {
	return fmt.Sprintf("run interrupted: %v", context.Cause(ctx))
}

// interrupted builds the result for a task stopped by cancellation or the
// run deadline.
func interrupted(ctx context.Context, name, url string, started time.Time) taskResult {
	page := models.Skipped(name, url, interruptReason(ctx))
	page.StartedAt = started
	page.Duration = time.Since(started)
	return taskResult{page: page}
}
