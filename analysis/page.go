package analysis

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/raushankrgupta/style-auditor/aggregator"
	"github.com/raushankrgupta/style-auditor/browser"
	"github.com/raushankrgupta/style-auditor/models"
	"github.com/raushankrgupta/style-auditor/sampler"
	"go.uber.org/zap"
)

// analysePage samples one page in a fresh session and fills a private Result.
func (r *Runner) analysePage(ctx context.Context, d models.PageDescriptor, url string) taskResult {
	started := time.Now()
	log := r.logger.With(zap.String("page", d.Name), zap.String("url", url))

	if ctx.Err() != nil {
		return interrupted(ctx, d.Name, url, started)
	}

	sess, err := r.opener.Open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx, d.Name, url, started)
		}
		log.Error("[Analysis] could not open browser", zap.Error(err))
		return failed(d.Name, url, fmt.Sprintf("open browser: %v", err), started)
	}
	defer sess.Close()

	if err := r.advance(models.StateNavigating); err != nil {
		return failed(d.Name, url, err.Error(), started)
	}
	log.Info("[Analysis] navigating")
	if err := sess.Navigate(ctx, url); err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx, d.Name, url, started)
		}
		log.Warn("[Analysis] navigation failed", zap.Error(err))
		return failed(d.Name, url, err.Error(), started)
	}
	r.waitIdle(ctx, sess, d.Name)
	if err := r.settle(ctx); err != nil {
		return interrupted(ctx, d.Name, url, started)
	}
	if err := r.advance(models.StateSampling); err != nil {
		return failed(d.Name, url, err.Error(), started)
	}

	res := aggregator.New()
	task := taskResult{
		page: models.PageResult{
			Name:      d.Name,
			URL:       url,
			Status:    models.PageOK,
			StartedAt: started,
		},
		result: res,
	}

	if vars, err := sess.CSSVariables(ctx); err != nil {
		log.Debug("[Analysis] css variables unavailable", zap.Error(err))
	} else if len(vars) > 0 {
		task.page.CSSVariables = vars
	}

	if r.opts.Screenshots {
		task.shots = r.capturePage(ctx, sess, d, log)
		for _, s := range task.shots {
			task.page.Screenshots = append(task.page.Screenshots, s.Name)
		}
	}

	smp := sampler.New(sess, r.logger)
	seen := make(map[string]bool)
	for _, selector := range r.opts.Catalog {
		observations, err := smp.SampleSelector(ctx, selector, r.opts.SamplesPerSelector)
		if err != nil {
			if ctx.Err() != nil {
				log.Warn("[Analysis] page interrupted, keeping partial result", zap.Int("observations", task.page.Observations))
				return task.cutShort(ctx)
			}
			log.Warn("[Analysis] selector skipped", zap.String("selector", selector), zap.Error(err))
		}
		for _, obs := range observations {
			if obs.ElementKey != "" {
				if seen[obs.ElementKey] {
					continue
				}
				seen[obs.ElementKey] = true
			}
			res.Absorb(obs.Sample)
			task.page.Observations++

			if !r.opts.CaptureComponents {
				continue
			}
			if kind, ok := sampler.ComponentKind(selector); ok {
				if err := res.AbsorbComponent(kind, obs); err != nil {
					log.Debug("[Analysis] component not recorded", zap.Error(err))
				}
			}
		}
	}

	task.page.Duration = time.Since(started)
	log.Info("[Analysis] page analysed",
		zap.Int("observations", task.page.Observations),
		zap.Int("screenshots", len(task.shots)),
		zap.Duration("elapsed", task.page.Duration))
	return task
}

// capturePage takes the full-page shot and up to ScreenshotLimit element
// shots. Failures are logged and the shot is left out.
func (r *Runner) capturePage(ctx context.Context, sess browser.Session, d models.PageDescriptor, log *zap.Logger) []Screenshot {
	var shots []Screenshot

	if data, err := sess.Screenshot(ctx, nil, true); err != nil {
		log.Warn("[Analysis] full page screenshot failed", zap.Error(err))
	} else {
		shots = append(shots, Screenshot{Name: screenshotName(d.Name + "-full"), Data: data})
	}

	if d.ScreenshotSelector == "" || d.ScreenshotLimit <= 0 {
		return shots
	}
	label := d.ScreenshotLabel
	if label == "" {
		label = "element"
	}
	for i := 0; i < d.ScreenshotLimit; i++ {
		el, err := sess.QuerySelector(ctx, d.ScreenshotSelector, i)
		if err != nil {
			log.Warn("[Analysis] screenshot query failed", zap.String("selector", d.ScreenshotSelector), zap.Error(err))
			break
		}
		if el == nil {
			break
		}
		data, err := sess.Screenshot(ctx, el, false)
		if err != nil {
			log.Warn("[Analysis] could not screenshot element", zap.String("label", label), zap.Int("index", i+1), zap.Error(err))
			continue
		}
		name := fmt.Sprintf("%s-%s-%d", d.Name, label, i+1)
		shots = append(shots, Screenshot{Name: screenshotName(name), Data: data})
	}
	return shots
}

func screenshotName(base string) string {
	return path.Join(ScreenshotDir, base+".png")
}

func failed(name, url, reason string, started time.Time) taskResult {
	page := models.Failed(name, url, reason)
	page.StartedAt = started
	page.Duration = time.Since(started)
	return taskResult{page: page}
}
