package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/raushankrgupta/style-auditor/aggregator"
	"github.com/raushankrgupta/style-auditor/models"
	"github.com/raushankrgupta/style-auditor/sampler"
	"github.com/raushankrgupta/style-auditor/viewport"
	"go.uber.org/zap"
)

const responsivePage = "responsive"

// analyseResponsive loads the target once and records the body container
// width under every viewport profile.
func (r *Runner) analyseResponsive(ctx context.Context) taskResult {
	started := time.Now()
	url := r.opts.TargetURL
	log := r.logger.With(zap.String("page", responsivePage))

	if ctx.Err() != nil {
		return interrupted(ctx, responsivePage, url, started)
	}

	sess, err := r.opener.Open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx, responsivePage, url, started)
		}
		return failed(responsivePage, url, fmt.Sprintf("open browser: %v", err), started)
	}
	defer sess.Close()

	if err := r.advance(models.StateNavigating); err != nil {
		return failed(responsivePage, url, err.Error(), started)
	}
	if err := sess.Navigate(ctx, url); err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx, responsivePage, url, started)
		}
		log.Warn("[Analysis] navigation failed", zap.Error(err))
		return failed(responsivePage, url, err.Error(), started)
	}
	r.waitIdle(ctx, sess, responsivePage)
	if err := r.advance(models.StateSampling); err != nil {
		return failed(responsivePage, url, err.Error(), started)
	}

	res := aggregator.New()
	task := taskResult{
		page: models.PageResult{
			Name:      responsivePage,
			URL:       url,
			Status:    models.PageOK,
			StartedAt: started,
		},
		result: res,
	}

	ctl := viewport.NewController(sess, r.logger)
	if r.opts.ViewportSettle > 0 {
		ctl.SettleTimeout = r.opts.ViewportSettle
	}
	smp := sampler.New(sess, r.logger)

	for _, profile := range r.opts.Viewports {
		if err := ctl.Apply(ctx, profile); err != nil {
			if ctx.Err() != nil {
				return task.cutShort(ctx)
			}
			log.Warn("[Analysis] viewport not applied", zap.String("viewport", profile.Name), zap.Error(err))
			continue
		}
		task.viewports = append(task.viewports, ctl.Label())

		if r.opts.Screenshots {
			data, err := sess.Screenshot(ctx, nil, true)
			if err != nil {
				log.Warn("[Analysis] responsive screenshot failed", zap.String("viewport", profile.Name), zap.Error(err))
			} else {
				name := screenshotName(responsivePage + "-" + ctl.Label())
				task.shots = append(task.shots, Screenshot{Name: name, Data: data})
				task.page.Screenshots = append(task.page.Screenshots, name)
			}
		}

		obs, err := smp.Sample(ctx, "body", 0)
		if err != nil {
			if ctx.Err() != nil {
				return task.cutShort(ctx)
			}
			log.Warn("[Analysis] body not sampled", zap.String("viewport", profile.Name), zap.Error(err))
			continue
		}
		if !obs.Found {
			continue
		}
		task.page.Observations++
		if _, err := res.SetBreakpoint(ctl.Label(), breakpoint(profile, obs.Sample)); err != nil {
			log.Warn("[Analysis] breakpoint not recorded", zap.String("viewport", profile.Name), zap.Error(err))
		}
	}

	task.page.Duration = time.Since(started)
	return task
}

// breakpoint describes the container width observed at a profile.
func breakpoint(profile models.ViewportProfile, s models.StyleSample) string {
	container := s.Width.Value
	if s.MaxWidth.Present() && s.MaxWidth.Value != "none" {
		container = s.MaxWidth.Value
	}
	return fmt.Sprintf("%dpx - Container width: %s", profile.Width, container)
}
