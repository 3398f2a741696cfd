// Package viewport switches a session between device profiles.
package viewport

import (
	"context"
	"time"

	"github.com/raushankrgupta/style-auditor/browser"
	"github.com/raushankrgupta/style-auditor/models"
	"go.uber.org/zap"
)

const (
	DefaultSettleTimeout = time.Second
	pollInterval         = 50 * time.Millisecond
)

// Controller applies viewport profiles to one session and remembers which
// one is active.
type Controller struct {
	session       browser.Session
	logger        *zap.Logger
	SettleTimeout time.Duration

	active string
}

// NewController returns a Controller with the default settle timeout.
func NewController(session browser.Session, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		session:       session,
		logger:        logger,
		SettleTimeout: DefaultSettleTimeout,
	}
}

// Apply resizes the session to profile and waits until the reported layout
// width matches the profile width on two consecutive polls. If the layout
// has not settled within SettleTimeout the controller logs and carries on.
func (c *Controller) Apply(ctx context.Context, profile models.ViewportProfile) error {
	if err := c.session.ResizeViewport(ctx, profile.Width, profile.Height); err != nil {
		return err
	}
	c.active = profile.Name

	timeout := c.SettleTimeout
	if timeout <= 0 {
		timeout = DefaultSettleTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	stable := 0
	for {
		width, err := c.session.LayoutWidth(ctx)
		if err == nil && width == profile.Width {
			stable++
			if stable >= 2 {
				return nil
			}
		} else {
			stable = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			c.logger.Warn("[Viewport] layout did not settle, continuing",
				zap.String("viewport", profile.Name),
				zap.Int("width", profile.Width),
				zap.Int("reported", width))
			return nil
		case <-ticker.C:
		}
	}
}

// Label returns the active profile name, or "" before the first Apply.
func (c *Controller) Label() string {
	return c.active
}
