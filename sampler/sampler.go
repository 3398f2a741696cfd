// Package sampler reads the computed style of elements matched by a CSS
// selector in the page currently loaded in a browser session.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raushankrgupta/style-auditor/browser"
	"github.com/raushankrgupta/style-auditor/models"
	"go.uber.org/zap"
)

// MaxSamplesPerSelector bounds how many matches of one selector are read.
const MaxSamplesPerSelector = 3

var (
	ErrInvalidSelector   = errors.New("invalid selector")
	ErrOrdinalOutOfRange = errors.New("ordinal out of range")
)

// Sampler reads styles through a Session. It never changes the page.
type Sampler struct {
	session browser.Session
	logger  *zap.Logger
}

// New returns a Sampler over session.
func New(session browser.Session, logger *zap.Logger) *Sampler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{session: session, logger: logger}
}

// Sample reads the ordinal-th match of selector. A selector with no such
// match yields a NoObservation and a nil error. When the element cannot be
// read as a whole the observation is returned with every field unset.
func (s *Sampler) Sample(ctx context.Context, selector string, ordinal int) (models.Observation, error) {
	if strings.TrimSpace(selector) == "" {
		return models.Observation{}, ErrInvalidSelector
	}
	if ordinal < 0 || ordinal >= MaxSamplesPerSelector {
		return models.Observation{}, fmt.Errorf("%w: %d", ErrOrdinalOutOfRange, ordinal)
	}

	el, err := s.session.QuerySelector(ctx, selector, ordinal)
	if err != nil {
		return models.Observation{}, fmt.Errorf("query %s[%d]: %w", selector, ordinal, err)
	}
	if el == nil {
		return models.NoObservation(selector, ordinal), nil
	}

	obs := models.Observation{
		Selector:   selector,
		Ordinal:    ordinal,
		Found:      true,
		ElementKey: el.Key(),
	}

	props, err := s.session.ReadComputedStyle(ctx, el, models.StyleProperties)
	if err != nil {
		if ctx.Err() != nil {
			return models.Observation{}, ctx.Err()
		}
		s.logger.Debug("[Sampler] style read failed, keeping empty sample",
			zap.String("selector", selector),
			zap.Int("ordinal", ordinal),
			zap.Error(err))
		return obs, nil
	}
	obs.Sample = models.SampleFromMap(props)

	s.logger.Debug("[Sampler] sampled",
		zap.String("selector", selector),
		zap.Int("ordinal", ordinal),
		zap.String("element", obs.ElementKey))
	return obs, nil
}

// SampleSelector samples ordinals 0..limit-1 of selector and stops at the
// first one without a match. limit is clamped to MaxSamplesPerSelector.
func (s *Sampler) SampleSelector(ctx context.Context, selector string, limit int) ([]models.Observation, error) {
	if limit <= 0 || limit > MaxSamplesPerSelector {
		limit = MaxSamplesPerSelector
	}

	var out []models.Observation
	for i := 0; i < limit; i++ {
		obs, err := s.Sample(ctx, selector, i)
		if err != nil {
			return out, err
		}
		if !obs.Found {
			break
		}
		out = append(out, obs)
	}
	return out, nil
}
