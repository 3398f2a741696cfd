// Package storage persists run artifacts to the configured destinations.
package storage

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Artifact is one named output of a run. Name is a slash separated path
// relative to the run root, e.g. "screenshots/home-full.png".
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Sink is a destination for run artifacts.
type Sink interface {
	Name() string
	Put(ctx context.Context, runID string, artifacts []Artifact) error
	Close(ctx context.Context) error
}

// Router fans artifacts out to every sink.
type Router struct {
	sinks  []Sink
	logger *zap.Logger
}

// NewRouter returns a Router over sinks, in order.
func NewRouter(logger *zap.Logger, sinks ...Sink) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{sinks: sinks, logger: logger}
}

// Sinks returns the sink names.
func (r *Router) Sinks() []string {
	names := make([]string, len(r.sinks))
	for i, s := range r.sinks {
		names[i] = s.Name()
	}
	return names
}

// Put writes artifacts to all sinks concurrently. A failing sink does not
// stop the others; the error of the first failing sink in order is returned.
func (r *Router) Put(ctx context.Context, runID string, artifacts []Artifact) error {
	errs := make([]error, len(r.sinks))
	p := pool.New()
	for i, s := range r.sinks {
		p.Go(func() {
			errs[i] = s.Put(ctx, runID, artifacts)
		})
	}
	p.Wait()

	var first error
	for i, err := range errs {
		if err == nil {
			r.logger.Info("[Storage] artifacts stored", zap.String("sink", r.sinks[i].Name()), zap.Int("count", len(artifacts)))
			continue
		}
		r.logger.Error("[Storage] sink failed", zap.String("sink", r.sinks[i].Name()), zap.Error(err))
		if first == nil {
			first = fmt.Errorf("%s: %w", r.sinks[i].Name(), err)
		}
	}
	return first
}

// Close closes every sink and returns the first error.
func (r *Router) Close(ctx context.Context) error {
	var first error
	for _, s := range r.sinks {
		if err := s.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func find(artifacts []Artifact, name string) (Artifact, bool) {
	for _, a := range artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}
