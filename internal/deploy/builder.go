package deploy

import (
	"context"
	"time"

	"github.com/leozw/launchpad/internal/core"
)

// Builder runs one build. The real build fabric is external; this core only
// needs a blocking call with an error outcome.
type Builder interface {
	Build(ctx context.Context, project *core.Project, deployment *core.Deployment) error
}

// SimulatedBuilder stands in for the external build fabric. It blocks for a
// configured duration so completion timing is observable through the
// deployment polling endpoint.
type SimulatedBuilder struct {
	Duration time.Duration
}

func (b *SimulatedBuilder) Build(ctx context.Context, project *core.Project, deployment *core.Deployment) error {
	select {
	case <-time.After(b.Duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
