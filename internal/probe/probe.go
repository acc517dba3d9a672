package probe

import (
	"context"

	"github.com/hamed0406/servicepoller/internal/domain"
)

// Prober performs one reachability check against a URL.
//
// Implementations must not retry and must never fail: every transport problem
// is reported as an unreachable Outcome.
type Prober interface {
	Probe(ctx context.Context, target string) domain.Outcome
}

// ProberFunc adapts a plain function to Prober.
type ProberFunc func(ctx context.Context, target string) domain.Outcome

func (f ProberFunc) Probe(ctx context.Context, target string) domain.Outcome {
	return f(ctx, target)
}
