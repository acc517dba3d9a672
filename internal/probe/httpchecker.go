package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hamed0406/servicepoller/internal/domain"
)

const (
	DefaultTimeout = 5 * time.Second
	userAgent      = "servicepoller/1.0"
	maxRedirects   = 10
	maxDrainBytes  = 64 << 10
)

type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPChecker{
		Client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// a redirect chain that never ends is still an answer
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Probe issues a single GET. Any response, whatever the status code, counts
// as reachable.
func (h *HTTPChecker) Probe(ctx context.Context, target string) domain.Outcome {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.Outcome{Reachable: false, Reason: ReasonInvalidRequest}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.Client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return domain.Outcome{Reachable: false, Latency: latency, Reason: Classify(err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return domain.Outcome{
		Reachable:  true,
		StatusCode: resp.StatusCode,
		Latency:    latency,
		Reason:     resp.Status,
	}
}

var _ Prober = (*HTTPChecker)(nil)
