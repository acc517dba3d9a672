package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/servicepoller/internal/domain"
	"github.com/hamed0406/servicepoller/internal/probe"
	"github.com/hamed0406/servicepoller/internal/repo"
)

type Poller struct {
	Logger      *zap.Logger
	Store       repo.ServiceStore
	Prober      probe.Prober
	Interval    time.Duration
	Timeout     time.Duration
	Concurrency int // 0 = one goroutine per service
	Now         func() time.Time

	running atomic.Bool
	cycles  sync.WaitGroup
}

// CycleReport summarizes one poll cycle.
type CycleReport struct {
	CycleID  string
	Services int
	OK       int
	Fail     int
	Skipped  int // deleted or re-pointed after the snapshot
	Errors   int
	Duration time.Duration
}

func NewPoller(
	logger *zap.Logger,
	store repo.ServiceStore,
	prober probe.Prober,
	interval time.Duration,
	timeout time.Duration,
	concurrency int,
) *Poller {
	if concurrency < 0 {
		concurrency = 0
	}
	if timeout <= 0 {
		timeout = probe.DefaultTimeout
	}
	return &Poller{
		Logger:      logger,
		Store:       store,
		Prober:      prober,
		Interval:    interval,
		Timeout:     timeout,
		Concurrency: concurrency,
		Now:         time.Now,
	}
}

// Running reports whether a cycle is in progress.
func (p *Poller) Running() bool { return p.running.Load() }

// Run does an immediate cycle, then one per tick, until ctx is cancelled.
// A tick that lands while a cycle is still running is dropped. On cancel, Run
// waits for the in-flight cycle to finish before returning.
func (p *Poller) Run(ctx context.Context) {
	if p.Interval <= 0 {
		p.Logger.Info("poller_disabled")
		return
	}
	t := time.NewTicker(p.Interval)
	defer t.Stop()

	p.Logger.Info("poller_started",
		zap.Duration("interval", p.Interval),
		zap.Duration("timeout", p.Timeout),
		zap.Int("concurrency", p.Concurrency),
	)

	p.start(ctx)
	for {
		select {
		case <-ctx.Done():
			p.cycles.Wait()
			p.Logger.Info("poller_stopped")
			return
		case <-t.C:
			p.start(ctx)
		}
	}
}

func (p *Poller) start(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		p.Logger.Warn("poll_cycle_skipped", zap.String("reason", "previous cycle still running"))
		return
	}
	p.cycles.Add(1)
	go func() {
		defer p.cycles.Done()
		defer p.running.Store(false)
		p.cycle(ctx)
	}()
}

// RunCycle runs one cycle synchronously. It returns false without polling
// when another cycle is already running.
func (p *Poller) RunCycle(ctx context.Context) (CycleReport, bool) {
	if !p.running.CompareAndSwap(false, true) {
		return CycleReport{}, false
	}
	defer p.running.Store(false)
	return p.cycle(ctx), true
}

type cycleCounters struct {
	ok, fail, skipped, errs atomic.Int64
}

func (p *Poller) cycle(parent context.Context) CycleReport {
	// in-flight work outlives shutdown; each step is bounded by Timeout
	ctx := context.WithoutCancel(parent)
	rep := CycleReport{CycleID: uuid.NewString()}
	log := p.Logger.With(zap.String("cycle_id", rep.CycleID))
	started := time.Now()

	lctx, cancel := context.WithTimeout(ctx, p.Timeout)
	services, err := p.Store.List(lctx)
	cancel()
	if err != nil {
		log.Warn("poll_list_error", zap.Error(err))
		rep.Errors = 1
		return rep
	}
	rep.Services = len(services)

	var c cycleCounters
	var g errgroup.Group
	if p.Concurrency > 0 {
		g.SetLimit(p.Concurrency)
	}
	for _, svc := range services {
		g.Go(func() error {
			p.pollOne(ctx, log, svc, &c)
			return nil
		})
	}
	_ = g.Wait()

	rep.OK = int(c.ok.Load())
	rep.Fail = int(c.fail.Load())
	rep.Skipped = int(c.skipped.Load())
	rep.Errors = int(c.errs.Load())
	rep.Duration = time.Since(started)

	log.Info("poll_cycle_done",
		zap.Int("services", rep.Services),
		zap.Int("ok", rep.OK),
		zap.Int("fail", rep.Fail),
		zap.Int("skipped", rep.Skipped),
		zap.Int("errors", rep.Errors),
		zap.Duration("duration", rep.Duration),
	)
	return rep
}

func (p *Poller) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Poller) pollOne(ctx context.Context, log *zap.Logger, svc domain.Service, c *cycleCounters) {
	pctx, cancel := context.WithTimeout(ctx, p.Timeout)
	out := p.Prober.Probe(pctx, svc.URL)
	cancel()
	at := p.now()

	stale := false
	wctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	_, err := p.Store.Update(wctx, svc.ID, func(cur domain.Service) domain.Service {
		// the probe answered for the old URL
		if cur.URL != svc.URL {
			stale = true
			return cur
		}
		stale = false
		return domain.NextState(cur, out, at)
	})

	fields := []zap.Field{
		zap.Int64("service_id", int64(svc.ID)),
		zap.String("url", svc.URL),
	}
	switch {
	case errors.Is(err, repo.ErrNotFound):
		c.skipped.Add(1)
		log.Debug("poll_write_skipped", append(fields, zap.String("reason", "deleted"))...)
	case err != nil:
		c.errs.Add(1)
		log.Warn("poll_write_error", append(fields, zap.Error(err))...)
	case stale:
		c.skipped.Add(1)
		log.Debug("poll_write_skipped", append(fields, zap.String("reason", "url_changed"))...)
	default:
		if out.Reachable {
			c.ok.Add(1)
		} else {
			c.fail.Add(1)
		}
		log.Debug("poll_checked", append(fields,
			zap.Bool("reachable", out.Reachable),
			zap.Int("status_code", out.StatusCode),
			zap.Duration("latency", out.Latency),
			zap.String("reason", out.Reason),
		)...)
	}
}
