package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/storm-bulletin-etl/internal/domain"
	"github.com/couchcryptid/storm-bulletin-etl/internal/observability"
)

// Extractor retrieves the current bulletin.
type Extractor interface {
	Fetch(ctx context.Context) (domain.RawBulletin, error)
}

// Transformer turns a raw bulletin into a forecast.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawBulletin) (domain.Forecast, error)
}

// Loader delivers a forecast to one destination.
type Loader interface {
	Load(ctx context.Context, f domain.Forecast) error
}

// Exponential backoff after fetch or load failures: start at 200ms, double
// each retry, cap at 5s.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

type cycleResult int

const (
	cycleDone  cycleResult = iota // wait for the next poll
	cycleRetry                    // back off and try again
	cycleStop
)

// Pipeline polls the bulletin source and hands each new forecast to the
// loaders in order.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loaders     []Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
	interval    time.Duration

	ready  atomic.Bool
	latest atomic.Pointer[domain.Forecast]

	// lastChecksum is only touched by the Run goroutine.
	lastChecksum string
}

// New creates a Pipeline polling every interval.
func New(e Extractor, t Transformer, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration, loaders ...Loader) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
		interval:    interval,
	}
}

// CheckReadiness returns nil once a forecast has been loaded, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded a forecast yet")
	}
	return nil
}

// Latest returns the most recently loaded forecast.
func (p *Pipeline) Latest() (domain.Forecast, bool) {
	f := p.latest.Load()
	if f == nil {
		return domain.Forecast{}, false
	}
	return *f, true
}

// Run polls until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval, "loaders", len(p.loaders))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		switch p.runCycle(ctx) {
		case cycleStop:
			return nil
		case cycleRetry:
			if !p.backoffOrStop(ctx, &backoff) {
				return nil
			}
		case cycleDone:
			backoff = initialBackoff
			if !sleepWithContext(ctx, p.interval) {
				return nil
			}
		}
	}
}

// runCycle fetches, transforms and loads one bulletin.
func (p *Pipeline) runCycle(ctx context.Context) cycleResult {
	start := time.Now()
	logger := p.logger.With("run_id", uuid.NewString())
	p.metrics.Cycles.Inc()

	raw, err := p.extractor.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return cycleStop
		}
		logger.Error("fetch bulletin failed", "error", err)
		return cycleRetry
	}

	if raw.Checksum != "" && raw.Checksum == p.lastChecksum {
		logger.Debug("bulletin unchanged", "checksum", raw.Checksum)
		p.metrics.BulletinUnchanged.Inc()
		return cycleDone
	}

	forecast, err := p.transformer.Transform(ctx, raw)
	if err != nil {
		// The same text would fail again; wait for the bulletin to change.
		logger.Warn("bulletin rejected", "error", err, "checksum", raw.Checksum)
		p.metrics.ParseErrors.Inc()
		p.lastChecksum = raw.Checksum
		return cycleDone
	}

	for _, l := range p.loaders {
		if err := l.Load(ctx, forecast); err != nil {
			if ctx.Err() != nil {
				return cycleStop
			}
			logger.Error("load forecast failed", "error", err, "storms", forecast.Storms.Len())
			p.metrics.LoadErrors.Inc()
			return cycleRetry
		}
	}

	p.lastChecksum = raw.Checksum
	p.latest.Store(&forecast)
	p.ready.Store(true)
	p.metrics.StormsInBulletin.Set(float64(forecast.Storms.Len()))
	p.metrics.TracksPublished.Add(float64(len(forecast.Tracks)))
	p.metrics.CycleDuration.Observe(time.Since(start).Seconds())

	logger.Info("forecast loaded",
		"issue", forecast.IssueLabel,
		"storms", forecast.Storms.Names(),
		"checksum", raw.Checksum,
	)
	return cycleDone
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
