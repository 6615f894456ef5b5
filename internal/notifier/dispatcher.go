package notifier

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"diffreport/internal/eventbus"
	"diffreport/internal/transport"
	logx "diffreport/pkg/logx"
)

var ErrNothingToSend = errors.New("nothing to send")

const (
	defaultRatePerSec    = 3
	defaultRetryBase     = 500 * time.Millisecond
	defaultRetryMaxDelay = 10 * time.Second
	defaultSendTimeout   = 10 * time.Second
	defaultHistorySize   = 300
)

// Dispatcher is safe for concurrent use; concurrent deliveries share one rate limit.
type Dispatcher struct {
	mu      sync.Mutex
	cfg     Config
	limiter *rate.Limiter
	log     logx.Logger
	bus     eventbus.Bus

	hmu     sync.Mutex
	history []HistoryItem
}

func New(cfg Config, log logx.Logger, bus eventbus.Bus) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	d := &Dispatcher{log: log, bus: bus}
	d.applyLocked(cfg)
	return d
}

func (d *Dispatcher) Apply(cfg Config) {
	d.mu.Lock()
	d.applyLocked(cfg)
	d.mu.Unlock()
}

func (d *Dispatcher) applyLocked(cfg Config) {
	if cfg.RatePerSec == 0 {
		cfg.RatePerSec = defaultRatePerSec
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = defaultRetryBase
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = defaultRetryMaxDelay
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	d.cfg = cfg
	if cfg.RatePerSec < 0 {
		d.limiter = nil
		return
	}
	// burst = rate so a short report goes out without waiting
	d.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
}

// Deliver sends chunks in order through s. Blank chunks are skipped; if every
// chunk is blank ErrNothingToSend is returned. Delivery stops at the first
// chunk that still fails after its retries, or when ctx is done.
func (d *Dispatcher) Deliver(ctx context.Context, channel string, s transport.Sender, chunks []string) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var res Result
	if s == nil {
		return res, transport.Unavailable(channel, "no sender")
	}

	total := 0
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			total++
		}
	}
	if total == 0 {
		res.Skipped = len(chunks)
		return res, ErrNothingToSend
	}

	log := d.logger().With(logx.String("channel", channel))
	n := 0
	for _, c := range chunks {
		if strings.TrimSpace(c) == "" {
			res.Skipped++
			continue
		}
		n++
		if err := d.sendWithRetry(ctx, channel, s, c, n, total); err != nil {
			log.Warn("delivery failed", logx.Int("chunk", n), logx.Int("total", total), logx.Err(err))
			return res, fmt.Errorf("chunk %d/%d: %w", n, total, err)
		}
		res.Sent++
	}
	log.Debug("delivery complete", logx.Int("sent", res.Sent), logx.Int("skipped", res.Skipped))
	return res, nil
}

func (d *Dispatcher) logger() logx.Logger {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.log
}

func (d *Dispatcher) sendWithRetry(ctx context.Context, channel string, s transport.Sender, text string, chunk, total int) error {
	d.mu.Lock()
	cfg := d.cfg
	lim := d.limiter
	log := d.log
	d.mu.Unlock()

	maxAttempts := 1 + cfg.RetryMax
	ev := NotificationEvent{Channel: channel, Chunk: chunk, Total: total}
	fail := func(attempt int, err error) error {
		ev.Attempts = attempt
		ev.Error = err.Error()
		d.publish(EventFailed, ev)
		return err
	}

	for attempt := 1; ; attempt++ {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return fail(attempt-1, ctxErr(ctx, err))
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, cfg.SendTimeout)
		err := s.Send(callCtx, text)
		cancel()
		if err == nil {
			d.appendHistory(channel, text, cfg.HistorySize)
			ev.Attempts = attempt
			d.publish(EventSent, ev)
			return nil
		}
		log.Debug("send failed", logx.String("channel", channel), logx.Err(err), logx.Int("attempt", attempt), logx.Int("max", maxAttempts))

		if e := ctx.Err(); e != nil {
			return fail(attempt, e)
		}
		if errors.Is(err, transport.ErrUnavailable) || attempt >= maxAttempts {
			return fail(attempt, err)
		}

		delay := retryDelay(cfg, attempt)
		if delay <= 0 {
			continue
		}
		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return fail(attempt, ctx.Err())
		}
	}
}

// ctxErr prefers ctx.Err over the limiter's own error, which also fires when
// the wait would outlast the deadline.
func ctxErr(ctx context.Context, err error) error {
	if e := ctx.Err(); e != nil {
		return e
	}
	return err
}

func (d *Dispatcher) publish(typ string, ev NotificationEvent) {
	if d.bus == nil {
		return
	}
	now := time.Now()
	ev.At = now
	d.bus.Publish(eventbus.Event{Type: typ, Time: now, Data: ev})
}

// Snapshot returns the recently delivered chunks, oldest first.
func (d *Dispatcher) Snapshot() []HistoryItem {
	d.hmu.Lock()
	out := append([]HistoryItem(nil), d.history...)
	d.hmu.Unlock()
	return out
}

func (d *Dispatcher) appendHistory(channel, text string, size int) {
	d.hmu.Lock()
	d.history = append(d.history, HistoryItem{At: time.Now(), Channel: channel, Text: text})
	if len(d.history) > size {
		d.history = d.history[len(d.history)-size:]
	}
	d.hmu.Unlock()
}

func retryDelay(cfg Config, attempt int) time.Duration {
	// attempt starts at 1; the delay is for the next attempt.
	d := cfg.RetryBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= cfg.RetryMaxDelay {
			d = cfg.RetryMaxDelay
			break
		}
	}
	// jitter 0.7..1.3
	d = time.Duration(float64(d) * (0.7 + rand.Float64()*0.6))
	if d < 0 {
		return 0
	}
	return d
}
