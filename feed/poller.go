// Package feed polls the top coins on an interval and fans the result out
// to subscribers. It backs the headless marketwatch ticker.
package feed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"marketdash/api"
)

// Source is the slice of the API the poller needs.
type Source interface {
	Top(ctx context.Context, limit int) ([]api.Coin, error)
}

// Snapshot is one poll result. Err is set when the fetch failed; Coins is
// then empty.
type Snapshot struct {
	Coins []api.Coin
	Err   error
	At    time.Time
}

// Poller fetches the top coins every interval while running.
type Poller struct {
	source   Source
	limit    int
	interval time.Duration
	logger   *zap.Logger

	mu          sync.RWMutex
	subscribers []chan<- Snapshot
	last        Snapshot
	isRunning   bool
	stopChan    chan struct{}
}

// NewPoller creates a poller for the top limit coins.
func NewPoller(source Source, limit int, interval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		source:      source,
		limit:       limit,
		interval:    interval,
		logger:      logger,
		subscribers: make([]chan<- Snapshot, 0),
	}
}

// Start polls immediately and then on every interval until ctx is done or
// Stop is called. It blocks; run it on its own goroutine. Calling Start on a
// running poller returns at once.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = true
	stop := make(chan struct{})
	p.stopChan = stop
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		if p.stopChan == stop {
			p.isRunning = false
			p.stopChan = nil
		}
		p.mu.Unlock()
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fetchAndBroadcast(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			p.fetchAndBroadcast(ctx)
		}
	}
}

// Stop ends the polling loop. It is safe to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		close(p.stopChan)
		p.stopChan = nil
		p.isRunning = false
	}
}

// Subscribe adds a channel that receives every snapshot. Slow subscribers
// miss snapshots instead of stalling the poller.
func (p *Poller) Subscribe(ch chan<- Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers = append(p.subscribers, ch)
}

// Unsubscribe removes a subscriber
func (p *Poller) Unsubscribe(ch chan<- Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, sub := range p.subscribers {
		if sub == ch {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			break
		}
	}
}

// Last returns the most recent successful snapshot.
func (p *Poller) Last() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.last
}

// IsRunning returns whether the poller is running
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.isRunning
}

func (p *Poller) fetchAndBroadcast(ctx context.Context) {
	coins, err := p.source.Top(ctx, p.limit)
	if ctx.Err() != nil {
		return
	}

	snap := Snapshot{Coins: coins, Err: err, At: time.Now()}
	if err != nil {
		snap.Coins = nil
		p.logger.Warn("ticker poll failed", zap.Int("limit", p.limit), zap.Error(err))
	}

	p.mu.Lock()
	if err == nil {
		p.last = snap
	}
	subscribers := make([]chan<- Snapshot, len(p.subscribers))
	copy(subscribers, p.subscribers)
	p.mu.Unlock()

	for _, sub := range subscribers {
		select {
		case sub <- snap:
		default:
		}
	}
}
