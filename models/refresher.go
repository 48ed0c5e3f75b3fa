package models

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// refreshMsg is one tick of a Refresher.
type refreshMsg struct {
	name string
	gen  uint64
	at   time.Time
}

// Refresher is a cancellable periodic tick. Start and Stop each begin a new
// generation, and Accept rejects ticks from any earlier one, so a tick
// already scheduled when the owner unmounts is ignored when it fires.
type Refresher struct {
	name     string
	interval time.Duration
	gen      uint64
	running  bool
}

func NewRefresher(name string, interval time.Duration) *Refresher {
	return &Refresher{name: name, interval: interval}
}

// Start begins ticking and returns the first scheduled tick.
func (r *Refresher) Start() tea.Cmd {
	r.gen++
	r.running = true
	return r.schedule()
}

// Stop invalidates every outstanding tick.
func (r *Refresher) Stop() {
	r.gen++
	r.running = false
}

// Accept reports whether msg is a live tick of this refresher.
func (r *Refresher) Accept(msg tea.Msg) bool {
	tick, ok := msg.(refreshMsg)
	return ok && r.running && tick.name == r.name && tick.gen == r.gen
}

// Next schedules the following tick. Call it after accepting one.
func (r *Refresher) Next() tea.Cmd {
	if !r.running {
		return nil
	}
	return r.schedule()
}

// Running reports whether the refresher is started.
func (r *Refresher) Running() bool { return r.running }

// Interval returns the tick period.
func (r *Refresher) Interval() time.Duration { return r.interval }

func (r *Refresher) schedule() tea.Cmd {
	name, gen := r.name, r.gen
	return tea.Tick(r.interval, func(t time.Time) tea.Msg {
		return refreshMsg{name: name, gen: gen, at: t}
	})
}
