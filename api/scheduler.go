/*
scheduler.go - Deadline sweep scheduler

PURPOSE:
  Periodically applies deadline-driven transitions: extension offers
  past their 14-day response window auto-accept, and notice-given
  tenancies past their effective date terminate.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Delegates entirely to Engine.Sweep, which processes each tenancy
    under its own lock exactly like a user command
  - Dispatches the intents the sweep returns (notifications)
  - Unchanged tenancies are not rewritten, so an idle sweep is cheap

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewSweepScheduler(engine, dispatcher)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - lodger/lifecycle.go: Engine.Sweep
  - handlers.go: TriggerSweep endpoint (manual sweep)
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/haven/lodger-engine/lodger"
)

// SweepScheduler runs the deadline sweep on a timer.
type SweepScheduler struct {
	Engine        *lodger.Engine
	Dispatcher    Dispatcher
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSweepScheduler creates a new scheduler.
func NewSweepScheduler(engine *lodger.Engine, dispatcher Dispatcher) *SweepScheduler {
	return &SweepScheduler{
		Engine:        engine,
		Dispatcher:    dispatcher,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ss *SweepScheduler) Start() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ss.ticker = time.NewTicker(ss.CheckInterval)
	ss.wg.Add(1)

	go ss.run()

	log.Printf("[Scheduler] Started with check interval: %v", ss.CheckInterval)
}

// Stop stops the scheduler.
func (ss *SweepScheduler) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.ticker != nil {
		ss.ticker.Stop()
		close(ss.stop)
		ss.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ss *SweepScheduler) run() {
	defer ss.wg.Done()

	// Run immediately on start
	ss.sweep()

	for {
		select {
		case <-ss.ticker.C:
			ss.sweep()
		case <-ss.stop:
			return
		}
	}
}

func (ss *SweepScheduler) sweep() {
	ctx := context.Background()
	now := lodger.Today()

	intents, err := ss.Engine.Sweep(ctx, now)
	if err != nil {
		log.Printf("[Scheduler] Sweep error: %v", err)
		return
	}
	if len(intents) > 0 {
		log.Printf("[Scheduler] Sweep applied %d transitions", len(intents))
		if ss.Dispatcher != nil {
			ss.Dispatcher.Dispatch(ctx, intents)
		}
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (ss *SweepScheduler) RunNow() {
	ss.sweep()
}
