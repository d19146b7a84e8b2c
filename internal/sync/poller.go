// Package sync keeps the local offline store current by periodically
// refreshing tasks from the backend.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/atelierppf/fieldsync/internal/backend"
	"github.com/atelierppf/fieldsync/internal/model"
	"github.com/atelierppf/fieldsync/internal/store"
	"github.com/atelierppf/fieldsync/internal/tasks"
)

// State represents the current state of the poll loop.
type State int

const (
	Idle State = iota
	Running
	Error
)

// Status holds the poller's current state and last outcome.
type Status struct {
	State    State
	LastSync time.Time
	Err      error
}

// Result is delivered to the result callback after each poll cycle.
type Result struct {
	Tasks        []model.Task
	NewTaskCount int
	Err          error

	// AuthRequired is set when the cycle failed because credentials are
	// missing or expired; the caller should prompt for reconfiguration
	// instead of retrying.
	AuthRequired bool
}

// fetchTimeout is the maximum time allowed for a single poll cycle's fetch.
const fetchTimeout = 30 * time.Second

// pollPageSize is how many tasks one poll cycle fetches.
const pollPageSize = 50

// Poller orchestrates background refreshes of the local task store.
type Poller struct {
	store    store.Store
	svc      *tasks.Service
	query    tasks.Query
	interval time.Duration
	onResult func(Result)
	log      *logrus.Logger

	triggerCh chan struct{}
	stopCh    chan struct{}

	mu      gosync.Mutex
	status  Status
	running bool
}

// New creates a Poller that refreshes tasks matching query every interval.
// onResult may be nil.
func New(
	s store.Store,
	svc *tasks.Service,
	query tasks.Query,
	interval time.Duration,
	onResult func(Result),
	log *logrus.Logger,
) *Poller {
	if interval <= 0 {
		interval = 120 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Poller{
		store:     s,
		svc:       svc,
		query:     query,
		interval:  interval,
		onResult:  onResult,
		log:       log,
		triggerCh: make(chan struct{}, 16),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the polling goroutine. Starting an already running
// poller is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate poll cycle without blocking. The trigger
// is dropped when one is already pending.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the poller's current status.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// loop runs the polling cycle until stopped.
func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Do an initial fetch immediately.
	p.fetchAndUpsert()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.fetchAndUpsert()
		case <-p.triggerCh:
			p.fetchAndUpsert()
		}
	}
}

// fetchAndUpsert performs a single poll cycle: fetch the first page of
// tasks, upsert them into the local store, and record a notification for
// every task ID not seen before.
func (p *Poller) fetchAndUpsert() {
	p.setStatus(Running, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	page, err := p.svc.List(ctx, p.query, 1, pollPageSize)
	if err != nil {
		p.setStatus(Error, err)
		p.log.WithField("kind", backend.Classify(err)).Warn("poll cycle failed")
		p.report(Result{
			Err:          err,
			AuthRequired: backend.IsAuthRequired(err),
		})
		return
	}

	fetched := page.Tasks

	// Detect new tasks by checking which IDs the store has not seen yet.
	var newTaskIDs map[string]bool
	if len(fetched) > 0 {
		existing, _ := p.store.GetTasks(ctx, store.TaskFilter{Limit: 1000})
		existingIDs := make(map[string]bool, len(existing))
		for _, t := range existing {
			existingIDs[t.ID] = true
		}
		newTaskIDs = make(map[string]bool)
		for _, t := range fetched {
			if !existingIDs[t.ID] {
				newTaskIDs[t.ID] = true
			}
		}
	}

	if len(fetched) > 0 {
		if upsertErr := p.store.UpsertTasks(ctx, fetched); upsertErr != nil {
			p.setStatus(Error, upsertErr)
			p.report(Result{Err: upsertErr})
			return
		}
	}

	// Create notifications for new tasks only.
	for _, t := range fetched {
		if !newTaskIDs[t.ID] {
			continue
		}
		notification := model.Notification{
			TaskID:    t.ID,
			Message:   fmt.Sprintf("Nouvelle tâche : %s", t.Title),
			CreatedAt: time.Now(),
		}
		if err := p.store.CreateNotification(ctx, notification); err != nil {
			p.log.WithField("task_id", t.ID).
				Warn("failed to record new-task notification")
		}
	}

	p.setStatus(Idle, nil)
	p.report(Result{
		Tasks:        fetched,
		NewTaskCount: len(newTaskIDs),
	})
}

// setStatus updates the poller status.
func (p *Poller) setStatus(state State, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Err = err
	if state == Idle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// report delivers a result to the callback when one is registered.
func (p *Poller) report(r Result) {
	if p.onResult != nil {
		p.onResult(r)
	}
}
