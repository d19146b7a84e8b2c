package tasks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/atelierppf/fieldsync/internal/backend"
	"github.com/atelierppf/fieldsync/internal/model"
)

// fetchTimeout is the maximum time allowed for a single fetch operation.
// A fetch exceeding it reports a timeout-classified error, distinct from
// a network or server error.
const fetchTimeout = 30 * time.Second

// Result carries a completed fetch to the result callback.
type Result struct {
	Tasks      []model.Task
	Pagination model.Pagination
}

// Orchestrator manages one logical fetch lifecycle: filter state, the
// current page, an in-flight guard, and result/error callbacks. It holds
// no task data itself; on failure the error callback fires and whatever
// the caller displayed stays untouched.
//
// Only one fetch runs at a time per Orchestrator. A fetch requested while
// another is in flight is suppressed entirely, so rapid filter changes or
// duplicated triggers cannot cause request storms. Independent
// Orchestrator instances do not coordinate.
type Orchestrator struct {
	svc      *Service
	pageSize int
	timeout  time.Duration
	log      *logrus.Logger

	onResult func(Result)
	onError  func(error)

	inFlight atomic.Bool

	mu    sync.Mutex
	query Query
	page  int
}

// NewOrchestrator creates an orchestrator over svc. onResult receives the
// task list and resolved pagination of each successful fetch; onError
// receives classified failures. Either callback may be nil.
func NewOrchestrator(
	svc *Service,
	pageSize int,
	onResult func(Result),
	onError func(error),
	log *logrus.Logger,
) *Orchestrator {
	if pageSize < 1 {
		pageSize = 20
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{
		svc:      svc,
		pageSize: pageSize,
		timeout:  fetchTimeout,
		log:      log,
		onResult: onResult,
		onError:  onError,
		page:     1,
	}
}

// SetTimeout overrides the per-fetch timeout. Zero or negative values are
// ignored.
func (o *Orchestrator) SetTimeout(d time.Duration) {
	if d > 0 {
		o.timeout = d
	}
}

// FetchTasks fetches the given page under the current filters. It returns
// false without starting anything when another fetch is already in
// flight.
func (o *Orchestrator) FetchTasks(ctx context.Context, page int) bool {
	if !o.inFlight.CompareAndSwap(false, true) {
		o.log.Debug("fetch suppressed: another fetch is in flight")
		return false
	}
	defer o.inFlight.Store(false)

	if page < 1 {
		page = 1
	}

	o.mu.Lock()
	q := o.query
	o.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	result, err := o.svc.List(ctx, q, page, o.pageSize)
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"page": page,
			"kind": backend.Classify(err),
		}).Warn("task fetch failed")
		if o.onError != nil {
			o.onError(err)
		}
		return true
	}

	o.mu.Lock()
	o.page = result.Pagination.Page
	o.mu.Unlock()

	if o.onResult != nil {
		o.onResult(Result{
			Tasks:      result.Tasks,
			Pagination: result.Pagination,
		})
	}
	return true
}

// Refetch re-runs the fetch for the current page and filters.
func (o *Orchestrator) Refetch(ctx context.Context) bool {
	o.mu.Lock()
	page := o.page
	o.mu.Unlock()
	return o.FetchTasks(ctx, page)
}

// GoToPage fetches the given page under the current filters.
func (o *Orchestrator) GoToPage(ctx context.Context, page int) bool {
	return o.FetchTasks(ctx, page)
}

// SetFilters replaces the filter criteria and fetches the first page.
// Setting identical filters is a no-op so that repeated applications of
// unchanged state trigger no fetch.
func (o *Orchestrator) SetFilters(ctx context.Context, q Query) bool {
	o.mu.Lock()
	if q == o.query {
		o.mu.Unlock()
		return false
	}
	o.query = q
	o.page = 1
	o.mu.Unlock()

	return o.FetchTasks(ctx, 1)
}

// Page returns the page of the most recent successful fetch.
func (o *Orchestrator) Page() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.page
}
