// Package controller owns the lifecycle of one audit job: submission,
// periodic status polling, terminal-state detection, and user-initiated
// cancellation with race resolution against in-flight completions.
package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"kpiauditor/internal/client"
	"kpiauditor/internal/domain"
	"kpiauditor/internal/logger"
)

// DefaultPollInterval is the fixed cadence of the status poll loop.
const DefaultPollInterval = 2 * time.Second

// EngineAPI is the slice of the engine client the controller consumes.
// internal/client.EngineClient satisfies it; tests substitute fakes.
type EngineAPI interface {
	StartAudit(ctx context.Context, collegeName string) (string, error)
	GetAudit(ctx context.Context, id string) (*domain.AuditJob, error)
	CancelAudit(ctx context.Context, id string) error
}

// Hooks are the controller's outbound notifications. All hooks are optional
// and are invoked outside the controller's lock.
type Hooks struct {
	// OnUpdate fires after every accepted snapshot or local transition.
	OnUpdate func(job *domain.AuditJob)
	// OnTerminal fires once, on the first terminal observation of a job.
	OnTerminal func(job *domain.AuditJob)
	// OnJobsChanged asks the audit history list to refresh.
	OnJobsChanged func()
	// OnError surfaces failures from cancel's background network step.
	OnError func(err error)
}

// Controller tracks exactly one active audit job. Submitting while another
// job is active replaces it wholesale; there is never more than one poll
// loop alive.
type Controller struct {
	engine   EngineAPI
	interval time.Duration
	hooks    Hooks
	log      *logger.Logger

	mu   sync.Mutex
	job  *domain.AuditJob
	stop chan struct{} // closing stops the current poll loop; nil when idle
	done chan struct{} // closed by the poll loop on exit
}

// New creates a controller around the given engine.
// Parameters:
//   - engine: the audit engine API.
//   - interval: poll cadence; <= 0 uses DefaultPollInterval.
//   - hooks: outbound notifications; zero value disables all.
// Returns:
//   - *Controller: initialized controller with no active job.
func New(engine EngineAPI, interval time.Duration, hooks Hooks) *Controller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Controller{
		engine:   engine,
		interval: interval,
		hooks:    hooks,
		log:      logger.GetDefault().WithComponent("controller"),
	}
}

// Submit starts a new audit for the given college name and begins polling.
// The local job is created optimistically the instant the engine accepts the
// submission; the server is the source of truth thereafter.
// Parameters:
//   - ctx: context for the submission call.
//   - collegeName: subject name; trimmed, must be non-empty.
// Returns:
//   - *domain.AuditJob: the optimistic local job snapshot.
//   - error: client.ErrEmptyCollegeName, or the engine failure verbatim. On
//     error no local state is created and any prior job keeps its state.
func (c *Controller) Submit(ctx context.Context, collegeName string) (*domain.AuditJob, error) {
	collegeName = strings.TrimSpace(collegeName)
	if collegeName == "" {
		return nil, client.ErrEmptyCollegeName
	}

	id, err := c.engine.StartAudit(ctx, collegeName)
	if err != nil {
		return nil, err
	}

	job := &domain.AuditJob{
		ID:              id,
		CollegeName:     collegeName,
		Status:          domain.StatusProcessing,
		Progress:        0,
		ProgressMessage: "Starting audit...",
		CreatedAt:       time.Now().UTC(),
	}

	c.stopPolling()

	c.mu.Lock()
	c.job = job
	c.startPollingLocked(id)
	c.mu.Unlock()

	c.log.WithAuditID(id).Infof("Audit submitted for %q", collegeName)
	c.notifyUpdate(job)
	if c.hooks.OnJobsChanged != nil {
		c.hooks.OnJobsChanged()
	}
	return snapshotOf(job), nil
}

// Cancel applies the local cancelled transition, stops the poll loop, and
// then notifies the engine best-effort in the background. The local
// transition and the timer stop happen before any network traffic, so a late
// poll response can never overwrite the cancellation. Never blocks on the
// cancel round-trip.
// Parameters:
//   - ctx: context for the background cancel request.
// Returns: none. A no-op when there is no processing job.
func (c *Controller) Cancel(ctx context.Context) {
	c.mu.Lock()
	if c.job == nil || c.job.Status != domain.StatusProcessing {
		c.mu.Unlock()
		return
	}
	c.job.Status = domain.StatusCancelled
	c.job.ProgressMessage = "Audit cancelled"
	job := snapshotOf(c.job)
	stop := c.stop
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	// Stop the timer before any network traffic. Not waited on: an in-flight
	// poll fetch may still return, but applyRemote discards it because the
	// loop has been detached.
	if stop != nil {
		close(stop)
	}

	c.log.WithAuditID(job.ID).Info("Audit cancelled locally, notifying engine")
	c.notifyUpdate(job)
	if c.hooks.OnJobsChanged != nil {
		c.hooks.OnJobsChanged()
	}

	go c.notifyEngineCancel(ctx, job.ID)
}

// notifyEngineCancel performs the best-effort network half of Cancel. An
// already-terminal answer means the cancel raced a completion; that is not
// an error. The response may refine the progress message but never the
// status.
func (c *Controller) notifyEngineCancel(ctx context.Context, id string) {
	err := c.engine.CancelAudit(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, client.ErrAlreadyTerminal):
		c.log.WithAuditID(id).Info("Engine had already finalized the audit, cancel is a no-op")
	default:
		c.log.WithAuditID(id).WithError(err).Warn("Engine cancel request failed")
		if c.hooks.OnError != nil {
			c.hooks.OnError(err)
		}
	}
}

// LoadExisting fetches an audit by id and replaces the tracked job wholesale.
// Polling resumes only when the loaded snapshot is itself still processing.
// Parameters:
//   - ctx: context for the fetch.
//   - id: the audit id to load.
// Returns:
//   - *domain.AuditJob: the loaded snapshot.
//   - error: the engine failure verbatim; on error the current job keeps its
//     state.
func (c *Controller) LoadExisting(ctx context.Context, id string) (*domain.AuditJob, error) {
	job, err := c.engine.GetAudit(ctx, id)
	if err != nil {
		return nil, err
	}

	c.stopPolling()

	c.mu.Lock()
	c.job = job
	if job.Status == domain.StatusProcessing {
		c.startPollingLocked(job.ID)
	}
	c.mu.Unlock()

	c.notifyUpdate(job)
	return snapshotOf(job), nil
}

// Snapshot returns a copy of the tracked job, or nil when idle.
func (c *Controller) Snapshot() *domain.AuditJob {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshotOf(c.job)
}

// Polling reports whether a poll loop is currently alive. Intended for tests
// and status displays.
func (c *Controller) Polling() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

// Close stops any active poll loop and waits for it to exit. The tracked
// job keeps its last state.
func (c *Controller) Close() {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// startPollingLocked starts the single poll loop for the given audit id,
// detaching any loop still registered so two tickers can never be alive at
// once. Callers must hold c.mu.
func (c *Controller) startPollingLocked(id string) {
	if c.stop != nil {
		close(c.stop)
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	c.stop, c.done = stop, done
	go c.pollLoop(id, stop, done)
}

// stopPolling detaches and stops the current poll loop, if any. It does not
// wait for the loop goroutine: a loop blocked in an in-flight fetch drains on
// its own and its late response is discarded by applyRemote's identity guard.
func (c *Controller) stopPolling() {
	c.mu.Lock()
	stop := c.stop
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

// pollLoop fetches the audit snapshot on a fixed cadence until the job goes
// terminal or the loop is stopped. Transport errors are logged and swallowed;
// the next tick simply retries.
func (c *Controller) pollLoop(id string, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	log := c.log.WithAuditID(id)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			snap, err := c.engine.GetAudit(context.Background(), id)
			if err != nil {
				log.WithError(err).Warn("Poll failed, will retry next tick")
				continue
			}
			if !c.applyRemote(snap, stop) {
				return
			}
		}
	}
}

// applyRemote installs a polled snapshot. It is the single guarded
// assignment that resolves the cancel/complete race: once a terminal status
// has been applied, or once this loop has been superseded, the snapshot is
// discarded. Returns false when the loop should stop.
func (c *Controller) applyRemote(snap *domain.AuditJob, stop chan struct{}) bool {
	c.mu.Lock()
	if c.stop != stop || c.job == nil || c.job.ID != snap.ID {
		// Stale response: the loop was stopped or the job replaced while
		// this fetch was in flight.
		c.mu.Unlock()
		return false
	}
	if c.job.Status.Terminal() {
		c.mu.Unlock()
		return false
	}
	c.job = snap
	terminal := snap.Status.Terminal()
	if terminal {
		// The loop exits on its own; nothing left to stop later.
		c.stop, c.done = nil, nil
	}
	c.mu.Unlock()

	job := snapshotOf(snap)
	c.notifyUpdate(job)
	if terminal {
		c.log.WithAuditID(snap.ID).Infof("Audit reached terminal state %q", snap.Status)
		if c.hooks.OnTerminal != nil {
			c.hooks.OnTerminal(job)
		}
		if c.hooks.OnJobsChanged != nil {
			c.hooks.OnJobsChanged()
		}
	}
	return !terminal
}

func (c *Controller) notifyUpdate(job *domain.AuditJob) {
	if c.hooks.OnUpdate != nil {
		c.hooks.OnUpdate(job)
	}
}

// snapshotOf returns a shallow copy of the job. Results and summary are
// shared: both are immutable by convention, only ever replaced wholesale.
func snapshotOf(job *domain.AuditJob) *domain.AuditJob {
	if job == nil {
		return nil
	}
	cp := *job
	return &cp
}
