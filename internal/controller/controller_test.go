package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kpiauditor/internal/client"
	"kpiauditor/internal/domain"
)

const testInterval = 5 * time.Millisecond

// fakeEngine scripts GetAudit responses: snapshots are served in order and
// the last one repeats. All counters are safe for concurrent access.
type fakeEngine struct {
	mu          sync.Mutex
	startCalls  int
	getCalls    int
	cancelCalls int

	startID   string
	startErr  error
	snapshots []*domain.AuditJob
	getErr    error
	cancelErr error
}

func (f *fakeEngine) StartAudit(ctx context.Context, collegeName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	if f.startErr != nil {
		return "", f.startErr
	}
	return f.startID, nil
}

func (f *fakeEngine) GetAudit(ctx context.Context, id string) (*domain.AuditJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if len(f.snapshots) == 0 {
		return &domain.AuditJob{ID: id, Status: domain.StatusProcessing}, nil
	}
	snap := f.snapshots[0]
	if len(f.snapshots) > 1 {
		f.snapshots = f.snapshots[1:]
	}
	cp := *snap
	return &cp, nil
}

func (f *fakeEngine) CancelAudit(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	return f.cancelErr
}

func (f *fakeEngine) counts() (start, get, cancel int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startCalls, f.getCalls, f.cancelCalls
}

// waitFor polls a condition until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}

func processing(id string, progress int) *domain.AuditJob {
	return &domain.AuditJob{ID: id, Status: domain.StatusProcessing, Progress: progress}
}

func TestSubmit_WhitespaceNameMakesNoNetworkCall(t *testing.T) {
	engine := &fakeEngine{startID: "a1"}
	c := New(engine, testInterval, Hooks{})
	defer c.Close()

	for _, name := range []string{"", "   ", "\t\n "} {
		_, err := c.Submit(context.Background(), name)
		if !errors.Is(err, client.ErrEmptyCollegeName) {
			t.Errorf("Submit(%q) error = %v, want ErrEmptyCollegeName", name, err)
		}
	}

	start, get, _ := engine.counts()
	if start != 0 || get != 0 {
		t.Errorf("network calls made for invalid submissions: start=%d get=%d", start, get)
	}
	if c.Snapshot() != nil {
		t.Error("no local job may be created for a rejected submission")
	}
}

func TestSubmit_FailureCreatesNoLocalState(t *testing.T) {
	engine := &fakeEngine{startErr: errors.New("boom")}
	c := New(engine, testInterval, Hooks{})
	defer c.Close()

	if _, err := c.Submit(context.Background(), "IIT Bombay"); err == nil {
		t.Fatal("expected submission failure to surface")
	}
	if c.Snapshot() != nil {
		t.Error("optimistic state must not be created on submit failure")
	}
	if c.Polling() {
		t.Error("no poll loop may start on submit failure")
	}
}

func TestLifecycle_SubmitPollComplete(t *testing.T) {
	seconds := 125.0
	engine := &fakeEngine{
		startID: "a1",
		snapshots: []*domain.AuditJob{
			processing("a1", 40),
			{
				ID:               "a1",
				CollegeName:      "IIT Bombay",
				Status:           domain.StatusCompleted,
				Progress:         100,
				Results:          []domain.KPIResult{{KPIName: "NIRF Rank", Category: "Rankings", Value: domain.ScalarValue("3")}},
				TimeTakenSeconds: &seconds,
			},
		},
	}

	var mu sync.Mutex
	var terminalCalls int
	var jobsChanged int
	c := New(engine, testInterval, Hooks{
		OnTerminal:    func(*domain.AuditJob) { mu.Lock(); terminalCalls++; mu.Unlock() },
		OnJobsChanged: func() { mu.Lock(); jobsChanged++; mu.Unlock() },
	})
	defer c.Close()

	job, err := c.Submit(context.Background(), "IIT Bombay")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.Status != domain.StatusProcessing || job.Progress != 0 {
		t.Errorf("optimistic job = %s/%d, want processing/0", job.Status, job.Progress)
	}

	waitFor(t, func() bool {
		snap := c.Snapshot()
		return snap != nil && snap.Status == domain.StatusCompleted
	}, "audit never completed")

	snap := c.Snapshot()
	if snap.TimeTakenSeconds == nil || *snap.TimeTakenSeconds != 125.0 {
		t.Error("time taken not carried from the terminal snapshot")
	}
	if len(snap.Results) != 1 {
		t.Errorf("results = %d, want 1", len(snap.Results))
	}
	if c.Polling() {
		t.Error("polling must stop on the first terminal observation")
	}

	// No further polls after terminal.
	_, got, _ := engine.counts()
	time.Sleep(5 * testInterval)
	_, after, _ := engine.counts()
	if after != got {
		t.Errorf("polls continued after terminal state: %d -> %d", got, after)
	}

	mu.Lock()
	defer mu.Unlock()
	if terminalCalls != 1 {
		t.Errorf("OnTerminal fired %d times, want 1", terminalCalls)
	}
	if jobsChanged < 2 { // submit + terminal
		t.Errorf("OnJobsChanged fired %d times, want >= 2", jobsChanged)
	}
}

func TestCancel_StopsPollingBeforeNetwork(t *testing.T) {
	engine := &fakeEngine{startID: "a1"} // serves processing forever
	c := New(engine, testInterval, Hooks{})
	defer c.Close()

	if _, err := c.Submit(context.Background(), "IIT Bombay"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitFor(t, func() bool { _, get, _ := engine.counts(); return get > 0 }, "polling never started")

	c.Cancel(context.Background())

	// The local transition is immediate.
	snap := c.Snapshot()
	if snap.Status != domain.StatusCancelled {
		t.Fatalf("status = %s, want cancelled immediately", snap.Status)
	}
	if c.Polling() {
		t.Error("poll timer must be stopped synchronously by Cancel")
	}

	// Zero additional polls once any in-flight fetch has drained.
	time.Sleep(2 * testInterval)
	_, got, _ := engine.counts()
	time.Sleep(5 * testInterval)
	_, after, _ := engine.counts()
	if after != got {
		t.Errorf("polls continued after cancel: %d -> %d", got, after)
	}

	waitFor(t, func() bool { _, _, cancels := engine.counts(); return cancels == 1 }, "engine cancel never sent")
}

func TestCancel_AlreadyTerminalIsBenign(t *testing.T) {
	engine := &fakeEngine{startID: "a1", cancelErr: client.ErrAlreadyTerminal}

	var mu sync.Mutex
	var surfaced []error
	c := New(engine, testInterval, Hooks{
		OnError: func(err error) { mu.Lock(); surfaced = append(surfaced, err); mu.Unlock() },
	})
	defer c.Close()

	if _, err := c.Submit(context.Background(), "IIT Bombay"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	c.Cancel(context.Background())

	waitFor(t, func() bool { _, _, cancels := engine.counts(); return cancels == 1 }, "engine cancel never sent")
	time.Sleep(2 * testInterval)

	mu.Lock()
	defer mu.Unlock()
	if len(surfaced) != 0 {
		t.Errorf("already-terminal cancel surfaced as error: %v", surfaced)
	}
	if snap := c.Snapshot(); snap.Status != domain.StatusCancelled {
		t.Errorf("status = %s, cancel response must never revert it", snap.Status)
	}
}

func TestCancel_TransportFailureSurfacesButKeepsCancellation(t *testing.T) {
	engine := &fakeEngine{startID: "a1", cancelErr: &client.TransportError{Op: "cancel", Err: errors.New("conn refused")}}

	errCh := make(chan error, 1)
	c := New(engine, testInterval, Hooks{
		OnError: func(err error) { errCh <- err },
	})
	defer c.Close()

	if _, err := c.Submit(context.Background(), "IIT Bombay"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	c.Cancel(context.Background())

	select {
	case err := <-errCh:
		if !client.IsTransport(err) {
			t.Errorf("surfaced error = %v, want transport error", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancel transport failure never surfaced")
	}
	if snap := c.Snapshot(); snap.Status != domain.StatusCancelled {
		t.Errorf("status = %s, network failure must not reverse local cancellation", snap.Status)
	}
}

func TestApplyRemote_NeverRegressesTerminalState(t *testing.T) {
	engine := &fakeEngine{startID: "a1"}
	c := New(engine, testInterval, Hooks{})
	defer c.Close()

	if _, err := c.Submit(context.Background(), "IIT Bombay"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	c.Cancel(context.Background())

	// A poll response that was in flight when Cancel ran arrives now with a
	// stale processing snapshot. It must be discarded.
	stale := processing("a1", 80)
	if c.applyRemote(stale, make(chan struct{})) {
		t.Error("stale snapshot accepted after terminal state")
	}
	if snap := c.Snapshot(); snap.Status != domain.StatusCancelled {
		t.Errorf("status regressed to %s", snap.Status)
	}
}

func TestPollLoop_SwallowsTransportErrors(t *testing.T) {
	engine := &fakeEngine{
		startID: "a1",
		getErr:  &client.TransportError{Op: "status", Err: errors.New("timeout")},
	}
	c := New(engine, testInterval, Hooks{})
	defer c.Close()

	if _, err := c.Submit(context.Background(), "IIT Bombay"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// The loop keeps retrying through failures.
	waitFor(t, func() bool { _, get, _ := engine.counts(); return get >= 3 }, "poll loop stopped retrying")
	if !c.Polling() {
		t.Error("transport errors must not stop the poll loop")
	}
	if snap := c.Snapshot(); snap.Status != domain.StatusProcessing {
		t.Errorf("status = %s, transport errors must not change state", snap.Status)
	}
}

func TestSubmit_ReplacesActiveJob(t *testing.T) {
	engine := &fakeEngine{startID: "a1"}
	c := New(engine, testInterval, Hooks{})
	defer c.Close()

	if _, err := c.Submit(context.Background(), "IIT Bombay"); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	engine.mu.Lock()
	engine.startID = "a2"
	engine.mu.Unlock()

	job, err := c.Submit(context.Background(), "IIT Delhi")
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if job.ID != "a2" || job.CollegeName != "IIT Delhi" {
		t.Errorf("job = %s/%s, want a2/IIT Delhi", job.ID, job.CollegeName)
	}
	if !c.Polling() {
		t.Error("replacement job must be polled")
	}
}

func TestStartPolling_ClosesSupersededLoop(t *testing.T) {
	engine := &fakeEngine{startID: "a1"}
	c := New(engine, testInterval, Hooks{})
	defer c.Close()

	if _, err := c.Submit(context.Background(), "IIT Bombay"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Start a replacement loop without detaching the first one; the start
	// site itself must close the superseded stop channel so two tickers can
	// never run side by side.
	c.mu.Lock()
	first := c.stop
	c.startPollingLocked("a1")
	second := c.stop
	c.mu.Unlock()

	select {
	case <-first:
	default:
		t.Fatal("superseded poll loop's stop channel was not closed")
	}
	select {
	case <-second:
		t.Fatal("fresh poll loop's stop channel must stay open")
	default:
	}
	if !c.Polling() {
		t.Error("controller must still be polling after the restart")
	}
}

func TestLoadExisting(t *testing.T) {
	t.Run("terminal snapshot does not resume polling", func(t *testing.T) {
		engine := &fakeEngine{
			snapshots: []*domain.AuditJob{
				{ID: "old", CollegeName: "IIT Madras", Status: domain.StatusCompleted, Progress: 100},
			},
		}
		c := New(engine, testInterval, Hooks{})
		defer c.Close()

		job, err := c.LoadExisting(context.Background(), "old")
		if err != nil {
			t.Fatalf("LoadExisting: %v", err)
		}
		if job.Status != domain.StatusCompleted {
			t.Errorf("status = %s, want completed", job.Status)
		}
		if c.Polling() {
			t.Error("loading a terminal audit must not start polling")
		}
	})

	t.Run("processing snapshot resumes polling", func(t *testing.T) {
		engine := &fakeEngine{
			snapshots: []*domain.AuditJob{processing("mid", 55)},
		}
		c := New(engine, testInterval, Hooks{})
		defer c.Close()

		job, err := c.LoadExisting(context.Background(), "mid")
		if err != nil {
			t.Fatalf("LoadExisting: %v", err)
		}
		if job.Progress != 55 {
			t.Errorf("progress = %d, want 55", job.Progress)
		}
		if !c.Polling() {
			t.Error("loading an in-flight audit must resume polling")
		}
	})
}
