package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bft-labs/moisturelog/internal/domain"
	"github.com/bft-labs/moisturelog/internal/ports"
)

type discardLogger struct{}

func (discardLogger) Debug(string, ...ports.Field) {}
func (discardLogger) Info(string, ...ports.Field)  {}
func (discardLogger) Warn(string, ...ports.Field)  {}
func (discardLogger) Error(string, ...ports.Field) {}

type change struct {
	From, To State
	Reason   string
}

// changeLog collects the transitions a bridge would forward to its
// event handler.
type changeLog struct {
	mu      sync.Mutex
	changes []change
}

func (c *changeLog) OnStateChange(previous, current State, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, change{previous, current, reason})
}

func (c *changeLog) all() []change {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]change(nil), c.changes...)
}

var allStates = []State{StateStopped, StateStarting, StateRunning, StateStopping, StateCrashed}

// lifecycleAt drives a fresh lifecycle along legal edges until it sits in s.
func lifecycleAt(t *testing.T, s State) *Lifecycle {
	t.Helper()
	path := map[State][]State{
		StateStopped:  nil,
		StateStarting: {StateStarting},
		StateRunning:  {StateStarting, StateRunning},
		StateStopping: {StateStarting, StateRunning, StateStopping},
		StateCrashed:  {StateStarting, StateCrashed},
	}[s]
	l := NewLifecycle(discardLogger{}, nil)
	for _, next := range path {
		if err := l.TransitionTo(next, "setup"); err != nil {
			t.Fatalf("setup %v: %v", next, err)
		}
	}
	return l
}

func TestTransitionTable(t *testing.T) {
	legal := map[[2]State]bool{
		{StateStopped, StateStarting}:  true,
		{StateStarting, StateRunning}:  true,
		{StateStarting, StateStopping}: true,
		{StateStarting, StateCrashed}:  true,
		{StateRunning, StateStopping}:  true,
		{StateRunning, StateCrashed}:   true,
		{StateStopping, StateStopped}:  true,
		{StateStopping, StateCrashed}:  true,
		{StateCrashed, StateStarting}:  true,
	}

	for _, from := range allStates {
		for _, to := range allStates {
			want := legal[[2]State{from, to}]
			if got := allowed(from, to); got != want {
				t.Errorf("allowed(%v, %v) = %v, want %v", from, to, got, want)
			}

			l := lifecycleAt(t, from)
			err := l.TransitionTo(to, "table")
			switch {
			case want && err != nil:
				t.Errorf("%v -> %v: unexpected error %v", from, to, err)
			case want && l.State() != to:
				t.Errorf("%v -> %v: state = %v", from, to, l.State())
			case !want && err == nil:
				t.Errorf("%v -> %v: expected rejection", from, to)
			case !want && l.State() != from:
				t.Errorf("%v -> %v: rejected transition moved state to %v", from, to, l.State())
			}
		}
	}
}

func TestTransitionErrorByState(t *testing.T) {
	// Idle states reject stop-side moves as not running; busy ones reject
	// start-side moves as already running.
	want := map[State]error{
		StateStopped:  domain.ErrNotRunning,
		StateCrashed:  domain.ErrNotRunning,
		StateStarting: domain.ErrAlreadyRunning,
		StateRunning:  domain.ErrAlreadyRunning,
		StateStopping: domain.ErrAlreadyRunning,
	}
	for s, w := range want {
		if err := transitionError(s); !errors.Is(err, w) {
			t.Errorf("transitionError(%v) = %v, want %v", s, err, w)
		}
	}

	l := lifecycleAt(t, StateRunning)
	if err := l.TransitionTo(StateStarting, "second start"); !errors.Is(err, domain.ErrAlreadyRunning) {
		t.Errorf("Running -> Starting error = %v, want ErrAlreadyRunning", err)
	}
	l = lifecycleAt(t, StateStopped)
	if err := l.TransitionTo(StateStopping, "stop while idle"); !errors.Is(err, domain.ErrNotRunning) {
		t.Errorf("Stopped -> Stopping error = %v, want ErrNotRunning", err)
	}
}

func TestLifecycle_InputExhaustedSequence(t *testing.T) {
	log := &changeLog{}
	l := NewLifecycle(discardLogger{}, log)

	steps := []struct {
		next   State
		reason string
	}{
		{StateStarting, "Start() called"},
		{StateRunning, "acquisition started"},
		{StateStopping, "input exhausted"},
		{StateStopped, "input exhausted"},
	}
	for _, s := range steps {
		if err := l.TransitionTo(s.next, s.reason); err != nil {
			t.Fatalf("TransitionTo(%v): %v", s.next, err)
		}
	}

	want := []change{
		{StateStopped, StateStarting, "Start() called"},
		{StateStarting, StateRunning, "acquisition started"},
		{StateRunning, StateStopping, "input exhausted"},
		{StateStopping, StateStopped, "input exhausted"},
	}
	if diff := cmp.Diff(want, log.all()); diff != "" {
		t.Errorf("state changes mismatch (-want +got):\n%s", diff)
	}
	if !l.CanStart() {
		t.Error("CanStart() = false after input exhausted")
	}
}

func TestLifecycle_StopBeforeWorkerRuns(t *testing.T) {
	log := &changeLog{}
	l := NewLifecycle(discardLogger{}, log)
	if err := l.TransitionTo(StateStarting, "Start() called"); err != nil {
		t.Fatal(err)
	}
	if !l.CanStop() {
		t.Fatal("CanStop() = false while starting")
	}

	// Stop wins the race; the worker's move to Running must then fail and
	// leave the stop in charge.
	if err := l.TransitionTo(StateStopping, "Stop() called"); err != nil {
		t.Fatalf("Starting -> Stopping: %v", err)
	}
	if err := l.TransitionTo(StateRunning, "acquisition started"); !errors.Is(err, domain.ErrAlreadyRunning) {
		t.Fatalf("late Running error = %v, want ErrAlreadyRunning", err)
	}
	if got := l.State(); got != StateStopping {
		t.Fatalf("state = %v, want Stopping", got)
	}
	// A second Stop sees no runnable state.
	if l.CanStop() {
		t.Error("CanStop() = true while stopping")
	}
	if err := l.TransitionTo(StateStopped, "acquisition stopped"); err != nil {
		t.Fatal(err)
	}

	want := []change{
		{StateStopped, StateStarting, "Start() called"},
		{StateStarting, StateStopping, "Stop() called"},
		{StateStopping, StateStopped, "acquisition stopped"},
	}
	if diff := cmp.Diff(want, log.all()); diff != "" {
		t.Errorf("state changes mismatch (-want +got):\n%s", diff)
	}
}

func TestLifecycle_RestartAfterCrash(t *testing.T) {
	l := lifecycleAt(t, StateCrashed)
	if !l.CanStart() || l.CanStop() {
		t.Fatalf("crashed: CanStart=%v CanStop=%v", l.CanStart(), l.CanStop())
	}
	if err := l.TransitionTo(StateStarting, "Start() called"); err != nil {
		t.Fatalf("Crashed -> Starting: %v", err)
	}
}

func TestLifecycle_CancelReachesWorker(t *testing.T) {
	l := lifecycleAt(t, StateRunning)
	l.Cancel() // no cancel stored yet

	ctx, cancel := context.WithCancel(context.Background())
	l.SetCancel(cancel)

	l.AddWorker()
	go func() {
		defer l.WorkerDone()
		<-ctx.Done()
	}()

	l.Cancel()
	if err := l.WaitWithTimeout(time.Second); err != nil {
		t.Fatalf("WaitWithTimeout() = %v", err)
	}
}

func TestLifecycle_WaitGivesUpOnStuckWorker(t *testing.T) {
	l := lifecycleAt(t, StateStopping)
	release := make(chan struct{})
	defer close(release)

	l.AddWorker()
	go func() {
		defer l.WorkerDone()
		<-release
	}()

	if err := l.WaitWithTimeout(20 * time.Millisecond); !errors.Is(err, domain.ErrShutdownTimeout) {
		t.Fatalf("WaitWithTimeout() = %v, want ErrShutdownTimeout", err)
	}
}

func TestLifecycle_ConcurrentStartsOneWins(t *testing.T) {
	l := NewLifecycle(discardLogger{}, nil)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TransitionTo(StateStarting, "Start() called") == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("%d concurrent starts succeeded, want 1", wins)
	}
}

func TestState_String(t *testing.T) {
	got := make([]string, 0, len(allStates)+1)
	for _, s := range append(allStates, State(42)) {
		got = append(got, s.String())
	}
	want := []string{"Stopped", "Starting", "Running", "Stopping", "Crashed", "Unknown"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("State.String mismatch (-want +got):\n%s", diff)
	}
}
