package session

import (
	"sync"
	"time"

	"github.com/examspark/examspark-backend/internal/model"
)

const (
	// DefaultTickInterval is the countdown granularity. Wall-clock
	// 1-second ticks; drift is not corrected.
	DefaultTickInterval = time.Second

	// DefaultSkipWarningTTL is how long the transient skip warning stays
	// visible before it self-clears.
	DefaultSkipWarningTTL = 3 * time.Second

	// DefaultWarningTTL is how long a proctoring warning counts as
	// displayed for blur de-duplication.
	DefaultWarningTTL = 5 * time.Second
)

// Runner binds a State to a wall-clock ticker and serializes every
// event (timer ticks, client actions, warning expiries) under one
// mutex, so transitions observe the same ordering a single-threaded
// event loop would. Callbacks are invoked outside the lock.
type Runner struct {
	// TickInterval and the TTLs may be overridden before Start; tests
	// use short intervals.
	TickInterval   time.Duration
	SkipWarningTTL time.Duration
	WarningTTL     time.Duration

	// OnState is called after asynchronous state changes (ticks, warning
	// expiry). OnAutoSubmit fires exactly once when the countdown
	// reaches zero while Active.
	OnState      func(State)
	OnAutoSubmit func(State)

	mu           sync.Mutex
	state        State
	tickerDone   chan struct{}
	skipTimer    *time.Timer
	warningTimer *time.Timer
	closed       bool
}

// NewRunner creates a Runner for one attempt at the given exam.
func NewRunner(exam *model.Exam) *Runner {
	return &Runner{
		TickInterval:   DefaultTickInterval,
		SkipWarningTTL: DefaultSkipWarningTTL,
		WarningTTL:     DefaultWarningTTL,
		state:          New(exam),
	}
}

// Snapshot returns the current state.
func (r *Runner) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start moves the attempt to Active and begins the countdown.
func (r *Runner) Start() State {
	r.mu.Lock()
	r.state = r.state.Start()
	st := r.state
	startTicker := st.Phase == PhaseActive && r.tickerDone == nil && !r.closed
	if startTicker {
		r.tickerDone = make(chan struct{})
		go r.runTicker(r.tickerDone)
	}
	r.mu.Unlock()
	return st
}

func (r *Runner) runTicker(done chan struct{}) {
	ticker := time.NewTicker(r.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			r.mu.Lock()
			prev := r.state.Phase
			r.state = r.state.Tick()
			st := r.state
			submitted := prev == PhaseActive && st.Phase == PhaseSubmitted
			if submitted || st.Phase != PhaseActive {
				r.stopTickerLocked()
			}
			r.mu.Unlock()

			if submitted {
				if r.OnAutoSubmit != nil {
					r.OnAutoSubmit(st)
				}
				return
			}
			if st.Phase != PhaseActive {
				return
			}
			if r.OnState != nil {
				r.OnState(st)
			}
		}
	}
}

// stopTickerLocked signals the ticker goroutine to exit. Callers hold mu.
func (r *Runner) stopTickerLocked() {
	if r.tickerDone != nil {
		close(r.tickerDone)
		r.tickerDone = nil
	}
}

// SetAnswer records a selection; see State.SetAnswer.
func (r *Runner) SetAnswer(idx int, values ...string) State {
	return r.apply(func(s State) State { return s.SetAnswer(idx, values...) })
}

// ToggleChoice toggles one value on a multiple-type question.
func (r *Runner) ToggleChoice(idx int, value string) State {
	return r.apply(func(s State) State { return s.ToggleChoice(idx, value) })
}

// Next advances the question index. A newly raised skip warning is
// scheduled to self-clear after SkipWarningTTL.
func (r *Runner) Next() State {
	r.mu.Lock()
	hadWarning := r.state.SkipWarning
	r.state = r.state.Next()
	st := r.state
	if st.SkipWarning && !hadWarning {
		r.scheduleSkipClearLocked()
	}
	r.mu.Unlock()
	return st
}

// Previous steps back one question.
func (r *Runner) Previous() State {
	return r.apply(func(s State) State { return s.Previous() })
}

// RequestSubmit starts a manual submit; the returned state either holds
// the result or awaits confirmation.
func (r *Runner) RequestSubmit() State {
	return r.finishing(func(s State) State { return s.RequestSubmit() })
}

// ConfirmSubmit completes a pending manual submit.
func (r *Runner) ConfirmSubmit() State {
	return r.finishing(func(s State) State { return s.ConfirmSubmit() })
}

// CancelSubmit declines the confirmation prompt.
func (r *Runner) CancelSubmit() State {
	return r.apply(func(s State) State { return s.CancelSubmit() })
}

// Signal applies a proctoring signal and returns the warning to show,
// if any. A displayed warning is scheduled to expire so later blurs can
// warn again.
func (r *Runner) Signal(kind model.ProctorEventKind) (State, *Warning) {
	r.mu.Lock()
	var warning *Warning
	r.state, warning = r.state.ApplySignal(kind)
	st := r.state
	if st.WarningShown {
		r.scheduleWarningExpiryLocked()
	}
	r.mu.Unlock()
	return st, warning
}

// EnterFullscreen records the client entering presentation mode.
func (r *Runner) EnterFullscreen() State {
	return r.apply(func(s State) State { return s.EnterFullscreen() })
}

// Retake resets to a fresh NotStarted attempt and tears the countdown
// down until the next Start.
func (r *Runner) Retake() State {
	r.mu.Lock()
	r.stopTickerLocked()
	r.cancelTimersLocked()
	r.state = r.state.Retake()
	st := r.state
	r.mu.Unlock()
	return st
}

// Stop releases the ticker and timers. Safe to call more than once;
// must be called on connection teardown so no orphaned ticker keeps
// mutating discarded state.
func (r *Runner) Stop() {
	r.mu.Lock()
	r.closed = true
	r.stopTickerLocked()
	r.cancelTimersLocked()
	r.mu.Unlock()
}

func (r *Runner) apply(f func(State) State) State {
	r.mu.Lock()
	r.state = f(r.state)
	st := r.state
	r.mu.Unlock()
	return st
}

// finishing applies a transition that may finalize the attempt and, if
// it did, stops the countdown.
func (r *Runner) finishing(f func(State) State) State {
	r.mu.Lock()
	r.state = f(r.state)
	st := r.state
	if st.Phase == PhaseSubmitted {
		r.stopTickerLocked()
		r.cancelTimersLocked()
	}
	r.mu.Unlock()
	return st
}

func (r *Runner) scheduleSkipClearLocked() {
	if r.skipTimer != nil {
		r.skipTimer.Stop()
	}
	r.skipTimer = time.AfterFunc(r.SkipWarningTTL, func() {
		r.mu.Lock()
		r.state = r.state.ClearSkipWarning()
		st := r.state
		r.mu.Unlock()
		if r.OnState != nil {
			r.OnState(st)
		}
	})
}

func (r *Runner) scheduleWarningExpiryLocked() {
	if r.warningTimer != nil {
		r.warningTimer.Stop()
	}
	r.warningTimer = time.AfterFunc(r.WarningTTL, func() {
		r.mu.Lock()
		r.state = r.state.DismissWarning()
		r.mu.Unlock()
	})
}

func (r *Runner) cancelTimersLocked() {
	if r.skipTimer != nil {
		r.skipTimer.Stop()
		r.skipTimer = nil
	}
	if r.warningTimer != nil {
		r.warningTimer.Stop()
		r.warningTimer = nil
	}
}
