package macro

import (
	"sync"
	"time"

	"github.com/dshills/keyscope/internal/input"
	"github.com/dshills/keyscope/internal/input/key"
)

// Step is one recorded transition.
type Step struct {
	Transition key.Transition

	// Offset is the time since recording started.
	Offset time.Duration
}

// Session is a recorded series of transitions.
type Session struct {
	RecordedAt time.Time
	Steps      []Step
}

// Transitions returns the transitions of the session in order.
func (s Session) Transitions() []key.Transition {
	out := make([]key.Transition, len(s.Steps))
	for i, st := range s.Steps {
		out[i] = st.Transition
	}
	return out
}

// Duration returns the offset of the last step.
func (s Session) Duration() time.Duration {
	if len(s.Steps) == 0 {
		return 0
	}
	return s.Steps[len(s.Steps)-1].Offset
}

// Recorder captures transitions while recording is on. It implements
// input.Hook and never consumes a transition.
type Recorder struct {
	input.BaseHook

	mu        sync.Mutex
	recording bool
	started   time.Time
	steps     []Step
	now       func() time.Time
}

// NewRecorder creates a stopped recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Start begins a new recording, discarding any steps not yet collected.
// It reports false if a recording is already running.
func (r *Recorder) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return false
	}
	r.recording = true
	r.started = r.now()
	r.steps = nil
	return true
}

// Stop ends the recording and returns it. Stopping a stopped recorder
// returns an empty session.
func (r *Recorder) Stop() Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return Session{}
	}
	r.recording = false
	s := Session{RecordedAt: r.started, Steps: r.steps}
	r.steps = nil
	return s
}

// IsRecording reports whether a recording is running.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Len returns the number of steps recorded so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.steps)
}

// Record adds t to the running recording. It does nothing when stopped.
func (r *Recorder) Record(t key.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return
	}
	at := t.Timestamp
	if at.IsZero() {
		at = r.now()
	}
	r.steps = append(r.steps, Step{Transition: t, Offset: max(at.Sub(r.started), 0)})
}

// PostTransition records every transition the engine processed.
func (r *Recorder) PostTransition(t key.Transition, _ bool) {
	r.Record(t)
}
