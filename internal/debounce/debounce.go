// Package debounce abstracts deferred callbacks behind a cancellable timer
// so filter controls can be driven by wall-clock time in the terminal and
// by a manual clock in tests.
package debounce

import (
	"sort"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultWait is how long input must pause before a draft is committed.
const DefaultWait = 300 * time.Millisecond

// Timer is a scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call stopped it
	// before it ran.
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Real schedules on the runtime timer. Callbacks run on their own
// goroutine; use Loop when the callback touches UI state.
type Real struct{}

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// FireMsg carries a due callback into the bubbletea Update loop.
type FireMsg struct {
	fire func()
}

// Run invokes the callback unless its timer was stopped after the
// message was queued. Call it from Update.
func (m FireMsg) Run() {
	if m.fire != nil {
		m.fire()
	}
}

// Loop is a Scheduler whose callbacks run inside a bubbletea program's
// Update loop. When a timer elapses, a FireMsg is sent to the program;
// the model must call Run on it.
type Loop struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewLoop returns an unbound Loop. Bind it to the program before the
// first timer elapses; FireMsgs produced while unbound are dropped.
func NewLoop() *Loop {
	return &Loop{}
}

// Bind routes fired callbacks to send, normally (*tea.Program).Send.
func (l *Loop) Bind(send func(tea.Msg)) {
	l.mu.Lock()
	l.send = send
	l.mu.Unlock()
}

func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.mu.Lock()
		send := l.send
		l.mu.Unlock()
		if send == nil {
			return
		}
		send(FireMsg{fire: func() {
			// Stop and Run both execute on the Update goroutine, so a
			// timer stopped after its message was queued never runs f.
			if t.stopped {
				return
			}
			t.fired = true
			f()
		}})
	})
	return t
}

type loopTimer struct {
	timer   *time.Timer
	stopped bool
	fired   bool
}

func (t *loopTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}

// Manual is a Scheduler driven by Advance. Callbacks run synchronously on
// the goroutine calling Advance, in deadline order.
type Manual struct {
	now     time.Duration
	seq     int
	pending []*manualTimer
}

// NewManual returns a Manual clock at time zero.
func NewManual() *Manual {
	return &Manual{}
}

type manualTimer struct {
	m     *Manual
	at    time.Duration
	seq   int
	f     func()
	armed bool
}

func (t *manualTimer) Stop() bool {
	if !t.armed {
		return false
	}
	t.armed = false
	t.m.remove(t)
	return true
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.seq++
	t := &manualTimer{m: m, at: m.now + d, seq: m.seq, f: f, armed: true}
	m.pending = append(m.pending, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that falls due.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.next(target)
		if next == nil {
			break
		}
		m.now = next.at
		next.armed = false
		m.remove(next)
		next.f()
	}
	m.now = target
}

// Pending is the number of armed timers.
func (m *Manual) Pending() int {
	return len(m.pending)
}

func (m *Manual) next(limit time.Duration) *manualTimer {
	if len(m.pending) == 0 {
		return nil
	}
	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].at != m.pending[j].at {
			return m.pending[i].at < m.pending[j].at
		}
		return m.pending[i].seq < m.pending[j].seq
	})
	if m.pending[0].at > limit {
		return nil
	}
	return m.pending[0]
}

func (m *Manual) remove(t *manualTimer) {
	for i, p := range m.pending {
		if p == t {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}
