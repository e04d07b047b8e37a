// Package notify holds the single transient message shown to the user and
// hides it after a fixed delay.
package notify

import (
	"sync"
	"time"
)

// DefaultDuration is how long a notification stays visible.
const DefaultDuration = 3 * time.Second

// Level represents the type of notification to display.
type Level string

const (
	Success Level = "success"
	Error   Level = "error"
	Warning Level = "warning"
	Info    Level = "info"
)

// Notification is one message on the board.
type Notification struct {
	ID       uint64        `json:"id"`
	Level    Level         `json:"type"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"-"`
	ShownAt  time.Time     `json:"shownAt"`
}

// DurationMs is the display time in milliseconds, the unit browsers expect.
func (n Notification) DurationMs() int {
	return int(n.Duration / time.Millisecond)
}

// Timer is the handle of a scheduled hide.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Options configure a Board. Zero values pick the defaults.
type Options struct {
	Duration  time.Duration
	Scheduler Scheduler
	Clock     func() time.Time
	// OnHide is called, outside the board lock, when a notification expires.
	OnHide func(Notification)
}

// Board shows at most one notification at a time. A newer notification
// replaces the current one and cancels its pending hide.
// It is safe for concurrent use.
type Board struct {
	mu       sync.Mutex
	duration time.Duration
	sched    Scheduler
	now      func() time.Time
	onHide   func(Notification)

	seq     uint64
	current *Notification
	timer   Timer
}

func NewBoard(opts Options) *Board {
	b := &Board{
		duration: opts.Duration,
		sched:    opts.Scheduler,
		now:      opts.Clock,
		onHide:   opts.OnHide,
	}
	if b.duration <= 0 {
		b.duration = DefaultDuration
	}
	if b.sched == nil {
		b.sched = realScheduler{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Show replaces the current notification and schedules its hide.
func (b *Board) Show(level Level, message string) Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	b.seq++
	n := Notification{
		ID:       b.seq,
		Level:    level,
		Message:  message,
		Duration: b.duration,
		ShownAt:  b.now(),
	}
	b.current = &n

	id := n.ID
	b.timer = b.sched.AfterFunc(b.duration, func() { b.expire(id) })
	return n
}

// expire hides notification id unless a newer one has replaced it.
// Stop can lose the race with a timer that already fired, hence the id check.
func (b *Board) expire(id uint64) {
	b.mu.Lock()
	if b.current == nil || b.current.ID != id {
		b.mu.Unlock()
		return
	}
	hidden := *b.current
	b.current = nil
	b.timer = nil
	onHide := b.onHide
	b.mu.Unlock()

	if onHide != nil {
		onHide(hidden)
	}
}

// Current returns the visible notification, if any.
func (b *Board) Current() (Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Notification{}, false
	}
	return *b.current, true
}

// Dismiss hides the current notification immediately.
func (b *Board) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.current = nil
}

func (b *Board) Duration() time.Duration { return b.duration }
