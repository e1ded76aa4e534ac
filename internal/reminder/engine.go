package reminder

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrInvalidTriggerTime is returned when scheduling an event without a time.
	ErrInvalidTriggerTime = errors.New("reminder: invalid trigger time")
	// ErrEngineStopped is returned when scheduling on a stopped engine.
	ErrEngineStopped = errors.New("reminder: engine stopped")
)

// Event is a reminder due at TriggerAt. At most one event per ID is pending.
type Event struct {
	ID        string
	TriggerAt time.Time
}

// dueQueue is a min-heap on TriggerAt.
type dueQueue []Event

func (q dueQueue) Len() int           { return len(q) }
func (q dueQueue) Less(i, j int) bool { return q[i].TriggerAt.Before(q[j].TriggerAt) }
func (q dueQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *dueQueue) Push(x any)        { *q = append(*q, x.(Event)) }

func (q *dueQueue) Pop() any {
	last := (*q)[len(*q)-1]
	*q = (*q)[:len(*q)-1]
	return last
}

// Engine fires scheduled events on C. Sending never blocks the timer: an
// event that finds C full is dropped and counted.
type Engine struct {
	mu      sync.Mutex
	due     dueQueue
	started bool
	stopped bool

	out     chan Event
	kick    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	dropped atomic.Uint64
}

// NewEngine returns an engine whose output channel holds bufferSize events.
func NewEngine(bufferSize int) *Engine {
	return &Engine{
		out:  make(chan Event, max(bufferSize, 1)),
		kick: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// C returns the delivery channel. It is closed after Stop.
func (e *Engine) C() <-chan Event {
	return e.out
}

// Start launches the timer goroutine. Calling it twice is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	go e.run()
}

// Stop ends the timer goroutine and waits for it to exit.
func (e *Engine) Stop() {
	e.mu.Lock()
	wasRunning := e.started && !e.stopped
	e.stopped = true
	if wasRunning {
		close(e.quit)
	}
	e.mu.Unlock()
	if wasRunning {
		<-e.done
	}
}

// Schedule queues ev, replacing a pending event with the same ID.
func (e *Engine) Schedule(ev Event) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}
	for i := range e.due {
		if e.due[i].ID == ev.ID {
			e.due[i] = ev
			heap.Fix(&e.due, i)
			e.nudge()
			return nil
		}
	}
	heap.Push(&e.due, ev)
	e.nudge()
	return nil
}

// Pending returns the number of queued events.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.due)
}

// Dropped returns how many events were discarded because C was full.
func (e *Engine) Dropped() uint64 {
	return e.dropped.Load()
}

func (e *Engine) run() {
	defer close(e.done)
	defer close(e.out)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	for {
		var fire <-chan time.Time
		if at, ok := e.nextAt(); ok {
			timer.Reset(max(time.Until(at), 0))
			fire = timer.C
		} else {
			timer.Stop()
		}

		select {
		case <-fire:
			for _, ev := range e.takeDue(time.Now()) {
				select {
				case e.out <- ev:
				default:
					e.dropped.Add(1)
				}
			}
		case <-e.kick:
		case <-e.quit:
			return
		}
	}
}

func (e *Engine) nudge() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

func (e *Engine) nextAt() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.due) == 0 {
		return time.Time{}, false
	}
	return e.due[0].TriggerAt, true
}

func (e *Engine) takeDue(now time.Time) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []Event
	for len(e.due) > 0 && !e.due[0].TriggerAt.After(now) {
		out = append(out, heap.Pop(&e.due).(Event))
	}
	return out
}
