package battle

import (
	"sync"
	"time"
)

// Scheduler runs fn after d and returns a handle that cancels it.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler fires on the wall clock.
type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler queues callbacks until Fire is called. The simulator and
// tests use it to step through pauses without sleeping.
type ManualScheduler struct {
	mu     sync.Mutex
	nextID int
	queue  []manualTask
}

type manualTask struct {
	id int
	fn func()
}

func (m *ManualScheduler) After(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.queue = append(m.queue, manualTask{id: id, fn: fn})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i := range m.queue {
			if m.queue[i].id == id {
				m.queue = append(m.queue[:i], m.queue[i+1:]...)
				return
			}
		}
	}
}

func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Fire runs the oldest queued callback outside the lock and reports whether
// there was one.
func (m *ManualScheduler) Fire() bool {
	m.mu.Lock()
	if len(m.queue) == 0 {
		m.mu.Unlock()
		return false
	}
	task := m.queue[0]
	m.queue = m.queue[1:]
	m.mu.Unlock()
	task.fn()
	return true
}

// Drain fires until nothing is queued or limit callbacks have run.
func (m *ManualScheduler) Drain(limit int) int {
	n := 0
	for n < limit && m.Fire() {
		n++
	}
	return n
}
