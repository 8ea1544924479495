package wizard

import (
	"sort"
	"sync"
	"time"
)

// Clock schedules callbacks. The real implementation is backed by
// time.AfterFunc; tests substitute a manually advanced clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Scheduled task names.
const (
	taskProgress      = "progress"
	taskBookingsCheck = "bookings_check"
	taskWindowPoll    = "window_poll"
	taskWindowSettle  = "window_settle"
	taskWindowCeiling = "window_ceiling"
)

type task struct {
	id    uint64
	timer Timer
}

// scheduler owns the named background tasks of one wizard. Scheduling a
// name that is already pending replaces it, so a restarted task never runs
// twice. Callbacks are never invoked while the scheduler lock is held.
type scheduler struct {
	clock Clock

	mu     sync.Mutex
	nextID uint64
	tasks  map[string]task
}

func newScheduler(clock Clock) *scheduler {
	return &scheduler{clock: clock, tasks: make(map[string]task)}
}

// after runs f once after d.
func (s *scheduler) after(name string, d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(name)
	s.nextID++
	id := s.nextID
	s.tasks[name] = task{id: id, timer: s.clock.AfterFunc(d, func() {
		if !s.finish(name, id) {
			return
		}
		f()
	})}
}

// every runs f each interval until f returns false or the task is cancelled.
func (s *scheduler) every(name string, interval time.Duration, f func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(name)
	s.nextID++
	s.scheduleLocked(name, s.nextID, interval, f)
}

func (s *scheduler) scheduleLocked(name string, id uint64, interval time.Duration, f func() bool) {
	s.tasks[name] = task{id: id, timer: s.clock.AfterFunc(interval, func() {
		if !s.current(name, id) {
			return
		}
		if !f() {
			s.finish(name, id)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if t, ok := s.tasks[name]; ok && t.id == id {
			s.scheduleLocked(name, id, interval, f)
		}
	})}
}

// current reports whether id is still the live task for name.
func (s *scheduler) current(name string, id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[name]
	return ok && t.id == id
}

// finish removes the task if id is still the live one for name.
func (s *scheduler) finish(name string, id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[name]
	if !ok || t.id != id {
		return false
	}
	delete(s.tasks, name)
	return true
}

func (s *scheduler) cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(name)
}

func (s *scheduler) cancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.tasks {
		s.stopLocked(name)
	}
}

func (s *scheduler) stopLocked(name string) {
	if t, ok := s.tasks[name]; ok {
		t.timer.Stop()
		delete(s.tasks, name)
	}
}

// pending lists the names of scheduled tasks, sorted.
func (s *scheduler) pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
