package tetris

import (
	"sort"
	"time"
)

type task struct {
	id         int
	due        time.Duration
	generation int
	fn         func()
}

// scheduler runs one-shot tasks against simulation time. It only moves
// forward when the session ticks, so tasks run on the same goroutine as
// every other mutation. Tasks remember the generation they were scheduled
// under and are dropped when they come due after a restart.
type scheduler struct {
	now    time.Duration
	nextID int
	tasks  []*task
}

func newScheduler() *scheduler {
	return &scheduler{}
}

// after schedules fn to run once d has elapsed and returns an id for cancel.
func (s *scheduler) after(d time.Duration, generation int, fn func()) int {
	s.nextID++
	s.tasks = append(s.tasks, &task{
		id:         s.nextID,
		due:        s.now + d,
		generation: generation,
		fn:         fn,
	})
	return s.nextID
}

func (s *scheduler) cancel(id int) {
	for i, t := range s.tasks {
		if t.id == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

// advance moves the clock forward and runs every task that came due for the
// given generation, earliest first. It returns the number of tasks run.
func (s *scheduler) advance(elapsed time.Duration, generation int) int {
	if elapsed > 0 {
		s.now += elapsed
	}
	var due, pending []*task
	for _, t := range s.tasks {
		if t.due <= s.now {
			due = append(due, t)
		} else {
			pending = append(pending, t)
		}
	}
	s.tasks = pending
	sort.SliceStable(due, func(i, j int) bool { return due[i].due < due[j].due })

	ran := 0
	for _, t := range due {
		if t.generation != generation {
			continue
		}
		t.fn()
		ran++
	}
	return ran
}

func (s *scheduler) pending() int { return len(s.tasks) }
