package schedule

import (
	"container/heap"
	"errors"
	"log/slog"
	"time"

	"github.com/Versifine/gravitation/internal/clock"
)

// Forever is the repeat count of an action that only stops when canceled.
const Forever int64 = -1

var (
	ErrInvalidAction = errors.New("invalid scheduled action")
	ErrAlreadyActive = errors.New("continuous action already active")
)

type ActionID uint64

type action struct {
	id       ActionID
	next     time.Time
	interval time.Duration
	calls    int64
	fn       func()
	index    int
}

func noop() {}

// Scheduler fires callbacks at or after wall-clock times. It is driven by
// RunDue once per frame and is not safe for concurrent use.
//
// Cancel is lazy: the entry stays in the queue with no calls left and is
// dropped when it would next fire.
type Scheduler struct {
	clock  clock.Clock
	logger *slog.Logger

	queue  actionQueue
	live   map[ActionID]*action
	nextID ActionID
}

func New(clk clock.Clock, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		clock:  clk,
		logger: logger,
		live:   make(map[ActionID]*action),
	}
}

// Schedule runs fn after delay, then every interval until repeat calls have
// been made. repeat is a positive count or Forever.
func (s *Scheduler) Schedule(fn func(), delay, interval time.Duration, repeat int64) (ActionID, error) {
	switch {
	case fn == nil:
		return 0, errors.Join(ErrInvalidAction, errors.New("nil callback"))
	case delay < 0:
		return 0, errors.Join(ErrInvalidAction, errors.New("negative delay"))
	case repeat == 0 || repeat < Forever:
		return 0, errors.Join(ErrInvalidAction, errors.New("repeat must be positive or Forever"))
	case repeat != 1 && interval <= 0:
		return 0, errors.Join(ErrInvalidAction, errors.New("repeating action needs a positive interval"))
	}

	s.nextID++
	a := &action{
		id:       s.nextID,
		next:     s.clock.Now().Add(delay),
		interval: interval,
		calls:    repeat,
		fn:       fn,
	}
	heap.Push(&s.queue, a)
	s.live[a.id] = a
	return a.id, nil
}

func (s *Scheduler) After(delay time.Duration, fn func()) (ActionID, error) {
	return s.Schedule(fn, delay, 0, 1)
}

func (s *Scheduler) Every(interval time.Duration, fn func()) (ActionID, error) {
	return s.Schedule(fn, interval, interval, Forever)
}

// Cancel stops id from ever firing again. Canceling an action that is
// unknown or already exhausted is not an error: it is logged and reported
// as false.
func (s *Scheduler) Cancel(id ActionID) bool {
	a, ok := s.live[id]
	if !ok {
		s.logger.Warn("cancel of unknown scheduled action", "action", id)
		return false
	}
	a.calls = 0
	a.fn = noop
	delete(s.live, id)
	return true
}

// RunDue fires every action with a fire time at or before now. An action
// that fell behind catches up by firing once per missed interval. Actions
// scheduled by callbacks wait for the next call. It returns the number of
// callbacks run.
func (s *Scheduler) RunDue(now time.Time) int {
	var due []*action
	for s.queue.Len() > 0 && !s.queue[0].next.After(now) {
		due = append(due, heap.Pop(&s.queue).(*action))
	}

	fired := 0
	for _, a := range due {
		for a.calls != 0 && !a.next.After(now) {
			if a.calls > 0 {
				a.calls--
			}
			a.next = a.next.Add(a.interval)
			fn := a.fn
			fn()
			fired++
		}
		if a.calls == 0 {
			if s.live[a.id] == a {
				delete(s.live, a.id)
			}
			continue
		}
		heap.Push(&s.queue, a)
	}
	return fired
}

// Pending returns the number of actions that can still fire.
func (s *Scheduler) Pending() int {
	return len(s.live)
}

// NextFire reports when id is due next.
func (s *Scheduler) NextFire(id ActionID) (time.Time, bool) {
	a, ok := s.live[id]
	if !ok {
		return time.Time{}, false
	}
	return a.next, true
}

type actionQueue []*action

func (q actionQueue) Len() int { return len(q) }

func (q actionQueue) Less(i, j int) bool {
	if q[i].next.Equal(q[j].next) {
		return q[i].id < q[j].id
	}
	return q[i].next.Before(q[j].next)
}

func (q actionQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *actionQueue) Push(x any) {
	a := x.(*action)
	a.index = len(*q)
	*q = append(*q, a)
}

func (q *actionQueue) Pop() any {
	old := *q
	n := len(old)
	a := old[n-1]
	old[n-1] = nil
	a.index = -1
	*q = old[:n-1]
	return a
}
