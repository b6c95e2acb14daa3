package router

import "sync"

// Queue runs work per key. Runs for the same key never overlap: work submitted while a key
// is busy is coalesced into a single follow-up run of the latest submission.
// Distinct keys run concurrently.
type Queue struct {
	mu    sync.Mutex
	lanes map[string]*lane
	wg    sync.WaitGroup
}

type lane struct {
	pending bool
	next    func()
}

// NewQueue creates an idle Queue.
func NewQueue() *Queue {
	return &Queue{lanes: make(map[string]*lane)}
}

// Enqueue schedules fn for key.
func (q *Queue) Enqueue(key string, fn func()) {
	q.mu.Lock()
	if l, busy := q.lanes[key]; busy {
		l.pending = true
		l.next = fn
		q.mu.Unlock()
		return
	}
	q.lanes[key] = &lane{}
	q.wg.Add(1)
	q.mu.Unlock()

	go q.run(key, fn)
}

func (q *Queue) run(key string, fn func()) {
	defer q.wg.Done()

	for {
		fn()

		q.mu.Lock()
		l := q.lanes[key]
		if !l.pending {
			delete(q.lanes, key)
			q.mu.Unlock()
			return
		}
		fn = l.next
		l.pending = false
		l.next = nil
		q.mu.Unlock()
	}
}

// Busy reports whether work for key is running.
func (q *Queue) Busy(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.lanes[key]
	return ok
}

// Wait blocks until every lane is idle.
func (q *Queue) Wait() {
	q.wg.Wait()
}
