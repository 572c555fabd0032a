package telegram

import (
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// queue runs jobs of the same key one after another. Each key with pending
// jobs takes a single pool goroutine, so a busy conversation can't use the
// slots of the others.
type queue struct {
	lck     sync.Mutex
	pending map[string][]func()
	pool    *pool.Pool
}

func newQueue(workers int) *queue {
	return &queue{
		pending: map[string][]func(){},
		pool:    pool.New().WithMaxGoroutines(workers),
	}
}

// Go adds the job to the key queue. It only blocks when every pool goroutine
// is busy with another key.
func (q *queue) Go(key string, job func()) {
	q.lck.Lock()
	jobs, running := q.pending[key]
	q.pending[key] = append(jobs, job)
	q.lck.Unlock()
	if running {
		return
	}
	q.pool.Go(func() {
		q.drain(key)
	})
}

func (q *queue) drain(key string) {
	for {
		q.lck.Lock()
		jobs := q.pending[key]
		if len(jobs) == 0 {
			delete(q.pending, key)
			q.lck.Unlock()
			return
		}
		job := jobs[0]
		q.pending[key] = jobs[1:]
		q.lck.Unlock()
		job()
	}
}

// Wait waits for every queued job.
func (q *queue) Wait() {
	q.pool.Wait()
}
