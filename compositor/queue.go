package compositor

import (
	"context"
	"errors"
	"image"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/cache"
)

// failedCapacity bounds how many failing parameter sets a Queue remembers.
const failedCapacity = 256

// Queue composites slot tiles in the background. Each slot has at most one
// job in flight: a request with different parameters cancels the older job
// and its result is dropped. Finished tiles enter the Compositor cache
// whole, so a later Request for the same parameters is answered at once.
type Queue struct {
	c       *Compositor
	sem     *semaphore.Weighted
	onReady func(slotID string, t *Tile)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	jobs   map[string]*job
	failed *cache.Cache[string, error]
	closed bool
}

type job struct {
	key    string
	cancel context.CancelFunc
}

// NewQueue creates a Queue backed by c.
func NewQueue(c *Compositor, opts ...Option) *Queue {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		c:       c,
		sem:     semaphore.NewWeighted(int64(o.workers)),
		onReady: o.onReady,
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[string]*job),
		failed:  cache.New[string, error](failedCapacity),
	}
}

// Request returns the tile for p when it is cached. Otherwise it schedules
// compositing, superseding any job for slotID with other parameters, and
// reports false: the caller shows a neutral placeholder until OnReady fires.
func (q *Queue) Request(slotID string, p Params, src, maskImg image.Image) (*Tile, bool) {
	key := p.Key()
	q.mu.Lock()
	defer q.mu.Unlock()

	if t, ok := q.c.Lookup(key); ok {
		q.supersede(slotID, "")
		return t, true
	}
	if q.closed || src == nil || q.failed.Contains(key) {
		return nil, false
	}
	if j := q.jobs[slotID]; j != nil && j.key == key {
		return nil, false
	}
	q.supersede(slotID, key)

	ctx, cancel := context.WithCancel(q.ctx)
	j := &job{key: key, cancel: cancel}
	q.jobs[slotID] = j
	q.wg.Add(1)
	go q.run(ctx, slotID, j, p, src, maskImg)
	return nil, false
}

// supersede cancels the job for slotID unless it already computes key.
// q.mu must be held.
func (q *Queue) supersede(slotID, key string) {
	j := q.jobs[slotID]
	if j == nil || j.key == key {
		return
	}
	j.cancel()
	delete(q.jobs, slotID)
	pairkit.Logger().Debug("compositor: superseded tile job", "slot", slotID)
}

func (q *Queue) run(ctx context.Context, slotID string, j *job, p Params, src, maskImg image.Image) {
	defer q.wg.Done()
	defer j.cancel()

	if err := q.sem.Acquire(ctx, 1); err != nil {
		return
	}
	t, err := Composite(ctx, src, maskImg, p)
	q.sem.Release(1)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			pairkit.Logger().Warn("compositor: composite failed", "slot", slotID, "ref", p.ImageRef, "err", err)
			q.failed.Set(j.key, err)
		}
		q.finish(slotID, j)
		return
	}

	q.mu.Lock()
	current := q.jobs[slotID] == j && !q.closed
	if current {
		delete(q.jobs, slotID)
		q.c.store(t)
	}
	q.mu.Unlock()
	if current && q.onReady != nil {
		q.onReady(slotID, t)
	}
}

func (q *Queue) finish(slotID string, j *job) {
	q.mu.Lock()
	if q.jobs[slotID] == j {
		delete(q.jobs, slotID)
	}
	q.mu.Unlock()
}

// Failed returns the error of the last attempt to composite p, if any.
// Failing parameters are not retried until they change.
func (q *Queue) Failed(p Params) error {
	err, _ := q.failed.Peek(p.Key())
	return err
}

// Pending reports whether slotID has a job in flight.
func (q *Queue) Pending(slotID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.jobs[slotID] != nil
}

// Wait blocks until every scheduled job has finished or ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels every job in flight and waits for the workers to exit.
// Results of cancelled jobs are discarded; the cache only ever holds
// complete tiles. Request after Close never schedules work.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	clear(q.jobs)
	q.mu.Unlock()
	q.cancel()
	q.wg.Wait()
}
