package parallel

import (
	"runtime"
	"sync"
)

// Pool runs submitted functions on a fixed set of goroutines. A pool with a
// single worker runs everything inline on the caller's goroutine.
type Pool struct {
	wg      sync.WaitGroup
	work    chan func()
	workers int
	Close   func()
}

// Start launches numWorkers goroutines, or GOMAXPROCS of them when
// numWorkers < 1. Close must be called once no more work will be submitted.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		workers: numWorkers,
		Close:   func() {},
	}

	if numWorkers > 1 {
		pool.work = make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range pool.work {
					f()
				}
			})
		}

		pool.Close = sync.OnceFunc(func() {
			close(pool.work)
			pool.wg.Wait()
		})
	}

	return pool
}

func (p *Pool) Workers() int {
	return p.workers
}

// Do schedules f, blocking while every worker is busy and the queue is full.
func (p *Pool) Do(f func()) {
	if p.work == nil {
		f()
		return
	}
	p.work <- f
}

// Batch groups work submitted to the pool so it can be waited on without
// closing the pool.
type Batch struct {
	pool *Pool
	wg   sync.WaitGroup
}

func (p *Pool) Batch() *Batch {
	return &Batch{pool: p}
}

func (b *Batch) Go(f func()) {
	b.wg.Add(1)
	b.pool.Do(func() {
		defer b.wg.Done()
		f()
	})
}

// Wait blocks until every function passed to Go has returned.
func (b *Batch) Wait() {
	b.wg.Wait()
}

// Chunks splits [0, n) into at most parts contiguous ranges of near-equal
// length, each at least minSize long unless n itself is smaller.
func Chunks(n, parts, minSize int) [][2]int {
	if n <= 0 {
		return nil
	}
	parts = max(parts, 1)
	minSize = max(minSize, 1)
	parts = min(parts, max(n/minSize, 1))

	out := make([][2]int, 0, parts)
	size, rem := n/parts, n%parts
	start := 0
	for i := range parts {
		end := start + size
		if i < rem {
			end++
		}
		out = append(out, [2]int{start, end})
		start = end
	}
	return out
}
