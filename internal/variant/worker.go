package variant

import (
	"sync"

	"github.com/0x6d61/tampergen/internal/tamper"
)

// job is one catalog entry waiting to be applied.
type job struct {
	index  int
	tamper tamper.Tamper
	seed   int64
}

// workerPool applies catalog entries concurrently. Each worker writes only
// to its job's slot in the outcomes slice, so no result locking is needed.
type workerPool struct {
	workers int
	jobs    chan job
	wg      sync.WaitGroup
}

// newWorkerPool creates a pool with the given number of workers.
// The jobs channel is buffered at workers*2 to allow some pipelining.
func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = 1
	}
	return &workerPool{
		workers: workers,
		jobs:    make(chan job, workers*2),
	}
}

// start launches all worker goroutines.
func (p *workerPool) start(payload string, outcomes []outcome) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(payload, outcomes)
	}
}

func (p *workerPool) worker(payload string, outcomes []outcome) {
	defer p.wg.Done()
	for j := range p.jobs {
		outcomes[j.index] = applyOne(j.tamper, payload, j.seed)
	}
}

// submit adds a job to the queue. It blocks if the jobs channel is full.
func (p *workerPool) submit(j job) {
	p.jobs <- j
}

// close signals that no more jobs will be submitted and waits for all
// workers to finish.
func (p *workerPool) close() {
	close(p.jobs)
	p.wg.Wait()
}
