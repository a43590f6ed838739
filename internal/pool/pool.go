package pool

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Job is one unit of work, typically a single connection's request cycle.
type Job func()

// Pool runs jobs on a fixed set of long-lived workers fed by a FIFO queue.
// The pool size never changes after construction; a saturated pool simply
// queues further jobs.
type Pool struct {
	jobs chan Job
	wg   sync.WaitGroup
}

const queueDepth = 64

// New starts a pool with n workers.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{jobs: make(chan Job, queueDepth)}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.run(id, job)
	}
}

// run executes a single job, keeping the worker alive if it panics.
func (p *Pool) run(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{"worker": id, "panic": r}).Error("job panicked")
		}
	}()
	job()
}

// Submit enqueues a job. It blocks only while the queue is full.
func (p *Pool) Submit(job Job) {
	p.jobs <- job
}

// Shutdown stops intake and waits for all in-flight and queued jobs to
// finish. No job is dropped mid-execution.
func (p *Pool) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
}
