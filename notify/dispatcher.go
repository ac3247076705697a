package notify

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type job struct {
	to      string
	subject string
	body    string
}

// Dispatcher fans notification jobs out to background workers. When the
// buffer is saturated the send happens inline so a status-change mail is
// never dropped silently; delivery failures are logged at error level and do
// not affect the surrounding update.
type Dispatcher struct {
	notifier Notifier
	logger   *log.Logger
	timeout  time.Duration

	jobs chan job
	wg   sync.WaitGroup
	once sync.Once
}

// NewDispatcher starts workers draining the job buffer.
func NewDispatcher(notifier Notifier, logger *log.Logger, workers, buffer int, timeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	if buffer <= 0 {
		buffer = 256
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	d := &Dispatcher{
		notifier: notifier,
		logger:   logger,
		timeout:  timeout,
		jobs:     make(chan job, buffer),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.send(j)
	}
}

func (d *Dispatcher) send(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.notifier.Notify(ctx, j.to, j.subject, j.body); err != nil {
		d.logger.Errorf("notification failed, to: %s, subject: %q, err: %v", j.to, j.subject, err)
	}
}

// Dispatch hands the message to a worker, falling back to an inline send when
// the buffer is full.
func (d *Dispatcher) Dispatch(to, subject, body string) {
	j := job{to: to, subject: subject, body: body}
	select {
	case d.jobs <- j:
	default:
		d.logger.Warn("notification buffer saturated; sending inline")
		d.send(j)
	}
}

// Close stops the workers after draining queued jobs. Intended for tests and
// shutdown paths.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.jobs)
	})
	d.wg.Wait()
}
