package mailer

import (
	"context"
	"log"
	"sync"
	"time"
)

// Dispatcher runs best-effort jobs after the caller's transaction has
// committed. Failures are logged and never reach the caller.
type Dispatcher struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{timeout: timeout}
}

func (d *Dispatcher) Go(name string, job func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[dispatch] job=%s panic=%v", name, r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		start := time.Now()
		if err := job(ctx); err != nil {
			log.Printf("[dispatch] job=%s stage=fail ms=%d err=%v", name, time.Since(start).Milliseconds(), err)
			return
		}
		log.Printf("[dispatch] job=%s stage=done ms=%d", name, time.Since(start).Milliseconds())
	}()
}

// Wait blocks until every dispatched job has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
