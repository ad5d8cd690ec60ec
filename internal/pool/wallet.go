package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrPoolClosed = errors.New("wallet pool is closed")
	// ErrNotQueued means the caller gave up before the job was queued, so
	// the job never runs.
	ErrNotQueued = errors.New("job was not queued")
)

type walletTask struct {
	ctx  context.Context
	run  func(ctx context.Context) error
	done chan error
}

// WalletPool runs jobs one at a time per wallet. Each wallet gets its own
// queue and worker, so different wallets proceed in parallel.
type WalletPool struct {
	mu        sync.RWMutex
	queues    map[string]chan *walletTask
	queueSize int
	closed    bool
	wg        sync.WaitGroup
}

func NewWalletPool(queueSize int) *WalletPool {
	if queueSize <= 0 {
		queueSize = 1
	}

	return &WalletPool{
		queues:    make(map[string]chan *walletTask),
		queueSize: queueSize,
	}
}

// Do queues job on the wallet's worker and waits for it. If ctx ends first
// Do returns ctx.Err(); a queued job still runs on a detached context and
// its result is dropped. When ctx ends before the job could be queued the
// error also matches ErrNotQueued.
func (p *WalletPool) Do(ctx context.Context, wallet string, job func(ctx context.Context) error) error {
	task := &walletTask{
		ctx:  context.WithoutCancel(ctx),
		run:  job,
		done: make(chan error, 1),
	}

	if err := p.enqueue(ctx, wallet, task); err != nil {
		return err
	}

	select {
	case err := <-task.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *WalletPool) enqueue(ctx context.Context, wallet string, task *walletTask) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrPoolClosed
	}

	ch, ok := p.queues[wallet]
	p.mu.RUnlock()

	if !ok {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return ErrPoolClosed
		}
		if ch, ok = p.queues[wallet]; !ok {
			ch = make(chan *walletTask, p.queueSize)
			p.queues[wallet] = ch
			p.wg.Add(1)
			go p.worker(ch)
		}
		p.mu.Unlock()
	}

	// Holding the read lock keeps Close from closing ch under the send.
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case ch <- task:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrNotQueued, ctx.Err())
	}
}

func (p *WalletPool) worker(ch chan *walletTask) {
	defer p.wg.Done()
	for task := range ch {
		task.done <- runTask(task)
	}
}

func runTask(task *walletTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("wallet job panicked: %v", r)
		}
	}()

	return task.run(task.ctx)
}

// Close stops accepting jobs and waits for queued ones to finish.
func (p *WalletPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, ch := range p.queues {
		close(ch)
	}
	p.mu.Unlock()

	p.wg.Wait()
}
