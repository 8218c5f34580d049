package telegram

import (
	"context"
	"log"
	"sync"
)

// MessageHandler answers one incoming message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg IncomingMessage) error
}

// worker is a single member of the message pool.
//
// Lifecycle:
//  1. Start: listen on the jobs channel
//  2. Process: run the handler for each message
//  3. Stop: exit when the jobs channel is closed
type worker struct {
	id      int
	jobs    <-chan IncomingMessage
	ctx     context.Context
	handler MessageHandler
	wg      *sync.WaitGroup
}

// WorkerPool answers incoming messages concurrently.
//
// Configuration:
//   - Worker count: BOT_WORKERS (default: 4)
//   - Job buffer: 100 (update loop rarely blocks on Submit)
type WorkerPool struct {
	jobs        chan IncomingMessage
	wg          sync.WaitGroup
	workerCount int
	closeOnce   sync.Once
}

// NewWorkerPool starts workerCount workers running handler.
func NewWorkerPool(ctx context.Context, handler MessageHandler, workerCount int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	log.Printf("  → Creating bot worker pool with %d workers...", workerCount)

	pool := &WorkerPool{
		jobs:        make(chan IncomingMessage, 100),
		workerCount: workerCount,
	}

	for i := 0; i < workerCount; i++ {
		w := &worker{
			id:      i + 1,
			jobs:    pool.jobs,
			ctx:     ctx,
			handler: handler,
			wg:      &pool.wg,
		}
		pool.wg.Add(1)
		go w.start()
	}

	log.Printf("  ✓ Bot worker pool started with %d workers", workerCount)
	return pool
}

// Submit queues a message. Blocks when the buffer is full.
func (p *WorkerPool) Submit(msg IncomingMessage) {
	p.jobs <- msg
}

// Close stops accepting messages and waits for workers to drain the queue.
func (p *WorkerPool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
		p.wg.Wait()
	})
}

func (w *worker) start() {
	defer w.wg.Done()

	for msg := range w.jobs {
		if err := w.handler.HandleMessage(w.ctx, msg); err != nil {
			log.Printf("  ⚠️  [Worker %d] Failed to answer message %d: %v", w.id, msg.MessageID, err)
		}
	}
}
