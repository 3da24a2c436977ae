package hashpool

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "civicreport/internal/errors"
)

// ErrPoolClosed fails tasks submitted after Close or still queued when it
// ran. It matches apperrors.ErrWorkerFailure.
var ErrPoolClosed = fmt.Errorf("hash pool closed: %w", apperrors.ErrWorkerFailure)

type taskKind int

const (
	kindHash taskKind = iota
	kindVerify
)

func (k taskKind) String() string {
	if k == kindVerify {
		return "verify"
	}
	return "hash"
}

type task struct {
	id        uuid.UUID
	kind      taskKind
	digest    string
	plaintext string
}

type reply struct {
	id     uuid.UUID
	digest string
	match  bool
	err    error
}

type resolver func(reply)

// Option configures a Pool.
type Option func(*Pool)

// WithWorkers sets the number of worker goroutines. Zero runs every task on
// the submitting goroutine through the same pending table.
func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n >= 0 {
			p.workers = n
		}
	}
}

// WithLogger sets the logger used for worker failures and stray replies.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pool) {
		p.log = log
	}
}

// Pool runs password hashing and verification on a fixed set of workers and
// correlates every reply to its caller by task id.
type Pool struct {
	hasher  Hasher
	workers int
	log     zerolog.Logger

	mu      sync.Mutex
	pending map[uuid.UUID]resolver
	closed  bool

	submit  chan task
	work    chan task
	replies chan reply
	done    chan struct{}

	wg        sync.WaitGroup
	replyWG   sync.WaitGroup
	closeOnce sync.Once
}

// New starts a pool around hasher. It defaults to one worker.
func New(hasher Hasher, opts ...Option) *Pool {
	p := &Pool{
		hasher:  hasher,
		workers: 1,
		log:     zerolog.Nop(),
		pending: make(map[uuid.UUID]resolver),
		submit:  make(chan task),
		work:    make(chan task),
		replies: make(chan reply),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With().Str("component", "hash_pool").Logger()

	if p.workers == 0 {
		return p
	}

	p.replyWG.Add(1)
	go p.collect()

	p.wg.Add(1 + p.workers)
	go p.dispatch()
	for i := 0; i < p.workers; i++ {
		go p.runWorker(i)
	}

	return p
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int { return p.workers }

// Pending returns the number of tasks awaiting a reply.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Hash submits plaintext for hashing.
func (p *Pool) Hash(plaintext string) *Future[string] {
	f := newFuture[string]()
	p.enqueue(task{id: f.id, kind: kindHash, plaintext: plaintext}, func(r reply) {
		f.complete(r.digest, r.err)
	})
	return f
}

// Verify submits a comparison of plaintext against digest.
func (p *Pool) Verify(digest, plaintext string) *Future[bool] {
	f := newFuture[bool]()
	p.enqueue(task{id: f.id, kind: kindVerify, digest: digest, plaintext: plaintext}, func(r reply) {
		f.complete(r.match, r.err)
	})
	return f
}

// HashPassword hashes plaintext and waits for the digest.
func (p *Pool) HashPassword(ctx context.Context, plaintext string) (string, error) {
	return p.Hash(plaintext).Wait(ctx)
}

// VerifyPassword compares plaintext against digest and waits for the result.
func (p *Pool) VerifyPassword(ctx context.Context, digest, plaintext string) (bool, error) {
	return p.Verify(digest, plaintext).Wait(ctx)
}

// Close stops intake, fails queued and unresolved tasks with ErrPoolClosed
// and waits for in-flight work to finish. It is safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		close(p.done)
		p.wg.Wait()
		close(p.replies)
		p.replyWG.Wait()

		p.mu.Lock()
		stranded := p.pending
		p.pending = make(map[uuid.UUID]resolver)
		p.mu.Unlock()

		for id, res := range stranded {
			res(reply{id: id, err: ErrPoolClosed})
		}
		if len(stranded) > 0 {
			p.log.Warn().Int("tasks", len(stranded)).Msg("failed unresolved tasks on close")
		}
	})
}

func (p *Pool) enqueue(t task, res resolver) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		res(reply{id: t.id, err: ErrPoolClosed})
		return
	}
	p.pending[t.id] = res
	p.mu.Unlock()

	if p.workers == 0 {
		p.resolve(p.execute(t))
		return
	}

	select {
	case p.submit <- t:
	case <-p.done:
		p.resolve(reply{id: t.id, err: ErrPoolClosed})
	}
}

// dispatch owns the FIFO queue between submitters and workers.
func (p *Pool) dispatch() {
	defer p.wg.Done()
	defer close(p.work)

	var queue []task
	for {
		var (
			out  chan task
			next task
		)
		if len(queue) > 0 {
			out = p.work
			next = queue[0]
		}

		select {
		case t := <-p.submit:
			queue = append(queue, t)
		case out <- next:
			queue[0] = task{}
			queue = queue[1:]
		case <-p.done:
			for _, t := range queue {
				p.replies <- reply{id: t.id, err: ErrPoolClosed}
			}
			return
		}
	}
}

func (p *Pool) runWorker(n int) {
	defer p.wg.Done()
	for t := range p.work {
		p.replies <- p.execute(t)
	}
	p.log.Debug().Int("worker", n).Msg("worker stopped")
}

// collect is the single reply path: it removes the pending entry and
// completes the caller's future.
func (p *Pool) collect() {
	defer p.replyWG.Done()
	for r := range p.replies {
		if !p.resolve(r) {
			p.log.Warn().Str("task_id", r.id.String()).Msg("reply for unknown task")
		}
	}
}

func (p *Pool) resolve(r reply) bool {
	p.mu.Lock()
	res, ok := p.pending[r.id]
	if ok {
		delete(p.pending, r.id)
	}
	p.mu.Unlock()

	if !ok {
		return false
	}
	res(r)
	return true
}

// execute runs one task. A panic fails only that task.
func (p *Pool) execute(t task) (r reply) {
	r.id = t.id
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error().Str("task_id", t.id.String()).Str("kind", t.kind.String()).
				Interface("panic", rec).Msg("hash worker panicked")
			r = reply{id: t.id, err: fmt.Errorf("%s task panicked: %w", t.kind, apperrors.ErrWorkerFailure)}
		}
	}()

	var err error
	switch t.kind {
	case kindHash:
		r.digest, err = p.hasher.Hash(t.plaintext)
	case kindVerify:
		r.match, err = p.hasher.Verify(t.digest, t.plaintext)
	}
	if err != nil {
		p.log.Error().Err(err).Str("task_id", t.id.String()).Str("kind", t.kind.String()).Msg("hash task failed")
		r = reply{id: t.id, err: fmt.Errorf("%s task: %w: %w", t.kind, apperrors.ErrWorkerFailure, err)}
	}
	return r
}
