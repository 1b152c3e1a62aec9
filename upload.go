package main

import (
	"sync"

	"github.com/google/uuid"
)

type uploadJob struct {
	id   uuid.UUID
	pos  ChunkPos
	bufs *ChunkBuffers
}

// Uploader feeds extracted chunk buffers to the backend from a fixed pool
// of workers. Each job submits then bakes, so a chunk that made it through
// the queue always ends up meshed.
type Uploader struct {
	backend *Backend
	log     Logger
	jobs    chan uploadJob
	workers sync.WaitGroup
	pending sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewUploader(backend *Backend, workers, depth int, log Logger) *Uploader {
	if workers < 1 {
		workers = 1
	}
	if depth < 0 {
		depth = 0
	}
	u := &Uploader{
		backend: backend,
		log:     log,
		jobs:    make(chan uploadJob, depth),
	}
	for n := 0; n < workers; n++ {
		u.workers.Add(1)
		go u.run()
	}
	return u
}

func (u *Uploader) run() {
	defer u.workers.Done()
	for job := range u.jobs {
		u.backend.SubmitChunk(job.pos, job.bufs)
		u.backend.BakeChunk(job.pos)
		u.log.Debug("Uploaded chunk", job.pos, "("+job.id.String()+")")
		u.pending.Done()
	}
}

// Enqueue hands a chunk to the pool. Blocks once the queue is full, which
// throttles the producer instead of growing unboundedly. After Close the
// chunk is dropped with a warning rather than accepted.
func (u *Uploader) Enqueue(pos ChunkPos, bufs *ChunkBuffers) uuid.UUID {
	id := uuid.New()
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.closed {
		u.log.Warn("Dropped chunk enqueued after shutdown", pos)
		return id
	}
	u.pending.Add(1)
	u.jobs <- uploadJob{id: id, pos: pos, bufs: bufs}
	return id
}

// WaitIdle blocks until every enqueued job has been submitted and baked.
func (u *Uploader) WaitIdle() {
	u.pending.Wait()
}

// Close stops the pool after draining the queue. Safe to call more than
// once; the workers keep draining until the flag is set, so a blocked
// Enqueue always completes before the channel closes.
func (u *Uploader) Close() {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return
	}
	u.closed = true
	u.mu.Unlock()
	close(u.jobs)
	u.workers.Wait()
}
