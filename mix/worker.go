package mix

import (
	"log"
	"sync"
	"sync/atomic"
)

// WorkerState describes where a channel's worker goroutine is in its
// lifecycle.
type WorkerState int32

const (
	// WorkerIdle means the worker is waiting for the next frame dispatch.
	WorkerIdle WorkerState = iota
	// WorkerRunning means the worker is mid frame-advance.
	WorkerRunning
	// WorkerTerminated means the worker has exited; no further frames may be
	// dispatched to it.
	WorkerTerminated
)

var workerCount int64

// worker is the dedicated goroutine that advances one channel off the
// driving loop. The request side (mu/cond, workReady, deltaMs) and the
// completion side (doneMu/doneCond, workDone) use separate locks so a fast
// worker can never signal completion before the driver starts waiting for
// it.
type worker struct {
	channel *Channel
	id      int64

	mu          sync.Mutex
	cond        *sync.Cond
	workReady   bool
	interrupted bool
	deltaMs     float64

	doneMu   sync.Mutex
	doneCond *sync.Cond
	workDone bool

	state int32
}

func newWorker(c *Channel) *worker {
	w := new(worker)
	w.channel = c
	w.id = atomic.AddInt64(&workerCount, 1)
	w.cond = sync.NewCond(&w.mu)
	w.doneCond = sync.NewCond(&w.doneMu)
	go w.run()
	return w
}

func (w *worker) run() {
	log.Printf("Channel worker #%d started [%s]", w.id, w.channel.Label())
	for {
		w.mu.Lock()
		for !w.workReady && !w.interrupted {
			w.cond.Wait()
		}
		if w.interrupted {
			w.mu.Unlock()
			break
		}
		w.workReady = false
		deltaMs := w.deltaMs
		w.mu.Unlock()

		atomic.StoreInt32(&w.state, int32(WorkerRunning))
		w.channel.loop(deltaMs)
		atomic.StoreInt32(&w.state, int32(WorkerIdle))

		w.doneMu.Lock()
		w.workDone = true
		w.doneCond.Signal()
		w.doneMu.Unlock()
	}
	atomic.StoreInt32(&w.state, int32(WorkerTerminated))
	log.Printf("Channel worker #%d finished [%s]", w.id, w.channel.Label())
}

// dispatch hands the worker a frame delta and wakes it.
func (w *worker) dispatch(deltaMs float64) {
	w.mu.Lock()
	w.deltaMs = deltaMs
	w.workReady = true
	w.cond.Signal()
	w.mu.Unlock()
}

// await blocks until the dispatched frame-advance completes, then clears the
// completion flag for the next frame.
func (w *worker) await() {
	w.doneMu.Lock()
	for !w.workDone {
		w.doneCond.Wait()
	}
	w.workDone = false
	w.doneMu.Unlock()
}

// interrupt asks the worker to exit. It only takes effect while the worker
// is blocked waiting for work; a frame already in flight always finishes.
func (w *worker) interrupt() {
	w.mu.Lock()
	w.interrupted = true
	w.cond.Signal()
	w.mu.Unlock()
}

// State reports the worker's lifecycle state.
func (w *worker) State() WorkerState {
	return WorkerState(atomic.LoadInt32(&w.state))
}
