package sim

import (
	"runtime"
	"sync"
)

// workChunk is a contiguous index range handed to one worker.
type workChunk struct {
	start, end int
	fn         func(worker, i0, i1 int)
}

// Fleet is a persistent pool of worker goroutines. Run splits an index range
// into one static chunk per worker and blocks until all of them report done,
// so everything a stage writes is visible to the next stage.
type Fleet struct {
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// NewFleet creates a fleet of the given size; workers <= 0 uses GOMAXPROCS.
// Goroutines are started on the first Run.
func NewFleet(workers int) *Fleet {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Fleet{numWorkers: workers}
}

// Workers returns the number of workers.
func (f *Fleet) Workers() int { return f.numWorkers }

// Start launches the worker goroutines.
func (f *Fleet) Start() {
	if f.running {
		return
	}

	f.workChan = make(chan workChunk, f.numWorkers)
	f.doneChan = make(chan struct{}, f.numWorkers)
	f.stopChan = make(chan struct{})
	f.running = true

	for i := 0; i < f.numWorkers; i++ {
		f.wg.Add(1)
		go f.worker(i)
	}
}

// Stop signals all workers to exit and waits for them.
func (f *Fleet) Stop() {
	if !f.running {
		return
	}

	close(f.stopChan)
	f.wg.Wait()
	close(f.workChan)
	close(f.doneChan)
	f.running = false
}

func (f *Fleet) worker(workerID int) {
	defer f.wg.Done()

	for {
		select {
		case <-f.stopChan:
			return
		case chunk, ok := <-f.workChan:
			if !ok {
				return
			}
			chunk.fn(workerID, chunk.start, chunk.end)
			f.doneChan <- struct{}{}
		}
	}
}

// Run executes fn over [0, n) in chunks of (n+W-1)/W and waits for all of them.
// Workers receive chunks in dispatch order, but a chunk is not pinned to the
// worker with the same index; fn gets the id of the worker that runs it.
func (f *Fleet) Run(n int, fn func(worker, i0, i1 int)) {
	if n <= 0 {
		return
	}
	if !f.running {
		f.Start()
	}

	chunkSize := (n + f.numWorkers - 1) / f.numWorkers

	chunksDispatched := 0
	for w := 0; w < f.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		f.workChan <- workChunk{start: start, end: end, fn: fn}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-f.doneChan
	}
}
