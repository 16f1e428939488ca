package systems

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spaghettifunk/featherwing/engine/containers"
	"github.com/spaghettifunk/featherwing/engine/core"
)

// The max number of job results that can be waiting for Update at once.
const MAX_JOB_RESULTS int = 512

/** @brief Work run on a worker goroutine. Its result is handed to OnComplete. */
type JobStart func(ctx context.Context) (interface{}, error)

/** @brief Completion callbacks, always invoked from JobSystem.Update. */
type JobOnComplete func(result interface{})
type JobOnFailure func(err error)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief Used in log lines only. */
	Name string
	/** @brief Invoked on a worker when the job starts. Required. */
	OnStart JobStart
	/** @brief Invoked on the frame loop when the job succeeded. Optional. */
	OnComplete JobOnComplete
	/** @brief Invoked on the frame loop when the job failed. Optional. */
	OnFailure JobOnFailure
}

type jobResult struct {
	task   JobTask
	result interface{}
	err    error
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	// submitMu guards closed and the send side of jobQueue.
	submitMu sync.RWMutex
	closed   bool

	resultsMu sync.Mutex
	results   *containers.RingQueue[jobResult]
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
		ctx:        ctx,
		cancel:     cancel,
		results:    containers.NewRingQueue[jobResult](MAX_JOB_RESULTS),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				result, err := job.OnStart(js.ctx)
				if err != nil {
					core.LogError("job '%s' failed: %s", job.Name, err.Error())
				}
				js.storeResult(jobResult{task: job, result: result, err: err})
			}
		}()
	}
}

// storeResult waits for a free result slot unless the system is shutting down.
func (js *JobSystem) storeResult(r jobResult) {
	for {
		js.resultsMu.Lock()
		err := js.results.Enqueue(r)
		js.resultsMu.Unlock()
		if err == nil {
			return
		}
		select {
		case <-js.ctx.Done():
			core.LogWarn("dropping result of job '%s' on shutdown", r.task.Name)
			return
		case <-time.After(time.Millisecond):
		}
	}
}

/**
 * @brief Shuts the job system down. Queued jobs still run; their results
 * are discarded.
 */
func (js *JobSystem) Shutdown() error {
	js.submitMu.Lock()
	if js.closed {
		js.submitMu.Unlock()
		return core.ErrAlreadyShutdown
	}
	js.closed = true
	close(js.jobQueue)
	js.submitMu.Unlock()

	js.cancel()
	js.wg.Wait()
	return nil
}

/**
 * @brief Updates the job system. Should happen once an update cycle, on the
 * goroutine that owns the state the callbacks touch.
 * @return The number of results delivered.
 */
func (js *JobSystem) Update() int {
	delivered := 0
	for {
		js.resultsMu.Lock()
		r, err := js.results.Dequeue()
		js.resultsMu.Unlock()
		if err != nil {
			return delivered
		}
		if r.err != nil {
			if r.task.OnFailure != nil {
				r.task.OnFailure(r.err)
			}
		} else if r.task.OnComplete != nil {
			r.task.OnComplete(r.result)
		}
		delivered++
	}
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the job queue is full.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	if jt.OnStart == nil {
		return fmt.Errorf("job '%s' has no entry point", jt.Name)
	}
	js.submitMu.RLock()
	defer js.submitMu.RUnlock()
	if js.closed {
		return core.ErrAlreadyShutdown
	}
	js.jobQueue <- jt
	return nil
}
