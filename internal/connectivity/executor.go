package connectivity

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/connmon/internal/runtime"
)

// Executor runs listener callbacks on the delivery context.
type Executor interface {
	Execute(task func())
}

// ExecutorFunc adapts a function, such as a UI-thread post, to Executor.
type ExecutorFunc func(task func())

func (f ExecutorFunc) Execute(task func()) { f(task) }

// Synchronous runs every task inline on the calling goroutine.
var Synchronous Executor = ExecutorFunc(func(task func()) { task() })

// SerialExecutor runs tasks one at a time, in submission order, on a single
// goroutine. It stands in for a UI main thread.
type SerialExecutor struct {
	queue *runtime.SubQueue[func()]
	done  chan struct{}
	once  sync.Once
}

func NewSerialExecutor(buffer int) *SerialExecutor {
	e := &SerialExecutor{
		queue: runtime.NewSubQueue[func()](buffer),
		done:  make(chan struct{}),
	}
	go e.loop()
	e.queue.SetPaused(false)
	return e
}

// Execute queues task. Tasks submitted after Close are dropped.
func (e *SerialExecutor) Execute(task func()) {
	if task == nil {
		return
	}
	e.queue.Enqueue(task)
}

// Close stops the executor and waits for its goroutine to exit. Tasks that
// have not reached the delivery buffer are dropped. It must not be called
// from inside a task.
func (e *SerialExecutor) Close() error {
	e.once.Do(func() {
		e.queue.Close()
		<-e.done
	})
	return nil
}

func (e *SerialExecutor) loop() {
	defer close(e.done)
	for task := range e.queue.Chan() {
		runTask(task)
	}
}

func runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Listener callback panicked")
		}
	}()
	task()
}
