package connectivitytest

import "sync"

// ManualExecutor holds tasks until Run is called.
type ManualExecutor struct {
	mu    sync.Mutex
	tasks []func()
}

func (e *ManualExecutor) Execute(task func()) {
	e.mu.Lock()
	e.tasks = append(e.tasks, task)
	e.mu.Unlock()
}

func (e *ManualExecutor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

// Run executes and discards every held task, returning how many ran.
func (e *ManualExecutor) Run() int {
	e.mu.Lock()
	tasks := e.tasks
	e.tasks = nil
	e.mu.Unlock()
	for _, task := range tasks {
		task()
	}
	return len(tasks)
}
