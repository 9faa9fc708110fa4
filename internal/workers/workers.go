package workers

// Workers aggregates the gateway's background workers.
type Workers struct {
	workers []Worker
}

// NewWorkers bundles the given workers into one runner.
func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run starts every worker in registration order.
func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}

// Stop signals every worker to finish.
func (w *Workers) Stop() {
	for _, worker := range w.workers {
		worker.Stop()
	}
}
