// Package workers provides the gateway's background workers and a small
// aggregate for running them together. The only worker today is the expiry
// sweeper, which transitions overdue activation codes and records the
// transition in the audit trail.
package workers

// Worker is implemented by every background worker.
//
// Run starts the worker's execution; implementations spawn their own
// goroutines and return immediately. Stop signals the worker to finish and
// blocks until it has.
type Worker interface {
	Run()
	Stop()
}
