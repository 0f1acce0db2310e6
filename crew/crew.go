// Package crew implements the worker-pool lifecycle bound to a router:
// launching one goroutine per port, a coordinator that watches for
// quiescence and dismisses the crew, and joining to collect each
// worker's return value, per spec.md §2 "Worker crew" and the data-flow
// summary in §1.
package crew

import (
	"sync"

	"github.com/flowgraph/dagflow/router"
)

// Launch starts one goroutine per port in r, each running worker(self)
// to completion, and a coordinator goroutine that waits for pool-wide
// quiescence and then dismisses every port so workers blocked in recv
// wake up and return. It blocks until every worker goroutine has
// returned, then yields their results in port order — the "joiners
// that reduce worker results" step of an operation.
func Launch(r *router.Router, worker func(self int) any) []any {
	n := r.Lanes()
	results := make([]any, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = worker(i)
		}(i)
	}

	go func() {
		r.AwaitQuiescence()
		r.Dismiss()
	}()

	wg.Wait()
	return results
}
