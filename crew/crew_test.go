package crew

import (
	"testing"

	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/router"
)

func TestLaunchJoinsAllWorkersInOrder(t *testing.T) {
	r := router.New(4, graph.Sig{}, nil)

	results := Launch(r, func(self int) any {
		// each worker immediately blocks with no work of its own; the
		// coordinator's quiescence detection will wake and dismiss it.
		_, dismissed := r.Suspend(r.Ports[self])
		if !dismissed {
			t.Errorf("worker %d expected dismissal", self)
		}
		return self * 10
	})

	if len(results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(results))
	}
	for i, v := range results {
		if v.(int) != i*10 {
			t.Fatalf("results[%d] = %v, want %d", i, v, i*10)
		}
	}
}
