package graph

// Vertex and Label are opaque, client-owned values — the engine never
// looks inside them except through the traits below. A *graph.Node is
// never itself a Vertex or Label; it is what the engine builds around one.
type Vertex = any
type Label = any

// Hash and Equal let the engine index and deduplicate client values
// without knowing their concrete type. Equal must be consistent with
// Hash: Equal(a, b) implies Hash(a) == Hash(b).
type Hash func(Vertex) uint64
type Equal func(a, b Vertex) bool

// LabelHash and LabelEqual are the edge-label counterparts, used when
// deduplicating outgoing edges and bucketing them by label (§4.4's
// "bucket brigade").
type LabelHash func(Label) uint64
type LabelEqual func(a, b Label) bool

// Destroyer releases ownership of a value the engine no longer needs. It
// is invoked at most once per value the engine took ownership of — on
// both the success and the error/rollback paths.
type Destroyer func(any)

// Sig bundles a graph's ownership and ordering traits: equality/hash for
// vertices and labels, the destructor pair, and an optional vertex cap.
// It corresponds to the spec's "destructor pair + order pair + optional
// vertex cap" bundle carried by every graph.
type Sig struct {
	VertexHash  Hash
	VertexEqual Equal
	LabelHash   LabelHash
	LabelEqual  LabelEqual

	VertexFree Destroyer // nil means the engine does not own vertex values
	LabelFree  Destroyer // nil means the engine does not own label values

	// VertexCap bounds the total number of nodes a built graph may hold.
	// Zero means unlimited. Per spec §6 it is divided equally among the
	// worker crew: VertexCap/lanes per worker, rounded down (see
	// PerWorkerCap), so any remainder goes unused.
	VertexCap uint64
}

// PerWorkerCap returns this signature's vertex cap divided among lanes
// workers, or 0 (unlimited) if VertexCap is 0. Only this per-worker
// share is enforced; there is no separate check of the overall total.
func (s Sig) PerWorkerCap(lanes int) uint64 {
	if s.VertexCap == 0 || lanes <= 0 {
		return 0
	}
	cap := s.VertexCap / uint64(lanes)
	if cap == 0 {
		cap = 1 // never starve a worker entirely
	}
	return cap
}

// FreeVertex invokes the graph's vertex destructor on v, if one was
// supplied and v is non-nil.
func (s Sig) FreeVertex(v Vertex) {
	if s.VertexFree != nil && v != nil {
		s.VertexFree(v)
	}
}

// FreeLabel invokes the graph's label destructor on l, if one was
// supplied and l is non-nil.
func (s Sig) FreeLabel(l Label) {
	if s.LabelFree != nil && l != nil {
		s.LabelFree(l)
	}
}
