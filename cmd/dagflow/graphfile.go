// dagflow is a small worked example driving package engine end to end,
// the role purpleidea-mgmt's cli/ package plays for mgmt itself: it
// reads a toy graph description and runs one algebra operation against
// it, printing the result. It is not part of the engine's public API.
package main

import (
	"fmt"
	"hash/fnv"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/flowgraph/dagflow/engine"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/ops"
)

// edgeSpec is one edge in a graphFile, in the same from/to/label shape
// as yamlgraph.Edge in the teacher repo, minus the resource-specific
// Kind/Notify fields this domain has no use for.
type edgeSpec struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Label string `yaml:"label"`
}

// graphFile is the YAML shape cmd/dagflow reads, modelled on
// yamlgraph.GraphConfig: a named graph, its seed vertex, a vertex list,
// and its edge list. The built graph comes from the seed and the edges
// alone; the vertex list is read only by the partition command, to name
// the vertices it looks up with ClassOf.
type graphFile struct {
	Graph    string     `yaml:"graph"`
	Seed     string     `yaml:"seed"`
	Vertices []string   `yaml:"vertices"`
	Edges    []edgeSpec `yaml:"edges"`
}

// loadGraphFile reads and parses path, the way yamlgraph.ParseConfigFromFile
// does for mgmt's own graph YAML, but returning an error instead of
// logging and returning nil — this is a library-adjacent CLI helper,
// not ambient engine code, so an idiomatic error return fits better
// than the teacher's log-and-nil-sentinel pattern.
func loadGraphFile(path string) (*graphFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var gf graphFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if gf.Seed == "" {
		return nil, fmt.Errorf("%s: missing required `seed`", path)
	}
	return &gf, nil
}

// stringSig is the graph.Sig shared by every dagflow subcommand: vertices
// and labels are plain strings, hashed with FNV-1a and compared with ==.
func stringSig() graph.Sig {
	return graph.Sig{
		VertexHash:  hashString,
		VertexEqual: func(a, b graph.Vertex) bool { return a.(string) == b.(string) },
		LabelHash:   hashString,
		LabelEqual:  func(a, b graph.Label) bool { return a.(string) == b.(string) },
	}
}

func hashString(v graph.Vertex) uint64 {
	h := fnv.New64a()
	h.Write([]byte(v.(string)))
	return h.Sum64()
}

// builder turns gf's static edge list into an ops.Builder: a connector
// that looks up a vertex's outgoing edges in a precomputed adjacency
// map, since the CLI's graph is known up front rather than explored
// lazily the way a real client's connector would explore, say, a
// filesystem tree or a dependency resolver's API.
func (gf *graphFile) builder() ops.Builder {
	adj := map[string][]edgeSpec{}
	for _, e := range gf.Edges {
		adj[e.From] = append(adj[e.From], e)
	}
	return ops.Builder{
		Connector: func(ctx *ops.Context, v graph.Vertex) error {
			for _, e := range adj[v.(string)] {
				if err := ctx.Connect(e.Label, e.To); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// build materialises gf as a *graph.Graph via engine.Built, honoring
// lanes (0 means auto-detect, per engine.WithLanes).
func (gf *graphFile) build(lanes int) (*graph.Graph, error) {
	sig := stringSig()
	g, err := engine.Built(sig, gf.Seed, gf.builder(), engine.WithLanes(lanes))
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	return g, nil
}
