package core

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/signalsfoundry/orbit-kinematics/kb"
)

var (
	// ErrUnknownSatellite is returned when a graph query names a satellite
	// that is not a node.
	ErrUnknownSatellite = errors.New("unknown satellite")

	// ErrNoPath is returned when two satellites are not connected.
	ErrNoPath = errors.New("no path")
)

// Link is an undirected edge between two satellites, A < B.
type Link struct {
	A, B    int
	LengthM float64
}

// ConnectionGraph is the undirected link topology at one instant. Nodes are
// satellite IDs and edge weights are link lengths in metres.
type ConnectionGraph struct {
	g *simple.WeightedUndirectedGraph
}

// NewConnectionGraph returns an empty graph.
func NewConnectionGraph() *ConnectionGraph {
	return &ConnectionGraph{g: simple.NewWeightedUndirectedGraph(0, math.Inf(1))}
}

// AddSatellite adds id as an isolated node if absent.
func (cg *ConnectionGraph) AddSatellite(id int) {
	if cg.g.Node(int64(id)) == nil {
		cg.g.AddNode(simple.Node(id))
	}
}

// AddLink sets an undirected link between a and b, adding missing nodes.
// Self links are ignored; re-adding a link replaces its length.
func (cg *ConnectionGraph) AddLink(a, b int, length float64) {
	if a == b {
		cg.AddSatellite(a)
		return
	}
	cg.g.SetWeightedEdge(cg.g.NewWeightedEdge(simple.Node(a), simple.Node(b), length))
}

// HasLink reports whether a and b are linked.
func (cg *ConnectionGraph) HasLink(a, b int) bool {
	return cg.g.HasEdgeBetween(int64(a), int64(b))
}

// Length returns the length of the a–b link.
func (cg *ConnectionGraph) Length(a, b int) (float64, bool) {
	if !cg.HasLink(a, b) {
		return 0, false
	}
	w, _ := cg.g.Weight(int64(a), int64(b))
	return w, true
}

// Neighbors returns the sorted IDs linked to id.
func (cg *ConnectionGraph) Neighbors(id int) []int {
	if cg.g.Node(int64(id)) == nil {
		return nil
	}
	ids := idsOf(cg.g.From(int64(id)))
	slices.Sort(ids)
	return ids
}

// Satellites returns the sorted node IDs.
func (cg *ConnectionGraph) Satellites() []int {
	ids := idsOf(cg.g.Nodes())
	slices.Sort(ids)
	return ids
}

// Links returns every link ordered by (A, B).
func (cg *ConnectionGraph) Links() []Link {
	var links []Link
	edges := cg.g.WeightedEdges()
	for edges.Next() {
		e := edges.WeightedEdge()
		a, b := int(e.From().ID()), int(e.To().ID())
		if a > b {
			a, b = b, a
		}
		links = append(links, Link{A: a, B: b, LengthM: e.Weight()})
	}
	slices.SortFunc(links, func(x, y Link) int {
		if x.A != y.A {
			return x.A - y.A
		}
		return x.B - y.B
	})
	return links
}

// LinkCount returns the number of undirected links.
func (cg *ConnectionGraph) LinkCount() int {
	return cg.g.WeightedEdges().Len()
}

// ShortestPath returns the minimum total-length route from one satellite to
// another, including both endpoints.
func (cg *ConnectionGraph) ShortestPath(from, to int) ([]int, float64, error) {
	for _, id := range [2]int{from, to} {
		if cg.g.Node(int64(id)) == nil {
			return nil, 0, fmt.Errorf("satellite %d: %w", id, ErrUnknownSatellite)
		}
	}
	shortest := path.DijkstraFrom(simple.Node(from), cg.g)
	nodes, weight := shortest.To(int64(to))
	if len(nodes) == 0 {
		return nil, 0, fmt.Errorf("%d -> %d: %w", from, to, ErrNoPath)
	}
	route := make([]int, len(nodes))
	for i, n := range nodes {
		route[i] = int(n.ID())
	}
	return route, weight, nil
}

func idsOf(it graph.Nodes) []int {
	ids := make([]int, 0, max(it.Len(), 0))
	for it.Next() {
		ids = append(ids, int(it.Node().ID()))
	}
	return ids
}

func sortKeys(keys []kb.LinkKey) {
	slices.SortFunc(keys, func(x, y kb.LinkKey) int {
		if x.A != y.A {
			return x.A - y.A
		}
		return x.B - y.B
	})
}
