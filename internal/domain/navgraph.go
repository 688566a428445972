package domain

import (
	"fmt"
	"math"
	"sort"
)

// TwinTolerance is the distance under which two mesh vertices are treated as one.
const TwinTolerance = 0.01

// NavGraph is the walkable surface of a loaded level. It is built once and
// never mutated afterwards.
type NavGraph struct {
	vertices  []Vec3
	faces     [][3]int
	neighbors [][]int
}

// NewNavGraph builds a graph from a triangle list. indices holds three vertex
// indices per face. Vertices closer than TwinTolerance are merged so that
// faces emitted with duplicated corners still share edges.
func NewNavGraph(vertices []Vec3, indices []int) (*NavGraph, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("navmesh has %d indices, want a multiple of 3", len(indices))
	}
	for _, idx := range indices {
		if idx < 0 || idx >= len(vertices) {
			return nil, fmt.Errorf("navmesh index %d out of range [0,%d)", idx, len(vertices))
		}
	}

	remap, merged := mergeTwins(vertices, TwinTolerance)

	graph := &NavGraph{
		vertices:  merged,
		faces:     make([][3]int, 0, len(indices)/3),
		neighbors: make([][]int, len(merged)),
	}

	edges := make([]map[int]struct{}, len(merged))
	link := func(a, b int) {
		if a == b {
			return
		}
		if edges[a] == nil {
			edges[a] = map[int]struct{}{}
		}
		edges[a][b] = struct{}{}
	}

	for i := 0; i < len(indices); i += 3 {
		face := [3]int{remap[indices[i]], remap[indices[i+1]], remap[indices[i+2]]}
		if face[0] == face[1] || face[1] == face[2] || face[0] == face[2] {
			continue
		}
		graph.faces = append(graph.faces, face)
		for j := 0; j < 3; j++ {
			a, b := face[j], face[(j+1)%3]
			link(a, b)
			link(b, a)
		}
	}

	for v, set := range edges {
		for n := range set {
			graph.neighbors[v] = append(graph.neighbors[v], n)
		}
		sort.Ints(graph.neighbors[v])
	}

	return graph, nil
}

func mergeTwins(vertices []Vec3, tolerance float64) ([]int, []Vec3) {
	remap := make([]int, len(vertices))
	merged := make([]Vec3, 0, len(vertices))
	buckets := map[[3]int64][]int{}

	cell := func(v Vec3) [3]int64 {
		return [3]int64{
			int64(math.Floor(v.X / tolerance)),
			int64(math.Floor(v.Y / tolerance)),
			int64(math.Floor(v.Z / tolerance)),
		}
	}

	for i, v := range vertices {
		c := cell(v)
		found := -1
	search:
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					for _, candidate := range buckets[[3]int64{c[0] + dx, c[1] + dy, c[2] + dz}] {
						if merged[candidate].Dist(v) < tolerance {
							found = candidate
							break search
						}
					}
				}
			}
		}

		if found < 0 {
			found = len(merged)
			merged = append(merged, v)
			buckets[c] = append(buckets[c], found)
		}
		remap[i] = found
	}

	return remap, merged
}

func (g *NavGraph) VertexCount() int {
	return len(g.vertices)
}

func (g *NavGraph) FaceCount() int {
	return len(g.faces)
}

func (g *NavGraph) Neighbors(i int) []int {
	return append([]int(nil), g.neighbors[i]...)
}

// Nearest returns the vertex closest to p, or -1 for an empty graph.
func (g *NavGraph) Nearest(p Vec3) int {
	best, bestDist := -1, math.Inf(1)
	for i, v := range g.vertices {
		if d := v.Dist(p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
