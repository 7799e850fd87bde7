// Package edgeplan packs a demand matrix into capacitated vehicle trips
// ("edges") plus a precedence relation between them, grounded on the
// original implementation's edge_plan.rs. Two packing passes are provided:
// PlanHub, which favors short hub-and-spoke chains around an airport
// vertex, and PlanAll, a generic demand-sorted saturated-edge emission plus
// BFS augmenting-path search for the residual demand.
package edgeplan

import (
	"sort"

	"github.com/katalvlaran/logistics/precedence"
	"github.com/katalvlaran/logistics/reporter"
)

// Cargo records that Amount parcels carried by an Edge are destined for Tgt
// (which may differ from the edge's own Tgt when a hub path chains several
// edges together).
type Cargo struct {
	Tgt    int
	Amount int
}

// Edge is one scheduled vehicle trip from Src to Tgt with FreeCap spare
// capacity and a cargo manifest. Stage, when non-nil, restricts the edge to
// a journey-planning stage (see journeyplan); nil means unstaged.
type Edge struct {
	Src, Tgt int
	FreeCap  int
	Cargo    []Cargo
	Stage    *int
}

// Plan is the finished output of a State: the packed edges, the precedence
// relation between them, and the two cost-bound quantities the orchestrator
// needs to report a planning gap.
type Plan struct {
	Edges        []*Edge
	Constraints  *precedence.Precedence
	MinEdgeCount int
	ParcelCount  int
}

// State accumulates edges and precedence constraints while packing a demand
// matrix. Construct with NewState, drive with PlanHub/PlanAll, and extract
// the result with Finish.
type State struct {
	pMat         [][]int
	edges        []*Edge
	constraints  *precedence.Precedence
	freeOutEdges []map[int]struct{} // vertex -> set of edge indices with free capacity
	vertexCount  int
	edgeCap      int
	minEdgeCount int
	parcelCount  int
}

// NewState computes the lower bound on edge count (the max of per-vertex
// ceil-divided out-demand and in-demand) and the total parcel count, then
// returns a State ready for PlanHub/PlanAll.
func NewState(vertexCount, edgeCap int, pMat [][]int) *State {
	minOutEdges := 0
	minInEdges := 0
	parcelCount := 0
	for i := 0; i < vertexCount; i++ {
		outCount := 0
		inCount := 0
		for j := 0; j < vertexCount; j++ {
			if j != i {
				outCount += pMat[i][j]
				inCount += pMat[j][i]
			}
		}
		minOutEdges += ceilDiv(outCount, edgeCap)
		minInEdges += ceilDiv(inCount, edgeCap)
		parcelCount += outCount
	}
	minEdgeCount := minOutEdges
	if minInEdges > minEdgeCount {
		minEdgeCount = minInEdges
	}

	freeOutEdges := make([]map[int]struct{}, vertexCount)
	for i := range freeOutEdges {
		freeOutEdges[i] = make(map[int]struct{})
	}

	return &State{
		pMat:         pMat,
		constraints:  precedence.New(),
		freeOutEdges: freeOutEdges,
		vertexCount:  vertexCount,
		edgeCap:      edgeCap,
		minEdgeCount: minEdgeCount,
		parcelCount:  parcelCount,
	}
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}

	return (a + b - 1) / b
}

// Finish converts the accumulated state into a Plan.
func (s *State) Finish() *Plan {
	return &Plan{
		Edges:        s.edges,
		Constraints:  s.constraints,
		MinEdgeCount: s.minEdgeCount,
		ParcelCount:  s.parcelCount,
	}
}

// hubPath tracks a chain of edges converging on (or diverging from) hub,
// with spare capacity still available to absorb more partial demand.
type hubPath struct {
	vertex  int
	edges   []int
	freeCap int
}

// PlanHub packs edges so that stage-0 edges all point toward hub and
// stage-1 edges all point away from it, then links every stage-0 edge
// before every stage-1 edge in the precedence relation (journeys must
// finish converging on the hub before they may diverge from it again).
//
// Complexity: O(V log V) for the heuristic sort plus O(|stage0|*|stage1|)
// for the cross-stage precedence links (see SPEC_FULL.md's Open Question
// decision on this bound).
func (s *State) PlanHub(hub int, rep reporter.Reporter) {
	stage0Begin := len(s.edges)
	zero, one := 0, 1
	s.planHubDir(hub, true, &zero, rep)
	stage1Begin := len(s.edges)
	s.planHubDir(hub, false, &one, rep)
	stage1End := len(s.edges)

	rep.Reset()
	rep.SetMessage("planning edges (hubward-rimward constraints)")
	rep.SetLength(stage1Begin - stage0Begin)
	for i := stage0Begin; i < stage1Begin; i++ {
		for j := stage1Begin; j < stage1End; j++ {
			if err := s.constraints.AddBefore(i, j); err != nil {
				panic(err)
			}
		}
		rep.Inc(1)
	}
}

func (s *State) planHubDir(hub int, hubward bool, stage *int, rep reporter.Reporter) {
	rep.Reset()
	if hubward {
		rep.SetMessage("planning edges (hubward)")
	} else {
		rep.SetMessage("planning edges (rimward)")
	}

	srcTgt := func(vertex int) (int, int) {
		if hubward {
			return vertex, hub
		}

		return hub, vertex
	}

	vertices := make([]int, 0, s.vertexCount-1)
	for v := 0; v < s.vertexCount; v++ {
		if v != hub {
			vertices = append(vertices, v)
		}
	}
	sort.SliceStable(vertices, func(a, b int) bool {
		src1, tgt1 := srcTgt(vertices[a])
		src2, tgt2 := srcTgt(vertices[b])
		p1 := s.pMat[src1][tgt1] % s.edgeCap
		p2 := s.pMat[src2][tgt2] % s.edgeCap

		return p2 < p1 // descending
	})
	rep.SetLength(len(vertices))

	var hubPaths []hubPath
	for _, vertex := range vertices {
		src, tgt := srcTgt(vertex)
		amount := s.pMat[src][tgt]

		for amount >= s.edgeCap {
			s.addEdge(src, tgt, s.edgeCap, stage)
			amount -= s.edgeCap
		}

		if amount > 0 {
			pathI := -1
			for i := range hubPaths {
				if hubPaths[i].freeCap >= amount {
					pathI = i
					break
				}
			}
			if pathI >= 0 {
				hp := hubPaths[pathI]
				hubPaths = append(hubPaths[:pathI], hubPaths[pathI+1:]...)

				addSrc, addTgt := pathEdgeEndpoints(hubward, vertex, hp.vertex)
				addedIdx := s.addEdge(addSrc, addTgt, 0, stage)

				for _, edgeIdx := range hp.edges {
					s.sendAlongEdge(edgeIdx, tgt, amount)
				}
				s.sendAlongEdge(addedIdx, tgt, amount)

				beforeIdx, afterIdx := addedIdx, hp.edges[len(hp.edges)-1]
				if !hubward {
					beforeIdx, afterIdx = hp.edges[len(hp.edges)-1], addedIdx
				}
				if err := s.constraints.AddBefore(beforeIdx, afterIdx); err != nil {
					panic(err)
				}

				if hp.freeCap > amount {
					hp.vertex = vertex
					hp.edges = append(hp.edges, addedIdx)
					hp.freeCap -= amount
					hubPaths = append(hubPaths, hp)
				}
			} else {
				edgeIdx := s.addEdge(src, tgt, amount, stage)
				hubPaths = append(hubPaths, hubPath{vertex: vertex, edges: []int{edgeIdx}, freeCap: s.edgeCap - amount})
			}
		}

		s.pMat[src][tgt] = 0
		rep.Inc(1)
	}
}

// pathEdgeEndpoints computes the (src, tgt) of the edge that extends a hub
// path from hubPathVertex to vertex, respecting direction.
func pathEdgeEndpoints(hubward bool, vertex, hubPathVertex int) (int, int) {
	if hubward {
		return vertex, hubPathVertex
	}

	return hubPathVertex, vertex
}

// PlanAll packs the remaining (non-hub) demand: fully saturated edges are
// emitted directly, and any leftover partial demand is either sent along an
// existing partial-capacity path (found via BFS, acyclicity-checked against
// the precedence relation already built) or emitted as a new unsaturated
// edge.
func (s *State) PlanAll(rep reporter.Reporter) {
	rep.Reset()
	rep.SetMessage("planning edges")

	type pair struct{ src, tgt int }
	var pairs []pair
	for src := 0; src < s.vertexCount; src++ {
		for tgt := 0; tgt < s.vertexCount; tgt++ {
			if src != tgt && s.pMat[src][tgt] > 0 {
				pairs = append(pairs, pair{src, tgt})
			}
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		p1 := s.pMat[pairs[a].src][pairs[a].tgt] % s.edgeCap
		p2 := s.pMat[pairs[b].src][pairs[b].tgt] % s.edgeCap

		return p2 < p1 // descending
	})

	rep.SetLength(len(pairs))
	for _, pr := range pairs {
		amount := s.pMat[pr.src][pr.tgt]

		for amount >= s.edgeCap {
			s.addEdge(pr.src, pr.tgt, s.edgeCap, nil)
			amount -= s.edgeCap
		}

		if amount > 0 {
			if path := s.findPath(pr.src, pr.tgt, amount); path != nil {
				s.augmentPath(pr.tgt, path, amount)
			} else {
				s.addEdge(pr.src, pr.tgt, amount, nil)
			}
		}

		s.pMat[pr.src][pr.tgt] = 0
		rep.Inc(1)
	}
}

func (s *State) augmentPath(tgt int, path []int, amount int) {
	for idx, edgeIdx := range path {
		if idx > 0 {
			if err := s.constraints.AddBefore(path[idx-1], path[idx]); err != nil {
				panic(err)
			}
		}
		s.sendAlongEdge(edgeIdx, tgt, amount)
	}
}

// addEdge appends a new edge src -> tgt carrying amount parcels (tagged as
// going to tgt) and returns its index.
func (s *State) addEdge(src, tgt, amount int, stage *int) int {
	edgeIdx := len(s.edges)
	s.edges = append(s.edges, &Edge{
		Src:     src,
		Tgt:     tgt,
		FreeCap: s.edgeCap - amount,
		Cargo:   []Cargo{{Tgt: tgt, Amount: amount}},
		Stage:   stage,
	})
	s.constraints.Push()

	if amount < s.edgeCap {
		s.freeOutEdges[src][edgeIdx] = struct{}{}
	}

	return edgeIdx
}

// sendAlongEdge adds amount parcels destined for tgt to the given edge's
// cargo manifest, consuming free capacity.
func (s *State) sendAlongEdge(edgeIdx, tgt, amount int) {
	edge := s.edges[edgeIdx]

	added := false
	for i := range edge.Cargo {
		if edge.Cargo[i].Tgt == tgt {
			edge.Cargo[i].Amount += amount
			added = true
			break
		}
	}
	if !added {
		edge.Cargo = append(edge.Cargo, Cargo{Tgt: tgt, Amount: amount})
	}

	edge.FreeCap -= amount
	if edge.FreeCap == 0 {
		delete(s.freeOutEdges[edge.Src], edgeIdx)
	}
}

// findPath runs a BFS over edges with free capacity, from pathSrc to
// pathTgt, looking for a chain with at least minCap spare capacity
// throughout that does not introduce a precedence cycle. Returns nil if no
// such path exists.
func (s *State) findPath(pathSrc, pathTgt, minCap int) []int {
	const none = -1

	canUseEdge := func(edgesTo []int, vertex, edgeIdx int) bool {
		for {
			prevEdgeIdx := edgesTo[vertex]
			if prevEdgeIdx == none {
				return true
			}
			before, err := s.constraints.IsBefore(edgeIdx, prevEdgeIdx)
			if err != nil {
				panic(err)
			}
			if before {
				return false
			}
			vertex = s.edges[prevEdgeIdx].Src
		}
	}

	currentVertices := []int{pathSrc}
	edgesTo := make([]int, s.vertexCount)
	for i := range edgesTo {
		edgesTo[i] = none
	}

bfs:
	for len(currentVertices) > 0 {
		var nextEdges []int
		for _, vertex := range currentVertices {
			// freeOutEdges[vertex] is a map; iterate a sorted snapshot of its
			// keys so candidates with an equal sort key below resolve the
			// same way on every run instead of depending on Go's randomized
			// map iteration order.
			for _, edgeIdx := range sortedIntSet(s.freeOutEdges[vertex]) {
				edge := s.edges[edgeIdx]
				if edge.Tgt != pathSrc &&
					edgesTo[edge.Tgt] == none &&
					edge.FreeCap >= minCap &&
					canUseEdge(edgesTo, edge.Src, edgeIdx) {
					nextEdges = append(nextEdges, edgeIdx)
				}
			}
		}
		sort.SliceStable(nextEdges, func(a, b int) bool {
			predA, err := s.constraints.CountPredecessors(nextEdges[a])
			if err != nil {
				panic(err)
			}
			predB, err := s.constraints.CountPredecessors(nextEdges[b])
			if err != nil {
				panic(err)
			}
			if predA != predB {
				return predA < predB
			}

			return s.edges[nextEdges[a]].FreeCap > s.edges[nextEdges[b]].FreeCap
		})

		var nextVertices []int
		for _, edgeIdx := range nextEdges {
			nextVertex := s.edges[edgeIdx].Tgt
			if edgesTo[nextVertex] == none {
				edgesTo[nextVertex] = edgeIdx
				if nextVertex == pathTgt {
					break bfs
				}
				nextVertices = append(nextVertices, nextVertex)
			}
		}
		currentVertices = nextVertices
	}

	if edgesTo[pathTgt] == none {
		return nil
	}

	var path []int
	vertex := pathTgt
	for vertex != pathSrc {
		edgeIdx := edgesTo[vertex]
		path = append(path, edgeIdx)
		vertex = s.edges[edgeIdx].Src
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}

// sortedIntSet returns the keys of set in ascending order.
func sortedIntSet(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	return keys
}
