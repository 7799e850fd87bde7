// Package journeyplan assigns the edges produced by edgeplan to concrete
// vehicles, respecting both the precedence relation between edges and a
// stage gate, grounded on the original implementation's journey_plan.rs.
package journeyplan

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/logistics/edgeplan"
	"github.com/katalvlaran/logistics/precedence"
	"github.com/katalvlaran/logistics/reporter"
)

// Leg is one hop of a vehicle's journey: either following an edge
// (EdgeIdx != nil) or a deadhead jump (EdgeIdx == nil).
type Leg struct {
	Vehicle int
	Src     int
	Tgt     int
	EdgeIdx *int
}

// Problem is the input to PlanJourneys: the edges to cover, grouped by
// stage via Edge.Stage, their precedence relation, and the vehicles'
// starting vertices.
type Problem struct {
	VertexCount     int
	StageCount      int
	VehicleVertices []int
	Edges           []*edgeplan.Edge
	Constraints     *precedence.Precedence
}

// Plan groups the legs produced for every vehicle by stage.
type Plan struct {
	Legs [][]Leg // [stage] -> legs emitted during that stage, across all vehicles
}

type state struct {
	problem               *Problem
	stage                 int
	vehicleVertices       []int
	availableOutEdges     []map[int]struct{} // vertex -> set of available edge indices
	availableInEdgeCounts []int
	visitedEdges          map[int]struct{}
	legs                  [][]Leg
}

// PlanJourneys greedily extends every vehicle's journey along available
// edges (those whose predecessors are all visited and whose stage matches
// the current one), falling back to a deadhead jump when every vehicle is
// stuck, and advancing the stage once no edge and no jump remain.
//
// Panics if, after the loop terminates, not every edge was visited — that
// indicates an edgeplan bug (an edge that never became available because of
// its stage or its predecessors; jumps let a vehicle reach any vertex), which
// is a program invariant violation rather than bad input.
func PlanJourneys(problem *Problem, rep reporter.Reporter) *Plan {
	rep.Reset()
	rep.SetMessage("planning journeys")

	st := initState(problem)
	vehicleCount := len(problem.VehicleVertices)

	rep.SetLength(len(problem.Edges))

	for {
		for {
			extendedAny := false
			for vehicle := 0; vehicle < vehicleCount; vehicle++ {
				if extendJourney(st, vehicle, rep) {
					extendedAny = true
				}
			}
			if !extendedAny {
				break
			}
		}

		jumpTgt, haveJumpTgt := bestJumpTarget(st)
		if haveJumpTgt {
			jumpVehicle, jumpSrc := bestJumpSource(st, vehicleCount)

			st.legs[st.stage] = append(st.legs[st.stage], Leg{
				Vehicle: jumpVehicle,
				Src:     jumpSrc,
				Tgt:     jumpTgt,
				EdgeIdx: nil,
			})
			st.vehicleVertices[jumpVehicle] = jumpTgt
		} else if st.stage < problem.StageCount {
			nextStage := st.stage + 1
			makeStageAvailable(st, nextStage)
			st.stage = nextStage
		} else {
			break
		}
	}

	if len(st.visitedEdges) != len(problem.Edges) {
		panic(fmt.Sprintf("journeyplan: PlanJourneys: visited %d of %d edges", len(st.visitedEdges), len(problem.Edges)))
	}

	return &Plan{Legs: st.legs}
}

func initState(problem *Problem) *state {
	availableOutEdges := make([]map[int]struct{}, problem.VertexCount)
	for i := range availableOutEdges {
		availableOutEdges[i] = make(map[int]struct{})
	}

	st := &state{
		problem:               problem,
		stage:                 0,
		vehicleVertices:       append([]int(nil), problem.VehicleVertices...),
		availableOutEdges:     availableOutEdges,
		availableInEdgeCounts: make([]int, problem.VertexCount),
		visitedEdges:          make(map[int]struct{}),
		legs:                  make([][]Leg, problem.StageCount),
	}

	for edgeIdx := range problem.Edges {
		if isStageAvailable(st, edgeIdx) && isUnconstrained(st, edgeIdx) {
			addAvailableEdge(st, edgeIdx)
		}
	}

	return st
}

// extendJourney greedily follows available edges with vehicle until it
// reaches a vertex with no outgoing available edge. Returns whether any
// edge was followed.
func extendJourney(st *state, vehicle int, rep reporter.Reporter) bool {
	vertex := st.vehicleVertices[vehicle]
	extended := false

	for {
		edgeIdx, tgt, found := bestOutEdge(st, vertex)
		if !found {
			break
		}

		visitEdge(st, edgeIdx)
		rep.Inc(1)

		st.legs[st.stage] = append(st.legs[st.stage], Leg{
			Vehicle: vehicle,
			Src:     vertex,
			Tgt:     tgt,
			EdgeIdx: &edgeIdx,
		})
		vertex = tgt
		extended = true
	}

	st.vehicleVertices[vehicle] = vertex

	return extended
}

// bestOutEdge picks the available out-edge of vertex whose target has the
// highest available-degree, matching the original's max_by_key heuristic.
// availableOutEdges[vertex] is a map, so candidates are scanned in ascending
// edge-index order (not Go's randomized map iteration order) to keep ties
// resolved the same way on every run.
func bestOutEdge(st *state, vertex int) (edgeIdx, tgt int, found bool) {
	bestDeg := 0
	for _, idx := range sortedIntSet(st.availableOutEdges[vertex]) {
		candidateTgt := st.problem.Edges[idx].Tgt
		deg := availableDeg(st, candidateTgt)
		if !found || deg > bestDeg {
			edgeIdx, tgt, found, bestDeg = idx, candidateTgt, true, deg
		}
	}

	return edgeIdx, tgt, found
}

func bestJumpTarget(st *state) (int, bool) {
	best := 0
	found := false
	bestDeg := 0
	for vertex := 0; vertex < st.problem.VertexCount; vertex++ {
		if len(st.availableOutEdges[vertex]) == 0 {
			continue
		}
		deg := availableDeg(st, vertex)
		if !found || deg > bestDeg {
			best, found, bestDeg = vertex, true, deg
		}
	}

	return best, found
}

func bestJumpSource(st *state, vehicleCount int) (vehicle, vertex int) {
	bestDeg := 0
	found := false
	for v := 0; v < vehicleCount; v++ {
		candidateVertex := st.vehicleVertices[v]
		deg := availableDeg(st, candidateVertex)
		if !found || deg < bestDeg {
			vehicle, vertex, found, bestDeg = v, candidateVertex, true, deg
		}
	}

	return vehicle, vertex
}

// makeStageAvailable unlocks every unconstrained edge tagged with stage.
// Panics if an edge tagged with an earlier stage was never visited — stage
// advancement should only ever happen once every earlier-stage edge is
// done.
func makeStageAvailable(st *state, stage int) {
	for edgeIdx, edge := range st.problem.Edges {
		if edge.Stage == nil {
			continue
		}
		edgeStage := *edge.Stage
		if edgeStage == stage {
			if isUnconstrained(st, edgeIdx) {
				addAvailableEdge(st, edgeIdx)
			}
		} else if edgeStage < stage {
			if _, ok := st.visitedEdges[edgeIdx]; !ok {
				panic(fmt.Sprintf("journeyplan: makeStageAvailable: edge %d (stage %d) not visited before stage %d", edgeIdx, edgeStage, stage))
			}
		}
	}
}

func visitEdge(st *state, edgeIdx int) {
	removeAvailableEdge(st, edgeIdx)
	st.visitedEdges[edgeIdx] = struct{}{}

	successors, err := st.problem.Constraints.Successors(edgeIdx)
	if err != nil {
		panic(err)
	}
	for _, afterIdx := range successors {
		if isStageAvailable(st, afterIdx) && isUnconstrained(st, afterIdx) {
			addAvailableEdge(st, afterIdx)
		}
	}
}

func addAvailableEdge(st *state, edgeIdx int) {
	edge := st.problem.Edges[edgeIdx]
	if _, already := st.availableOutEdges[edge.Src][edgeIdx]; already {
		panic(fmt.Sprintf("journeyplan: addAvailableEdge: edge %d already available", edgeIdx))
	}
	st.availableOutEdges[edge.Src][edgeIdx] = struct{}{}
	st.availableInEdgeCounts[edge.Tgt]++
}

func removeAvailableEdge(st *state, edgeIdx int) {
	edge := st.problem.Edges[edgeIdx]
	if _, present := st.availableOutEdges[edge.Src][edgeIdx]; !present {
		panic(fmt.Sprintf("journeyplan: removeAvailableEdge: edge %d not available", edgeIdx))
	}
	delete(st.availableOutEdges[edge.Src], edgeIdx)
	st.availableInEdgeCounts[edge.Tgt]--
}

// isUnconstrained reports whether every predecessor of edgeIdx has already
// been visited.
func isUnconstrained(st *state, edgeIdx int) bool {
	predecessors, err := st.problem.Constraints.Predecessors(edgeIdx)
	if err != nil {
		panic(err)
	}
	for _, prevIdx := range predecessors {
		if _, ok := st.visitedEdges[prevIdx]; !ok {
			return false
		}
	}

	return true
}

// isStageAvailable reports whether edgeIdx has no stage restriction, or its
// stage matches the current one.
func isStageAvailable(st *state, edgeIdx int) bool {
	stage := st.problem.Edges[edgeIdx].Stage

	return stage == nil || *stage == st.stage
}

// availableDeg is out-degree minus in-degree of vertex in the subgraph of
// currently-available edges: the heuristic used to pick both which edge to
// follow and where to jump.
func availableDeg(st *state, vertex int) int {
	return len(st.availableOutEdges[vertex]) - st.availableInEdgeCounts[vertex]
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
