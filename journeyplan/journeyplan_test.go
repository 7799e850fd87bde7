package journeyplan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/logistics/edgeplan"
	"github.com/katalvlaran/logistics/precedence"
	"github.com/katalvlaran/logistics/reporter"
)

func newUnstagedEdge(src, tgt int) *edgeplan.Edge {
	return &edgeplan.Edge{Src: src, Tgt: tgt, FreeCap: 0}
}

func TestPlanJourneysSingleVehicleChain(t *testing.T) {
	// 0 -> 1 -> 2, one vehicle starting at 0, no precedence constraints.
	edges := []*edgeplan.Edge{
		newUnstagedEdge(0, 1),
		newUnstagedEdge(1, 2),
	}
	constraints := precedence.New()
	constraints.Push()
	constraints.Push()

	problem := &Problem{
		VertexCount:     3,
		StageCount:      1,
		VehicleVertices: []int{0},
		Edges:           edges,
		Constraints:     constraints,
	}

	plan := PlanJourneys(problem, reporter.Nop{})
	require.Len(t, plan.Legs, 1)

	var visited []int
	for _, leg := range plan.Legs[0] {
		if leg.EdgeIdx != nil {
			visited = append(visited, *leg.EdgeIdx)
		}
	}
	require.ElementsMatch(t, []int{0, 1}, visited)
}

func TestPlanJourneysStagedPrecedence(t *testing.T) {
	// Stage-0 edge 1->0 must be visited before stage-1 edge 0->2.
	stage0, stage1 := 0, 1
	edges := []*edgeplan.Edge{
		{Src: 1, Tgt: 0, Stage: &stage0},
		{Src: 0, Tgt: 2, Stage: &stage1},
	}
	constraints := precedence.New()
	constraints.Push()
	constraints.Push()
	require.NoError(t, constraints.AddBefore(0, 1))

	problem := &Problem{
		VertexCount:     3,
		StageCount:      2,
		VehicleVertices: []int{1},
		Edges:           edges,
		Constraints:     constraints,
	}

	plan := PlanJourneys(problem, reporter.Nop{})
	require.Len(t, plan.Legs, 2)

	var firstEdge int
	for _, leg := range plan.Legs[0] {
		if leg.EdgeIdx != nil {
			firstEdge = *leg.EdgeIdx
		}
	}
	require.Equal(t, 0, firstEdge)

	var secondEdge int
	for _, leg := range plan.Legs[1] {
		if leg.EdgeIdx != nil {
			secondEdge = *leg.EdgeIdx
		}
	}
	require.Equal(t, 1, secondEdge)
}
