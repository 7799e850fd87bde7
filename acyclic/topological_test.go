package acyclic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/logistics/digraph"
)

func TestTopologicalSortDAG(t *testing.T) {
	g := digraph.New()
	require.NoError(t, g.AddEdge("0", "1"))
	require.NoError(t, g.AddEdge("1", "2"))
	require.NoError(t, g.AddEdge("1", "3"))
	require.NoError(t, g.AddEdge("3", "4"))
	require.NoError(t, g.AddEdge("2", "4"))

	order, err := TopologicalSort(g)
	require.NoError(t, err)

	pos := make(map[string]int, len(order))
	for i, v := range order {
		pos[v] = i
	}
	require.Less(t, pos["0"], pos["1"])
	require.Less(t, pos["1"], pos["2"])
	require.Less(t, pos["1"], pos["3"])
	require.Less(t, pos["3"], pos["4"])
	require.Less(t, pos["2"], pos["4"])
}

func TestTopologicalSortCycle(t *testing.T) {
	g := digraph.New()
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))
	require.NoError(t, g.AddEdge("c", "a"))

	_, err := TopologicalSort(g)
	require.ErrorIs(t, err, ErrCycleDetected)
}

func TestTopologicalSortNilGraph(t *testing.T) {
	_, err := TopologicalSort(nil)
	require.ErrorIs(t, err, ErrGraphNil)
}
