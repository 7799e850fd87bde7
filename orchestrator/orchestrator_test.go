package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/logistics/action"
	"github.com/katalvlaran/logistics/problem"
	"github.com/katalvlaran/logistics/reporter"
	"github.com/katalvlaran/logistics/vehicle"
)

// twoCityProblem builds a minimal instance: two cities each with an airport
// and one other depot, one truck per city, one airplane, and a single
// cross-city parcel.
func twoCityProblem() *problem.Problem {
	return &problem.Problem{
		Depos: []problem.DepoRef{
			{City: 0, Idx: 0}, {City: 0, Idx: 1},
			{City: 1, Idx: 0}, {City: 1, Idx: 1},
		},
		Cities: []problem.CityProblem{
			{
				DepoIDs:           []int{0, 1},
				AirportDepo:       0,
				TruckIDs:          []int{0},
				TruckDepos:        []int{1},
				InnerParcelIDs:    [][][]int{{nil, nil}, {nil, nil}},
				OutboundParcelIDs: [][]int{nil, {0}},
				InboundParcelIDs:  [][]int{nil, nil},
				ParcelCount:       1,
			},
			{
				DepoIDs:           []int{2, 3},
				AirportDepo:       0,
				TruckIDs:          []int{1},
				TruckDepos:        []int{1},
				InnerParcelIDs:    [][][]int{{nil, nil}, {nil, nil}},
				OutboundParcelIDs: [][]int{nil, nil},
				InboundParcelIDs:  [][]int{nil, {0}},
				ParcelCount:       1,
			},
		},
		Air: problem.AirProblem{
			AirportIDs:       []int{0, 2},
			AirplaneAirports: []int{0},
			ParcelIDs: [][][]int{
				{nil, {0}},
				{nil, nil},
			},
		},
		ParcelCount: 1,
	}
}

func TestSolveSingleCrossCityParcel(t *testing.T) {
	p := twoCityProblem()
	cfg := vehicle.Default()

	nop := func(string, int) reporter.Reporter { return reporter.Nop{} }
	plan, err := Solve(context.Background(), p, cfg, nop)
	require.NoError(t, err)

	require.Greater(t, plan.Cost, int64(0))
	require.Greater(t, plan.MinCost, int64(0))

	var loads, unloads int
	for _, a := range append(append(append([]action.Action{}, plan.TruckActions1...), plan.AirplaneActions2...), plan.TruckActions3...) {
		switch a.Kind {
		case action.Load:
			loads++
		case action.Unload:
			unloads++
		}
	}
	require.Greater(t, loads, 0)
	require.Equal(t, loads, unloads) // every load is eventually matched by an unload
}

// countActions tallies load/unload/go actions across every slice of a Plan.
func countActions(plan *Plan) (loads, unloads, goes int) {
	all := append(append(append([]action.Action{}, plan.TruckActions1...), plan.AirplaneActions2...), plan.TruckActions3...)
	for _, a := range all {
		switch a.Kind {
		case action.Load:
			loads++
		case action.Unload:
			unloads++
		case action.Go:
			goes++
		}
	}

	return loads, unloads, goes
}

// TestSolveScenarios exercises end-to-end scenarios, one subtest each: an
// empty city, an air-only delivery, truck demand above truck capacity, and
// air demand above airplane capacity. A single-city round trip between two
// depots has no subtest here; the precedence stress scenario is covered
// separately by precedence's TestDAG.
func TestSolveScenarios(t *testing.T) {
	nop := func(string, int) reporter.Reporter { return reporter.Nop{} }
	cfg := vehicle.Default()

	t.Run("one city no parcels", func(t *testing.T) {
		p := &problem.Problem{
			Depos: []problem.DepoRef{{City: 0, Idx: 0}},
			Cities: []problem.CityProblem{
				{
					DepoIDs:           []int{0},
					AirportDepo:       0,
					TruckIDs:          []int{0},
					TruckDepos:        []int{0},
					InnerParcelIDs:    [][][]int{{nil}},
					OutboundParcelIDs: [][]int{nil},
					InboundParcelIDs:  [][]int{nil},
				},
			},
			Air: problem.AirProblem{
				AirportIDs:       []int{0},
				AirplaneAirports: []int{0},
				ParcelIDs:        [][][]int{{nil}},
			},
		}

		plan, err := Solve(context.Background(), p, cfg, nop)
		require.NoError(t, err)
		require.Empty(t, plan.TruckActions1)
		require.Empty(t, plan.AirplaneActions2)
		require.Empty(t, plan.TruckActions3)
		require.Equal(t, int64(0), plan.Cost)
		require.Equal(t, int64(0), plan.MinCost)
	})

	t.Run("two cities air only", func(t *testing.T) {
		p := &problem.Problem{
			Depos: []problem.DepoRef{{City: 0, Idx: 0}, {City: 1, Idx: 0}},
			Cities: []problem.CityProblem{
				{
					DepoIDs:           []int{0},
					AirportDepo:       0,
					TruckIDs:          []int{0},
					TruckDepos:        []int{0},
					InnerParcelIDs:    [][][]int{{nil}},
					OutboundParcelIDs: [][]int{nil},
					InboundParcelIDs:  [][]int{nil},
				},
				{
					DepoIDs:           []int{1},
					AirportDepo:       0,
					TruckIDs:          []int{1},
					TruckDepos:        []int{0},
					InnerParcelIDs:    [][][]int{{nil}},
					OutboundParcelIDs: [][]int{nil},
					InboundParcelIDs:  [][]int{nil},
				},
			},
			Air: problem.AirProblem{
				AirportIDs:       []int{0, 1},
				AirplaneAirports: []int{0},
				ParcelIDs: [][][]int{
					{nil, {0}},
					{nil, nil},
				},
			},
			ParcelCount: 1,
		}

		plan, err := Solve(context.Background(), p, cfg, nop)
		require.NoError(t, err)
		loads, unloads, _ := countActions(plan)
		require.Equal(t, 1, loads)
		require.Equal(t, 1, unloads)
		require.Greater(t, plan.Cost, int64(0))
	})

	t.Run("multi-trip demand exceeding truck capacity", func(t *testing.T) {
		// D0 airport, D1, D2; 5 parcels D1->D2, truck capacity 4: at least
		// two loaded trips are required to deliver them all.
		innerParcels := [][][]int{
			{nil, nil, nil},
			{nil, nil, {0, 1, 2, 3, 4}},
			{nil, nil, nil},
		}
		p := &problem.Problem{
			Depos: []problem.DepoRef{{City: 0, Idx: 0}, {City: 0, Idx: 1}, {City: 0, Idx: 2}},
			Cities: []problem.CityProblem{
				{
					DepoIDs:           []int{0, 1, 2},
					AirportDepo:       0,
					TruckIDs:          []int{0},
					TruckDepos:        []int{0},
					InnerParcelIDs:    innerParcels,
					OutboundParcelIDs: [][]int{nil, nil, nil},
					InboundParcelIDs:  [][]int{nil, nil, nil},
					ParcelCount:       5,
				},
			},
			Air: problem.AirProblem{
				AirportIDs:       []int{0},
				AirplaneAirports: []int{0},
				ParcelIDs:        [][][]int{{nil}},
			},
			ParcelCount: 5,
		}

		plan, err := Solve(context.Background(), p, cfg, nop)
		require.NoError(t, err)
		loads, unloads, _ := countActions(plan)
		require.GreaterOrEqual(t, loads, 5)
		require.Equal(t, loads, unloads)
		require.GreaterOrEqual(t, plan.Cost, int64(2*17+5*4))
	})

	t.Run("residual edge above airplane capacity", func(t *testing.T) {
		// 35 parcels city0->city1, airplane capacity 30: edge plan must
		// split into a saturated 30-parcel edge plus a 5-parcel residual.
		parcelIDs := make([]int, 35)
		for i := range parcelIDs {
			parcelIDs[i] = i
		}
		p := &problem.Problem{
			Depos: []problem.DepoRef{{City: 0, Idx: 0}, {City: 1, Idx: 0}},
			Cities: []problem.CityProblem{
				{
					DepoIDs:           []int{0},
					AirportDepo:       0,
					TruckIDs:          []int{0},
					TruckDepos:        []int{0},
					InnerParcelIDs:    [][][]int{{nil}},
					OutboundParcelIDs: [][]int{nil},
					InboundParcelIDs:  [][]int{nil},
				},
				{
					DepoIDs:           []int{1},
					AirportDepo:       0,
					TruckIDs:          []int{1},
					TruckDepos:        []int{0},
					InnerParcelIDs:    [][][]int{{nil}},
					OutboundParcelIDs: [][]int{nil},
					InboundParcelIDs:  [][]int{nil},
				},
			},
			Air: problem.AirProblem{
				AirportIDs:       []int{0, 1},
				AirplaneAirports: []int{0, 0},
				ParcelIDs: [][][]int{
					{nil, parcelIDs},
					{nil, nil},
				},
			},
			ParcelCount: 35,
		}

		plan, err := Solve(context.Background(), p, cfg, nop)
		require.NoError(t, err)
		loads, unloads, _ := countActions(plan)
		require.GreaterOrEqual(t, loads, 35)
		require.Equal(t, loads, unloads)
		require.Greater(t, plan.Cost, int64(0))
	})
}
