// Package orchestrator splits a problem into one sub-problem per city plus
// one inter-city air sub-problem, runs the edge/journey/parcel planning
// pipeline on each, and stitches the results back into a single Plan,
// grounded on the original implementation's main.rs (solve_problem /
// solve_city_problem / solve_air_problem).
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/logistics/action"
	"github.com/katalvlaran/logistics/edgeplan"
	"github.com/katalvlaran/logistics/journeyplan"
	"github.com/katalvlaran/logistics/parcelassign"
	"github.com/katalvlaran/logistics/problem"
	"github.com/katalvlaran/logistics/reporter"
	"github.com/katalvlaran/logistics/vehicle"
)

// Plan is the fully assembled solution: truck actions before the air leg,
// the airplane actions, and truck actions after the air leg, concatenated
// in that order when written out (see action.WriteAll and cmd/logistics).
type Plan struct {
	TruckActions1    []action.Action
	AirplaneActions2 []action.Action
	TruckActions3    []action.Action
	Cost             int64
	MinCost          int64
}

// ReporterFactory returns the Reporter to use for one sub-problem, keyed by
// its parcel count and a human-readable label (e.g. "City 3", "Airplanes").
// The default (see SPEC_FULL.md §9) returns reporter.Nop{} below the
// visibility threshold and a labeled reporter.Console above it.
type ReporterFactory func(label string, parcelCount int) reporter.Reporter

// Solve splits p into per-city and air sub-problems, plans each
// concurrently (one goroutine per sub-problem, bounded to GOMAXPROCS(0)
// in flight at once via g.SetLimit — matching the original's rayon::join
// plus a work-stealing par_bridge fan-out over cities that is itself
// sized to available cores), and aggregates the result.
func Solve(ctx context.Context, p *problem.Problem, cfg vehicle.FleetConfig, newReporter ReporterFactory) (*Plan, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	var airPlan *airPlan
	g.Go(func() error {
		rep := newReporter("Airplanes", totalAirParcels(&p.Air))
		plan, err := solveAirProblem(&p.Air, cfg.Airplane, rep)
		if err != nil {
			return fmt.Errorf("orchestrator: air sub-problem: %w", err)
		}
		airPlan = plan

		return nil
	})

	cityPlans := make([]*cityPlan, len(p.Cities))
	for i := range p.Cities {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			rep := newReporter(fmt.Sprintf("City %d", i), p.Cities[i].ParcelCount)
			plan, err := solveCityProblem(&p.Cities[i], cfg.Truck, rep)
			if err != nil {
				return fmt.Errorf("orchestrator: city %d sub-problem: %w", i, err)
			}
			cityPlans[i] = plan

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Plan{
		AirplaneActions2: airPlan.airActions,
		Cost:             airPlan.cost,
		MinCost:          airPlan.minCost,
	}
	for _, cp := range cityPlans {
		result.TruckActions1 = append(result.TruckActions1, cp.beforeAirActions...)
		result.TruckActions3 = append(result.TruckActions3, cp.afterAirActions...)
		result.Cost += cp.cost
		result.MinCost += cp.minCost
	}

	return result, nil
}

type cityPlan struct {
	beforeAirActions []action.Action
	afterAirActions  []action.Action
	cost             int64
	minCost          int64
}

type airPlan struct {
	airActions []action.Action
	cost       int64
	minCost    int64
}

func totalAirParcels(air *problem.AirProblem) int {
	count := 0
	for _, row := range air.ParcelIDs {
		for _, ids := range row {
			count += len(ids)
		}
	}

	return count
}

// solveCityProblem plans one city's depots and trucks: the airport depot
// doubles as the hub for edgeplan.PlanHub, and the resulting two-stage
// journey is split into "before air" and "after air" action groups.
func solveCityProblem(cp *problem.CityProblem, cfg vehicle.Config, rep reporter.Reporter) (*cityPlan, error) {
	rep.Reset()
	rep.SetMessage("initializing")

	depoCount := len(cp.DepoIDs)
	airport := cp.AirportDepo

	parcelIDs := make([][][]int, depoCount)
	for i := range parcelIDs {
		parcelIDs[i] = make([][]int, depoCount)
		for j := range parcelIDs[i] {
			parcelIDs[i][j] = append([]int(nil), cp.InnerParcelIDs[i][j]...)
		}
	}
	for depo := 0; depo < depoCount; depo++ {
		parcelIDs[depo][airport] = append(parcelIDs[depo][airport], cp.OutboundParcelIDs[depo]...)
		parcelIDs[airport][depo] = append(parcelIDs[airport][depo], cp.InboundParcelIDs[depo]...)
	}

	pMat := make([][]int, depoCount)
	for i := range pMat {
		pMat[i] = make([]int, depoCount)
		for j := range pMat[i] {
			pMat[i][j] = len(parcelIDs[i][j])
		}
	}

	edgeState := edgeplan.NewState(depoCount, cfg.Capacity, pMat)
	edgeState.PlanHub(airport, rep)
	edgeState.PlanAll(rep)
	ePlan := edgeState.Finish()

	minCost := int64(ePlan.MinEdgeCount)*cfg.GoCost + int64(ePlan.ParcelCount)*cfg.TransferCost

	jPlan := journeyplan.PlanJourneys(&journeyplan.Problem{
		VertexCount:     depoCount,
		StageCount:      2,
		VehicleVertices: cp.TruckDepos,
		Edges:           ePlan.Edges,
		Constraints:     ePlan.Constraints,
	}, rep)

	pPlan := parcelassign.PlanParcels(&parcelassign.Problem{
		VertexIDs:  cp.DepoIDs,
		VehicleIDs: cp.TruckIDs,
		Edges:      ePlan.Edges,
		Legs:       jPlan.Legs,
		ParcelIDs:  parcelIDs,
	}, rep)

	if len(pPlan.Actions) != 2 {
		return nil, fmt.Errorf("orchestrator: solveCityProblem: expected 2 stages of actions, got %d", len(pPlan.Actions))
	}
	beforeAir, afterAir := pPlan.Actions[0], pPlan.Actions[1]
	cost := sumCost(beforeAir, cfg) + sumCost(afterAir, cfg)

	rep.Finish()

	return &cityPlan{
		beforeAirActions: beforeAir,
		afterAirActions:  afterAir,
		cost:             cost,
		minCost:          minCost,
	}, nil
}

// solveAirProblem plans the inter-city leg: one vertex per airport, one
// vehicle per airplane, a single unstaged journey stage.
func solveAirProblem(air *problem.AirProblem, cfg vehicle.Config, rep reporter.Reporter) (*airPlan, error) {
	rep.Reset()
	rep.SetMessage("initializing")

	airportCount := len(air.AirportIDs)
	airplaneCount := len(air.AirplaneAirports)

	pMat := make([][]int, airportCount)
	for i := range pMat {
		pMat[i] = make([]int, airportCount)
		for j := range pMat[i] {
			pMat[i][j] = len(air.ParcelIDs[i][j])
		}
	}

	edgeState := edgeplan.NewState(airportCount, cfg.Capacity, pMat)
	edgeState.PlanAll(rep)
	ePlan := edgeState.Finish()

	minCost := int64(ePlan.MinEdgeCount)*cfg.GoCost + int64(ePlan.ParcelCount)*cfg.TransferCost

	jPlan := journeyplan.PlanJourneys(&journeyplan.Problem{
		VertexCount:     airportCount,
		StageCount:      1,
		VehicleVertices: air.AirplaneAirports,
		Edges:           ePlan.Edges,
		Constraints:     ePlan.Constraints,
	}, rep)

	airplaneIDs := make([]int, airplaneCount)
	for i := range airplaneIDs {
		airplaneIDs[i] = i
	}

	pPlan := parcelassign.PlanParcels(&parcelassign.Problem{
		VertexIDs:  air.AirportIDs,
		VehicleIDs: airplaneIDs,
		Edges:      ePlan.Edges,
		Legs:       jPlan.Legs,
		ParcelIDs:  air.ParcelIDs,
	}, rep)

	if len(pPlan.Actions) != 1 {
		return nil, fmt.Errorf("orchestrator: solveAirProblem: expected 1 stage of actions, got %d", len(pPlan.Actions))
	}
	airActions := pPlan.Actions[0]
	cost := sumCost(airActions, cfg)

	rep.Finish()

	return &airPlan{airActions: airActions, cost: cost, minCost: minCost}, nil
}

func sumCost(actions []action.Action, cfg vehicle.Config) int64 {
	var cost int64
	for _, a := range actions {
		switch a.Kind {
		case action.Go:
			cost += cfg.GoCost
		case action.Unload:
			cost += cfg.TransferCost
		}
	}

	return cost
}

// WritePlan renders the plan in the canonical stage order: trucks before
// the air leg, then airplanes, then trucks after the air leg.
func WritePlan(w io.Writer, plan *Plan) error {
	if err := action.WriteAll(w, plan.TruckActions1, action.Truck); err != nil {
		return err
	}
	if err := action.WriteAll(w, plan.AirplaneActions2, action.Airplane); err != nil {
		return err
	}

	return action.WriteAll(w, plan.TruckActions3, action.Truck)
}
