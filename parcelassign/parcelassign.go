// Package parcelassign materializes concrete load/unload/go actions from a
// journey plan, assigning concrete parcel IDs to cargo slots, grounded on
// the original implementation's parcel_plan.rs.
package parcelassign

import (
	"github.com/katalvlaran/logistics/action"
	"github.com/katalvlaran/logistics/edgeplan"
	"github.com/katalvlaran/logistics/journeyplan"
	"github.com/katalvlaran/logistics/reporter"
)

// Problem is the input to PlanParcels: the vertex and vehicle ID spaces, the
// edges (for their cargo manifests), the per-stage legs to realize, and the
// parcel demand between every pair of local vertices.
type Problem struct {
	VertexIDs  []int // global vertex id at each local vertex index
	VehicleIDs []int // global vehicle id at each local vehicle index
	Edges      []*edgeplan.Edge
	Legs       [][]journeyplan.Leg // [stage] -> legs
	ParcelIDs  [][][]int           // [srcVertex][tgtVertex] -> parcel ids
}

// Plan groups the emitted actions by stage.
type Plan struct {
	Actions [][]action.Action
}

type state struct {
	problem           *Problem
	stage             int
	vertexVehicles    []map[int]struct{} // vertex -> set of vehicle indices currently there
	unloadedParcelIDs [][][]int          // [srcVertex][tgtVertex] -> parcel ids lying unloaded
	loadedParcelIDs   [][][]int          // [vehicle][tgtVertex] -> parcel ids currently aboard
	actions           [][]action.Action
}

// PlanParcels walks every stage's legs in order, reconciling each vehicle's
// cargo to match the leg's edge manifest (unloading surplus, then loading
// shortfall, so capacity is never exceeded), then emitting the Go action and
// finally unloading anything destined for the leg's target.
func PlanParcels(problem *Problem, rep reporter.Reporter) *Plan {
	legCount := 0
	for _, legs := range problem.Legs {
		legCount += len(legs)
	}

	rep.Reset()
	rep.SetMessage("planning parcels")
	rep.SetLength(legCount)

	st := initState(problem)
	for st.stage < len(problem.Legs) {
		for _, leg := range problem.Legs[st.stage] {
			planLeg(st, leg)
			rep.Inc(1)
		}
		st.stage++
	}

	return &Plan{Actions: st.actions}
}

func initState(problem *Problem) *state {
	vertexCount := len(problem.VertexIDs)
	vehicleCount := len(problem.VehicleIDs)

	vertexVehicles := make([]map[int]struct{}, vertexCount)
	for i := range vertexVehicles {
		vertexVehicles[i] = make(map[int]struct{})
	}

	unloaded := make([][][]int, vertexCount)
	for i := range unloaded {
		unloaded[i] = make([][]int, vertexCount)
		for j := range unloaded[i] {
			unloaded[i][j] = append([]int(nil), problem.ParcelIDs[i][j]...)
		}
	}

	loaded := make([][][]int, vehicleCount)
	for i := range loaded {
		loaded[i] = make([][]int, vertexCount)
	}

	return &state{
		problem:           problem,
		stage:             0,
		vertexVehicles:    vertexVehicles,
		unloadedParcelIDs: unloaded,
		loadedParcelIDs:   loaded,
		actions:           make([][]action.Action, len(problem.Legs)),
	}
}

// planLeg reconciles cargo, then performs the Go, then drops off anything
// destined for the leg's target.
func planLeg(st *state, leg journeyplan.Leg) {
	vehicleID := st.problem.VehicleIDs[leg.Vehicle]

	tgtAmounts := make(map[int]int)
	if leg.EdgeIdx != nil {
		for _, cargo := range st.problem.Edges[*leg.EdgeIdx].Cargo {
			tgtAmounts[cargo.Tgt] = cargo.Amount
		}
	}

	// Unload pass (canLoad=false) strictly before load pass (canLoad=true),
	// so a vehicle's cargo never exceeds capacity mid-reconciliation.
	for _, canLoad := range [...]bool{false, true} {
		for tgt := 0; tgt < len(st.problem.VertexIDs); tgt++ {
			tgtAmount := tgtAmounts[tgt]
			loadedAmount := len(getLoaded(st, leg.Vehicle, tgt))

			switch {
			case canLoad && tgtAmount > loadedAmount:
				for i := 0; i < tgtAmount-loadedAmount; i++ {
					parcelID := planUnloadedParcel(st, leg.Vehicle, leg.Src, tgt)
					*getLoadedRef(st, leg.Vehicle, tgt) = append(*getLoadedRef(st, leg.Vehicle, tgt), parcelID)
					emitAction(st, action.Action{Kind: action.Load, VehicleID: vehicleID, ParcelID: parcelID})
				}
			case tgtAmount < loadedAmount:
				for i := 0; i < loadedAmount-tgtAmount; i++ {
					ref := getLoadedRef(st, leg.Vehicle, tgt)
					n := len(*ref)
					parcelID := (*ref)[n-1]
					*ref = (*ref)[:n-1]

					unloadedRef := getUnloadedRef(st, leg.Src, tgt)
					*unloadedRef = append(*unloadedRef, parcelID)
					emitAction(st, action.Action{Kind: action.Unload, VehicleID: vehicleID, ParcelID: parcelID})
				}
			}
		}
	}

	srcID := st.problem.VertexIDs[leg.Src]
	tgtID := st.problem.VertexIDs[leg.Tgt]
	emitAction(st, action.Action{Kind: action.Go, VehicleID: vehicleID, SrcID: srcID, TgtID: tgtID})
	delete(st.vertexVehicles[leg.Src], leg.Vehicle)
	st.vertexVehicles[leg.Tgt][leg.Vehicle] = struct{}{}

	ref := getLoadedRef(st, leg.Vehicle, leg.Tgt)
	for len(*ref) > 0 {
		n := len(*ref)
		parcelID := (*ref)[n-1]
		*ref = (*ref)[:n-1]
		emitAction(st, action.Action{Kind: action.Unload, VehicleID: vehicleID, ParcelID: parcelID})
	}
}

// planUnloadedParcel finds a parcel going from src to tgt that tgtVehicle
// can load: either one already lying unloaded at src, or one stolen off
// another vehicle currently sitting at src. Panics if neither exists — that
// means the edge plan promised more cargo than the parcel demand actually
// contains, a program invariant violation.
func planUnloadedParcel(st *state, tgtVehicle, src, tgt int) int {
	unloadedRef := getUnloadedRef(st, src, tgt)
	if n := len(*unloadedRef); n > 0 {
		parcelID := (*unloadedRef)[n-1]
		*unloadedRef = (*unloadedRef)[:n-1]

		return parcelID
	}

	for vehicle := range st.vertexVehicles[src] {
		if vehicle == tgtVehicle {
			continue
		}
		ref := getLoadedRef(st, vehicle, tgt)
		if n := len(*ref); n > 0 {
			parcelID := (*ref)[n-1]
			*ref = (*ref)[:n-1]
			vehicleID := st.problem.VehicleIDs[vehicle]
			emitAction(st, action.Action{Kind: action.Unload, VehicleID: vehicleID, ParcelID: parcelID})

			return parcelID
		}
	}

	panic("parcelassign: planUnloadedParcel: ran out of parcels")
}

func emitAction(st *state, a action.Action) {
	st.actions[st.stage] = append(st.actions[st.stage], a)
}

func getLoaded(st *state, vehicle, tgt int) []int {
	return st.loadedParcelIDs[vehicle][tgt]
}

func getLoadedRef(st *state, vehicle, tgt int) *[]int {
	return &st.loadedParcelIDs[vehicle][tgt]
}

func getUnloadedRef(st *state, src, tgt int) *[]int {
	return &st.unloadedParcelIDs[src][tgt]
}
