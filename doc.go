// Package logistics plans multi-vehicle parcel delivery across a network of
// cities, depots, and an inter-city airport hub.
//
// A world is built from cities (each with depots and trucks, one depot
// doubling as that city's airport) and a fleet of airplanes moving between
// airports. Parcels are handed a source and target depot; logistics figures
// out which vehicle carries each parcel, in what order, and when it must be
// transferred between vehicles.
//
// Planning runs in three phases, one package per phase:
//
//	edgeplan/     — packs parcel demand into capacitated vehicle trips
//	journeyplan/  — assigns trips to concrete vehicles, respecting precedence
//	parcelassign/ — materializes load/unload/go actions with concrete parcel IDs
//
// orchestrator/ splits a problem into one sub-problem per city plus a single
// inter-city air sub-problem, runs the three phases on each concurrently,
// and stitches the truck/airplane/truck action sequence back together.
//
// problem/ reads the input instance; action/ renders the output plan;
// vehicle/ holds the per-fleet cost and capacity configuration; digraph/,
// acyclic/, bitmat/, and precedence/ are the supporting data structures the
// planner is built on.
//
//	go get github.com/katalvlaran/logistics
package logistics
