// Package action defines the concrete plan actions (Go/Load/Unload) and the
// line-oriented writer that serializes a sequence of them, grounded on the
// original implementation's write.rs.
package action

import (
	"bufio"
	"fmt"
	"io"
)

// Kind distinguishes the three action variants. A closed set of three known
// at compile time, so a tagged struct (not an interface) matches the
// teacher's preference for core.Edge/Vertex-style concrete types.
type Kind int

const (
	// Go moves a vehicle from its current vertex to TgtID.
	Go Kind = iota
	// Load picks ParcelID onto the vehicle at its current vertex.
	Load
	// Unload drops ParcelID off the vehicle at its current vertex.
	Unload
)

// Action is one step of a vehicle's plan.
type Action struct {
	Kind      Kind
	VehicleID int
	SrcID     int // only meaningful for Kind == Go
	TgtID     int // only meaningful for Kind == Go
	ParcelID  int // only meaningful for Kind == Load/Unload
}

// Fleet distinguishes the verb vocabulary used when rendering an action:
// trucks "drive"/"load"/"unload", airplanes "fly"/"pickup"/"dropoff".
type Fleet int

const (
	// Truck renders Go/Load/Unload as drive/load/unload.
	Truck Fleet = iota
	// Airplane renders Go/Load/Unload as fly/pickup/dropoff.
	Airplane
)

func (f Fleet) verbs() (goVerb, loadVerb, unloadVerb string) {
	if f == Airplane {
		return "fly", "pickup", "dropoff"
	}

	return "drive", "load", "unload"
}

// WriteAll writes actions in order to w, each rendered as "<verb> <vehicle>
// <arg>\n" with the verb vocabulary selected by fleet.
// Complexity: O(len(actions)).
func WriteAll(w io.Writer, actions []Action, fleet Fleet) error {
	bw := bufio.NewWriter(w)
	goVerb, loadVerb, unloadVerb := fleet.verbs()
	for _, a := range actions {
		var err error
		switch a.Kind {
		case Go:
			_, err = fmt.Fprintf(bw, "%s %d %d\n", goVerb, a.VehicleID, a.TgtID)
		case Load:
			_, err = fmt.Fprintf(bw, "%s %d %d\n", loadVerb, a.VehicleID, a.ParcelID)
		case Unload:
			_, err = fmt.Fprintf(bw, "%s %d %d\n", unloadVerb, a.VehicleID, a.ParcelID)
		}
		if err != nil {
			return fmt.Errorf("action: WriteAll: %w", err)
		}
	}

	return bw.Flush()
}
