// Package problem models the parsed input instance (cities, depots, trucks,
// airplanes, parcels) and its line-oriented text reader, grounded on the
// original implementation's read.rs.
package problem

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/logistics/reporter"
)

// DepoRef locates a depot by the city it belongs to and its index within
// that city's own depot list.
type DepoRef struct {
	City int
	Idx  int
}

// CityProblem is the demand and fleet sub-problem confined to one city: its
// depots (one of which is the airport), its trucks, and the parcel demand
// between its own depots plus any parcels crossing the city boundary.
type CityProblem struct {
	DepoIDs []int // depot id (global) at each local depot index

	AirportDepo int // local depot index of this city's airport

	TruckIDs   []int // global truck id at each local truck index
	TruckDepos []int // local depot index where each truck starts

	InnerParcelIDs    [][][]int // [srcDepo][tgtDepo] -> parcel ids, same-city
	OutboundParcelIDs [][]int   // [srcDepo] -> parcel ids leaving the city by air
	InboundParcelIDs  [][]int   // [tgtDepo] -> parcel ids arriving from another city

	ParcelCount int
}

// AirProblem is the inter-city sub-problem: airport vertices (one per
// city), the city each airplane starts in, and cross-city parcel demand.
type AirProblem struct {
	AirportIDs      []int     // global depot id of the airport, indexed by city
	AirplaneAirports []int    // city index where each airplane starts
	ParcelIDs       [][][]int // [srcCity][tgtCity] -> parcel ids
}

// Problem is a fully parsed planning instance.
type Problem struct {
	Depos       []DepoRef
	Cities      []CityProblem
	Air         AirProblem
	ParcelCount int
}

// Read parses a Problem from r in the original line-oriented text format:
// city/depot counts and assignments, airport assignments, truck positions,
// airplane positions, and finally parcel source/target pairs. Comment lines
// (beginning with "%") and blank lines are skipped.
//
// Complexity: O(input size).
func Read(r io.Reader, rep reporter.Reporter) (*Problem, error) {
	br := bufio.NewReader(r)

	rep.SetMessage("reading cities and depos")
	p, err := readCitiesDepos(br)
	if err != nil {
		return nil, err
	}

	rep.SetMessage("reading trucks")
	if err := readTrucks(br, p); err != nil {
		return nil, err
	}

	rep.SetMessage("reading airplanes")
	if err := readAirplanes(br, p); err != nil {
		return nil, err
	}

	rep.SetMessage("reading parcels")
	if err := readParcels(br, p); err != nil {
		return nil, err
	}

	return p, nil
}

func readCitiesDepos(br *bufio.Reader) (*Problem, error) {
	cityCount, err := readInt(br)
	if err != nil {
		return nil, err
	}
	depoCount, err := readInt(br)
	if err != nil {
		return nil, err
	}

	cityDepoIDs := make([][]int, cityCount)
	depos := make([]DepoRef, 0, depoCount)
	for depoID := 0; depoID < depoCount; depoID++ {
		depoCity, err := readInt(br)
		if err != nil {
			return nil, err
		}
		if depoCity >= cityCount {
			return nil, errors.New("read invalid city")
		}

		depoIdx := len(cityDepoIDs[depoCity])
		cityDepoIDs[depoCity] = append(cityDepoIDs[depoCity], depoID)
		depos = append(depos, DepoRef{City: depoCity, Idx: depoIdx})
	}

	cityAirportDepos := make([]int, cityCount)
	hasAirport := make([]bool, cityCount)
	for i := 0; i < cityCount; i++ {
		airportDepoID, err := readInt(br)
		if err != nil {
			return nil, err
		}
		if airportDepoID >= depoCount {
			return nil, errors.New("read invalid depo as airport")
		}

		ref := depos[airportDepoID]
		if hasAirport[ref.City] {
			return nil, errors.New("a city has multiple airports")
		}
		cityAirportDepos[ref.City] = ref.Idx
		hasAirport[ref.City] = true
	}

	cities := make([]CityProblem, cityCount)
	for city := 0; city < cityCount; city++ {
		n := len(cityDepoIDs[city])
		cities[city] = CityProblem{
			DepoIDs:           cityDepoIDs[city],
			AirportDepo:       cityAirportDepos[city],
			InnerParcelIDs:    make2D(n, n),
			OutboundParcelIDs: make([][]int, n),
			InboundParcelIDs:  make([][]int, n),
		}
	}

	airportIDs := make([]int, cityCount)
	for city := 0; city < cityCount; city++ {
		airportIDs[city] = cityDepoIDs[city][cityAirportDepos[city]]
	}

	return &Problem{
		Depos:  depos,
		Cities: cities,
		Air: AirProblem{
			AirportIDs: airportIDs,
			ParcelIDs:  make2D(cityCount, cityCount),
		},
	}, nil
}

// make2D returns an n1 x n2 grid of nil int slices, one per cell.
func make2D(n1, n2 int) [][][]int {
	grid := make([][][]int, n1)
	for i := range grid {
		grid[i] = make([][]int, n2)
	}

	return grid
}

func readTrucks(br *bufio.Reader, p *Problem) error {
	truckCount, err := readInt(br)
	if err != nil {
		return err
	}
	depoCount := len(p.Depos)

	for truckID := 0; truckID < truckCount; truckID++ {
		depoID, err := readInt(br)
		if err != nil {
			return err
		}
		if depoID >= depoCount {
			return errors.New("read invalid depo as truck position")
		}

		ref := p.Depos[depoID]
		p.Cities[ref.City].TruckIDs = append(p.Cities[ref.City].TruckIDs, truckID)
		p.Cities[ref.City].TruckDepos = append(p.Cities[ref.City].TruckDepos, ref.Idx)
	}

	for city := range p.Cities {
		if len(p.Cities[city].TruckIDs) == 0 {
			return errors.New("a city has no trucks")
		}
	}

	return nil
}

func readAirplanes(br *bufio.Reader, p *Problem) error {
	airplaneCount, err := readInt(br)
	if err != nil {
		return err
	}
	depoCount := len(p.Depos)

	for a := 0; a < airplaneCount; a++ {
		airportDepoID, err := readInt(br)
		if err != nil {
			return err
		}
		if airportDepoID >= depoCount {
			return errors.New("read invalid depo as airplane position")
		}

		ref := p.Depos[airportDepoID]
		if p.Cities[ref.City].AirportDepo != ref.Idx {
			return errors.New("read depo that is not an airport as airplane position")
		}

		p.Air.AirplaneAirports = append(p.Air.AirplaneAirports, ref.City)
	}

	if airplaneCount == 0 {
		return errors.New("there are no airplanes")
	}

	return nil
}

func readParcels(br *bufio.Reader, p *Problem) error {
	parcelCount, err := readInt(br)
	if err != nil {
		return err
	}
	depoCount := len(p.Depos)

	for parcelID := 0; parcelID < parcelCount; parcelID++ {
		srcID, tgtID, err := readIntPair(br)
		if err != nil {
			return err
		}
		if srcID >= depoCount || tgtID >= depoCount {
			return errors.New("read invalid depo as parcel source/target")
		}

		src, tgt := p.Depos[srcID], p.Depos[tgtID]

		if src.City != tgt.City {
			srcCity := &p.Cities[src.City]
			srcCity.OutboundParcelIDs[src.Idx] = append(srcCity.OutboundParcelIDs[src.Idx], parcelID)
			srcCity.ParcelCount++

			tgtCity := &p.Cities[tgt.City]
			tgtCity.InboundParcelIDs[tgt.Idx] = append(tgtCity.InboundParcelIDs[tgt.Idx], parcelID)
			tgtCity.ParcelCount++

			p.Air.ParcelIDs[src.City][tgt.City] = append(p.Air.ParcelIDs[src.City][tgt.City], parcelID)
		} else {
			city := &p.Cities[src.City]
			city.InnerParcelIDs[src.Idx][tgt.Idx] = append(city.InnerParcelIDs[src.Idx][tgt.Idx], parcelID)
			city.ParcelCount++
		}

		p.ParcelCount++
	}

	return nil
}

func readInt(br *bufio.Reader) (int, error) {
	line, err := readLine(br)
	if err != nil {
		return 0, err
	}
	// ParseUint (not Atoi) so a negative token is rejected here, at the
	// parse boundary, instead of later surviving an `>= count` upper-bound
	// check and indexing a slice with a negative index.
	v, err := strconv.ParseUint(strings.TrimSpace(line), 10, 63)
	if err != nil {
		return 0, fmt.Errorf("problem: expected non-negative integer: %w", err)
	}

	return int(v), nil
}

func readIntPair(br *bufio.Reader) (int, int, error) {
	line, err := readLine(br)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return 0, 0, errors.New("expected at least two integers, got none")
	}
	if len(fields) < 2 {
		return 0, 0, errors.New("expected at least two integers, got one")
	}
	v0, err := strconv.ParseUint(fields[0], 10, 63)
	if err != nil {
		return 0, 0, fmt.Errorf("problem: expected non-negative integer: %w", err)
	}
	v1, err := strconv.ParseUint(fields[1], 10, 63)
	if err != nil {
		return 0, 0, fmt.Errorf("problem: expected non-negative integer: %w", err)
	}

	return int(v0), int(v1), nil
}

// readLine returns the next non-comment, non-blank line, stripped of its
// trailing newline. Comment lines start with "%".
func readLine(br *bufio.Reader) (string, error) {
	for {
		line, err := br.ReadString('\n')
		if len(line) == 0 && err != nil {
			if err == io.EOF {
				return "", errors.New("expected integer, got end of file")
			}

			return "", fmt.Errorf("problem: readLine: %w", err)
		}

		trimmed := strings.TrimRight(line, "\r\n")
		if strings.HasPrefix(trimmed, "%") || strings.TrimSpace(trimmed) == "" {
			if err == io.EOF {
				return "", errors.New("expected integer, got end of file")
			}

			continue
		}

		return trimmed, nil
	}
}
