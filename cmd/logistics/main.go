// Command logistics reads a problem instance, plans a multi-vehicle
// delivery schedule, and writes the resulting actions, grounded on the
// original implementation's main.rs entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/katalvlaran/logistics/orchestrator"
	"github.com/katalvlaran/logistics/problem"
	"github.com/katalvlaran/logistics/reporter"
	"github.com/katalvlaran/logistics/vehicle"
)

func main() {
	if err := run(); err != nil {
		log.SetFlags(0)
		log.Fatalf("logistics: %v", err)
	}
}

func run() error {
	start := time.Now()

	configPath := flag.String("config", "", "YAML file overriding the default truck/airplane cost and capacity")
	verbose := flag.Bool("verbose", false, "print per-phase progress to stderr")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] INPUT OUTPUT\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "INPUT and OUTPUT accept \"-\" for stdin/stdout.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()

		return fmt.Errorf("expected INPUT and OUTPUT arguments, got %d", flag.NArg())
	}
	inputPath, outputPath := flag.Arg(0), flag.Arg(1)

	cfg := vehicle.Default()
	if *configPath != "" {
		var err error
		cfg, err = vehicle.LoadOverride(*configPath)
		if err != nil {
			return err
		}
	}

	input, closeInput, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer closeInput()

	inputRep := rootReporter(*verbose, "Input")
	p, err := problem.Read(input, inputRep)
	if err != nil {
		return fmt.Errorf("reading problem: %w", err)
	}
	inputRep.Finish()

	fmt.Fprintf(os.Stderr, "Problem has %d cities, %d depots, %d parcels\n",
		len(p.Cities), len(p.Depos), p.ParcelCount)

	newReporter := func(label string, parcelCount int) reporter.Reporter {
		if !*verbose || parcelCount < 1000 {
			return reporter.Nop{}
		}

		return reporter.NewConsole(os.Stderr, label)
	}

	plan, err := orchestrator.Solve(context.Background(), p, cfg, newReporter)
	if err != nil {
		return fmt.Errorf("planning: %w", err)
	}

	gap := float64(plan.Cost)/float64(plan.MinCost) - 1.0
	avgPerParcel := float64(plan.Cost) / float64(p.ParcelCount)
	fmt.Fprintf(os.Stderr, "Plan cost %d, min cost %d (gap <= %.3f), avg %.2f per parcel\n",
		plan.Cost, plan.MinCost, gap, avgPerParcel)

	output, closeOutput, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()

	outputRep := rootReporter(*verbose, "Output")
	if err := orchestrator.WritePlan(output, plan); err != nil {
		return fmt.Errorf("writing plan: %w", err)
	}
	outputRep.Finish()

	fmt.Fprintf(os.Stderr, "Finished in %.2f s\n", time.Since(start).Seconds())

	return nil
}

func rootReporter(verbose bool, label string) reporter.Reporter {
	if !verbose {
		return reporter.Nop{}
	}

	return reporter.NewConsole(os.Stderr, label)
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}
