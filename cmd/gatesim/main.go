// cmd/gatesim/main.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// gatesim runs a traffic scenario through per-airport gate managers and
// reports how much the arrivals had to be delayed to keep them separated
// at the airspace boundary.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/mmp/arrivalgates/log"
	"github.com/mmp/arrivalgates/util"
)

var (
	scenarioFilename = flag.String("scenario", "", "filename of YAML file with a scenario definition")
	logLevel         = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir           = flag.String("logdir", "", "log file directory")
	traceFilename    = flag.String("trace", "", "write all scheduled arrivals to this file (msgpack+zstd)")
	dumpGates        = flag.Bool("dump", false, "print each airport's gate state at the end of the run")
	validateGates    = flag.Bool("validate", false, "check gate manager consistency after every update")
	seed             = flag.Int64("seed", 0, "random seed; overrides the scenario's if non-zero")
)

func main() {
	flag.Parse()

	lg := log.New(*logLevel, *logDir)

	if *scenarioFilename == "" {
		fmt.Fprintln(os.Stderr, "gatesim: must specify -scenario")
		flag.Usage()
		os.Exit(1)
	}

	var e util.ErrorLogger
	sc := LoadScenario(*scenarioFilename, &e)
	if e.HaveErrors() {
		e.PrintErrors(lg)
		os.Exit(1)
	}
	if *seed != 0 {
		sc.Seed = *seed
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	results, err := Run(ctx, sc, RunOptions{Validate: *validateGates}, lg)
	if err != nil {
		lg.Errorf("%v", err)
		os.Exit(1)
	}

	report(os.Stdout, results)

	if *dumpGates {
		for _, r := range results {
			fmt.Printf("\n%s:\n%s\n", r.Airport, r.Gates.DumpString())
		}
	}

	if *traceFilename != "" {
		if err := MakeTrace(sc.Seed, results).WriteFile(*traceFilename); err != nil {
			lg.Errorf("%s: %v", *traceFilename, err)
			os.Exit(1)
		}
		lg.Infof("%s: wrote trace", *traceFilename)
	}
}

func report(w io.Writer, results []*Result) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "AIRPORT\tARRIVALS\tMEAN DELAY\tMAX DELAY\tPEAK GATES")
	for _, r := range results {
		s := r.Stats()
		fmt.Fprintf(tw, "%s\t%d\t%.0fs\t%.0fs\t%d\n", s.Airport, s.Arrivals, s.MeanDelay, s.MaxDelay, s.PeakGates)
	}
	tw.Flush()
}
