// cmd/gatesim/sim.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"fmt"
	"log/slog"
	gomath "math"
	"time"

	"github.com/mmp/arrivalgates/gate"
	"github.com/mmp/arrivalgates/log"
	"github.com/mmp/arrivalgates/math"
	"github.com/mmp/arrivalgates/rand"
	"github.com/mmp/arrivalgates/util"

	"golang.org/x/sync/errgroup"
)

// Arrival records when and where an arrival was scheduled to enter the
// terminal airspace. Times are in seconds since the start of the run.
type Arrival struct {
	Airport  string        `msgpack:"airport"`
	Callsign string        `msgpack:"callsign"`
	Gate     math.Point2LL `msgpack:"gate"`
	Spawn    float32       `msgpack:"spawn"`
	Crossing float32       `msgpack:"crossing"`
	// How much later the arrival crosses the boundary than it would have
	// without any other traffic.
	Delay float32 `msgpack:"delay"`
}

type Result struct {
	Airport   string
	Arrivals  []Arrival
	PeakGates int
	// Number of simulation steps taken.
	Ticks int64
	// The airport's gate manager at the end of the run.
	Gates *gate.Manager
}

type Stats struct {
	Airport   string
	Arrivals  int
	MeanDelay float32
	MaxDelay  float32
	PeakGates int
}

func (r *Result) Stats() Stats {
	s := Stats{Airport: r.Airport, Arrivals: len(r.Arrivals), PeakGates: r.PeakGates}
	if len(r.Arrivals) > 0 {
		delays := util.MapSlice(r.Arrivals, func(a Arrival) float32 { return a.Delay })
		sum := util.ReduceSlice(delays, func(d, sum float32) float32 { return sum + d }, 0)
		s.MeanDelay = sum / float32(len(delays))
		s.MaxDelay = util.ReduceSlice(delays, func(d, mx float32) float32 { return math.Max(d, mx) }, 0)
	}
	return s
}

type RunOptions struct {
	// Check the gate manager's internal consistency after every tick.
	Validate bool
}

// Run simulates arrivals to each of the scenario's airports. Airports are
// independent and each one is run in its own goroutine with its own gate
// manager. Results are returned in alphabetical order of airport.
func Run(ctx context.Context, sc *Scenario, opts RunOptions, lg *log.Logger) ([]*Result, error) {
	names := util.SortedMapKeys(sc.Airports)
	results := make([]*Result, len(names))

	eg, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		eg.Go(func() error {
			defer lg.CatchAndReportCrash()

			as := makeAirportSim(name, sc.Airports[name], sc, sc.Seed+int64(i), lg)
			r, err := as.run(ctx, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for i, r := range results {
		if r == nil {
			return nil, fmt.Errorf("%s: simulation did not complete", names[i])
		}
	}
	return results, nil
}

type airportSim struct {
	name string
	cfg  *AirportConfig

	duration, tick time.Duration
	lead, spacing  float32

	gates          *gate.Manager
	gateTree       *math.KDNode
	nmPerLongitude float32
	rand           *rand.Rand
	lg             *log.Logger

	nextSpawn float64
	result    Result
}

func makeAirportSim(name string, cfg *AirportConfig, sc *Scenario, seed int64, lg *log.Logger) *airportSim {
	lg = lg.With(slog.String("airport", name))

	// BuildKDTree reorders its argument.
	gates := append([]math.Point2LL(nil), cfg.gates...)

	return &airportSim{
		name:           name,
		cfg:            cfg,
		duration:       sc.Duration,
		tick:           sc.Tick,
		lead:           float32(cfg.LeadTime.Seconds()),
		spacing:        float32(cfg.Spacing.Seconds()),
		gates:          gate.NewManager(sc.SeparationNM, lg),
		gateTree:       math.BuildKDTree(gates),
		nmPerLongitude: math.NMPerLongitudeAt(cfg.location),
		rand:           rand.MakeSeeded(seed),
		lg:             lg,
		result:         Result{Airport: name},
	}
}

func (as *airportSim) run(ctx context.Context, opts RunOptions) (*Result, error) {
	as.nextSpawn = float64(as.randomInitialWait())

	// Count ticks; a float32 time that is repeatedly incremented by a
	// small tick eventually stops advancing.
	nTicks := int64(as.duration / as.tick)
	for i := int64(0); i <= nTicks; i++ {
		now := float32((time.Duration(i) * as.tick).Seconds())
		as.result.Ticks++

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		as.gates.Update(now)

		for float64(now) >= as.nextSpawn {
			if err := as.spawnArrival(now); err != nil {
				return nil, err
			}
			next := as.nextSpawn + float64(as.randomWait())
			if next <= as.nextSpawn {
				return nil, fmt.Errorf("arrival rate %.1f is too high", as.cfg.ArrivalRate)
			}
			as.nextSpawn = next
		}

		as.result.PeakGates = math.Max(as.result.PeakGates, as.gates.Len())

		if opts.Validate {
			if err := as.gates.Validate(); err != nil {
				as.lg.Errorf("%.0fs: %v", now, err)
				return nil, err
			}
		}
	}

	as.result.Gates = as.gates
	as.lg.Info("run complete", slog.Int("arrivals", len(as.result.Arrivals)),
		slog.Int("peak_gates", as.result.PeakGates))

	return &as.result, nil
}

// spawnArrival generates an arrival from a random direction and schedules
// it through the gate closest to where it meets the boundary, delaying
// it if necessary so that it is separated from other arrivals at nearby
// gates.
func (as *airportSim) spawnArrival(now float32) error {
	hdg := as.rand.Float32() * 360
	p := math.Offset2LL(as.cfg.location, hdg, as.cfg.BoundaryNM, as.nmPerLongitude)
	g, ok := as.gateTree.Nearest(p, as.nmPerLongitude)
	if !ok {
		return fmt.Errorf("no gates")
	}

	desired := now + as.lead
	crossing := desired
	// Anything at or before now has already been expired, so an open time
	// after now means there is traffic near the gate.
	if open := as.gates.GetGateOpenTime(g); open > now {
		crossing = math.Max(desired, open+as.spacing)
	}
	as.gates.SetGateTime(g, crossing)

	a := Arrival{
		Airport:  as.name,
		Callsign: as.callsign(),
		Gate:     g,
		Spawn:    now,
		Crossing: crossing,
		Delay:    crossing - desired,
	}
	as.result.Arrivals = append(as.result.Arrivals, a)

	as.lg.Debug("arrival scheduled", slog.String("callsign", a.Callsign), slog.String("gate", g.DMSString()),
		slog.Float64("crossing", float64(crossing)), slog.Float64("delay", float64(a.Delay)))

	return nil
}

func (as *airportSim) callsign() string {
	idx := rand.SampleWeighted(as.rand, as.cfg.airlines, func(a Airline) float32 { return a.Weight })
	return fmt.Sprintf("%s%d", as.cfg.airlines[idx].ICAO, 100+as.rand.Intn(9900))
}

// randomWait returns the time until the next arrival, varying the
// average interval implied by the arrival rate by up to 15%.
func (as *airportSim) randomWait() float32 {
	rate := as.cfg.ArrivalRate
	if rate == 0 {
		return float32(gomath.Inf(1))
	}
	avgSeconds := 3600 / rate
	return math.Lerp(as.rand.Float32(), .85*avgSeconds, 1.15*avgSeconds)
}

// Wait from 0 up to the average interval.
func (as *airportSim) randomInitialWait() float32 {
	rate := as.cfg.ArrivalRate
	if rate == 0 {
		return float32(gomath.Inf(1))
	}
	return as.rand.Float32() * 3600 / rate
}
