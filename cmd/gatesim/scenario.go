// cmd/gatesim/scenario.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"os"
	"time"

	"github.com/mmp/arrivalgates/gate"
	"github.com/mmp/arrivalgates/math"
	"github.com/mmp/arrivalgates/util"

	"gopkg.in/yaml.v3"
)

// Scenario describes a traffic run: a set of airports, each with a ring
// of boundary gates that arrivals are sent through.
type Scenario struct {
	Seed         int64                     `yaml:"seed"`
	Duration     time.Duration             `yaml:"duration"`
	Tick         time.Duration             `yaml:"tick"`
	SeparationNM float32                   `yaml:"separation_nm"`
	Airports     map[string]*AirportConfig `yaml:"airports"`
}

type AirportConfig struct {
	Location string `yaml:"location"`
	// Radius of the terminal airspace boundary.
	BoundaryNM float32 `yaml:"boundary_nm"`
	// Number of gates to place around the boundary.
	NumGates int `yaml:"num_gates"`
	// Additional gates at fixed locations.
	Gates []string `yaml:"gates"`
	// Arrivals per hour.
	ArrivalRate float32 `yaml:"arrival_rate"`
	// Time from when an arrival is generated until it reaches the boundary
	// if there is no other traffic.
	LeadTime time.Duration `yaml:"lead_time"`
	// Minimum time between arrivals crossing nearby gates.
	Spacing time.Duration `yaml:"spacing"`
	// Relative frequency of each airline's arrivals, keyed by ICAO code.
	Airlines map[string]float32 `yaml:"airlines"`

	location math.Point2LL
	gates    []math.Point2LL
	airlines []Airline
}

type Airline struct {
	ICAO   string
	Weight float32
}

var defaultAirlines = []Airline{
	{ICAO: "AAL", Weight: 20},
	{ICAO: "DAL", Weight: 20},
	{ICAO: "UAL", Weight: 20},
	{ICAO: "JBU", Weight: 15},
	{ICAO: "SWA", Weight: 10},
	{ICAO: "RPA", Weight: 10},
	{ICAO: "EDV", Weight: 5},
}

const (
	defaultDuration   = time.Hour
	defaultTick       = time.Second
	defaultBoundaryNM = 40
	defaultNumGates   = 8
	defaultLeadTime   = 15 * time.Minute
	defaultSpacing    = time.Minute

	// Candidate gate positions are spaced this many degrees apart around
	// the boundary.
	boundaryStepDegrees = 5
)

func LoadScenario(fn string, e *util.ErrorLogger) *Scenario {
	e.Push("File " + fn)
	defer e.Pop()

	b, err := os.ReadFile(fn)
	if err != nil {
		e.Error(err)
		return nil
	}
	return ParseScenario(b, e)
}

// ParseScenario decodes a YAML scenario, fills in defaults, and checks it
// for errors. All of the errors found are added to e, in which case nil
// is returned.
func ParseScenario(b []byte, e *util.ErrorLogger) *Scenario {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		e.Error(err)
		return nil
	}

	sc.postDeserialize(e)
	if e.HaveErrors() {
		return nil
	}
	return &sc
}

func (sc *Scenario) postDeserialize(e *util.ErrorLogger) {
	if sc.Duration == 0 {
		sc.Duration = defaultDuration
	} else if sc.Duration < 0 {
		e.ErrorString("duration %s must be positive", sc.Duration)
	}
	if sc.Tick == 0 {
		sc.Tick = defaultTick
	} else if sc.Tick < 0 {
		e.ErrorString("tick %s must be positive", sc.Tick)
	}
	if sc.SeparationNM == 0 {
		sc.SeparationNM = gate.DefaultMinSeparationNM
	} else if sc.SeparationNM < 0 {
		e.ErrorString("separation_nm %.1f must be positive", sc.SeparationNM)
	}

	if len(sc.Airports) == 0 {
		e.ErrorString("no airports specified")
	}
	for _, name := range util.SortedMapKeys(sc.Airports) {
		e.Push("Airport " + name)
		if ap := sc.Airports[name]; ap == nil {
			e.ErrorString("no configuration specified")
		} else {
			ap.postDeserialize(e)
		}
		e.Pop()
	}
}

func (ap *AirportConfig) postDeserialize(e *util.ErrorLogger) {
	if ap.Location == "" {
		e.ErrorString("\"location\" must be specified")
	} else if p, err := math.ParseLatLong([]byte(ap.Location)); err != nil {
		e.Error(err)
	} else {
		ap.location = p
	}

	if ap.BoundaryNM == 0 {
		ap.BoundaryNM = defaultBoundaryNM
	} else if ap.BoundaryNM < 0 {
		e.ErrorString("boundary_nm %.1f must be positive", ap.BoundaryNM)
	}
	if ap.NumGates == 0 && len(ap.Gates) == 0 {
		ap.NumGates = defaultNumGates
	} else if ap.NumGates < 0 {
		e.ErrorString("num_gates %d must not be negative", ap.NumGates)
	}
	if ap.ArrivalRate < 0 {
		e.ErrorString("arrival_rate %.1f must not be negative", ap.ArrivalRate)
	}
	if ap.LeadTime == 0 {
		ap.LeadTime = defaultLeadTime
	} else if ap.LeadTime < 0 {
		e.ErrorString("lead_time %s must be positive", ap.LeadTime)
	}
	if ap.Spacing == 0 {
		ap.Spacing = defaultSpacing
	} else if ap.Spacing < 0 {
		e.ErrorString("spacing %s must be positive", ap.Spacing)
	}

	if len(ap.Airlines) == 0 {
		ap.airlines = defaultAirlines
	} else {
		for _, icao := range util.SortedMapKeys(ap.Airlines) {
			if w := ap.Airlines[icao]; w < 0 {
				e.ErrorString("airline %s: weight %.1f must not be negative", icao, w)
			} else if w > 0 {
				ap.airlines = append(ap.airlines, Airline{ICAO: icao, Weight: w})
			}
		}
		if len(ap.airlines) == 0 {
			e.ErrorString("no airlines with positive weight")
		}
	}

	for i, g := range ap.Gates {
		if p, err := math.ParseLatLong([]byte(g)); err != nil {
			e.ErrorString("gate %d: %v", i, err)
		} else {
			ap.gates = append(ap.gates, p)
		}
	}

	if !ap.location.IsZero() && ap.BoundaryNM > 0 && ap.NumGates > 0 {
		ap.gates = append(ap.gates, math.SelectDistributedPoints(ap.boundaryPoints(), ap.NumGates)...)
	}
}

// boundaryPoints returns candidate gate locations evenly spaced around
// the airspace boundary.
func (ap *AirportConfig) boundaryPoints() []math.Point2LL {
	nmPerLongitude := math.NMPerLongitudeAt(ap.location)
	var p []math.Point2LL
	for hdg := 0; hdg < 360; hdg += boundaryStepDegrees {
		p = append(p, math.Offset2LL(ap.location, float32(hdg), ap.BoundaryNM, nmPerLongitude))
	}
	return p
}
