// math/latlong_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"
)

func TestParseLatLong(t *testing.T) {
	type LL struct {
		str string
		pos Point2LL
	}
	latlongs := []LL{
		{str: "N40.37.58.400, W073.46.17.000", pos: Point2LL{-73.771385, 40.6328888}}, // JFK VOR
		{str: "N40.37.58.4,W073.46.17.000", pos: Point2LL{-73.771385, 40.6328888}},    // JFK VOR
		{str: "40.6328888, -73.771385", pos: Point2LL{-73.771385, 40.6328888}},        // JFK VOR
		{str: "+403758.400-0734617.000", pos: Point2LL{-73.7713928, 40.632885}},       // JFK VOR
	}

	for _, ll := range latlongs {
		p, err := ParseLatLong([]byte(ll.str))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", ll.str, err)
		}
		if p[0] != ll.pos[0] {
			t.Errorf("%s: got %.9g for longitude, expected %.9g", ll.str, p[0], ll.pos[0])
		}
		if p[1] != ll.pos[1] {
			t.Errorf("%s: got %.9g for latitude, expected %.9g", ll.str, p[1], ll.pos[1])
		}
	}

	for _, invalid := range []string{
		"E40.37.58.400, W073.46.17.000",
		"40.37.58.400, W073.46.17.000",
		"N40.37.58.400, -73.22",
		"N40.37.58.400, W073.46.17",
		"40632N/12345W",
		"",
	} {
		if _, err := ParseLatLong([]byte(invalid)); err == nil {
			t.Errorf("%s: no error was returned for invalid latlong string!", invalid)
		}
	}
}

func TestNMDistance2LL(t *testing.T) {
	for _, test := range []struct {
		name string
		a, b Point2LL
		nm   float32
	}{
		{name: "same point", a: Point2LL{-73.771385, 40.6328888}, b: Point2LL{-73.771385, 40.6328888}, nm: 0},
		{name: "JFK-LGA", a: Point2LL{-73.771385, 40.6328888}, b: Point2LL{-73.8726, 40.7772}, nm: 9.813},
		{name: "one degree latitude", a: Point2LL{0, 0}, b: Point2LL{0, 1}, nm: 60.04},
	} {
		if d := NMDistance2LL(test.a, test.b); Abs(d-test.nm) > 0.01 {
			t.Errorf("%s: got %f nm, expected %f", test.name, d, test.nm)
		}
		if d, r := NMDistance2LL(test.b, test.a), NMDistance2LL(test.a, test.b); d != r {
			t.Errorf("%s: distance not symmetric: %f vs %f", test.name, d, r)
		}
	}
}

func TestNMRadiansConversion(t *testing.T) {
	if r := NMToRadians(5); Abs(r-0.00145346) > 1e-7 {
		t.Errorf("5nm: got %g radians, expected 0.00145346", r)
	}
	for _, nm := range []float32{0, 1, 5, 25, 250} {
		if rt := RadiansToNM(NMToRadians(nm)); Abs(rt-nm) > 1e-3*Max(nm, 1) {
			t.Errorf("%f nm: round trip gave %f", nm, rt)
		}
	}
	if r := NMToRadians(-5); r >= 0 {
		t.Errorf("negative distance should stay negative: got %f", r)
	}
}

func TestOffset2LL(t *testing.T) {
	p := Point2LL{-73.771385, 40.6328888}
	nmPerLongitude := NMPerLongitudeAt(p)
	for _, hdg := range []float32{0, 90, 180, 270, 45} {
		q := Offset2LL(p, hdg, 20, nmPerLongitude)
		if d := NMDistance2LL(p, q); Abs(d-20) > 0.2 {
			t.Errorf("heading %f: offset point is %f nm away, expected 20", hdg, d)
		}
	}
}

func TestDMSStringParses(t *testing.T) {
	for _, p := range []Point2LL{{-73.771385, 40.6328888}, {151.1772, -33.9461}, {-0.4614, 51.47}} {
		s := p.DMSString()
		q, err := ParseLatLong([]byte(s))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", s, err)
			continue
		}
		if Abs(p[0]-q[0]) > 1e-4 || Abs(p[1]-q[1]) > 1e-4 {
			t.Errorf("%v: DMS string %s parsed to %v", p, s, q)
		}
	}
}
