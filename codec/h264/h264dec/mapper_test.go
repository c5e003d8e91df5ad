/*
DESCRIPTION
  mapper_test.go provides testing for the macroblock mappers in mapper.go and
  the slice group map builders in mbmap.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlatMBlockMapper(t *testing.T) {
	tests := []struct {
		width, first int
	}{
		{width: 4, first: 0},
		{width: 4, first: 5},
		{width: 11, first: 22},
		{width: 1, first: 3},
	}

	for _, test := range tests {
		m := NewFlatMBlockMapper(test.width, test.first)
		for i := 0; i < 3*test.width; i++ {
			addr := test.first + i
			if got := m.Address(i); got != addr {
				t.Errorf("Address(%d) with width %d first %d = %d, want %d", i, test.width, test.first, got, addr)
			}
			if got, want := m.MbX(i), addr%test.width; got != want {
				t.Errorf("MbX(%d) = %d, want %d", i, got, want)
			}
			if got, want := m.MbY(i), addr/test.width; got != want {
				t.Errorf("MbY(%d) = %d, want %d", i, got, want)
			}

			wantLeft := i > 0 && addr%test.width != 0
			if got := m.LeftAvailable(i); got != wantLeft {
				t.Errorf("LeftAvailable(%d) with width %d first %d = %t, want %t", i, test.width, test.first, got, wantLeft)
			}
			wantTop := addr-test.width >= test.first
			if got := m.TopAvailable(i); got != wantTop {
				t.Errorf("TopAvailable(%d) with width %d first %d = %t, want %t", i, test.width, test.first, got, wantTop)
			}
		}
	}
}

func TestFlatMBlockMapperDiagonals(t *testing.T) {
	// Slice starting at address 5, the second macroblock of row 1, in a
	// picture 4 wide. Index 3 is address 8 on the left border and index 6 is
	// address 11 on the right border.
	m := NewFlatMBlockMapper(4, 5)
	tests := []struct {
		i                 int
		topLeft, topRight bool
	}{
		{i: 0, topLeft: false, topRight: false},
		{i: 3, topLeft: false, topRight: true},
		{i: 4, topLeft: false, topRight: true},
		{i: 5, topLeft: true, topRight: true},
		{i: 6, topLeft: true, topRight: false},
	}
	for _, test := range tests {
		if got := m.TopLeftAvailable(test.i); got != test.topLeft {
			t.Errorf("TopLeftAvailable(%d) = %t, want %t", test.i, got, test.topLeft)
		}
		if got := m.TopRightAvailable(test.i); got != test.topRight {
			t.Errorf("TopRightAvailable(%d) = %t, want %t", test.i, got, test.topRight)
		}
	}
}

func TestBuildMapIndices(t *testing.T) {
	tests := []struct {
		groups    []int
		numGroups int
	}{
		{groups: []int{0, 0, 0, 0}, numGroups: 1},
		{groups: []int{0, 1, 0, 1, 1, 0, 1, 0}, numGroups: 2},
		{groups: []int{2, 0, 1, 2, 2, 1, 0, 0, 1}, numGroups: 3},
		{groups: dispersedMap(11, 9, 8), numGroups: 8},
		{groups: boxOutMap(11, 9, true, 40), numGroups: 2},
	}

	for i, test := range tests {
		m := buildMapIndices(test.groups, test.numGroups)
		for a := range test.groups {
			if got := m.Inverse()[m.Groups()[a]][m.Indices()[a]]; got != a {
				t.Errorf("test %d: inverse of address %d is %d", i, a, got)
			}
		}
		var total int
		for _, inv := range m.Inverse() {
			total += len(inv)
			for j := 1; j < len(inv); j++ {
				if inv[j] <= inv[j-1] {
					t.Errorf("test %d: inverse not in raster order: %v", i, inv)
				}
			}
		}
		if total != len(test.groups) {
			t.Errorf("test %d: inverse holds %d addresses, want %d", i, total, len(test.groups))
		}
	}
}

func TestSliceGroupMapBuilders(t *testing.T) {
	tests := []struct {
		name string
		got  []int
		want []int
	}{
		{
			name: "interleaved",
			got:  interleavedMap(4, 2, []int{2, 3}),
			want: []int{0, 0, 1, 1, 1, 0, 0, 1},
		},
		{
			name: "dispersed",
			got:  dispersedMap(4, 2, 2),
			want: []int{0, 1, 0, 1, 1, 0, 1, 0},
		},
		{
			name: "foreground",
			got:  foregroundMap(4, 3, 2, []int{5}, []int{6}),
			want: []int{1, 1, 1, 1, 1, 0, 0, 1, 1, 1, 1, 1},
		},
		{
			name: "foreground overlapping",
			got:  foregroundMap(3, 2, 3, []int{0, 0}, []int{0, 4}),
			want: []int{0, 1, 2, 1, 1, 2},
		},
		{
			name: "box-out one unit",
			got:  boxOutMap(3, 3, false, 1),
			want: []int{1, 1, 1, 1, 0, 1, 1, 1, 1},
		},
		{
			name: "box-out two units",
			got:  boxOutMap(3, 3, false, 2),
			want: []int{1, 1, 1, 0, 0, 1, 1, 1, 1},
		},
		{
			name: "raster scan",
			got:  rasterScanMap(3, 2, 2, false),
			want: []int{0, 0, 1, 1, 1, 1},
		},
		{
			name: "raster scan reversed",
			got:  rasterScanMap(3, 2, 2, true),
			want: []int{1, 1, 0, 0, 0, 0},
		},
		{
			name: "wipe",
			got:  wipeMap(3, 2, 3, false),
			want: []int{0, 0, 1, 0, 1, 1},
		},
	}

	for _, test := range tests {
		if diff := cmp.Diff(test.want, test.got); diff != "" {
			t.Errorf("%s: unexpected map (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestMapUnitsToMbs(t *testing.T) {
	frames := &SPS{PicWidthInMBSMinus1: 1, PicHeightInMapUnitsMinus1: 1, FrameMBSOnlyFlag: true}
	units := []int{0, 1, 1, 0}
	if diff := cmp.Diff(units, mapUnitsToMbs(units, frames)); diff != "" {
		t.Errorf("unexpected map for frame_mbs_only (-want +got):\n%s", diff)
	}

	fields := &SPS{PicWidthInMBSMinus1: 1, PicHeightInMapUnitsMinus1: 1}
	want := []int{0, 1, 0, 1, 1, 0, 1, 0}
	if diff := cmp.Diff(want, mapUnitsToMbs(units, fields)); diff != "" {
		t.Errorf("unexpected map for field pair map units (-want +got):\n%s", diff)
	}
}

func TestNextMbAddress(t *testing.T) {
	m := buildMapIndices(dispersedMap(4, 2, 2), 2)
	tests := []struct {
		n, want int
	}{
		{n: 0, want: 2},
		{n: 2, want: 5},
		{n: 5, want: 7},
		{n: 7, want: 8},
		{n: 1, want: 3},
		{n: 6, want: 8},
		{n: -1, want: 8},
		{n: 8, want: 8},
	}
	for _, test := range tests {
		if got := m.NextMbAddress(test.n); got != test.want {
			t.Errorf("NextMbAddress(%d) = %d, want %d", test.n, got, test.want)
		}
	}
}

func TestPrebuiltMBlockMapper(t *testing.T) {
	// Groups of a 4x2 picture:
	//  0 1 0 1
	//  1 0 1 0
	sgMap := buildMapIndices(dispersedMap(4, 2, 2), 2)

	tests := []struct {
		first int
		i     int
		addr  int
		x, y  int

		left, top, topLeft, topRight bool
	}{
		{first: 0, i: 0, addr: 0, x: 0, y: 0},
		{first: 0, i: 1, addr: 2, x: 2, y: 0},
		{first: 0, i: 2, addr: 5, x: 1, y: 1, topLeft: true, topRight: true},
		{first: 0, i: 3, addr: 7, x: 3, y: 1, topLeft: true},
		{first: 2, i: 1, addr: 5, x: 1, y: 1, topRight: true},
		{first: 1, i: 2, addr: 4, x: 0, y: 1, topRight: true},
		{first: 1, i: 3, addr: 6, x: 2, y: 1, topLeft: true, topRight: true},
	}

	for _, test := range tests {
		m := NewPrebuiltMBlockMapper(sgMap, test.first, 4)
		if got := m.Address(test.i); got != test.addr {
			t.Errorf("first %d: Address(%d) = %d, want %d", test.first, test.i, got, test.addr)
			continue
		}
		if x, y := m.MbX(test.i), m.MbY(test.i); x != test.x || y != test.y {
			t.Errorf("first %d: position of %d = (%d, %d), want (%d, %d)", test.first, test.i, x, y, test.x, test.y)
		}
		got := [4]bool{m.LeftAvailable(test.i), m.TopAvailable(test.i), m.TopLeftAvailable(test.i), m.TopRightAvailable(test.i)}
		want := [4]bool{test.left, test.top, test.topLeft, test.topRight}
		if got != want {
			t.Errorf("first %d: availability of %d (left, top, top-left, top-right) = %v, want %v", test.first, test.i, got, want)
		}
	}
}

func TestPrebuiltMBlockMapperSameGroup(t *testing.T) {
	// Two groups of rows in a 3x3 picture, so neighbours within a row and
	// between rows 0 and 1 share group 0.
	sgMap := buildMapIndices([]int{0, 0, 0, 0, 0, 0, 1, 1, 1}, 2)
	m := NewPrebuiltMBlockMapper(sgMap, 0, 3)

	// Address 4, centre of row 1.
	if !m.LeftAvailable(4) || !m.TopAvailable(4) || !m.TopLeftAvailable(4) || !m.TopRightAvailable(4) {
		t.Errorf("expected all neighbours of address 4 to be available")
	}

	// Address 6 starts group 1; nothing above it is in the slice.
	g1 := NewPrebuiltMBlockMapper(sgMap, 6, 3)
	if g1.Address(1) != 7 {
		t.Fatalf("Address(1) = %d, want 7", g1.Address(1))
	}
	if !g1.LeftAvailable(1) || g1.TopAvailable(1) || g1.TopLeftAvailable(1) || g1.TopRightAvailable(1) {
		t.Errorf("unexpected availability for address 7 in group 1")
	}
}
