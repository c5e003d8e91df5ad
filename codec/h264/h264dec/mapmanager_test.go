/*
DESCRIPTION
  mapmanager_test.go provides testing for MapManager in mapmanager.go.

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

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

// sps4x2 describes a 4x2 macroblock picture.
func sps4x2() *SPS {
	return &SPS{
		LevelIDC:                  30,
		MaxNumRefFrames:           2,
		PicWidthInMBSMinus1:       3,
		PicHeightInMapUnitsMinus1: 1,
		FrameMBSOnlyFlag:          true,
	}
}

func TestMapManagerStatic(t *testing.T) {
	tests := []struct {
		name string
		pps  *PPS
		want []int
	}{
		{
			name: "single group",
			pps:  &PPS{},
			want: []int{0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name: "interleaved",
			pps:  &PPS{NumSliceGroupsMinus1: 1, SliceGroupMapType: mapTypeInterleaved, RunLengthMinus1: []int{1, 2}},
			want: []int{0, 0, 1, 1, 1, 0, 0, 1},
		},
		{
			name: "dispersed",
			pps:  &PPS{NumSliceGroupsMinus1: 1, SliceGroupMapType: mapTypeDispersed},
			want: []int{0, 1, 0, 1, 1, 0, 1, 0},
		},
		{
			name: "foreground",
			pps:  &PPS{NumSliceGroupsMinus1: 1, SliceGroupMapType: mapTypeForeground, TopLeft: []int{1}, BottomRight: []int{6}},
			want: []int{1, 0, 0, 1, 1, 0, 0, 1},
		},
		{
			name: "explicit",
			pps: &PPS{
				NumSliceGroupsMinus1:    2,
				SliceGroupMapType:       mapTypeExplicit,
				PicSizeInMapUnitsMinus1: 7,
				SliceGroupId:            []int{2, 2, 1, 0, 0, 1, 2, 2},
			},
			want: []int{2, 2, 1, 0, 0, 1, 2, 2},
		},
	}

	for _, test := range tests {
		m, err := NewMapManager(sps4x2(), test.pps, (*logging.TestLogger)(t))
		if err != nil {
			t.Errorf("%s: did not expect error: %v", test.name, err)
			continue
		}
		if m.SliceGroupMap() == nil {
			t.Errorf("%s: static map not built on creation", test.name)
			continue
		}
		if diff := cmp.Diff(test.want, m.SliceGroupMap().Groups()); diff != "" {
			t.Errorf("%s: unexpected groups (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestMapManagerMapperKind(t *testing.T) {
	log := (*logging.TestLogger)(t)

	flat, err := NewMapManager(sps4x2(), &PPS{}, log)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	mapper, err := flat.Mapper(&SliceHeader{FirstMbInSlice: 3})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if _, ok := mapper.(*FlatMBlockMapper); !ok {
		t.Errorf("got %T for one slice group, want *FlatMBlockMapper", mapper)
	}
	if got := mapper.Address(2); got != 5 {
		t.Errorf("Address(2) = %d, want 5", got)
	}

	fmo, err := NewMapManager(sps4x2(), &PPS{NumSliceGroupsMinus1: 1, SliceGroupMapType: mapTypeDispersed}, log)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	mapper, err = fmo.Mapper(&SliceHeader{FirstMbInSlice: 1})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if _, ok := mapper.(*PrebuiltMBlockMapper); !ok {
		t.Errorf("got %T for two slice groups, want *PrebuiltMBlockMapper", mapper)
	}
	if got := mapper.Address(2); got != 4 {
		t.Errorf("Address(2) = %d, want 4", got)
	}

	_, err = fmo.Mapper(&SliceHeader{FirstMbInSlice: 8})
	if !errors.Is(err, ErrInvalidSlice) {
		t.Errorf("got error %v for first_mb_in_slice outside picture, want %v", err, ErrInvalidSlice)
	}
}

func TestMapManagerDynamicCache(t *testing.T) {
	pps := &PPS{
		NumSliceGroupsMinus1:       1,
		SliceGroupMapType:          mapTypeRasterScan,
		SliceGroupChangeRateMinus1: 1,
	}
	m, err := NewMapManager(sps4x2(), pps, (*logging.TestLogger)(t))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if m.SliceGroupMap() != nil {
		t.Fatalf("dynamic map built before first slice")
	}

	_, err = m.Mapper(&SliceHeader{SliceGroupChangeCycle: 1})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	first := m.SliceGroupMap()
	if diff := cmp.Diff([]int{0, 0, 1, 1, 1, 1, 1, 1}, first.Groups()); diff != "" {
		t.Errorf("unexpected groups for cycle 1 (-want +got):\n%s", diff)
	}

	// Same cycle, different slice; the map must not be rebuilt.
	_, err = m.Mapper(&SliceHeader{SliceGroupChangeCycle: 1, FirstMbInSlice: 2})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if m.SliceGroupMap() != first {
		t.Errorf("map rebuilt for unchanged slice_group_change_cycle")
	}

	_, err = m.Mapper(&SliceHeader{SliceGroupChangeCycle: 2})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	second := m.SliceGroupMap()
	if second == first {
		t.Fatalf("map not rebuilt for new slice_group_change_cycle")
	}
	if diff := cmp.Diff([]int{0, 0, 0, 0, 1, 1, 1, 1}, second.Groups()); diff != "" {
		t.Errorf("unexpected groups for cycle 2 (-want +got):\n%s", diff)
	}

	// Group 0 is capped at the picture size.
	_, err = m.Mapper(&SliceHeader{SliceGroupChangeCycle: 100})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if diff := cmp.Diff([]int{0, 0, 0, 0, 0, 0, 0, 0}, m.SliceGroupMap().Groups()); diff != "" {
		t.Errorf("unexpected groups for large cycle (-want +got):\n%s", diff)
	}
}

func TestMapManagerDynamicTypes(t *testing.T) {
	tests := []struct {
		name  string
		typ   int
		dir   bool
		cycle int
		want  []int
	}{
		{name: "box-out", typ: mapTypeBoxOut, cycle: 1, want: []int{1, 1, 1, 1, 1, 1, 0, 1}},
		{name: "raster scan reversed", typ: mapTypeRasterScan, dir: true, cycle: 1, want: []int{1, 1, 1, 1, 1, 1, 0, 0}},
		{name: "wipe", typ: mapTypeWipe, cycle: 2, want: []int{0, 0, 1, 1, 0, 0, 1, 1}},
		{name: "wipe reversed", typ: mapTypeWipe, dir: true, cycle: 1, want: []int{1, 1, 1, 0, 1, 1, 1, 0}},
	}

	for _, test := range tests {
		pps := &PPS{
			NumSliceGroupsMinus1:       1,
			SliceGroupMapType:          test.typ,
			SliceGroupChangeDirection:  test.dir,
			SliceGroupChangeRateMinus1: 1,
		}
		if test.typ == mapTypeBoxOut {
			pps.SliceGroupChangeRateMinus1 = 0
		}
		m, err := NewMapManager(sps4x2(), pps, (*logging.TestLogger)(t))
		if err != nil {
			t.Errorf("%s: did not expect error: %v", test.name, err)
			continue
		}
		_, err = m.Mapper(&SliceHeader{SliceGroupChangeCycle: test.cycle})
		if err != nil {
			t.Errorf("%s: did not expect error: %v", test.name, err)
			continue
		}
		if diff := cmp.Diff(test.want, m.SliceGroupMap().Groups()); diff != "" {
			t.Errorf("%s: unexpected groups (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestMapManagerErrors(t *testing.T) {
	mbaff := sps4x2()
	mbaff.FrameMBSOnlyFlag = false
	mbaff.MBAdaptiveFrameFieldFlag = true

	tests := []struct {
		name string
		sps  *SPS
		pps  *PPS
		want error
	}{
		{
			name: "unknown map type",
			sps:  sps4x2(),
			pps:  &PPS{NumSliceGroupsMinus1: 1, SliceGroupMapType: 7},
			want: ErrUnsupportedMapType,
		},
		{
			name: "mbaff",
			sps:  mbaff,
			pps:  &PPS{NumSliceGroupsMinus1: 1, SliceGroupMapType: mapTypeDispersed},
			want: ErrUnsupportedMBAFF,
		},
		{
			name: "bad explicit map",
			sps:  sps4x2(),
			pps:  &PPS{NumSliceGroupsMinus1: 1, SliceGroupMapType: mapTypeExplicit, PicSizeInMapUnitsMinus1: 7, SliceGroupId: []int{0, 1, 2, 0, 0, 0, 0, 0}},
			want: ErrInvalidPPS,
		},
	}

	for _, test := range tests {
		_, err := NewMapManager(test.sps, test.pps, (*logging.TestLogger)(t))
		if !errors.Is(err, test.want) {
			t.Errorf("%s: got error %v, want %v", test.name, err, test.want)
		}
	}
}
