/*
DESCRIPTION
  sps_test.go provides testing for the sequence parameter set derivations and
  validation found in sps.go.

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

	"github.com/pkg/errors"
)

func TestSPSDerived(t *testing.T) {
	tests := []struct {
		in SPS

		maxFrameNum, maxRef    int
		width, heightMapUnits  int
		frameHeight, sizeInMbs int
	}{
		{
			in:             SPS{PicWidthInMBSMinus1: 10, PicHeightInMapUnitsMinus1: 8, FrameMBSOnlyFlag: true},
			maxFrameNum:    16,
			maxRef:         1,
			width:          11,
			heightMapUnits: 9,
			frameHeight:    9,
			sizeInMbs:      99,
		},
		{
			in:             SPS{Log2MaxFrameNumMinus4: 4, MaxNumRefFrames: 4, PicWidthInMBSMinus1: 44, PicHeightInMapUnitsMinus1: 17},
			maxFrameNum:    256,
			maxRef:         4,
			width:          45,
			heightMapUnits: 18,
			frameHeight:    36,
			sizeInMbs:      1620,
		},
	}

	for i, test := range tests {
		s := &test.in
		got := [6]int{s.MaxFrameNum(), s.MaxRefFrames(), s.PicWidthInMbs(), s.PicHeightInMapUnits(), s.FrameHeightInMbs(), s.PicSizeInMbs()}
		want := [6]int{test.maxFrameNum, test.maxRef, test.width, test.heightMapUnits, test.frameHeight, test.sizeInMbs}
		if got != want {
			t.Errorf("did not get expected result for test %d\nGot: %v\nWant: %v\n", i, got, want)
		}
		if s.PicSizeInMapUnits() != test.width*test.heightMapUnits {
			t.Errorf("test %d: PicSizeInMapUnits = %d", i, s.PicSizeInMapUnits())
		}
	}
}

func TestSPSValidate(t *testing.T) {
	tests := []struct {
		in   SPS
		want error
	}{
		{in: SPS{Log2MaxFrameNumMinus4: 12, MaxNumRefFrames: 16, PicWidthInMBSMinus1: 1023, PicHeightInMapUnitsMinus1: 1023}},
		{in: SPS{Log2MaxFrameNumMinus4: 13}, want: ErrInvalidSPS},
		{in: SPS{MaxNumRefFrames: 17}, want: ErrInvalidSPS},
		{in: SPS{PicWidthInMBSMinus1: 1024}, want: ErrInvalidSPS},
		{in: SPS{PicHeightInMapUnitsMinus1: 1 << 40}, want: ErrInvalidSPS},
	}
	for i, test := range tests {
		err := test.in.Validate()
		if !errors.Is(err, test.want) {
			t.Errorf("test %d: got error %v, want %v", i, err, test.want)
		}
	}
}
