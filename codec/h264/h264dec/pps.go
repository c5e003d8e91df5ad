/*
DESCRIPTION
  pps.go provides the picture parameter set fields describing slice groups
  (flexible macroblock ordering) and reference list defaults.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

import "github.com/pkg/errors"

// Slice group map types as defined in section 7.4.2.2.
const (
	mapTypeInterleaved = iota
	mapTypeDispersed
	mapTypeForeground
	mapTypeBoxOut
	mapTypeRasterScan
	mapTypeWipe
	mapTypeExplicit
)

// maxSliceGroups is the largest num_slice_groups_minus1 + 1 permitted by any
// profile (A.2).
const maxSliceGroups = 8

// PPS describes the subset of a picture parameter set (section 7.3.2.2) used
// here. Specification Page 46 7.3.2.2.
type PPS struct {
	ID, SPSID                      int
	NumSliceGroupsMinus1           int
	SliceGroupMapType              int
	RunLengthMinus1                []int
	TopLeft                        []int
	BottomRight                    []int
	SliceGroupChangeDirection      bool
	SliceGroupChangeRateMinus1     int
	PicSizeInMapUnitsMinus1        int
	SliceGroupId                   []int
	NumRefIdxL0DefaultActiveMinus1 int
	NumRefIdxL1DefaultActiveMinus1 int
}

// NumSliceGroups returns num_slice_groups_minus1 + 1.
func (p *PPS) NumSliceGroups() int {
	return p.NumSliceGroupsMinus1 + 1
}

// dynamic reports whether the slice group map changes from picture to picture
// with slice_group_change_cycle, i.e. map types 3 to 5.
func (p *PPS) dynamic() bool {
	return p.NumSliceGroupsMinus1 > 0 && p.SliceGroupMapType >= mapTypeBoxOut && p.SliceGroupMapType <= mapTypeWipe
}

// SliceGroupChangeRate returns slice_group_change_rate_minus1 + 1.
func (p *PPS) SliceGroupChangeRate() int {
	return p.SliceGroupChangeRateMinus1 + 1
}

// Validate checks the slice group syntax elements of p against the semantics
// of section 7.4.2.2 for a sequence described by sps. An unknown map type is
// reported as ErrUnsupportedMapType, anything else as ErrInvalidPPS.
func (p *PPS) Validate(sps *SPS) error {
	if p.NumSliceGroupsMinus1 < 0 || p.NumSliceGroupsMinus1 >= maxSliceGroups {
		return errors.Wrapf(ErrInvalidPPS, "num_slice_groups_minus1 %d out of range", p.NumSliceGroupsMinus1)
	}
	if p.NumRefIdxL0DefaultActiveMinus1 < 0 || p.NumRefIdxL0DefaultActiveMinus1 > 31 ||
		p.NumRefIdxL1DefaultActiveMinus1 < 0 || p.NumRefIdxL1DefaultActiveMinus1 > 31 {
		return errors.Wrap(ErrInvalidPPS, "num_ref_idx_default_active_minus1 out of range")
	}
	if p.NumSliceGroupsMinus1 == 0 {
		return nil
	}

	var (
		n       = p.NumSliceGroups()
		size    = sps.PicSizeInMapUnits()
		w       = sps.PicWidthInMbs()
		inRange = func(v int) bool { return v >= 0 && v < size }
	)

	switch p.SliceGroupMapType {
	case mapTypeInterleaved:
		if len(p.RunLengthMinus1) < n {
			return errors.Wrapf(ErrInvalidPPS, "need %d run lengths, have %d", n, len(p.RunLengthMinus1))
		}
		for i, r := range p.RunLengthMinus1[:n] {
			if !inRange(r) {
				return errors.Wrapf(ErrInvalidPPS, "run_length_minus1[%d] %d out of range", i, r)
			}
		}
	case mapTypeDispersed:
	case mapTypeForeground:
		if len(p.TopLeft) < n-1 || len(p.BottomRight) < n-1 {
			return errors.Wrapf(ErrInvalidPPS, "need %d foreground rectangles", n-1)
		}
		for i := 0; i < n-1; i++ {
			tl, br := p.TopLeft[i], p.BottomRight[i]
			if !inRange(tl) || !inRange(br) || tl > br || tl%w > br%w {
				return errors.Wrapf(ErrInvalidPPS, "bad foreground rectangle %d (%d, %d)", i, tl, br)
			}
		}
	case mapTypeBoxOut, mapTypeRasterScan, mapTypeWipe:
		if n != 2 {
			return errors.Wrapf(ErrInvalidPPS, "map type %d needs 2 slice groups, have %d", p.SliceGroupMapType, n)
		}
		if !inRange(p.SliceGroupChangeRateMinus1) {
			return errors.Wrapf(ErrInvalidPPS, "slice_group_change_rate_minus1 %d out of range", p.SliceGroupChangeRateMinus1)
		}
	case mapTypeExplicit:
		if p.PicSizeInMapUnitsMinus1+1 != size || len(p.SliceGroupId) != size {
			return errors.Wrapf(ErrInvalidPPS, "slice_group_id has %d entries, picture has %d map units", len(p.SliceGroupId), size)
		}
		for i, g := range p.SliceGroupId {
			if g < 0 || g >= n {
				return errors.Wrapf(ErrInvalidPPS, "slice_group_id[%d] %d out of range", i, g)
			}
		}
	default:
		return errors.Wrapf(ErrUnsupportedMapType, "type %d", p.SliceGroupMapType)
	}
	return nil
}
