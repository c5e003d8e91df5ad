/*
DESCRIPTION
  sps.go provides the sequence parameter set fields consumed by reference
  picture management and slice group mapping, and the quantities derived from
  them.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

import "github.com/pkg/errors"

// Limits on parsed SPS values, from the semantics in section 7.4.2.1.1.
const (
	maxLog2MaxFrameNumMinus4 = 12
	maxNumRefFrames          = 16
	maxPicDimensionInMbs     = 1 << 10
)

// SPS describes the subset of a sequence parameter set (section 7.3.2.1.1)
// used here. Parsing is left to the caller; field names follow the syntax
// element names.
type SPS struct {
	// level_idc indicates the level to which the coded video sequence conforms.
	LevelIDC uint8

	// log2_max_frame_num_minus4 allows for derivation of MaxFrameNum using eq 7-10.
	Log2MaxFrameNumMinus4 uint64

	// max_num_ref_frames specifies the max number of short-term and long-term
	// reference frames that may be used by the decoding process for inter
	// prediction.
	MaxNumRefFrames uint64

	// gaps_in_frame_num_value_allowed_flag specifies whether frame_num may skip
	// values, see clause 8.2.5.2.
	GapsInFrameNumValueAllowed bool

	// pic_width_in_mbs_minus1 plus 1 specifies the width of each decoded picture
	// in units of macroblocks. See eq 7-13.
	PicWidthInMBSMinus1 uint64

	// pic_height_in_map_units_minus1 plus 1 specifies the height in slice group
	// map units of a decoded frame or field. See eq 7-16.
	PicHeightInMapUnitsMinus1 uint64

	// frame_mbs_only_flag if true means every coded picture is a frame
	// containing only frame macroblocks.
	FrameMBSOnlyFlag bool

	// mb_adaptive_frame_field_flag if true specifies the possible use of
	// switching between frame and field macroblocks within frames.
	MBAdaptiveFrameFieldFlag bool
}

// Validate checks that the SPS fields are within the ranges allowed by the
// semantics in section 7.4.2.1.1, so that later arithmetic on them is safe.
func (s *SPS) Validate() error {
	switch {
	case s.Log2MaxFrameNumMinus4 > maxLog2MaxFrameNumMinus4:
		return errors.Wrapf(ErrInvalidSPS, "log2_max_frame_num_minus4 %d out of range", s.Log2MaxFrameNumMinus4)
	case s.MaxNumRefFrames > maxNumRefFrames:
		return errors.Wrapf(ErrInvalidSPS, "max_num_ref_frames %d out of range", s.MaxNumRefFrames)
	case s.PicWidthInMBSMinus1 >= maxPicDimensionInMbs:
		return errors.Wrapf(ErrInvalidSPS, "pic_width_in_mbs_minus1 %d out of range", s.PicWidthInMBSMinus1)
	case s.PicHeightInMapUnitsMinus1 >= maxPicDimensionInMbs:
		return errors.Wrapf(ErrInvalidSPS, "pic_height_in_map_units_minus1 %d out of range", s.PicHeightInMapUnitsMinus1)
	}
	return nil
}

// MaxFrameNum as given by eq 7-10.
func (s *SPS) MaxFrameNum() int {
	return 1 << (s.Log2MaxFrameNumMinus4 + 4)
}

// MaxRefFrames returns Max(max_num_ref_frames, 1), the sliding window size
// used in clause 8.2.5.3.
func (s *SPS) MaxRefFrames() int {
	return maxi(int(s.MaxNumRefFrames), 1)
}

// PicWidthInMbs as given by eq 7-13.
func (s *SPS) PicWidthInMbs() int {
	return int(s.PicWidthInMBSMinus1 + 1)
}

// PicHeightInMapUnits as given by eq 7-16.
func (s *SPS) PicHeightInMapUnits() int {
	return int(s.PicHeightInMapUnitsMinus1 + 1)
}

// PicSizeInMapUnits as given by eq 7-17.
func (s *SPS) PicSizeInMapUnits() int {
	return s.PicWidthInMbs() * s.PicHeightInMapUnits()
}

// FrameHeightInMbs as given by eq 7-18.
func (s *SPS) FrameHeightInMbs() int {
	return (2 - flagVal(s.FrameMBSOnlyFlag)) * s.PicHeightInMapUnits()
}

// PicSizeInMbs gives the number of macroblocks in a frame; only frame
// pictures are handled so PicHeightInMbs equals FrameHeightInMbs (eq 7-26).
func (s *SPS) PicSizeInMbs() int {
	return s.PicWidthInMbs() * s.FrameHeightInMbs()
}
