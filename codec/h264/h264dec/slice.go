/*
DESCRIPTION
  slice.go provides the slice header fields consumed by reference picture
  management and slice group mapping, and the conversion of the
  ref_pic_list_modification and dec_ref_pic_marking syntax structures into
  reordering and marking instructions.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

import "github.com/pkg/errors"

// Slice types as defined by table 7-6 in specifications.
const (
	SliceTypeP  = 0
	SliceTypeB  = 1
	SliceTypeI  = 2
	SliceTypeSP = 3
	SliceTypeSI = 4
)

// Values of modification_of_pic_nums_idc, table 7-7.
const (
	modSubtract = 0
	modAdd      = 1
	modLongTerm = 2
	modEnd      = 3
)

// Values of memory_management_control_operation, table 7-9.
const (
	mmcoEnd = iota
	mmcoRemoveShort
	mmcoRemoveLong
	mmcoConvertToLong
	mmcoTruncateLong
	mmcoClear
	mmcoMarkLong
)

// SliceHeader holds the slice header fields (7.3.3) used here. NALRefIDC and
// IDRPic come from the enclosing NAL unit header.
type SliceHeader struct {
	NALRefIDC int
	IDRPic    bool

	FirstMbInSlice          int
	SliceType               int
	PPSID                   int
	FrameNum                int
	NumRefIdxActiveOverride bool
	NumRefIdxL0ActiveMinus1 int
	NumRefIdxL1ActiveMinus1 int
	*RefPicListModification
	*DecRefPicMarking
	SliceGroupChangeCycle int
}

// IsReference reports whether the picture containing the slice is used for
// reference, i.e. nal_ref_idc != 0.
func (h *SliceHeader) IsReference() bool { return h.NALRefIDC != 0 }

// IsB reports whether the slice is a B slice.
func (h *SliceHeader) IsB() bool { return h.SliceType%5 == SliceTypeB }

// IsIntra reports whether the slice uses intra prediction only.
func (h *SliceHeader) IsIntra() bool {
	t := h.SliceType % 5
	return t == SliceTypeI || t == SliceTypeSI
}

// numRefIdxActive returns the number of active entries in list 0 or 1 for the
// slice, taking the PPS default unless overridden.
func (h *SliceHeader) numRefIdxActive(p *PPS, list int) int {
	if h.NumRefIdxActiveOverride {
		if list == 0 {
			return h.NumRefIdxL0ActiveMinus1 + 1
		}
		return h.NumRefIdxL1ActiveMinus1 + 1
	}
	if list == 0 {
		return p.NumRefIdxL0DefaultActiveMinus1 + 1
	}
	return p.NumRefIdxL1DefaultActiveMinus1 + 1
}

// maxNumRefIdxActiveMinus1 bounds num_ref_idx_lX_active_minus1 for frame
// pictures (7.4.3).
const maxNumRefIdxActiveMinus1 = 31

// validate checks the slice header fields that index or size reference state
// against a sequence with the given MaxFrameNum.
func (h *SliceHeader) validate(maxFrameNum int) error {
	if h.FrameNum < 0 || h.FrameNum >= maxFrameNum {
		return errors.Wrapf(ErrInvalidSlice, "frame_num %d out of range [0, %d)", h.FrameNum, maxFrameNum)
	}
	if !h.NumRefIdxActiveOverride {
		return nil
	}
	for list, v := range [2]int{h.NumRefIdxL0ActiveMinus1, h.NumRefIdxL1ActiveMinus1} {
		if v < 0 || v > maxNumRefIdxActiveMinus1 {
			return errors.Wrapf(ErrInvalidSlice, "num_ref_idx_l%d_active_minus1 %d out of range", list, v)
		}
	}
	return nil
}

// RefPicListModification provides elements of a ref_pic_list_modification
// syntax structure (defined in 7.3.3.1 of specifications).
type RefPicListModification struct {
	RefPicListModificationFlag [2]bool
	ModificationOfPicNums      [2][]int
	AbsDiffPicNumMinus1        [2][]int
	LongTermPicNum             [2][]int
}

// ReorderKind identifies the kind of a reference list reordering instruction.
type ReorderKind int

const (
	// ReorderForward moves back in decoding order: the predicted picture number
	// is reduced by Arg (modification_of_pic_nums_idc 0).
	ReorderForward ReorderKind = iota

	// ReorderBackward increases the predicted picture number by Arg
	// (modification_of_pic_nums_idc 1).
	ReorderBackward

	// ReorderLongTerm selects the long-term picture with long-term id Arg
	// (modification_of_pic_nums_idc 2).
	ReorderLongTerm
)

// ReorderOp is one reference list reordering instruction. For forward and
// backward instructions Arg is abs_diff_pic_num_minus1 + 1, for long-term
// instructions it is long_term_pic_num.
type ReorderOp struct {
	Kind ReorderKind
	Arg  int
}

// Reordering returns the reordering instructions for reference list 0 or 1.
// A nil result means the default list order is used.
func (r *RefPicListModification) Reordering(list int) ([]ReorderOp, error) {
	if r == nil || list < 0 || list > 1 || !r.RefPicListModificationFlag[list] {
		return nil, nil
	}

	var (
		idcs = r.ModificationOfPicNums[list]
		diff = r.AbsDiffPicNumMinus1[list]
		lt   = r.LongTermPicNum[list]
		ops  []ReorderOp
	)
	for i, idc := range idcs {
		switch idc {
		case modSubtract, modAdd:
			if i >= len(diff) {
				return nil, errors.Wrapf(ErrInvalidSlice, "missing abs_diff_pic_num_minus1[%d]", i)
			}
			k := ReorderForward
			if idc == modAdd {
				k = ReorderBackward
			}
			ops = append(ops, ReorderOp{Kind: k, Arg: diff[i] + 1})
		case modLongTerm:
			if i >= len(lt) {
				return nil, errors.Wrapf(ErrInvalidSlice, "missing long_term_pic_num[%d]", i)
			}
			ops = append(ops, ReorderOp{Kind: ReorderLongTerm, Arg: lt[i]})
		case modEnd:
			return ops, nil
		default:
			return nil, errors.Wrapf(ErrUnsupportedReorder, "idc %d", idc)
		}
	}
	return ops, nil
}

// DecRefPicMarking provides elements of a dec_ref_pic_marking syntax structure
// as defined in section 7.3.3.3 of the specifications.
type DecRefPicMarking struct {
	NoOutputOfPriorPicsFlag       bool
	LongTermReferenceFlag         bool
	AdaptiveRefPicMarkingModeFlag bool
	Elements                      []DRPMElement
}

// DRPMElement is one memory_management_control_operation and its arguments.
type DRPMElement struct {
	MemoryManagementControlOperation int
	DifferenceOfPicNumsMinus1        int
	LongTermPicNum                   int
	LongTermFrameIdx                 int
	MaxLongTermFrameIdxPlus1         int
}

// IDRMarking returns the marking of an IDR picture. A nil d gives the
// default, i.e. no long-term marking and prior pictures are output.
func (d *DecRefPicMarking) IDRMarking() *IDRMarking {
	if d == nil {
		return &IDRMarking{}
	}
	return &IDRMarking{
		NoOutputOfPriorPics: d.NoOutputOfPriorPicsFlag,
		UseForLongTerm:      d.LongTermReferenceFlag,
	}
}

// RefPicMarking converts the adaptive memory control operations of a non-IDR
// picture. It returns nil, selecting the sliding window process, if d is nil
// or adaptive_ref_pic_marking_mode_flag is not set.
func (d *DecRefPicMarking) RefPicMarking() (*RefPicMarking, error) {
	if d == nil || !d.AdaptiveRefPicMarkingModeFlag {
		return nil, nil
	}

	m := &RefPicMarking{}
	for _, e := range d.Elements {
		var op MarkingOp
		switch e.MemoryManagementControlOperation {
		case mmcoEnd:
			return m, nil
		case mmcoRemoveShort:
			op = RemoveShort{Delta: e.DifferenceOfPicNumsMinus1 + 1}
		case mmcoRemoveLong:
			op = RemoveLong{ID: e.LongTermPicNum}
		case mmcoConvertToLong:
			op = ConvertToLong{Delta: e.DifferenceOfPicNumsMinus1 + 1, ID: e.LongTermFrameIdx}
		case mmcoTruncateLong:
			op = TruncateLong{MaxIDPlus1: e.MaxLongTermFrameIdxPlus1}
		case mmcoClear:
			op = Clear{}
		case mmcoMarkLong:
			op = MarkLong{ID: e.LongTermFrameIdx}
		default:
			return nil, errors.Wrapf(ErrUnsupportedMMCO, "operation %d", e.MemoryManagementControlOperation)
		}
		m.Ops = append(m.Ops, op)
	}
	return m, nil
}
