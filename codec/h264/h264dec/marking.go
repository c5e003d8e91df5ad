/*
DESCRIPTION
  marking.go provides the decoded reference picture marking instructions
  (8.2.5.4), one type per memory management control operation.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

// MarkingOp is a single adaptive marking instruction. The set of
// implementations is closed: RemoveShort, RemoveLong, ConvertToLong,
// TruncateLong, Clear and MarkLong.
type MarkingOp interface {
	markingOp()
}

// RemoveShort marks the short-term picture with picture number
// CurrPicNum - Delta as unused for reference (mmco 1).
type RemoveShort struct{ Delta int }

// RemoveLong marks the long-term picture with long-term id ID as unused for
// reference (mmco 2).
type RemoveLong struct{ ID int }

// ConvertToLong turns the short-term picture CurrPicNum - Delta into a
// long-term picture with id ID, dropping any other holder of ID (mmco 3).
type ConvertToLong struct{ Delta, ID int }

// TruncateLong marks all long-term pictures with id >= MaxIDPlus1 as unused
// for reference (mmco 4).
type TruncateLong struct{ MaxIDPlus1 int }

// Clear marks all reference pictures as unused for reference (mmco 5).
type Clear struct{}

// MarkLong marks the current picture as long-term with id ID (mmco 6).
type MarkLong struct{ ID int }

func (RemoveShort) markingOp()   {}
func (RemoveLong) markingOp()    {}
func (ConvertToLong) markingOp() {}
func (TruncateLong) markingOp()  {}
func (Clear) markingOp()         {}
func (MarkLong) markingOp()      {}

// RefPicMarking holds the adaptive marking instructions of a non-IDR
// reference picture, applied in order. A nil *RefPicMarking selects the
// sliding window process.
type RefPicMarking struct {
	Ops []MarkingOp
}

// IDRMarking holds the marking flags of an IDR picture.
type IDRMarking struct {
	// NoOutputOfPriorPics discards pictures still waiting for output.
	NoOutputOfPriorPics bool

	// UseForLongTerm marks the IDR picture as long-term with id 0.
	UseForLongTerm bool
}
