/*
DESCRIPTION
  reflist.go provides RefListBuilder, which builds the ordered reference
  picture lists used for inter prediction (8.2.4), including the reordering
  requested by ref_pic_list_modification.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

import (
	"sort"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/h264ref/codec/h264/h264dec/config"
)

// RefListBuilder builds reference picture lists from a snapshot of the
// references in the decoded picture buffer, such as RefPicManager.AllRefs.
// Lists have the length of the snapshot with nil entries past the last
// available reference. Pictures in the snapshot that are not marked as used
// for reference are ignored.
type RefListBuilder struct {
	maxFrameNum int
	missingRef  uint8
	log         logging.Logger
}

// NewRefListBuilder returns a RefListBuilder for a sequence with the given
// MaxFrameNum. missingRef is config.MissingRefReject or config.MissingRefEmpty.
func NewRefListBuilder(maxFrameNum int, missingRef uint8, log logging.Logger) *RefListBuilder {
	return &RefListBuilder{maxFrameNum: maxFrameNum, missingRef: missingRef, log: log}
}

// BuildRefList returns the reference list of a P slice of the picture with
// frame_num frameNum. Without reordering the list holds the short-term
// references, most recent first, followed by the long-term references in
// ascending long-term id (8.2.4.2.1).
func (b *RefListBuilder) BuildRefList(buf []*DecodedPicture, reordering []ReorderOp, frameNum int) ([]*DecodedPicture, error) {
	order := func(work []*DecodedPicture) []*DecodedPicture { return b.pOrder(work, frameNum) }
	if len(reordering) == 0 {
		return order(buf), nil
	}
	return b.reorder(buf, reordering, frameNum, order)
}

// BuildBRefLists returns reference lists 0 and 1 of a B slice of the picture
// with frame_num frameNum and POC curPOC (8.2.4.2.3). In list 0 short-term
// references preceding the current picture in output order come first,
// closest first, then those following it; list 1 has the two groups swapped.
// Long-term references follow in ascending long-term id. Non-existing frames
// are not used.
func (b *RefListBuilder) BuildBRefLists(buf []*DecodedPicture, reordering0, reordering1 []ReorderOp, frameNum, curPOC int) (l0, l1 []*DecodedPicture, err error) {
	var existing []*DecodedPicture
	for _, p := range buf {
		if p != nil && !p.nonExisting {
			existing = append(existing, p)
		}
	}
	padded := make([]*DecodedPicture, len(buf))
	copy(padded, existing)

	def0, def1 := b.bOrder(padded, curPOC)
	if len(reordering0) == 0 {
		l0 = def0
	} else {
		l0, err = b.reorder(padded, reordering0, frameNum, func(work []*DecodedPicture) []*DecodedPicture {
			l, _ := b.bOrder(work, curPOC)
			return l
		})
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not reorder list 0")
		}
	}
	if len(reordering1) == 0 {
		l1 = def1
	} else {
		l1, err = b.reorder(padded, reordering1, frameNum, func(work []*DecodedPicture) []*DecodedPicture {
			_, l := b.bOrder(work, curPOC)
			return l
		})
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not reorder list 1")
		}
	}
	return l0, l1, nil
}

// Truncate returns list resized to n entries, i.e. num_ref_idx_lX_active,
// padding with nil. A negative n gives an empty list.
func Truncate(list []*DecodedPicture, n int) []*DecodedPicture {
	out := make([]*DecodedPicture, maxi(n, 0))
	copy(out, list)
	return out
}

// pOrder returns the default P slice order of the non-nil entries of buf.
func (b *RefListBuilder) pOrder(buf []*DecodedPicture, frameNum int) []*DecodedPicture {
	list := make([]*DecodedPicture, len(buf))
	n := compact(list, buf)
	nShort := partition(list[:n])

	short := list[:nShort]
	sort.Slice(short, func(i, j int) bool {
		return picNum(short[i].frameNum, frameNum, b.maxFrameNum) > picNum(short[j].frameNum, frameNum, b.maxFrameNum)
	})
	sortLongTerm(list[nShort:n])
	return list
}

// bOrder returns the default B slice orders of the non-nil entries of buf.
func (b *RefListBuilder) bOrder(buf []*DecodedPicture, curPOC int) (l0, l1 []*DecodedPicture) {
	list := make([]*DecodedPicture, len(buf))
	n := compact(list, buf)
	nShort := partition(list[:n])

	var before, after []*DecodedPicture
	for _, p := range list[:nShort] {
		if p.poc < curPOC {
			before = append(before, p)
		} else {
			after = append(after, p)
		}
	}
	sort.Slice(before, func(i, j int) bool { return before[i].poc > before[j].poc })
	sort.Slice(after, func(i, j int) bool { return after[i].poc < after[j].poc })
	long := list[nShort:n]
	sortLongTerm(long)

	l0 = make([]*DecodedPicture, 0, len(buf))
	l0 = append(append(append(l0, before...), after...), long...)
	l1 = make([]*DecodedPicture, 0, len(buf))
	l1 = append(append(append(l1, after...), before...), long...)
	if n > 1 && equalLists(l0, l1) {
		l1[0], l1[1] = l1[1], l1[0]
	}
	return Truncate(l0, len(buf)), Truncate(l1, len(buf))
}

// reorder applies reordering instructions (8.2.4.3). Each instruction
// withdraws its picture from a working copy of buf into the next slot of the
// list; the remaining slots take the default order, given by order, of what is
// left in the working copy.
func (b *RefListBuilder) reorder(buf []*DecodedPicture, ops []ReorderOp, frameNum int, order func([]*DecodedPicture) []*DecodedPicture) ([]*DecodedPicture, error) {
	work := make([]*DecodedPicture, len(buf))
	copy(work, buf)
	list := make([]*DecodedPicture, len(buf))

	pred := frameNum
	var i int
	for _, op := range ops {
		if i == len(list) {
			b.log.Warning("more reordering instructions than list entries", "entries", len(list))
			break
		}

		var p *DecodedPicture
		switch op.Kind {
		case ReorderForward:
			pred = wrapFrameNum(pred-op.Arg, b.maxFrameNum)
			p = withdraw(work, func(p *DecodedPicture) bool { return p.isShortTermRef() && p.frameNum == pred })
		case ReorderBackward:
			pred = wrapFrameNum(pred+op.Arg, b.maxFrameNum)
			p = withdraw(work, func(p *DecodedPicture) bool { return p.isShortTermRef() && p.frameNum == pred })
		case ReorderLongTerm:
			p = withdraw(work, func(p *DecodedPicture) bool { return p.isLongTermRef() && p.ltPicID == op.Arg })
		default:
			return nil, errors.Wrapf(ErrUnsupportedReorder, "kind %d", op.Kind)
		}

		if p == nil {
			if b.missingRef == config.MissingRefReject {
				b.log.Error("reordering refers to missing picture", "kind", op.Kind, "arg", op.Arg)
				return nil, errors.Wrapf(ErrMissingReference, "reorder kind %d arg %d", op.Kind, op.Arg)
			}
			b.log.Warning("reordering refers to missing picture, leaving empty entry", "kind", op.Kind, "arg", op.Arg)
		}
		list[i] = p
		i++
	}

	for _, p := range order(work) {
		if p == nil || i == len(list) {
			break
		}
		list[i] = p
		i++
	}
	return list, nil
}

// withdraw removes the first picture of work matching match, leaving nil in
// its place, and returns it.
func withdraw(work []*DecodedPicture, match func(*DecodedPicture) bool) *DecodedPicture {
	for i, p := range work {
		if p != nil && match(p) {
			work[i] = nil
			return p
		}
	}
	return nil
}

// compact copies the reference pictures of src to the front of dst and
// returns their number. Empty entries and pictures no longer used for
// reference are skipped.
func compact(dst, src []*DecodedPicture) int {
	var n int
	for _, p := range src {
		if p != nil && p.ref {
			dst[n] = p
			n++
		}
	}
	return n
}

// partition moves short-term references to the front of list and long-term
// references to the back by swapping from both ends. It returns the number of
// short-term references. Order within each class is not kept.
func partition(list []*DecodedPicture) int {
	i, j := 0, len(list)-1
	for {
		for i <= j && !list[i].isLongTermRef() {
			i++
		}
		for i <= j && list[j].isLongTermRef() {
			j--
		}
		if i >= j {
			return i
		}
		list[i], list[j] = list[j], list[i]
	}
}

func sortLongTerm(long []*DecodedPicture) {
	sort.Slice(long, func(i, j int) bool { return long[i].ltPicID < long[j].ltPicID })
}

func equalLists(a, b []*DecodedPicture) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
