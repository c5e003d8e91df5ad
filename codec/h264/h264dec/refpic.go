/*
DESCRIPTION
  refpic.go provides RefPicManager, which performs the decoded reference
  picture marking process (8.2.5) on a decoded picture buffer and stores newly
  decoded pictures.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

import (
	"fmt"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/h264ref/codec/h264/h264dec/config"
)

// RefPicManager marks pictures in a DecodedPictureBuffer as used or unused
// for reference and adds decoded pictures to it. Reference state lives in the
// DecodedPicture flags and only changes through PerformMarking,
// PerformIDRMarking and AddNonExisting. It is not safe for concurrent use.
type RefPicManager struct {
	dpb         *DecodedPictureBuffer
	maxFrameNum int
	maxRef      int
	log         logging.Logger

	missingRef uint8
	mmco5Reset bool
	output     func(*DecodedPicture)
}

// NewRefPicManager returns a RefPicManager for dpb. maxFrameNum is
// MaxFrameNum of the sequence and maxRef the sliding window size,
// Max(max_num_ref_frames, 1).
func NewRefPicManager(dpb *DecodedPictureBuffer, maxFrameNum, maxRef int, log logging.Logger, options ...func(*RefPicManager) error) (*RefPicManager, error) {
	if maxFrameNum <= 0 || maxRef <= 0 {
		return nil, fmt.Errorf("invalid maxFrameNum %d or maxRef %d", maxFrameNum, maxRef)
	}
	m := &RefPicManager{
		dpb:         dpb,
		maxFrameNum: maxFrameNum,
		maxRef:      maxRef,
		log:         log,
		missingRef:  config.MissingRefReject,
	}
	for _, option := range options {
		err := option(m)
		if err != nil {
			return nil, fmt.Errorf("option failed with error: %w", err)
		}
	}
	log.Debug("ref pic manager options applied", "maxFrameNum", maxFrameNum, "maxRef", maxRef)
	return m, nil
}

// MaxFrameNum returns the frame_num modulus the manager was created with.
func (m *RefPicManager) MaxFrameNum() int { return m.maxFrameNum }

// MaxRef returns the sliding window size.
func (m *RefPicManager) MaxRef() int { return m.maxRef }

// PerformMarking marks the references of the buffer following the decoding of
// cur, a non-IDR picture, and then stores cur. A nil marking selects the
// sliding window process (8.2.5.3), otherwise the instructions of marking are
// applied in order (8.2.5.4). Every picture is stored, reference or not, so
// that it remains available for output.
func (m *RefPicManager) PerformMarking(marking *RefPicMarking, cur *DecodedPicture) error {
	if marking == nil {
		if cur.ref {
			m.slidingWindow(cur.frameNum)
		}
		return m.store(cur)
	}

	for _, op := range marking.Ops {
		err := m.apply(op, cur)
		if err != nil {
			return errors.Wrap(err, "could not apply marking")
		}
	}

	if cur.ref && m.numRefs() >= m.maxRef {
		m.log.Warning("too many references after adaptive marking, applying sliding window", "refs", m.numRefs(), "maxRef", m.maxRef)
		m.slidingWindow(cur.frameNum)
	}
	return m.store(cur)
}

// PerformIDRMarking marks all references as unused, as an IDR picture resets
// reference state, marks cur as long-term with id 0 if requested and stores
// it. Pictures waiting for output are output first, or discarded if
// NoOutputOfPriorPics is set.
func (m *RefPicManager) PerformIDRMarking(idr *IDRMarking, cur *DecodedPicture) error {
	if idr == nil {
		idr = &IDRMarking{}
	}
	if idr.NoOutputOfPriorPics {
		m.log.Debug("discarding prior pictures")
		m.dpb.DropOutput()
	} else {
		m.Flush()
	}

	m.unrefAll()
	if idr.UseForLongTerm {
		cur.markLongTerm(0)
	}
	return m.store(cur)
}

// AddNonExisting stores a placeholder reference frame for frameNum, inferred
// for a gap in frame_num (8.2.5.2). The sliding window applies as it would for
// a decoded reference frame.
func (m *RefPicManager) AddNonExisting(frameNum int) error {
	m.slidingWindow(frameNum)
	m.log.Debug("adding non-existing frame", "frameNum", frameNum)
	return m.store(newNonExisting(frameNum))
}

// AllRefs returns a snapshot of the pictures used for reference, in buffer
// order. The result always has length MaxRef; unused slots are nil. The
// pictures are copies, so later marking does not change them.
func (m *RefPicManager) AllRefs() []*DecodedPicture {
	refs := make([]*DecodedPicture, m.maxRef)
	i := 0
	for _, p := range m.dpb.Pictures() {
		if !p.ref {
			continue
		}
		if i == len(refs) {
			m.log.Warning("more references than window size", "maxRef", m.maxRef)
			break
		}
		c := *p
		refs[i] = &c
		i++
	}
	return refs
}

// Flush outputs every picture waiting for output in POC order.
func (m *RefPicManager) Flush() {
	for p := m.dpb.NextOutput(); p != nil; p = m.dpb.NextOutput() {
		m.emit(p)
	}
	m.dpb.Bump()
}

func (m *RefPicManager) apply(op MarkingOp, cur *DecodedPicture) error {
	switch op := op.(type) {
	case RemoveShort:
		p := m.findShort(cur.frameNum-op.Delta, cur.frameNum)
		if p == nil {
			return m.missing("remove short-term", cur.frameNum-op.Delta)
		}
		m.log.Debug("removing short-term reference", "frameNum", p.frameNum)
		p.unref()
	case RemoveLong:
		p := m.findLong(op.ID)
		if p == nil {
			return m.missing("remove long-term", op.ID)
		}
		m.log.Debug("removing long-term reference", "id", op.ID)
		p.unref()
	case ConvertToLong:
		if p := m.findLong(op.ID); p != nil {
			p.unref()
		}
		p := m.findShort(cur.frameNum-op.Delta, cur.frameNum)
		if p == nil {
			return m.missing("convert to long-term", cur.frameNum-op.Delta)
		}
		m.log.Debug("converting to long-term reference", "frameNum", p.frameNum, "id", op.ID)
		p.markLongTerm(op.ID)
	case TruncateLong:
		for _, p := range m.dpb.Pictures() {
			if p.isLongTermRef() && p.ltPicID >= op.MaxIDPlus1 {
				m.log.Debug("truncating long-term reference", "id", p.ltPicID)
				p.unref()
			}
		}
	case Clear:
		m.log.Debug("clearing all references")
		m.unrefAll()
		cur.mmco5 = true
	case MarkLong:
		if p := m.findLong(op.ID); p != nil {
			p.unref()
		}
		m.log.Debug("marking current picture long-term", "id", op.ID)
		cur.markLongTerm(op.ID)
	default:
		return errors.Wrapf(ErrUnsupportedMMCO, "%T", op)
	}
	return nil
}

// missing handles an instruction naming a picture that is not in the buffer
// according to the configured policy.
func (m *RefPicManager) missing(what string, n int) error {
	if m.missingRef == config.MissingRefReject {
		m.log.Error("marking refers to missing picture", "op", what, "n", n)
		return errors.Wrapf(ErrMissingReference, "%s %d", what, n)
	}
	m.log.Warning("marking refers to missing picture, ignoring", "op", what, "n", n)
	return nil
}

// slidingWindow marks short-term references unused, oldest first, until
// there is room for one more reference.
func (m *RefPicManager) slidingWindow(curFrameNum int) {
	for m.numRefs() >= m.maxRef {
		var oldest *DecodedPicture
		for _, p := range m.dpb.Pictures() {
			if p.isShortTermRef() && (oldest == nil ||
				picNum(p.frameNum, curFrameNum, m.maxFrameNum) < picNum(oldest.frameNum, curFrameNum, m.maxFrameNum)) {
				oldest = p
			}
		}
		if oldest == nil {
			return
		}
		m.log.Debug("sliding window removing reference", "frameNum", oldest.frameNum)
		oldest.unref()
	}
}

// store compacts the buffer, outputs pictures until there is a free slot and
// adds p.
func (m *RefPicManager) store(p *DecodedPicture) error {
	if p.mmco5 && m.mmco5Reset {
		m.Flush()
		p.frameNum = 0
		p.poc = 0
	}

	m.dpb.Bump()
	for m.dpb.IsFull() {
		out := m.dpb.NextOutput()
		if out == nil {
			m.log.Error("decoded picture buffer full of references", "capacity", m.dpb.Cap())
			return errors.Wrap(ErrDPBFull, "no picture to output")
		}
		m.emit(out)
		m.dpb.Bump()
	}
	return m.dpb.Add(p)
}

func (m *RefPicManager) emit(p *DecodedPicture) {
	if p.nonExisting {
		return
	}
	m.log.Debug("outputting picture", "frameNum", p.frameNum, "poc", p.poc)
	if m.output != nil {
		m.output(p)
	}
}

func (m *RefPicManager) findShort(num, curFrameNum int) *DecodedPicture {
	for _, p := range m.dpb.Pictures() {
		if p.isShortTermRef() && picNum(p.frameNum, curFrameNum, m.maxFrameNum) == num {
			return p
		}
	}
	return nil
}

func (m *RefPicManager) findLong(id int) *DecodedPicture {
	for _, p := range m.dpb.Pictures() {
		if p.isLongTermRef() && p.ltPicID == id {
			return p
		}
	}
	return nil
}

func (m *RefPicManager) numRefs() int {
	var n int
	for _, p := range m.dpb.Pictures() {
		if p.ref {
			n++
		}
	}
	return n
}

func (m *RefPicManager) unrefAll() {
	for _, p := range m.dpb.Pictures() {
		p.unref()
	}
}
