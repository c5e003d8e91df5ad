/*
DESCRIPTION
  picture.go provides DecodedPicture, the reference and output state of a
  picture held in the decoded picture buffer.

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
	"image"
)

// DecodedPicture wraps a fully decoded frame with the state needed for
// reference marking and output ordering. The frame itself is shared, not
// copied, between the buffer and any snapshots or reference lists.
type DecodedPicture struct {
	frame    *image.YCbCr
	poc      int
	display  bool
	ref      bool
	frameNum int
	longTerm bool
	ltPicID  int
	mmco5    bool

	nonExisting bool
}

// NewDecodedPicture returns a picture pending output. ref indicates whether
// the picture is used for reference (nal_ref_idc != 0); a reference picture
// starts out as a short-term reference.
func NewDecodedPicture(frame *image.YCbCr, poc, frameNum int, ref bool) *DecodedPicture {
	return &DecodedPicture{
		frame:    frame,
		poc:      poc,
		display:  true,
		ref:      ref,
		frameNum: frameNum,
	}
}

// newNonExisting returns a placeholder reference for a frame_num skipped by
// the encoder (8.2.5.2). It has no samples and is never output.
func newNonExisting(frameNum int) *DecodedPicture {
	return &DecodedPicture{ref: true, frameNum: frameNum, nonExisting: true}
}

// Frame returns the decoded samples, nil for a non-existing frame.
func (p *DecodedPicture) Frame() *image.YCbCr { return p.frame }

// POC returns the picture order count supplied at decode.
func (p *DecodedPicture) POC() int { return p.poc }

// FrameNum returns the frame_num of the picture.
func (p *DecodedPicture) FrameNum() int { return p.frameNum }

// IsRef reports whether the picture is marked as used for reference.
func (p *DecodedPicture) IsRef() bool { return p.ref }

// IsDisplay reports whether the picture is still waiting to be output.
func (p *DecodedPicture) IsDisplay() bool { return p.display }

// IsLongTerm reports whether the picture is a long-term reference.
func (p *DecodedPicture) IsLongTerm() bool { return p.ref && p.longTerm }

// LtPicID returns the long-term id. It is only meaningful if IsLongTerm.
func (p *DecodedPicture) LtPicID() int { return p.ltPicID }

// IsNonExisting reports whether p was inferred for a gap in frame_num.
func (p *DecodedPicture) IsNonExisting() bool { return p.nonExisting }

// MMCO5 reports whether the picture carried memory_management_control_operation 5.
func (p *DecodedPicture) MMCO5() bool { return p.mmco5 }

func (p *DecodedPicture) isShortTermRef() bool { return p.ref && !p.longTerm }

func (p *DecodedPicture) isLongTermRef() bool { return p.ref && p.longTerm }

func (p *DecodedPicture) unref() {
	p.ref = false
	p.longTerm = false
	p.ltPicID = 0
}

func (p *DecodedPicture) markLongTerm(id int) {
	p.ref = true
	p.longTerm = true
	p.ltPicID = id
}

func (p *DecodedPicture) String() string {
	kind := "non-ref"
	switch {
	case p.isLongTermRef():
		kind = fmt.Sprintf("long(%d)", p.ltPicID)
	case p.ref:
		kind = "short"
	}
	return fmt.Sprintf("frame_num=%d poc=%d %s display=%t", p.frameNum, p.poc, kind, p.display)
}
