/*
DESCRIPTION
  dpb.go provides the decoded picture buffer, a bounded store of pictures that
  are either used for reference or waiting to be output.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

import "github.com/pkg/errors"

// DefaultMinDPBSize is the smallest capacity a decoded picture buffer is
// given, whatever the level limits suggest.
const DefaultMinDPBSize = 16

// maxDPB returns MaxDPB from table A-1 for level_idc in units of 512 bytes.
// Unknown levels get the largest value.
func maxDPB(level uint8) int {
	switch level {
	case 9, 10:
		return 297
	case 11:
		return 675
	case 12, 13, 20:
		return 1782
	case 21:
		return 3564
	case 22, 30:
		return 6075
	case 31:
		return 13500
	case 32:
		return 15360
	case 40, 41:
		return 24576
	case 42:
		return 26112
	case 50:
		return 82800
	default:
		return 138240
	}
}

// dpbCapacity returns the number of frames a buffer for the given level and
// picture size holds: max(minSize, MaxDPB / (PicSizeInMbs * 384)).
func dpbCapacity(level uint8, picSizeInMbs, minSize int) int {
	if picSizeInMbs <= 0 {
		return minSize
	}
	return maxi(minSize, 512*maxDPB(level)/(picSizeInMbs*384))
}

// DecodedPictureBuffer is a fixed capacity store of decoded pictures. Slots
// [0, Len) are occupied; pictures are kept in the order they were added.
// It is not safe for concurrent use.
type DecodedPictureBuffer struct {
	pics []*DecodedPicture
	n    int
}

// NewDecodedPictureBuffer returns a buffer sized for a sequence with the
// given level_idc and PicSizeInMbs. A minSize below 1 uses DefaultMinDPBSize.
func NewDecodedPictureBuffer(level uint8, picSizeInMbs, minSize int) *DecodedPictureBuffer {
	if minSize < 1 {
		minSize = DefaultMinDPBSize
	}
	return &DecodedPictureBuffer{pics: make([]*DecodedPicture, dpbCapacity(level, picSizeInMbs, minSize))}
}

// Cap returns the number of slots in the buffer.
func (b *DecodedPictureBuffer) Cap() int { return len(b.pics) }

// Len returns the number of occupied slots.
func (b *DecodedPictureBuffer) Len() int { return b.n }

// IsFull reports whether Add would fail.
func (b *DecodedPictureBuffer) IsFull() bool { return b.n == len(b.pics) }

// At returns the picture in slot i, or nil if i is not occupied.
func (b *DecodedPictureBuffer) At(i int) *DecodedPicture {
	if i < 0 || i >= b.n {
		return nil
	}
	return b.pics[i]
}

// Add stores p in the next free slot. Callers should check IsFull first,
// and make room by outputting pictures and calling Bump.
func (b *DecodedPictureBuffer) Add(p *DecodedPicture) error {
	if b.IsFull() {
		return errors.Wrapf(ErrDPBFull, "capacity %d", len(b.pics))
	}
	b.pics[b.n] = p
	b.n++
	return nil
}

// Bump removes pictures that are neither used for reference nor waiting for
// output. Remaining pictures keep their relative order and the freed slots at
// the end are cleared.
func (b *DecodedPictureBuffer) Bump() {
	w := 0
	for r := 0; r < b.n; r++ {
		p := b.pics[r]
		if !p.display && !p.ref {
			continue
		}
		b.pics[w] = p
		w++
	}
	for i := w; i < b.n; i++ {
		b.pics[i] = nil
	}
	b.n = w
}

// Pictures returns the occupied slots. The slice is a copy taken at the time
// of the call, so later Add and Bump calls do not affect it; the pictures
// themselves are shared.
func (b *DecodedPictureBuffer) Pictures() []*DecodedPicture {
	s := make([]*DecodedPicture, b.n)
	copy(s, b.pics[:b.n])
	return s
}

// NextOutput returns the picture waiting for output with the smallest POC and
// clears its display flag, or nil if no picture is waiting. This is the
// bumping process of C.4.5.3; the returned picture stays in the buffer until
// the next Bump if it is still used for reference.
func (b *DecodedPictureBuffer) NextOutput() *DecodedPicture {
	var next *DecodedPicture
	for _, p := range b.pics[:b.n] {
		if p.display && (next == nil || p.poc < next.poc) {
			next = p
		}
	}
	if next != nil {
		next.display = false
	}
	return next
}

// DropOutput clears the display flag of every picture, discarding pending
// output as required by no_output_of_prior_pics_flag.
func (b *DecodedPictureBuffer) DropOutput() {
	for _, p := range b.pics[:b.n] {
		p.display = false
	}
}
