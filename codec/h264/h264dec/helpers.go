/*
DESCRIPTION
  helpers.go provides general helper utilities.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func flagVal(b bool) int {
	if b {
		return 1
	}
	return 0
}

// picNum returns frameNum unwrapped relative to curFrameNum, i.e. FrameNumWrap
// as given by eq 8-27. Frame numbers greater than the current one belong to
// the previous cycle of frame_num and so are negative after unwrapping.
func picNum(frameNum, curFrameNum, maxFrameNum int) int {
	if frameNum > curFrameNum {
		return frameNum - maxFrameNum
	}
	return frameNum
}

// wrapFrameNum brings n back into the range [0, maxFrameNum).
func wrapFrameNum(n, maxFrameNum int) int {
	n %= maxFrameNum
	if n < 0 {
		n += maxFrameNum
	}
	return n
}
