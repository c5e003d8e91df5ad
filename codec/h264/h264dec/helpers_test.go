/*
DESCRIPTION
  helpers_test.go provides testing for the frame number helpers in helpers.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

import "testing"

func TestPicNum(t *testing.T) {
	tests := []struct {
		frameNum, cur, max int
		want               int
	}{
		{frameNum: 5, cur: 10, max: 16, want: 5},
		{frameNum: 10, cur: 10, max: 16, want: 10},
		{frameNum: 15, cur: 1, max: 16, want: -1},
		{frameNum: 14, cur: 1, max: 16, want: -2},
		{frameNum: 0, cur: 1, max: 16, want: 0},
		{frameNum: 255, cur: 0, max: 256, want: -1},
	}

	for i, test := range tests {
		if got := picNum(test.frameNum, test.cur, test.max); got != test.want {
			t.Errorf("did not get expected result for test %d\nGot: %v\nWant: %v\n", i, got, test.want)
		}
	}
}

func TestWrapFrameNum(t *testing.T) {
	tests := []struct {
		n, max int
		want   int
	}{
		{n: 3, max: 16, want: 3},
		{n: 16, max: 16, want: 0},
		{n: 17, max: 16, want: 1},
		{n: -1, max: 16, want: 15},
		{n: -16, max: 16, want: 0},
		{n: -17, max: 16, want: 15},
	}

	for i, test := range tests {
		if got := wrapFrameNum(test.n, test.max); got != test.want {
			t.Errorf("did not get expected result for test %d\nGot: %v\nWant: %v\n", i, got, test.want)
		}
	}
}
