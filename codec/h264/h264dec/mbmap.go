/*
DESCRIPTION
  mbmap.go provides MBToSliceGroupMap, the assignment of macroblocks to slice
  groups (8.2.2), and the builders for each slice group map type.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

// MBToSliceGroupMap gives the slice group of every macroblock of a picture
// together with the inverse mapping. For every address a,
// Inverse()[Groups()[a]][Indices()[a]] == a.
type MBToSliceGroupMap struct {
	groups  []int
	indices []int
	inverse [][]int
}

// Groups returns the slice group of each macroblock address.
func (m *MBToSliceGroupMap) Groups() []int { return m.groups }

// Indices returns, for each macroblock address, its position among the
// macroblocks of its slice group in raster order.
func (m *MBToSliceGroupMap) Indices() []int { return m.indices }

// Inverse returns the macroblock addresses of each slice group in raster order.
func (m *MBToSliceGroupMap) Inverse() [][]int { return m.inverse }

// NextMbAddress returns the address of the macroblock following n in the
// slice group of n, or the picture size in macroblocks if there is none
// (eq 7-37).
func (m *MBToSliceGroupMap) NextMbAddress(n int) int {
	if n < 0 || n >= len(m.groups) {
		return len(m.groups)
	}
	inv := m.inverse[m.groups[n]]
	if i := m.indices[n] + 1; i < len(inv) {
		return inv[i]
	}
	return len(m.groups)
}

// buildMapIndices derives the per-group positions and the inverse mapping of
// groups.
func buildMapIndices(groups []int, numGroups int) *MBToSliceGroupMap {
	count := make([]int, numGroups)
	indices := make([]int, len(groups))
	for i, g := range groups {
		indices[i] = count[g]
		count[g]++
	}

	inverse := make([][]int, numGroups)
	for g := range inverse {
		inverse[g] = make([]int, 0, count[g])
	}
	for i, g := range groups {
		inverse[g] = append(inverse[g], i)
	}
	return &MBToSliceGroupMap{groups: groups, indices: indices, inverse: inverse}
}

// mapUnitsToMbs converts a map unit to slice group map into a macroblock to
// slice group map for a frame (8.2.2.8). When frame_mbs_only_flag is 0 a map
// unit spans two vertically adjacent macroblocks.
func mapUnitsToMbs(mapUnits []int, sps *SPS) []int {
	if sps.FrameMBSOnlyFlag {
		return mapUnits
	}
	w := sps.PicWidthInMbs()
	mbs := make([]int, sps.PicSizeInMbs())
	for i := range mbs {
		mbs[i] = mapUnits[(i/(2*w))*w+(i%w)]
	}
	return mbs
}

// interleavedMap gives map type 0 (8.2.2.1): groups take turns in runs of
// runLength[g] map units.
func interleavedMap(w, h int, runLength []int) []int {
	size := w * h
	groups := make([]int, size)
	for i := 0; i < size; {
		for g := 0; g < len(runLength) && i < size; g++ {
			for j := 0; j < runLength[g] && i+j < size; j++ {
				groups[i+j] = g
			}
			i += runLength[g]
		}
	}
	return groups
}

// dispersedMap gives map type 1 (8.2.2.2), a checkerboard-like dispersal.
func dispersedMap(w, h, numGroups int) []int {
	groups := make([]int, w*h)
	for i := range groups {
		groups[i] = ((i % w) + (((i / w) * numGroups) / 2)) % numGroups
	}
	return groups
}

// foregroundMap gives map type 2 (8.2.2.3). Group g covers the rectangle
// topLeft[g] to bottomRight[g], lower groups taking precedence, and the last
// group takes the rest.
func foregroundMap(w, h, numGroups int, topLeft, bottomRight []int) []int {
	groups := make([]int, w*h)
	for i := range groups {
		groups[i] = numGroups - 1
	}
	for g := numGroups - 2; g >= 0; g-- {
		yTopLeft := topLeft[g] / w
		xTopLeft := topLeft[g] % w
		yBottomRight := bottomRight[g] / w
		xBottomRight := bottomRight[g] % w
		for y := yTopLeft; y <= yBottomRight; y++ {
			for x := xTopLeft; x <= xBottomRight; x++ {
				groups[y*w+x] = g
			}
		}
	}
	return groups
}

// boxOutMap gives map type 3 (8.2.2.4). Group 0 is a box of units0 map units
// spiralling out from the centre, clockwise unless changeDirection is set.
func boxOutMap(w, h int, changeDirection bool, units0 int) []int {
	size := w * h
	groups := make([]int, size)
	for i := range groups {
		groups[i] = 1
	}

	d := flagVal(changeDirection)
	x := (w - d) / 2
	y := (h - d) / 2
	leftBound, topBound := x, y
	rightBound, bottomBound := x, y
	xDir, yDir := d-1, d

	for k := 0; k < units0; {
		vacant := groups[y*w+x] == 1
		if vacant {
			groups[y*w+x] = 0
			k++
		}

		switch {
		case xDir == -1 && x == leftBound:
			leftBound = maxi(leftBound-1, 0)
			x = leftBound
			xDir = 0
			yDir = 2*d - 1
		case xDir == 1 && x == rightBound:
			rightBound = mini(rightBound+1, w-1)
			x = rightBound
			xDir = 0
			yDir = 1 - 2*d
		case yDir == -1 && y == topBound:
			topBound = maxi(topBound-1, 0)
			y = topBound
			xDir = 1 - 2*d
			yDir = 0
		case yDir == 1 && y == bottomBound:
			bottomBound = mini(bottomBound+1, h-1)
			y = bottomBound
			xDir = 2*d - 1
			yDir = 0
		default:
			x += xDir
			y += yDir
		}
	}
	return groups
}

// rasterScanMap gives map type 4 (8.2.2.5): the first sizeOfUpperLeftGroup
// map units in raster order form one group.
func rasterScanMap(w, h, sizeOfUpperLeftGroup int, changeDirection bool) []int {
	d := flagVal(changeDirection)
	groups := make([]int, w*h)
	for i := range groups {
		if i < sizeOfUpperLeftGroup {
			groups[i] = d
		} else {
			groups[i] = 1 - d
		}
	}
	return groups
}

// wipeMap gives map type 5 (8.2.2.6): as rasterScanMap but scanning columns
// top to bottom.
func wipeMap(w, h, sizeOfUpperLeftGroup int, changeDirection bool) []int {
	d := flagVal(changeDirection)
	groups := make([]int, w*h)
	k := 0
	for j := 0; j < w; j++ {
		for i := 0; i < h; i++ {
			if k < sizeOfUpperLeftGroup {
				groups[i*w+j] = d
			} else {
				groups[i*w+j] = 1 - d
			}
			k++
		}
	}
	return groups
}
