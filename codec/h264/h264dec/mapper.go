/*
DESCRIPTION
  mapper.go provides macroblock address mapping for a slice: the translation
  of the n'th macroblock of a slice in decoding order to its address in the
  picture, and the availability of its neighbouring macroblocks (6.4.9).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

// Mapper maps the index of a macroblock within a slice, in decoding order, to
// its address in the picture. A neighbour is available only if it lies inside
// the picture and belongs to the same slice. A Mapper is scoped to one slice;
// indexes must be less than the number of macroblocks in the slice.
type Mapper interface {
	// Address returns the macroblock address of the i'th macroblock.
	Address(i int) int

	// MbX and MbY return the macroblock column and row of the i'th macroblock.
	MbX(i int) int
	MbY(i int) int

	// Neighbour availability, mbAddrA, mbAddrB, mbAddrD and mbAddrC
	// respectively in 6.4.9.
	LeftAvailable(i int) bool
	TopAvailable(i int) bool
	TopLeftAvailable(i int) bool
	TopRightAvailable(i int) bool
}

// FlatMBlockMapper is the Mapper for pictures with a single slice group, where
// a slice is a run of consecutive macroblock addresses.
type FlatMBlockMapper struct {
	frameWidthInMbs int
	firstMBAddr     int
}

// NewFlatMBlockMapper returns a FlatMBlockMapper for a slice starting at
// firstMBAddr in a picture frameWidthInMbs macroblocks wide.
func NewFlatMBlockMapper(frameWidthInMbs, firstMBAddr int) *FlatMBlockMapper {
	return &FlatMBlockMapper{frameWidthInMbs: frameWidthInMbs, firstMBAddr: firstMBAddr}
}

func (m *FlatMBlockMapper) Address(i int) int { return m.firstMBAddr + i }

func (m *FlatMBlockMapper) MbX(i int) int { return m.Address(i) % m.frameWidthInMbs }

func (m *FlatMBlockMapper) MbY(i int) int { return m.Address(i) / m.frameWidthInMbs }

func (m *FlatMBlockMapper) LeftAvailable(i int) bool {
	addr := m.Address(i)
	return addr%m.frameWidthInMbs != 0 && addr > m.firstMBAddr
}

func (m *FlatMBlockMapper) TopAvailable(i int) bool {
	return m.Address(i)-m.frameWidthInMbs >= m.firstMBAddr
}

func (m *FlatMBlockMapper) TopLeftAvailable(i int) bool {
	addr := m.Address(i)
	return addr%m.frameWidthInMbs != 0 && addr-m.frameWidthInMbs-1 >= m.firstMBAddr
}

func (m *FlatMBlockMapper) TopRightAvailable(i int) bool {
	addr := m.Address(i)
	return (addr+1)%m.frameWidthInMbs != 0 && addr-m.frameWidthInMbs+1 >= m.firstMBAddr
}

// PrebuiltMBlockMapper is the Mapper for pictures with several slice groups.
// Consecutive macroblocks of a slice follow the order of its slice group in
// a MBToSliceGroupMap.
type PrebuiltMBlockMapper struct {
	sgMap          *MBToSliceGroupMap
	firstMBInSlice int
	groupID        int
	indexOfFirstMb int
	picWidthInMbs  int
}

// NewPrebuiltMBlockMapper returns a PrebuiltMBlockMapper for the slice whose
// first macroblock is firstMBInSlice. firstMBInSlice must be a valid address
// of sgMap.
func NewPrebuiltMBlockMapper(sgMap *MBToSliceGroupMap, firstMBInSlice, picWidthInMbs int) *PrebuiltMBlockMapper {
	return &PrebuiltMBlockMapper{
		sgMap:          sgMap,
		firstMBInSlice: firstMBInSlice,
		groupID:        sgMap.groups[firstMBInSlice],
		indexOfFirstMb: sgMap.indices[firstMBInSlice],
		picWidthInMbs:  picWidthInMbs,
	}
}

func (m *PrebuiltMBlockMapper) Address(i int) int {
	return m.sgMap.inverse[m.groupID][i+m.indexOfFirstMb]
}

func (m *PrebuiltMBlockMapper) MbX(i int) int { return m.Address(i) % m.picWidthInMbs }

func (m *PrebuiltMBlockMapper) MbY(i int) int { return m.Address(i) / m.picWidthInMbs }

func (m *PrebuiltMBlockMapper) LeftAvailable(i int) bool {
	addr := m.Address(i)
	return addr%m.picWidthInMbs != 0 && m.inSlice(addr-1)
}

func (m *PrebuiltMBlockMapper) TopAvailable(i int) bool {
	return m.inSlice(m.Address(i) - m.picWidthInMbs)
}

func (m *PrebuiltMBlockMapper) TopLeftAvailable(i int) bool {
	addr := m.Address(i)
	return addr%m.picWidthInMbs != 0 && m.inSlice(addr-m.picWidthInMbs-1)
}

func (m *PrebuiltMBlockMapper) TopRightAvailable(i int) bool {
	addr := m.Address(i)
	return (addr+1)%m.picWidthInMbs != 0 && m.inSlice(addr-m.picWidthInMbs+1)
}

// inSlice reports whether addr is decoded before the current macroblock in the
// same slice, given addr precedes it in raster order.
func (m *PrebuiltMBlockMapper) inSlice(addr int) bool {
	return addr >= m.firstMBInSlice && m.sgMap.groups[addr] == m.groupID
}
