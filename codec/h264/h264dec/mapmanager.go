/*
DESCRIPTION
  mapmanager.go provides MapManager, which builds and caches the macroblock to
  slice group map of a picture parameter set and hands out the Mapper for each
  slice.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

import (
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// States of the cached slice group map.
const (
	mapUnbuilt = iota // Dynamic map type, no slice seen yet.
	mapStatic         // Built once from the PPS.
	mapDynamic        // Built for the cycle in MapManager.cycle.
)

// MapManager owns the MBToSliceGroupMap for one PPS. Map types 0, 1, 2 and 6
// are built when the manager is created. Map types 3 to 5 depend on
// slice_group_change_cycle and are built on the first slice, then rebuilt only
// when the cycle changes. It is not safe for concurrent use.
type MapManager struct {
	sps *SPS
	pps *PPS
	log logging.Logger

	state int
	cycle int
	sgMap *MBToSliceGroupMap
}

// NewMapManager validates pps against sps and returns a MapManager for it.
// Unsupported map types, and slice groups with macroblock adaptive
// frame/field coding, give errors the caller should treat as fatal.
func NewMapManager(sps *SPS, pps *PPS, log logging.Logger) (*MapManager, error) {
	err := pps.Validate(sps)
	if err != nil {
		return nil, errors.Wrap(err, "could not validate PPS")
	}
	if pps.NumSliceGroups() > 1 && !sps.FrameMBSOnlyFlag && sps.MBAdaptiveFrameFieldFlag {
		return nil, ErrUnsupportedMBAFF
	}

	m := &MapManager{sps: sps, pps: pps, log: log}
	if pps.dynamic() {
		m.state = mapUnbuilt
		return m, nil
	}

	m.sgMap, err = m.buildMap()
	if err != nil {
		return nil, err
	}
	m.state = mapStatic
	log.Debug("built slice group map", "pps", pps.ID, "type", pps.SliceGroupMapType, "groups", pps.NumSliceGroups())
	return m, nil
}

// Mapper returns the Mapper for the slice with header sh, rebuilding the
// slice group map first if it depends on sh.SliceGroupChangeCycle.
func (m *MapManager) Mapper(sh *SliceHeader) (Mapper, error) {
	err := m.updateMap(sh)
	if err != nil {
		return nil, errors.Wrap(err, "could not update slice group map")
	}

	size := m.sps.PicSizeInMbs()
	if sh.FirstMbInSlice < 0 || sh.FirstMbInSlice >= size {
		return nil, errors.Wrapf(ErrInvalidSlice, "first_mb_in_slice %d outside picture of %d macroblocks", sh.FirstMbInSlice, size)
	}

	if m.pps.NumSliceGroups() > 1 {
		return NewPrebuiltMBlockMapper(m.sgMap, sh.FirstMbInSlice, m.sps.PicWidthInMbs()), nil
	}
	return NewFlatMBlockMapper(m.sps.PicWidthInMbs(), sh.FirstMbInSlice), nil
}

// SliceGroupMap returns the current map, nil for a dynamic map type before the
// first slice.
func (m *MapManager) SliceGroupMap() *MBToSliceGroupMap { return m.sgMap }

// updateMap rebuilds a dynamic map if sh carries a different
// slice_group_change_cycle from the one the map was built for.
func (m *MapManager) updateMap(sh *SliceHeader) error {
	if m.state == mapStatic || (m.state == mapDynamic && m.cycle == sh.SliceGroupChangeCycle) {
		return nil
	}
	if sh.SliceGroupChangeCycle < 0 {
		return errors.Wrapf(ErrInvalidSlice, "slice_group_change_cycle %d", sh.SliceGroupChangeCycle)
	}

	var (
		w     = m.sps.PicWidthInMbs()
		h     = m.sps.PicHeightInMapUnits()
		size  = m.sps.PicSizeInMapUnits()
		dir   = m.pps.SliceGroupChangeDirection
		units = mini(sh.SliceGroupChangeCycle*m.pps.SliceGroupChangeRate(), size)
	)

	// Eq 7-24 and 7-25.
	sizeOfUpperLeftGroup := units
	if dir {
		sizeOfUpperLeftGroup = size - units
	}

	var mapUnits []int
	switch m.pps.SliceGroupMapType {
	case mapTypeBoxOut:
		mapUnits = boxOutMap(w, h, dir, units)
	case mapTypeRasterScan:
		mapUnits = rasterScanMap(w, h, sizeOfUpperLeftGroup, dir)
	case mapTypeWipe:
		mapUnits = wipeMap(w, h, sizeOfUpperLeftGroup, dir)
	default:
		return errors.Wrapf(ErrUnsupportedMapType, "type %d", m.pps.SliceGroupMapType)
	}

	m.sgMap = buildMapIndices(mapUnitsToMbs(mapUnits, m.sps), m.pps.NumSliceGroups())
	m.state = mapDynamic
	m.cycle = sh.SliceGroupChangeCycle
	m.log.Debug("rebuilt slice group map", "pps", m.pps.ID, "cycle", m.cycle, "unitsInGroup0", units)
	return nil
}

// buildMap builds the map for a static map type (8.2.2).
func (m *MapManager) buildMap() (*MBToSliceGroupMap, error) {
	var (
		n = m.pps.NumSliceGroups()
		w = m.sps.PicWidthInMbs()
		h = m.sps.PicHeightInMapUnits()
	)

	if n == 1 {
		return buildMapIndices(make([]int, m.sps.PicSizeInMbs()), 1), nil
	}

	var mapUnits []int
	switch m.pps.SliceGroupMapType {
	case mapTypeInterleaved:
		runLength := make([]int, n)
		for i := range runLength {
			runLength[i] = m.pps.RunLengthMinus1[i] + 1
		}
		mapUnits = interleavedMap(w, h, runLength)
	case mapTypeDispersed:
		mapUnits = dispersedMap(w, h, n)
	case mapTypeForeground:
		mapUnits = foregroundMap(w, h, n, m.pps.TopLeft, m.pps.BottomRight)
	case mapTypeExplicit:
		mapUnits = make([]int, len(m.pps.SliceGroupId))
		copy(mapUnits, m.pps.SliceGroupId)
	default:
		m.log.Error("unsupported slice group map type", "type", m.pps.SliceGroupMapType)
		return nil, errors.Wrapf(ErrUnsupportedMapType, "type %d", m.pps.SliceGroupMapType)
	}
	return buildMapIndices(mapUnitsToMbs(mapUnits, m.sps), n), nil
}
