/*
DESCRIPTION
  dpbsim simulates the reference picture management of a h264 decoder for a
  coded sequence described by a GOP pattern. It logs the reference lists of
  every picture, the slice group map and the resulting output order.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dpbsim is a command line simulator for h264dec.
package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/h264ref/codec/h264/h264dec"
	"github.com/ausocean/h264ref/codec/h264/h264dec/config"
	"github.com/ausocean/utils/logging"
)

// Logging configuration.
const (
	logPath      = "dpbsim.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 3
	logMaxAge    = 7 // days
	logVerbosity = logging.Info
	logSuppress  = false
)

// Misc constants.
const (
	log2MaxFrameNumMinus4 = 0
	mbSize                = 16
)

// picture is one coded picture of the simulated sequence.
type picture struct {
	kind byte // I, P or B.
	idr  bool
	poc  int
}

func main() {
	var (
		gopPtr     = flag.String("gop", "IBBPBBP", "GOP pattern in display order using I, P and B")
		gopsPtr    = flag.Int("gops", 2, "number of GOPs to simulate")
		widthPtr   = flag.Uint("width", 11, "picture width in macroblocks")
		heightPtr  = flag.Uint("height", 9, "picture height in macroblocks")
		refsPtr    = flag.Uint("refs", 4, "max_num_ref_frames")
		levelPtr   = flag.Uint("level", 30, "level_idc")
		groupsPtr  = flag.Int("groups", 1, "number of slice groups")
		mapTypePtr = flag.Int("maptype", 1, "slice group map type, 0 to 6")
		varsPtr    = flag.String("vars", "", "comma separated config variables, e.g. logging=Debug,MissingRef=empty")
	)
	flag.Parse()

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(os.Stderr, fileLog), logSuppress)

	cfg := config.Config{Logger: log, LogLevel: logVerbosity}
	cfg.Update(parseVars(*varsPtr))

	sps := &h264dec.SPS{
		LevelIDC:                  uint8(*levelPtr),
		Log2MaxFrameNumMinus4:     log2MaxFrameNumMinus4,
		MaxNumRefFrames:           uint64(*refsPtr),
		PicWidthInMBSMinus1:       uint64(*widthPtr) - 1,
		PicHeightInMapUnitsMinus1: uint64(*heightPtr) - 1,
		FrameMBSOnlyFlag:          true,
	}
	dec, err := h264dec.NewDecoder(cfg, sps)
	if err != nil {
		log.Fatal("could not create decoder", "error", err.Error())
	}

	err = dec.AddPPS(newPPS(sps, *groupsPtr, *mapTypePtr))
	if err != nil {
		log.Fatal("could not add PPS", "error", err.Error())
	}

	var (
		order     []int
		frameNum  int
		prevMap   *h264dec.MBToSliceGroupMap
		occupancy []float64 // Pictures held after each picture is stored.
		active    []float64 // Non-empty list 0 entries of each inter picture.
	)
	for g := 0; g < *gopsPtr; g++ {
		for i, p := range decodeOrder(*gopPtr) {
			sh := &h264dec.SliceHeader{
				IDRPic:                p.idr,
				FrameNum:              frameNum,
				SliceGroupChangeCycle: i + 1,
			}
			if p.idr {
				frameNum = 0
				sh.FrameNum = 0
			}
			switch p.kind {
			case 'I':
				sh.SliceType = h264dec.SliceTypeI
				sh.NALRefIDC = 1
			case 'P':
				sh.SliceType = h264dec.SliceTypeP
				sh.NALRefIDC = 1
			default:
				sh.SliceType = h264dec.SliceTypeB
			}

			_, err := dec.Mapper(sh)
			if err != nil {
				log.Fatal("could not get mapper", "error", err.Error())
			}
			if m := dec.SliceGroupMap(sh.PPSID); m != prevMap {
				fmt.Print(formatMap(m.Groups(), sps.PicWidthInMbs()))
				logSlices(log, dec, sh, m)
				prevMap = m
			}

			l0, l1, err := dec.RefLists(sh, p.poc)
			if err != nil {
				log.Fatal("could not build reference lists", "error", err.Error())
			}
			if l0 != nil {
				active = append(active, float64(len(l0)-count(l0, nil)))
			}
			log.Info("picture", "gop", g, "type", string(p.kind), "frameNum", sh.FrameNum, "poc", p.poc, "l0", fmt.Sprint(pocs(l0)), "l1", fmt.Sprint(pocs(l1)))

			frame := image.NewYCbCr(image.Rect(0, 0, sps.PicWidthInMbs()*mbSize, sps.FrameHeightInMbs()*mbSize), image.YCbCrSubsampleRatio420)
			out, err := dec.FinishPicture(sh, frame, p.poc)
			if err != nil {
				log.Fatal("could not finish picture", "error", err.Error())
			}
			order = append(order, pocs(out)...)
			occupancy = append(occupancy, float64(len(dec.Pictures())))

			if sh.IsReference() {
				frameNum = (frameNum + 1) % sps.MaxFrameNum()
			}
		}
	}
	order = append(order, pocs(dec.Flush())...)

	log.Info("simulation complete", "pictures", len(order))
	fmt.Println("output order (POC):", order)
	fmt.Printf("buffer occupancy: mean %.2f stddev %.2f\n", stat.Mean(occupancy, nil), stat.StdDev(occupancy, nil))
	if len(active) > 0 {
		fmt.Printf("list 0 references: mean %.2f\n", stat.Mean(active, nil))
	}
}

// count returns the number of entries of list equal to p.
func count(list []*h264dec.DecodedPicture, p *h264dec.DecodedPicture) int {
	var n int
	for _, q := range list {
		if q == p {
			n++
		}
	}
	return n
}

// decodeOrder returns the pictures of one GOP in decoding order. B pictures
// follow the I or P picture after them in display order; B pictures at the
// end of the pattern are decoded last. The first picture is an IDR picture.
func decodeOrder(gop string) []picture {
	var (
		pics    []picture
		pending []picture
	)
	for i, k := range strings.ToUpper(gop) {
		p := picture{kind: byte(k), poc: 2 * i}
		switch k {
		case 'I', 'P':
			p.idr = i == 0
			pics = append(pics, p)
			pics = append(pics, pending...)
			pending = pending[:0]
		case 'B':
			pending = append(pending, p)
		}
	}
	return append(pics, pending...)
}

// newPPS returns a PPS using the given slice group configuration, with
// map type parameters chosen to cover the picture.
func newPPS(sps *h264dec.SPS, groups, mapType int) *h264dec.PPS {
	var (
		w    = sps.PicWidthInMbs()
		h    = sps.PicHeightInMapUnits()
		refs = sps.MaxRefFrames()
	)
	pps := &h264dec.PPS{
		NumSliceGroupsMinus1:           groups - 1,
		SliceGroupMapType:              mapType,
		SliceGroupChangeRateMinus1:     w - 1,
		PicSizeInMapUnitsMinus1:        sps.PicSizeInMapUnits() - 1,
		NumRefIdxL0DefaultActiveMinus1: refs - 1,
		NumRefIdxL1DefaultActiveMinus1: refs - 1,
	}
	switch mapType {
	case 0:
		for g := 0; g < groups; g++ {
			pps.RunLengthMinus1 = append(pps.RunLengthMinus1, g)
		}
	case 2:
		for g := 0; g < groups-1; g++ {
			pps.TopLeft = append(pps.TopLeft, g*w+g)
			pps.BottomRight = append(pps.BottomRight, (h-1-g)*w+w-1-g)
		}
	case 6:
		for i := 0; i < sps.PicSizeInMapUnits(); i++ {
			pps.SliceGroupId = append(pps.SliceGroupId, (i/w)%groups)
		}
	}
	return pps
}

// logSlices logs, for a picture with one slice per slice group, the first
// macroblock of each slice and its neighbour availability.
func logSlices(log logging.Logger, dec *h264dec.Decoder, sh *h264dec.SliceHeader, m *h264dec.MBToSliceGroupMap) {
	for g, addrs := range m.Inverse() {
		if len(addrs) == 0 {
			continue
		}
		s := *sh
		s.FirstMbInSlice = addrs[0]
		mapper, err := dec.Mapper(&s)
		if err != nil {
			log.Warning("could not get mapper for slice", "group", g, "error", err.Error())
			continue
		}
		last := len(addrs) - 1
		log.Debug("slice",
			"group", g,
			"mbs", len(addrs),
			"first", mapper.Address(0),
			"last", mapper.Address(last),
			"lastLeft", mapper.LeftAvailable(last),
			"lastTop", mapper.TopAvailable(last),
			"lastTopLeft", mapper.TopLeftAvailable(last),
			"lastTopRight", mapper.TopRightAvailable(last),
		)
	}
}

// formatMap renders a slice group map with one row per macroblock row.
func formatMap(groups []int, w int) string {
	var b strings.Builder
	for i, g := range groups {
		fmt.Fprintf(&b, "%d", g)
		if (i+1)%w == 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// pocs returns the POCs of list, -1 for empty entries.
func pocs(list []*h264dec.DecodedPicture) []int {
	out := make([]int, len(list))
	for i, p := range list {
		if p == nil {
			out[i] = -1
			continue
		}
		out[i] = p.POC()
	}
	return out
}

// parseVars splits key=value pairs separated by commas.
func parseVars(s string) map[string]string {
	vars := make(map[string]string)
	for _, kv := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		vars[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return vars
}
