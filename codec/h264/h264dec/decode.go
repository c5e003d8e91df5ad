/*
DESCRIPTION
  decode.go provides Decoder, which ties together the decoded picture buffer,
  reference picture marking, reference list construction and slice group
  mapping for one coded video sequence.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package h264dec provides reference picture management and macroblock
// addressing for a h264 decoder.
package h264dec

import (
	"image"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/h264ref/codec/h264/h264dec/config"
)

// Decoder holds the reference state of one coded video sequence. For each
// picture the caller obtains a Mapper and reference lists per slice, decodes
// the slices and then hands the picture to FinishPicture. All slices of a
// picture, and all pictures, must go through a Decoder in decoding order; it
// is not safe for concurrent use.
type Decoder struct {
	cfg config.Config
	log logging.Logger
	sps *SPS

	pps  map[int]*PPS
	maps map[int]*MapManager

	dpb   *DecodedPictureBuffer
	refs  *RefPicManager
	lists *RefListBuilder

	// Pictures output during the current call.
	out []*DecodedPicture

	started         bool
	prevRefFrameNum int
}

// NewDecoder returns a Decoder for the sequence described by sps.
func NewDecoder(cfg config.Config, sps *SPS) (*Decoder, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	cfg.Logger.SetLevel(cfg.LogLevel)

	err = sps.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "could not validate SPS")
	}

	d := &Decoder{
		cfg:  cfg,
		log:  cfg.Logger,
		sps:  sps,
		pps:  make(map[int]*PPS),
		maps: make(map[int]*MapManager),
		dpb:  NewDecodedPictureBuffer(sps.LevelIDC, sps.PicSizeInMbs(), int(cfg.MinDPBSize)),
	}

	d.refs, err = NewRefPicManager(
		d.dpb,
		sps.MaxFrameNum(),
		sps.MaxRefFrames(),
		d.log,
		MissingRefPolicy(cfg.MissingRef),
		MMCO5Reset(cfg.MMCO5Reset),
		OutputTo(d.collect),
	)
	if err != nil {
		return nil, errors.Wrap(err, "could not create ref pic manager")
	}
	d.lists = NewRefListBuilder(sps.MaxFrameNum(), cfg.MissingRef, d.log)

	d.log.Info("decoder created",
		"level", sps.LevelIDC,
		"widthInMbs", sps.PicWidthInMbs(),
		"heightInMbs", sps.FrameHeightInMbs(),
		"maxFrameNum", sps.MaxFrameNum(),
		"maxRef", sps.MaxRefFrames(),
		"dpbSize", d.dpb.Cap(),
	)
	return d, nil
}

// AddPPS makes pps available to slices referring to its id, replacing any
// earlier PPS with the same id.
func (d *Decoder) AddPPS(pps *PPS) error {
	mm, err := NewMapManager(d.sps, pps, d.log)
	if err != nil {
		d.log.Error("could not add PPS", "id", pps.ID, "error", err.Error())
		return errors.Wrapf(err, "could not create map manager for PPS %d", pps.ID)
	}
	d.pps[pps.ID] = pps
	d.maps[pps.ID] = mm
	return nil
}

// Mapper returns the macroblock Mapper for the slice with header sh.
func (d *Decoder) Mapper(sh *SliceHeader) (Mapper, error) {
	mm, ok := d.maps[sh.PPSID]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPPS, "id %d", sh.PPSID)
	}
	return mm.Mapper(sh)
}

// RefLists returns the reference lists of the slice with header sh, belonging
// to the picture with POC poc. Intra slices have no lists, P and SP slices
// have list 0 only. Each list has num_ref_idx_lX_active entries, nil past the
// available references.
func (d *Decoder) RefLists(sh *SliceHeader, poc int) (l0, l1 []*DecodedPicture, err error) {
	err = sh.validate(d.sps.MaxFrameNum())
	if err != nil {
		d.log.Error("invalid slice header", "error", err.Error())
		return nil, nil, err
	}
	if sh.IsIntra() {
		return nil, nil, nil
	}
	pps, ok := d.pps[sh.PPSID]
	if !ok {
		return nil, nil, errors.Wrapf(ErrUnknownPPS, "id %d", sh.PPSID)
	}

	r0, err := sh.RefPicListModification.Reordering(0)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not get list 0 reordering")
	}
	buf := d.refs.AllRefs()

	if !sh.IsB() {
		l0, err = d.lists.BuildRefList(buf, r0, sh.FrameNum)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not build reference list")
		}
		return Truncate(l0, sh.numRefIdxActive(pps, 0)), nil, nil
	}

	r1, err := sh.RefPicListModification.Reordering(1)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not get list 1 reordering")
	}
	l0, l1, err = d.lists.BuildBRefLists(buf, r0, r1, sh.FrameNum, poc)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not build B reference lists")
	}
	return Truncate(l0, sh.numRefIdxActive(pps, 0)), Truncate(l1, sh.numRefIdxActive(pps, 1)), nil
}

// FinishPicture performs reference marking for the decoded picture frame,
// whose first slice had header sh, and stores it. It returns the pictures
// output, in output order, to make room for it.
func (d *Decoder) FinishPicture(sh *SliceHeader, frame *image.YCbCr, poc int) ([]*DecodedPicture, error) {
	d.out = nil

	err := sh.validate(d.sps.MaxFrameNum())
	if err != nil {
		d.log.Error("invalid slice header", "error", err.Error())
		return nil, err
	}

	if sh.IDRPic {
		cur := NewDecodedPicture(frame, poc, sh.FrameNum, true)
		err = d.refs.PerformIDRMarking(sh.DecRefPicMarking.IDRMarking(), cur)
		if err != nil {
			return d.out, errors.Wrap(err, "could not perform IDR marking")
		}
		d.started = true
		d.prevRefFrameNum = sh.FrameNum
		return d.out, nil
	}

	if d.started {
		err = d.fillFrameNumGap(sh.FrameNum)
		if err != nil {
			return d.out, err
		}
	}

	marking, err := sh.DecRefPicMarking.RefPicMarking()
	if err != nil {
		return d.out, errors.Wrap(err, "could not get marking")
	}
	cur := NewDecodedPicture(frame, poc, sh.FrameNum, sh.IsReference())
	err = d.refs.PerformMarking(marking, cur)
	if err != nil {
		return d.out, errors.Wrap(err, "could not perform marking")
	}

	d.started = true
	switch {
	case cur.mmco5:
		d.prevRefFrameNum = 0
	case cur.ref:
		d.prevRefFrameNum = cur.frameNum
	}
	return d.out, nil
}

// Flush outputs all pictures still waiting for output, as at the end of a
// stream.
func (d *Decoder) Flush() []*DecodedPicture {
	d.out = nil
	d.refs.Flush()
	return d.out
}

// SliceGroupMap returns the current slice group map of the PPS with the
// given id, or nil if there is no such PPS or its map has not been built.
func (d *Decoder) SliceGroupMap(ppsID int) *MBToSliceGroupMap {
	mm, ok := d.maps[ppsID]
	if !ok {
		return nil
	}
	return mm.SliceGroupMap()
}

// Pictures returns a snapshot of the decoded picture buffer.
func (d *Decoder) Pictures() []*DecodedPicture { return d.dpb.Pictures() }

// SPS returns the sequence parameter set of the decoder.
func (d *Decoder) SPS() *SPS { return d.sps }

// fillFrameNumGap infers non-existing frames for any frame_num values skipped
// between the previous reference picture and frameNum (8.2.5.2).
func (d *Decoder) fillFrameNumGap(frameNum int) error {
	maxFrameNum := d.sps.MaxFrameNum()
	next := (d.prevRefFrameNum + 1) % maxFrameNum
	if frameNum == d.prevRefFrameNum || frameNum == next {
		return nil
	}

	if !d.sps.GapsInFrameNumValueAllowed && !d.cfg.FillFrameNumGaps {
		if d.cfg.MissingRef == config.MissingRefReject {
			d.log.Error("gap in frame_num", "prev", d.prevRefFrameNum, "frameNum", frameNum)
			return errors.Wrapf(ErrFrameNumGap, "from %d to %d", d.prevRefFrameNum, frameNum)
		}
		d.log.Warning("gap in frame_num, continuing", "prev", d.prevRefFrameNum, "frameNum", frameNum)
		return nil
	}

	for n := next; n != frameNum; n = (n + 1) % maxFrameNum {
		err := d.refs.AddNonExisting(n)
		if err != nil {
			return errors.Wrapf(err, "could not add non-existing frame %d", n)
		}
		d.prevRefFrameNum = n
	}
	return nil
}

func (d *Decoder) collect(p *DecodedPicture) { d.out = append(d.out, p) }
