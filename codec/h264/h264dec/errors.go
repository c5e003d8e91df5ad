/*
DESCRIPTION
  errors.go provides the errors returned by reference picture management and
  macroblock addressing.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

import "github.com/pkg/errors"

// Unsupported configuration. Callers should stop decoding the stream.
var (
	ErrUnsupportedMapType = errors.New("unsupported slice group map type")
	ErrUnsupportedReorder = errors.New("unsupported modification_of_pic_nums_idc")
	ErrUnsupportedMMCO    = errors.New("unsupported memory_management_control_operation")
	ErrUnsupportedMBAFF   = errors.New("macroblock adaptive frame/field slice groups not supported")
)

// ErrInvalidPolicy is returned by NewRefPicManager for a missing reference
// policy other than config.MissingRefReject or config.MissingRefEmpty.
var ErrInvalidPolicy = errors.New("invalid missing reference policy")

// Content errors, i.e. the stream is not conformant.
var (
	ErrMissingReference = errors.New("instruction refers to picture not in decoded picture buffer")
	ErrDPBFull          = errors.New("decoded picture buffer full")
	ErrInvalidSPS       = errors.New("invalid sequence parameter set")
	ErrInvalidPPS       = errors.New("invalid picture parameter set")
	ErrInvalidSlice     = errors.New("invalid slice header")
	ErrUnknownPPS       = errors.New("slice refers to unknown picture parameter set")
	ErrFrameNumGap      = errors.New("unexpected gap in frame_num")
)
