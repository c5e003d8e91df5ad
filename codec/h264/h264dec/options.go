/*
DESCRIPTION
  options.go provides option functions that can be provided to the
  RefPicManager constructor NewRefPicManager. These options include the
  policy for missing references, the handling of memory management control
  operation 5 and the destination of output pictures.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h264dec

import (
	"github.com/pkg/errors"

	"github.com/ausocean/h264ref/codec/h264/h264dec/config"
)

// MissingRefPolicy is an option that can be passed to NewRefPicManager to set
// the handling of marking instructions that name absent pictures, either
// config.MissingRefReject or config.MissingRefEmpty.
func MissingRefPolicy(policy uint8) func(*RefPicManager) error {
	return func(m *RefPicManager) error {
		switch policy {
		case config.MissingRefReject, config.MissingRefEmpty:
			m.missingRef = policy
			return nil
		default:
			return errors.Wrapf(ErrInvalidPolicy, "policy %d", policy)
		}
	}
}

// MMCO5Reset is an option that can be passed to NewRefPicManager. If reset is
// true, a picture carrying a Clear instruction has its frame_num and POC set
// to 0 when stored, after all prior pictures have been output.
func MMCO5Reset(reset bool) func(*RefPicManager) error {
	return func(m *RefPicManager) error {
		m.mmco5Reset = reset
		return nil
	}
}

// OutputTo is an option that can be passed to NewRefPicManager to receive
// pictures in output order as they leave the decoded picture buffer.
func OutputTo(fn func(*DecodedPicture)) func(*RefPicManager) error {
	return func(m *RefPicManager) error {
		m.output = fn
		return nil
	}
}
