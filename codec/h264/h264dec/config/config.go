/*
NAME
  config.go

DESCRIPTION
  config.go provides the configuration settings for reference picture
  management and slice group mapping.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for h264dec.
package config

import (
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// Policies for marking and reordering instructions that name a picture that
// is not in the decoded picture buffer.
const (
	// MissingRefReject fails the picture or slice with an error.
	MissingRefReject uint8 = iota

	// MissingRefEmpty leaves an empty slot in the reference list, or ignores
	// the marking instruction, and logs a warning.
	MissingRefEmpty
)

// Config provides parameters relevant to a h264dec.Decoder. Default values
// for these fields are defined in variables.go.
type Config struct {
	// Logger holds an implementation of the Logger interface. It must be set.
	Logger logging.Logger

	// LogLevel is the logging verbosity level.
	LogLevel int8

	// MissingRef is the policy for instructions naming absent pictures, one of
	// MissingRefReject or MissingRefEmpty.
	MissingRef uint8

	// MMCO5Reset, if true, applies the frame_num and POC reset of a picture
	// carrying memory_management_control_operation 5 (8.2.1) when it is stored.
	// If false the caller is responsible for the reset.
	MMCO5Reset bool

	// MinDPBSize is the smallest capacity given to the decoded picture buffer.
	MinDPBSize uint

	// FillFrameNumGaps, if true, infers non-existing frames for gaps in
	// frame_num even when the SPS does not permit gaps.
	FillFrameNumGaps bool
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("no logger")
	}
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
