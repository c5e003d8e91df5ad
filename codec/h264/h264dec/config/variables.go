/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"
)

// Config map Keys.
const (
	KeyLogging          = "logging"
	KeyMissingRef       = "MissingRef"
	KeyMMCO5Reset       = "MMCO5Reset"
	KeyMinDPBSize       = "MinDPBSize"
	KeyFillFrameNumGaps = "FillFrameNumGaps"
)

// Config map parameter types.
const (
	typeUint = "uint"
	typeBool = "bool"
)

// Default variable values.
const (
	defaultVerbosity  = logging.Error
	defaultMissingRef = MissingRefReject
	defaultMinDPBSize = 16
)

// Variables describes the variables that can be used for decoder control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch v {
			case "Debug":
				c.LogLevel = logging.Debug
			case "Info":
				c.LogLevel = logging.Info
			case "Warning":
				c.LogLevel = logging.Warning
			case "Error":
				c.LogLevel = logging.Error
			case "Fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid Logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField("LogLevel", defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name: KeyMissingRef,
		Type: "enum:Reject,Empty",
		Update: func(c *Config, v string) {
			c.MissingRef = parseEnum(
				KeyMissingRef,
				v,
				map[string]uint8{
					"reject": MissingRefReject,
					"empty":  MissingRefEmpty,
				},
				c,
			)
		},
		Validate: func(c *Config) {
			switch c.MissingRef {
			case MissingRefReject, MissingRefEmpty:
			default:
				c.LogInvalidField(KeyMissingRef, defaultMissingRef)
				c.MissingRef = defaultMissingRef
			}
		},
	},
	{
		Name:   KeyMMCO5Reset,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.MMCO5Reset = parseBool(KeyMMCO5Reset, v, c) },
	},
	{
		Name:   KeyMinDPBSize,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MinDPBSize = parseUint(KeyMinDPBSize, v, c) },
		Validate: func(c *Config) {
			c.MinDPBSize = lessThanOrEqual(KeyMinDPBSize, c.MinDPBSize, 0, c, defaultMinDPBSize)
		},
	},
	{
		Name:   KeyFillFrameNumGaps,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.FillFrameNumGaps = parseBool(KeyFillFrameNumGaps, v, c) },
	},
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.Logger.Warning(fmt.Sprintf("expect bool for param %s", n), "value", v)
	}
	return
}

func parseEnum(n, v string, enums map[string]uint8, c *Config) uint8 {
	_v, ok := enums[strings.ToLower(v)]
	if !ok {
		c.Logger.Warning(fmt.Sprintf("invalid value for %s param", n), "value", v)
	}
	return _v
}

func lessThanOrEqual(n string, v, cmp uint, c *Config, def uint) uint {
	if v <= cmp {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
