package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Reasons a command line is rejected. Test with errors.Is.
var (
	ErrInsufficientArguments = errors.New("insufficient arguments")
	ErrInvalidRatio          = errors.New("invalid ratio")
	ErrEmptyPath             = errors.New("empty path")
)

// ConfigError reports a rejected command line.
type ConfigError struct {
	Arg string // offending argument name, empty when arguments are missing
	Err error
}

func (e *ConfigError) Error() string {
	if e.Arg == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Arg, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Options holds the three positional arguments of a run.
type Options struct {
	SourceDir      string
	DestinationDir string
	RatioThreshold float64
}

// Parse builds Options from a process argument list. args[0] is the program
// name and is not used; args[1:4] are the source directory, the destination
// directory and the ratio threshold.
func Parse(args []string) (*Options, error) {
	if len(args) < 4 {
		return nil, &ConfigError{Err: fmt.Errorf("%w: want ORIGIN DESTINATION RATIO, got %d", ErrInsufficientArguments, max(len(args)-1, 0))}
	}

	source, destination, raw := args[1], args[2], args[3]
	if source == "" {
		return nil, &ConfigError{Arg: "origin", Err: ErrEmptyPath}
	}
	if destination == "" {
		return nil, &ConfigError{Arg: "destination", Err: ErrEmptyPath}
	}

	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &ConfigError{Arg: "ratio", Err: fmt.Errorf("%w: %q is not a number", ErrInvalidRatio, raw)}
	}
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio <= 0 {
		return nil, &ConfigError{Arg: "ratio", Err: fmt.Errorf("%w: %q must be a finite number greater than zero", ErrInvalidRatio, raw)}
	}

	return &Options{
		SourceDir:      source,
		DestinationDir: destination,
		RatioThreshold: ratio,
	}, nil
}
