package descriptor

import (
	"errors"
	"fmt"
)

// Runtime version of this package. Generated code records the version it was
// generated for and is rejected by runtimes it cannot work with.
const (
	Major   = 1
	Minor   = 0
	Patch   = 0
	Suffix  = ""
	Version = "1.0.0"
)

// ErrVersionMismatch is returned when generated code needs a different
// runtime.
var ErrVersionMismatch = errors.New("generated code incompatible with runtime")

type gencodeVersion struct {
	major, minor, patch int
	suffix              string
}

func (v gencodeVersion) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
	if v.suffix != "" {
		s += "-" + v.suffix
	}
	return s
}

func (v gencodeVersion) validate(location string) error {
	switch {
	case v.major != Major:
		return fmt.Errorf("%s: %w: major version %d, runtime %s", location, ErrVersionMismatch, v.major, Version)
	case v.minor > Minor || (v.minor == Minor && v.patch > Patch):
		return fmt.Errorf("%s: %w: generated for %s, newer than runtime %s", location, ErrVersionMismatch, v, Version)
	case v.suffix != Suffix:
		return fmt.Errorf("%s: %w: suffix %q, runtime %q", location, ErrVersionMismatch, v.suffix, Suffix)
	}
	return nil
}

// ValidateGencodeVersion checks that code generated for version
// major.minor.patch-suffix can run on this runtime. location names the
// generated file in the error.
func ValidateGencodeVersion(major, minor, patch int, suffix, location string) error {
	return gencodeVersion{major: major, minor: minor, patch: patch, suffix: suffix}.validate(location)
}
