package config

import "errors"

// Errors returned by Load and its variants; match them with errors.Is.
var (
	ErrParsingConfig   = errors.New("config: cannot parse environment")
	ErrConfigNotLoaded = errors.New("config: earlier load of this type failed")
	ErrNilPointer      = errors.New("config: nil target")
)
