package config

import "errors"

// Sentinel errors for configuration validation.
var (
	ErrMissingInput               = errors.New("missing input path")
	ErrInvalidCodec               = errors.New("invalid codec")
	ErrInvalidVMAFTarget          = errors.New("invalid VMAF target")
	ErrInvalidEncoders            = errors.New("invalid encoders permit count")
	ErrInvalidBufferCapacity      = errors.New("invalid buffer capacity")
	ErrInvalidCQWindow            = errors.New("invalid CQ window")
	ErrInvalidSecantTolerance     = errors.New("invalid secant tolerance")
	ErrInvalidSecantMaxIterations = errors.New("invalid secant max iterations")
)
