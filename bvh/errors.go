package bvh

import "github.com/pkg/errors"

var (
	ErrMalformedPrimitive = errors.New("bvh: triangle has non-finite vertex coordinates")
	ErrWorkerUnavailable  = errors.New("bvh: no background worker available")
	ErrBackgroundBuild    = errors.New("bvh: background build failed")
	ErrInvalidConfig      = errors.New("bvh: invalid configuration")
	ErrInvalidTree        = errors.New("bvh: tree validation failed")
)
