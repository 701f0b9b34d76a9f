package transform

import (
	"github.com/pkg/errors"
)

// ErrShapeMismatch is when batched operands disagree on batch size or dimensionality.
var ErrShapeMismatch = errors.New("batch shape mismatch")

// newShapeMismatchError annotates ErrShapeMismatch with what disagreed; check with errors.Is.
func newShapeMismatchError(what string, want, got int) error {
	return errors.Wrapf(ErrShapeMismatch, "%s: expected %d, got %d", what, want, got)
}

// ErrUnsupportedParameterization is when a Convert tag is neither a known rotation
// representation nor one of the whole-transform tags.
var ErrUnsupportedParameterization = errors.New("unsupported transform parameterization")

// NewUnsupportedParameterizationError is used when a parameterization tag is not recognized.
func NewUnsupportedParameterizationError(p Parameterization) error {
	return errors.Wrapf(ErrUnsupportedParameterization, "%q", string(p))
}
