package apperrors

import "errors"

var (
	ErrInconsistentMetadata = errors.New("inconsistent metadata")
	ErrUnknownRelationKind  = errors.New("unknown relation kind")
	ErrInvalidIdentifier    = errors.New("invalid identifier")
	ErrRowShape             = errors.New("unexpected catalog row shape")
)
