package domain

import "errors"

var (
	// ErrInvalidSaltEncoding is returned when the salt is not even-length hex.
	ErrInvalidSaltEncoding = errors.New("invalid salt encoding")
	// ErrInvalidDomain is returned when the target domain is empty or malformed.
	ErrInvalidDomain = errors.New("invalid domain")
	// ErrInvalidParameters is returned for unsupported canonical forms or
	// encodings.
	ErrInvalidParameters = errors.New("invalid run parameters")
	// ErrLabelSourceUnavailable wraps failures of the label loader.
	ErrLabelSourceUnavailable = errors.New("label source unavailable")
	// ErrEmptyWordlist is returned when the label source yields nothing.
	ErrEmptyWordlist = errors.New("wordlist is empty")
	// ErrInvalidName marks a single label that cannot be turned into name
	// bytes. It never aborts a batch.
	ErrInvalidName = errors.New("invalid name")
	// ErrOutputPersist wraps failures of a cache writer.
	ErrOutputPersist = errors.New("failed to persist cache record")
	// ErrCacheNotFound is returned by stores when no record exists for an
	// identifier.
	ErrCacheNotFound = errors.New("cache record not found")
)
