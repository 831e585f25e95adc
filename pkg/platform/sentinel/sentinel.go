package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and registry adapters
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in store or cache
// - ErrConflict: write lost to an existing record for the same key
// - ErrUnavailable: external registry or resource temporarily unavailable
//
// For validation errors (bad identifiers, missing fields), use
// pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
