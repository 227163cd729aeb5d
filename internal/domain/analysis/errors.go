package analysis

import "errors"

// ErrNotFound indicates the requested analysis id is unknown to the store.
var ErrNotFound = errors.New("analysis not found")

// ErrAlreadyExists indicates a create for an id the store already holds.
var ErrAlreadyExists = errors.New("analysis already exists")

// ErrInvalidRepositoryURL indicates the submitted identifier is missing or
// does not match the owner/repository URL shape.
var ErrInvalidRepositoryURL = errors.New("invalid repository url")

// ErrHypothesisOutOfRange indicates a submitted hypothesis value outside
// its own inclusive bounds.
var ErrHypothesisOutOfRange = errors.New("hypothesis value out of range")

// ErrAnalysisNotCompleted indicates a recalculation against a record that
// has not reached the completed state.
var ErrAnalysisNotCompleted = errors.New("analysis not completed")

// ErrRunInFlight indicates a second pipeline run was requested for an id
// whose run has not reached a terminal state.
var ErrRunInFlight = errors.New("analysis run already in flight")
