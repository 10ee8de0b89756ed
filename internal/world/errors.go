package world

import "errors"

// Errors returned by the world API. Construction errors from the body
// package are wrapped and pass through unchanged.
var (
	// ErrBodyIndex indicates a body handle outside the body list.
	ErrBodyIndex = errors.New("world: body index out of range")

	// ErrSameBody indicates a two-body joint given the same body twice.
	ErrSameBody = errors.New("world: joint needs two distinct bodies")

	// ErrCompliance indicates a negative or non-finite compliance.
	ErrCompliance = errors.New("world: compliance must be a non-negative finite number")

	// ErrInvalidParams indicates a step request the loop cannot run.
	ErrInvalidParams = errors.New("world: invalid step parameters")

	// ErrNothingToRemove indicates RemoveMostRecent on an empty history.
	ErrNothingToRemove = errors.New("world: nothing to remove")

	// ErrBodyInUse indicates a body removal while a constraint or spring
	// still points at it.
	ErrBodyInUse = errors.New("world: body still referenced")
)
