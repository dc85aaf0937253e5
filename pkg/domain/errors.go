package domain

import "errors"

// ErrDiagramNotFound is returned when a diagram ID cannot be found in the store.
var ErrDiagramNotFound = errors.New("diagram not found")

// ErrInvalidTransition is returned when an interaction event does not apply to the current state.
var ErrInvalidTransition = errors.New("invalid interaction transition")

// ErrMalformedMessage is returned when an inbound message cannot be decoded at all.
var ErrMalformedMessage = errors.New("malformed message")

// ErrInvariantViolation is returned when a snapshot breaks a graph invariant.
var ErrInvariantViolation = errors.New("graph invariant violated")
