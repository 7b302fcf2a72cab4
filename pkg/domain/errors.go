package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExists is returned when a session is created with an id already in use.
var ErrSessionExists = errors.New("session already exists")

// ErrAdvanceBlocked is returned when the current step still needs an answer.
var ErrAdvanceBlocked = errors.New("advance blocked: current step is incomplete")

// ErrUnknownStep is returned when a content step identifier is not in the catalog.
var ErrUnknownStep = errors.New("unknown step")

// ErrStepKindMismatch is returned when an operation targets a step of the wrong kind.
var ErrStepKindMismatch = errors.New("step kind mismatch")

// ErrInvalidOption is returned when an answer is not one of the step's options.
var ErrInvalidOption = errors.New("invalid option")

// ErrNotReady is returned when generation is requested before every step was passed.
var ErrNotReady = errors.New("session has not reached the submit position")

// ErrGenerating is returned when a generation is already in flight.
var ErrGenerating = errors.New("recipe generation already in progress")

// ErrNoResult is returned when delivery is requested before a recipe exists.
var ErrNoResult = errors.New("no recipe result available")

// ErrInvalidContact is returned when a contact is not a valid email address.
var ErrInvalidContact = errors.New("invalid contact address")

// ErrGenerationFailed wraps errors returned by the recipe generator.
var ErrGenerationFailed = errors.New("recipe generation failed")
