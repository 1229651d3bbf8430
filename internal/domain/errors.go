package domain

import "errors"

var (
	// ErrSessionNotFound is returned when an operation references an unknown session code.
	ErrSessionNotFound = errors.New("session not found")
	// ErrAuthorizationDenied is returned when the start credential does not match.
	ErrAuthorizationDenied = errors.New("start credential rejected")
	// ErrInvalidState is returned when an operation is not valid for the session's lifecycle state.
	ErrInvalidState = errors.New("operation invalid for session state")
	// ErrParticipantNotFound is returned when a player tries to act before joining.
	ErrParticipantNotFound = errors.New("participant not found in session")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
)
