package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrBelowMinimum      = errors.New("price does not exceed the minimum chargeable amount")
	ErrProviderNotReady  = errors.New("payment provider is not ready")
	ErrInFlight          = errors.New("a checkout attempt is already in progress")
	ErrNoSecret          = errors.New("no payment intent secret for this attempt")
	ErrInputMissing      = errors.New("card details are required")
	ErrCancelled         = errors.New("checkout was cancelled")
	ErrAttemptFinished   = errors.New("checkout attempt already finished")
	ErrEmptyClientSecret = errors.New("backend returned an empty client secret")
)

// Stage names the processor call that failed
type Stage string

const (
	StageTokenize Stage = "tokenize"
	StageConfirm  Stage = "confirm"
)

// PersistStep names the backend write that failed after payment
type PersistStep string

const (
	StepBooking    PersistStep = "booking"
	StepRoomStatus PersistStep = "room_status"
)

// ValidationError is returned when user input is unusable
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PaymentError is returned when the processor rejects the card or the confirmation.
// No backend write has happened.
type PaymentError struct {
	Stage Stage
	Err   error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment %s failed: %v", e.Stage, e.Err)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// PersistenceError is returned when a backend write fails after the charge was captured
type PersistenceError struct {
	Step          PersistStep
	TransactionID string
	Err           error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("payment %s captured but %s write failed: %v", e.TransactionID, e.Step, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
