// Package checkout drives a single card checkout for a room booking:
// payment intent secret, card tokenization, confirmation, then persistence
// of the booking and the room's availability flag.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the position of an attempt in the checkout flow
type State int

const (
	StateIdle State = iota
	StateFetchingSecret
	StateAwaitingInput
	StateTokenizing
	StateConfirming
	StatePersisting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetchingSecret:
		return "fetching_secret"
	case StateAwaitingInput:
		return "awaiting_input"
	case StateTokenizing:
		return "tokenizing"
	case StateConfirming:
		return "confirming"
	case StatePersisting:
		return "persisting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config holds orchestrator settings
type Config struct {
	MinimumCharge float64          // prices at or below this never request a secret
	BookingsView  string           // navigation target after success
	Now           func() time.Time // booking timestamp source
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MinimumCharge: 1,
		BookingsView:  DefaultBookingsView,
		Now:           time.Now,
	}
}

// Orchestrator runs one checkout attempt for one booking request
type Orchestrator struct {
	cfg      Config
	api      HTTPClient
	provider PaymentProvider
	identity Identity
	booking  BookingRequest
	hooks    Hooks
	logger   *logrus.Logger

	mu         sync.Mutex
	state      State
	processing bool
	cancelled  bool
	secret     PaymentIntentSecret
	lastError  string
}

// New creates an orchestrator for a single booking request
func New(
	cfg Config,
	api HTTPClient,
	provider PaymentProvider,
	identity Identity,
	booking BookingRequest,
	hooks Hooks,
	logger *logrus.Logger,
) *Orchestrator {
	if cfg.BookingsView == "" {
		cfg.BookingsView = DefaultBookingsView
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &Orchestrator{
		cfg:      cfg,
		api:      api,
		provider: provider,
		identity: identity,
		booking:  booking,
		hooks:    hooks,
		logger:   logger,
		state:    StateIdle,
	}
}

// State returns the current state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Processing reports whether the single-flight guard is held
func (o *Orchestrator) Processing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.processing
}

// LastError returns the message last surfaced to the user
func (o *Orchestrator) LastError() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastError
}

// Ready reports whether Submit can run: provider loaded, secret present, nothing in flight
func (o *Orchestrator) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.provider.Ready() && o.secret != "" && !o.processing && o.state == StateAwaitingInput
}

// Prepare requests the payment intent secret for the booking price
func (o *Orchestrator) Prepare(ctx context.Context) error {
	if o.booking.Price <= o.cfg.MinimumCharge {
		return ErrBelowMinimum
	}

	if err := o.acquire(StateIdle); err != nil {
		return err
	}
	defer o.release()

	o.setState(StateFetchingSecret)

	var resp createIntentResponse
	err := o.api.Post(ctx, PathCreatePaymentIntent, createIntentRequest{Price: o.booking.Price}, &resp)
	if err == nil && resp.ClientSecret == "" {
		err = ErrEmptyClientSecret
	}
	if err != nil {
		o.logger.WithError(err).WithFields(logrus.Fields{
			"room_id": o.booking.RoomID,
			"price":   o.booking.Price,
		}).Error("Failed to fetch payment intent secret")
		o.setState(StateIdle)
		return fmt.Errorf("failed to fetch payment intent secret: %w", err)
	}

	o.mu.Lock()
	o.secret = PaymentIntentSecret(resp.ClientSecret)
	o.state = StateAwaitingInput
	o.mu.Unlock()

	o.logger.WithField("room_id", o.booking.RoomID).Debug("Payment intent secret received")
	return nil
}

// Submit runs tokenization, confirmation and persistence for the entered card
func (o *Orchestrator) Submit(ctx context.Context, card *CardInput) (PaymentOutcome, error) {
	if !o.provider.Ready() {
		return PaymentOutcome{}, ErrProviderNotReady
	}

	if err := o.acquire(StateAwaitingInput); err != nil {
		return PaymentOutcome{}, err
	}
	defer o.release()

	if card.Empty() {
		verr := &ValidationError{Field: "card", Err: ErrInputMissing}
		o.surface(NotifyError, ErrInputMissing.Error())
		return PaymentOutcome{Kind: OutcomeFailed, Reason: verr.Error()}, verr
	}

	o.setState(StateTokenizing)
	method, err := o.provider.Tokenize(ctx, *card, BillingDetails{
		Email: o.identity.Email,
		Name:  o.identity.DisplayName,
	})
	if err != nil {
		return o.paymentFailed(StageTokenize, err)
	}

	o.setState(StateConfirming)
	intent, err := o.provider.Confirm(ctx, o.currentSecret(), ConfirmRequest{
		PaymentMethod: method,
		Card:          *card,
	})
	if err != nil {
		return o.paymentFailed(StageConfirm, err)
	}

	if intent == nil || intent.Status != StatusSucceeded {
		status := "unknown"
		if intent != nil {
			status = intent.Status
		}
		o.logger.WithFields(logrus.Fields{
			"room_id": o.booking.RoomID,
			"status":  status,
		}).Warn("Payment not completed, booking not persisted")
		o.setState(StateAwaitingInput)
		o.surface(NotifyInfo, "payment is still processing")
		return PaymentOutcome{Kind: OutcomePending, Reason: status}, nil
	}

	o.setState(StatePersisting)
	if err := o.persist(ctx, intent.ID); err != nil {
		o.logger.WithError(err).WithFields(logrus.Fields{
			"room_id":        o.booking.RoomID,
			"transaction_id": intent.ID,
		}).Error("CRITICAL: payment captured but booking persistence failed")
		o.setState(StateFailed)
		o.surface(NotifyError, "please try again")
		return PaymentOutcome{Kind: OutcomeFailed, TransactionID: intent.ID, Reason: err.Error()}, err
	}

	o.setState(StateSucceeded)
	o.logger.WithFields(logrus.Fields{
		"room_id":        o.booking.RoomID,
		"transaction_id": intent.ID,
		"price":          o.booking.Price,
	}).Info("Room booked successfully")

	if o.hooks.Refresh != nil {
		o.hooks.Refresh()
	}
	if o.hooks.Close != nil {
		o.hooks.Close()
	}
	o.surface(NotifySuccess, "Room Booked successfully")
	if o.hooks.Navigate != nil {
		o.hooks.Navigate(o.cfg.BookingsView)
	}

	return PaymentOutcome{Kind: OutcomeSucceeded, TransactionID: intent.ID}, nil
}

// Cancel discards the checkout surface. It has no effect once an attempt is in flight.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return false
	}
	o.cancelled = true
	o.mu.Unlock()

	if o.hooks.Close != nil {
		o.hooks.Close()
	}
	return true
}

// Record builds the booking body for a captured transaction
func (o *Orchestrator) Record(transactionID string) BookingRecord {
	b := o.booking
	return BookingRecord{
		RoomID:        b.RoomID,
		Price:         b.Price,
		Title:         b.Title,
		Location:      b.Location,
		Image:         b.Image,
		HostEmail:     b.HostEmail,
		GuestEmail:    firstNonEmpty(b.GuestEmail, o.identity.Email),
		GuestName:     o.identity.DisplayName,
		From:          b.DateRange.From,
		To:            b.DateRange.To,
		TransactionID: transactionID,
		Date:          o.cfg.Now(),
		Extra:         b.Extra,
	}
}

func (o *Orchestrator) persist(ctx context.Context, transactionID string) error {
	if err := o.api.Post(ctx, PathBooking, o.Record(transactionID), nil); err != nil {
		return &PersistenceError{Step: StepBooking, TransactionID: transactionID, Err: err}
	}

	path := PathRoomStatus + url.PathEscape(o.booking.RoomID)
	if err := o.api.Patch(ctx, path, roomStatusRequest{Status: true}, nil); err != nil {
		return &PersistenceError{Step: StepRoomStatus, TransactionID: transactionID, Err: err}
	}
	return nil
}

func (o *Orchestrator) paymentFailed(stage Stage, err error) (PaymentOutcome, error) {
	o.logger.WithError(err).WithFields(logrus.Fields{
		"room_id": o.booking.RoomID,
		"stage":   stage,
	}).Warn("Payment rejected")

	o.setState(StateAwaitingInput)
	o.surface(NotifyError, err.Error())

	perr := &PaymentError{Stage: stage, Err: err}
	return PaymentOutcome{Kind: OutcomeFailed, Reason: err.Error()}, perr
}

// acquire takes the single-flight guard if the attempt is in the expected state
func (o *Orchestrator) acquire(expected State) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.cancelled:
		return ErrCancelled
	case o.processing:
		return ErrInFlight
	case o.state == StateSucceeded || o.state == StateFailed:
		return ErrAttemptFinished
	case expected == StateAwaitingInput && o.secret == "":
		return ErrNoSecret
	case o.state != expected:
		return fmt.Errorf("cannot start from state %s", o.state)
	}

	o.processing = true
	return nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.processing = false
	o.mu.Unlock()
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) currentSecret() PaymentIntentSecret {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.secret
}

func (o *Orchestrator) surface(level NotificationLevel, message string) {
	o.mu.Lock()
	if level == NotifyError {
		o.lastError = message
	} else {
		o.lastError = ""
	}
	o.mu.Unlock()

	if o.hooks.Notify != nil {
		o.hooks.Notify(Notification{Level: level, Message: message})
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// IsPersistenceFailure reports whether err means money was captured without a consistent booking
func IsPersistenceFailure(err error) bool {
	var perr *PersistenceError
	return errors.As(err, &perr)
}
