// Package stripepay implements the checkout payment provider on top of Stripe.
package stripepay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/pkg/checkout"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var _ checkout.PaymentProvider = (*Provider)(nil)

// ErrMalformedSecret is returned when a client secret carries no intent id
var ErrMalformedSecret = errors.New("malformed payment intent client secret")

const (
	secretSeparator   = "_secret_"
	publishablePrefix = "pk_"
)

// Config holds Stripe settings. Only a publishable key (pk_...) is accepted:
// intents are confirmed with their client secret, as a browser would.
type Config struct {
	PublishableKey string
	// Backends overrides the Stripe API backends, nil uses the defaults
	Backends *stripe.Backends
}

// Provider tokenizes cards and confirms payment intents through the Stripe API
type Provider struct {
	api    *client.API
	ready  bool
	logger *logrus.Logger
}

// New creates a Stripe payment provider
func New(cfg Config, logger *logrus.Logger) *Provider {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	ready := strings.HasPrefix(cfg.PublishableKey, publishablePrefix)
	if cfg.PublishableKey != "" && !ready {
		logger.Warn("Stripe key is not a publishable key, card payments are disabled")
	}
	return &Provider{
		api:    client.New(cfg.PublishableKey, cfg.Backends),
		ready:  ready,
		logger: logger,
	}
}

// Ready reports whether a publishable key was configured
func (p *Provider) Ready() bool {
	return p.ready
}

// Tokenize creates a card payment method carrying the billing details
func (p *Provider) Tokenize(ctx context.Context, card checkout.CardInput, billing checkout.BillingDetails) (*checkout.PaymentMethod, error) {
	params := &stripe.PaymentMethodParams{
		Type: stripe.String(string(stripe.PaymentMethodTypeCard)),
	}
	if billing != (checkout.BillingDetails{}) {
		params.BillingDetails = &stripe.PaymentMethodBillingDetailsParams{}
		if billing.Email != "" {
			params.BillingDetails.Email = stripe.String(billing.Email)
		}
		if billing.Name != "" {
			params.BillingDetails.Name = stripe.String(billing.Name)
		}
	}
	if card.Token != "" {
		params.Card = &stripe.PaymentMethodCardParams{Token: stripe.String(card.Token)}
	} else {
		params.Card = &stripe.PaymentMethodCardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.Int64(int64(card.ExpMonth)),
			ExpYear:  stripe.Int64(int64(card.ExpYear)),
			CVC:      stripe.String(card.CVC),
		}
	}
	params.Context = ctx

	pm, err := p.api.PaymentMethods.New(params)
	if err != nil {
		return nil, describe(err)
	}

	method := &checkout.PaymentMethod{ID: pm.ID}
	if pm.Card != nil {
		method.Brand = string(pm.Card.Brand)
		method.LastFour = pm.Card.Last4
	}

	p.logger.WithFields(logrus.Fields{
		"payment_method": method.ID,
		"brand":          method.Brand,
	}).Debug("Card tokenized")
	return method, nil
}

// Confirm confirms the intent behind secret with the tokenized card
func (p *Provider) Confirm(ctx context.Context, secret checkout.PaymentIntentSecret, req checkout.ConfirmRequest) (*checkout.PaymentIntent, error) {
	intentID, err := IntentID(secret)
	if err != nil {
		return nil, err
	}
	if req.PaymentMethod == nil || req.PaymentMethod.ID == "" {
		return nil, fmt.Errorf("payment method is required")
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(req.PaymentMethod.ID),
	}
	// no typed field for it in this SDK version
	params.AddExtra("client_secret", string(secret))
	params.Context = ctx

	pi, err := p.api.PaymentIntents.Confirm(intentID, params)
	if err != nil {
		return nil, describe(err)
	}

	p.logger.WithFields(logrus.Fields{
		"payment_intent": pi.ID,
		"status":         pi.Status,
	}).Info("Payment intent confirmed")

	return &checkout.PaymentIntent{
		ID:     pi.ID,
		Status: string(pi.Status),
		Amount: pi.Amount,
	}, nil
}

// IntentID extracts the payment intent id from its client secret
func IntentID(secret checkout.PaymentIntentSecret) (string, error) {
	idx := strings.Index(string(secret), secretSeparator)
	if idx <= 0 {
		return "", ErrMalformedSecret
	}
	return string(secret)[:idx], nil
}

// describe keeps the processor's user-facing message as the error text
func describe(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) && serr.Msg != "" {
		return &ProcessorError{Code: string(serr.Code), Message: serr.Msg, Err: err}
	}
	return err
}

// ProcessorError is a rejection reported by Stripe
type ProcessorError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProcessorError) Error() string {
	return e.Message
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}
