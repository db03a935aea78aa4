package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/stripe/stripe-go/v76"
)

var (
	// ErrPriceBelowMinimum is returned for prices at or below the configured minimum charge
	ErrPriceBelowMinimum = errors.New("price is below the minimum charge")
	// ErrPaymentsDisabled is returned when no Stripe key is configured
	ErrPaymentsDisabled = errors.New("payments are not configured")
	// ErrPaymentNotSettled is returned for intents that do not exist or have not succeeded
	ErrPaymentNotSettled = errors.New("payment has not succeeded")
	// ErrAmountMismatch is returned when the charged amount differs from the room price
	ErrAmountMismatch = errors.New("charged amount does not match the room price")
)

// PaymentIntentAPI is the slice of the Stripe client used here.
// *paymentintent.Client from stripe-go satisfies it.
type PaymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// PaymentIntentService creates card payment intents for room prices
type PaymentIntentService struct {
	api      PaymentIntentAPI
	currency string
	minimum  float64
	audit    *AuditService
	logger   *logrus.Logger
}

// NewPaymentIntentService creates a new payment intent service. api may be nil.
func NewPaymentIntentService(api PaymentIntentAPI, stripeCfg config.StripeConfig, checkoutCfg config.CheckoutConfig, audit *AuditService, logger *logrus.Logger) *PaymentIntentService {
	currency := strings.ToLower(stripeCfg.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &PaymentIntentService{
		api:      api,
		currency: currency,
		minimum:  checkoutCfg.MinimumCharge,
		audit:    audit,
		logger:   logger,
	}
}

// ToMinorUnits converts a price to cents
func ToMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// Create registers an intent for price and returns its client secret
func (s *PaymentIntentService) Create(ctx context.Context, price float64, email string, meta RequestMeta) (string, error) {
	if price <= s.minimum {
		return "", ErrPriceBelowMinimum
	}
	if s.api == nil {
		return "", ErrPaymentsDisabled
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(ToMinorUnits(price)),
		Currency:           stripe.String(s.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	if email != "" {
		params.AddMetadata("user_email", email)
	}

	intent, err := s.api.New(params)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"email": email,
			"price": price,
		}).WithError(err).Error("Failed to create payment intent")
		s.audit.LogIntentFailed(ctx, email, price, s.currency, err, meta)
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}
	if intent.ClientSecret == "" {
		err := fmt.Errorf("payment intent %s has no client secret", intent.ID)
		s.audit.LogIntentFailed(ctx, email, price, s.currency, err, meta)
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"intent_id": intent.ID,
		"amount":    intent.Amount,
		"email":     email,
	}).Info("Payment intent created")
	s.audit.LogIntentCreated(ctx, email, intent.ID, price, s.currency, meta)

	return intent.ClientSecret, nil
}

// Settled fetches intentID from Stripe and returns it when it has succeeded
// in the configured currency. The caller compares the amount with the room price.
func (s *PaymentIntentService) Settled(ctx context.Context, intentID string) (*stripe.PaymentIntent, error) {
	if s.api == nil {
		return nil, ErrPaymentsDisabled
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := s.api.Get(intentID, params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.HTTPStatusCode == http.StatusNotFound {
			return nil, ErrPaymentNotSettled
		}
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded || string(intent.Currency) != s.currency {
		s.logger.WithFields(logrus.Fields{
			"intent_id": intentID,
			"status":    intent.Status,
			"currency":  intent.Currency,
		}).Warn("Booking attempted on unsettled payment")
		return nil, ErrPaymentNotSettled
	}
	return intent, nil
}

// MatchesPrice reports whether intent charged exactly price
func MatchesPrice(intent *stripe.PaymentIntent, price float64) error {
	if intent.Amount != ToMinorUnits(price) {
		return ErrAmountMismatch
	}
	return nil
}
