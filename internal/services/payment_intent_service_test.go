package services

import (
	"context"
	"errors"
	"testing"

	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

type fakeIntentAPI struct {
	params *stripe.PaymentIntentParams
	intent *stripe.PaymentIntent
	err    error
	calls  int

	stored *stripe.PaymentIntent
	getErr error
	gotID  string
}

func (f *fakeIntentAPI) Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.gotID = id
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.stored, nil
}

func (f *fakeIntentAPI) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.calls++
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

func setupPaymentIntentTest(api PaymentIntentAPI) (*PaymentIntentService, *fakeAuditor) {
	repo := &fakeAuditor{}
	service := NewPaymentIntentService(api,
		config.StripeConfig{Currency: "USD"},
		config.CheckoutConfig{MinimumCharge: 1},
		NewAuditService(repo, testLogger()),
		testLogger(),
	)
	return service, repo
}

func TestPaymentIntentService_Create(t *testing.T) {
	api := &fakeIntentAPI{intent: &stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret_abc", Amount: 12050}}
	service, repo := setupPaymentIntentTest(api)

	secret, err := service.Create(context.Background(), 120.5, "guest@example.com", RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret_abc", secret)

	assert.Equal(t, int64(12050), *api.params.Amount)
	assert.Equal(t, "usd", *api.params.Currency)
	assert.Equal(t, []*string{stripe.String("card")}, api.params.PaymentMethodTypes)
	assert.Equal(t, "guest@example.com", api.params.Metadata["user_email"])
	assert.Equal(t, []models.PaymentEventType{models.PaymentEventIntentCreated}, repo.events())
}

func TestPaymentIntentService_BelowMinimum(t *testing.T) {
	api := &fakeIntentAPI{}
	service, _ := setupPaymentIntentTest(api)

	for _, price := range []float64{-5, 0, 0.99, 1} {
		_, err := service.Create(context.Background(), price, "", RequestMeta{})
		assert.ErrorIs(t, err, ErrPriceBelowMinimum, "price %v", price)
	}
	assert.Zero(t, api.calls)
}

func TestPaymentIntentService_Disabled(t *testing.T) {
	service, _ := setupPaymentIntentTest(nil)

	_, err := service.Create(context.Background(), 50, "", RequestMeta{})
	assert.ErrorIs(t, err, ErrPaymentsDisabled)
}

func TestPaymentIntentService_ProcessorError(t *testing.T) {
	api := &fakeIntentAPI{err: errors.New("card_declined")}
	service, repo := setupPaymentIntentTest(api)

	_, err := service.Create(context.Background(), 50, "guest@example.com", RequestMeta{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create payment intent")
	assert.Equal(t, []models.PaymentEventType{models.PaymentEventIntentFailed}, repo.events())
}

func TestPaymentIntentService_MissingSecret(t *testing.T) {
	api := &fakeIntentAPI{intent: &stripe.PaymentIntent{ID: "pi_1"}}
	service, _ := setupPaymentIntentTest(api)

	_, err := service.Create(context.Background(), 50, "", RequestMeta{})
	assert.Error(t, err)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, int64(1), ToMinorUnits(0.005))
	assert.Equal(t, int64(10000), ToMinorUnits(100))
}

func TestPaymentIntentService_Settled(t *testing.T) {
	ctx := context.Background()

	t.Run("Succeeded intent is returned", func(t *testing.T) {
		api := &fakeIntentAPI{stored: &stripe.PaymentIntent{ID: "pi_9", Status: stripe.PaymentIntentStatusSucceeded, Amount: 15000, Currency: stripe.CurrencyUSD}}
		service, _ := setupPaymentIntentTest(api)

		intent, err := service.Settled(ctx, "pi_9")
		require.NoError(t, err)
		assert.Equal(t, "pi_9", api.gotID)
		assert.NoError(t, MatchesPrice(intent, 150))
		assert.ErrorIs(t, MatchesPrice(intent, 0.01), ErrAmountMismatch)
	})

	t.Run("Unconfirmed intent is refused", func(t *testing.T) {
		api := &fakeIntentAPI{stored: &stripe.PaymentIntent{ID: "pi_9", Status: stripe.PaymentIntentStatusRequiresPaymentMethod, Amount: 15000, Currency: stripe.CurrencyUSD}}
		service, _ := setupPaymentIntentTest(api)

		_, err := service.Settled(ctx, "pi_9")
		assert.ErrorIs(t, err, ErrPaymentNotSettled)
	})

	t.Run("Other currency is refused", func(t *testing.T) {
		api := &fakeIntentAPI{stored: &stripe.PaymentIntent{ID: "pi_9", Status: stripe.PaymentIntentStatusSucceeded, Amount: 15000, Currency: stripe.CurrencyEUR}}
		service, _ := setupPaymentIntentTest(api)

		_, err := service.Settled(ctx, "pi_9")
		assert.ErrorIs(t, err, ErrPaymentNotSettled)
	})

	t.Run("Unknown intent is refused", func(t *testing.T) {
		api := &fakeIntentAPI{getErr: &stripe.Error{HTTPStatusCode: 404, Msg: "No such payment_intent"}}
		service, _ := setupPaymentIntentTest(api)

		_, err := service.Settled(ctx, "not-a-real-payment")
		assert.ErrorIs(t, err, ErrPaymentNotSettled)
	})

	t.Run("Stripe outage is an error", func(t *testing.T) {
		api := &fakeIntentAPI{getErr: errors.New("connection reset")}
		service, _ := setupPaymentIntentTest(api)

		_, err := service.Settled(ctx, "pi_9")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrPaymentNotSettled)
	})

	t.Run("Disabled without a key", func(t *testing.T) {
		service, _ := setupPaymentIntentTest(nil)
		_, err := service.Settled(ctx, "pi_9")
		assert.ErrorIs(t, err, ErrPaymentsDisabled)
	})
}
