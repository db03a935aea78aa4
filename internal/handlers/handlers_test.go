package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/middleware"
	"github.com/staynest/booking-backend/internal/services"
	"github.com/staynest/booking-backend/pkg/jwt"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

var (
	userColumns    = []string{"id", "email", "name", "image", "role", "status", "created_at", "updated_at"}
	bookingColumns = []string{
		"id", "room_id", "title", "location", "image", "price", "host_email", "guest_email", "guest_name",
		"stay_from", "stay_to", "transaction_id", "booked_at", "details", "created_at",
	}
	roomColumns = []string{
		"id", "location", "category", "title", "price", "available_from", "available_to",
		"guests", "bathrooms", "bedrooms", "description", "image",
		"host_name", "host_image", "host_email", "booked", "created_at", "updated_at",
	}
)

type fakeIntents struct {
	err    error
	params *stripe.PaymentIntentParams

	// stored answers Get; nil means Stripe knows no such intent
	stored    map[string]*stripe.PaymentIntent
	retrieved []string
}

func (f *fakeIntents) Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.retrieved = append(f.retrieved, id)
	if intent, ok := f.stored[id]; ok {
		return intent, nil
	}
	return nil, &stripe.Error{HTTPStatusCode: 404, Msg: "No such payment_intent: " + id}
}

// settle registers a succeeded intent charging amount cents for email
func (f *fakeIntents) settle(id string, amount int64, email string) {
	if f.stored == nil {
		f.stored = map[string]*stripe.PaymentIntent{}
	}
	f.stored[id] = &stripe.PaymentIntent{
		ID:       id,
		Status:   stripe.PaymentIntentStatusSucceeded,
		Amount:   amount,
		Currency: stripe.CurrencyUSD,
		Metadata: map[string]string{"user_email": email},
	}
}

func (f *fakeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret_abc"}, nil
}

type testEnv struct {
	router  *gin.Engine
	mock    sqlmock.Sqlmock
	jwt     *jwt.Service
	intents *fakeIntents
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "sqlmock")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwtService := jwt.NewService("test-secret", "test-refresh-secret", time.Hour, 24*time.Hour)
	userRepository := database.NewUserRepository(&database.PostgresDB{DB: db})
	audit := services.NewAuditService(nil, logger)
	intents := &fakeIntents{}
	payments := services.NewPaymentIntentService(intents,
		config.StripeConfig{Currency: "usd"}, config.CheckoutConfig{MinimumCharge: 1}, audit, logger)
	limiter := services.NewRateLimitService(config.RateLimitConfig{Requests: 100, WindowSeconds: 60})

	h := Handlers{
		User:    NewUserHandler(jwtService, userRepository, services.NewRoleCache(nil, userRepository, time.Minute, logger), services.NewMenuService(), logger),
		Room:    NewRoomHandler(database.NewRoomRepository(db), logger),
		Payment: NewPaymentHandler(payments, logger),
		Booking: NewBookingHandler(database.NewBookingRepository(db), payments, audit, logger),
		Health:  NewHealthHandler(&database.PostgresDB{DB: db}, nil),
	}

	router := gin.New()
	RegisterRoutes(router, h,
		middleware.AuthMiddleware(jwtService, nil, logger),
		func(limitType string) gin.HandlerFunc { return middleware.RateLimit(limiter, limitType, logger) })

	return &testEnv{router: router, mock: mock, jwt: jwtService, intents: intents}
}

func (e *testEnv) token(t *testing.T, email, role string) string {
	t.Helper()
	token, err := e.jwt.GenerateAccessToken(uuid.New(), email, role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewBuffer(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func userRow(email, role, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userColumns).AddRow(uuid.New().String(), email, "Name", nil, role, status, now, now)
}

func bookingRow(id, roomID uuid.UUID, guest, host, txID string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(bookingColumns).AddRow(
		id.String(), roomID.String(), "Lake house", "Kandy", "", 150.0, host,
		guest, "Guest", now, now.Add(48*time.Hour), txID, now, []byte(`{"category":"Lake"}`), now,
	)
}

func roomRow(id uuid.UUID, price float64, host string, booked bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(roomColumns).AddRow(
		id.String(), "Kandy", "Lake", "Lake house", price, now, now.Add(72*time.Hour),
		4, 1, 2, "Quiet", "", "Hana", "", host, booked, now, now,
	)
}

var errDBDown = errors.New("db down")
