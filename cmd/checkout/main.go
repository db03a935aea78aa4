package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/pkg/backend"
	"github.com/staynest/booking-backend/pkg/checkout"
	"github.com/staynest/booking-backend/pkg/stripepay"
)

// Books one room from the terminal: fetches a secret, pays with a card token
// and records the booking.
func main() {
	apiURL := flag.String("api", "http://localhost:8080", "booking backend base URL")
	email := flag.String("email", "", "guest email")
	name := flag.String("name", "", "guest display name")
	roomID := flag.String("room", "", "room id")
	from := flag.String("from", "", "stay start, YYYY-MM-DD")
	to := flag.String("to", "", "stay end, YYYY-MM-DD")
	cardToken := flag.String("card-token", "tok_visa", "Stripe card token")
	flag.Parse()

	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if *email == "" || *roomID == "" {
		fmt.Fprintln(os.Stderr, "usage: checkout -email you@example.com -room <id> [-from 2026-11-01 -to 2026-11-04]")
		os.Exit(2)
	}
	stay, err := parseStay(*from, *to)
	if err != nil {
		logger.Fatalf("Invalid stay: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := backend.NewClient(backend.Config{BaseURL: *apiURL}, logger)
	if _, err := api.IssueToken(ctx, *email); err != nil {
		logger.Fatalf("Failed to sign in: %v", err)
	}

	room, err := api.Room(ctx, *roomID)
	if err != nil {
		logger.Fatalf("Failed to load room: %v", err)
	}
	req, err := backend.NewBookingRequest(*room, *email, stay)
	if err != nil {
		logger.Fatalf("Failed to build booking: %v", err)
	}

	provider := stripepay.New(stripepay.Config{PublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY")}, logger)
	hooks := checkout.Hooks{
		Notify: func(n checkout.Notification) {
			fmt.Printf("[%s] %s\n", n.Level, n.Message)
		},
		Navigate: func(path string) {
			fmt.Printf("Booking saved, see %s\n", path)
		},
	}

	orch := checkout.New(checkout.DefaultConfig(), api, provider,
		checkout.Identity{Email: *email, DisplayName: *name}, req, hooks, logger)

	if err := orch.Prepare(ctx); err != nil {
		logger.Fatalf("Checkout unavailable: %v", err)
	}

	outcome, err := orch.Submit(ctx, &checkout.CardInput{Token: *cardToken})
	if err != nil {
		if checkout.IsPersistenceFailure(err) {
			logger.WithField("transaction_id", outcome.TransactionID).Error("Charged but booking not fully recorded")
		}
		logger.Fatalf("Checkout failed: %v", err)
	}

	fmt.Printf("%s %s\n", outcome.Kind, outcome.TransactionID)
}

func parseStay(from, to string) (checkout.DateRange, error) {
	var stay checkout.DateRange
	var err error
	if from != "" {
		if stay.From, err = time.Parse("2006-01-02", from); err != nil {
			return stay, err
		}
	}
	if to != "" {
		if stay.To, err = time.Parse("2006-01-02", to); err != nil {
			return stay, err
		}
	}
	if !stay.From.IsZero() && !stay.To.IsZero() && stay.To.Before(stay.From) {
		return stay, fmt.Errorf("stay ends before it starts")
	}
	return stay, nil
}
