package booking

import (
	"context"
	"time"

	"maidbook/models"
)

// CatalogProvider lists the reference data the wizard walks through.
type CatalogProvider interface {
	ListLocationsForService(ctx context.Context, serviceID string) ([]models.Location, error)
	ListPlans(ctx context.Context, locationID, serviceID string) ([]models.Plan, error)
	ListAddOnQuestions(ctx context.Context, planID string) ([]models.AddOnQuestion, error)
}

// SubscriptionStatus reports whether a user holds an active subscription.
type SubscriptionStatus interface {
	IsUserSubscribed(ctx context.Context, userID string) (bool, error)
}

// PaymentGateway opens a charge session for the interactive checkout.
type PaymentGateway interface {
	CreatePaymentSession(ctx context.Context, amountMinorUnits int64, currency string) (*models.PaymentSession, error)
}

// PaymentVerifier independently confirms a checkout result against the
// session it was opened for.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, sess models.PaymentSession, res models.PaymentResult) (bool, error)
}

// BookingStore persists finalized bookings. Insert only.
type BookingStore interface {
	SaveFinalizedBooking(ctx context.Context, b models.FinalizedBooking) (string, error)
}

// AuthProvider resolves the signed-in user. CurrentUser returns nil, nil
// when nobody is signed in. SignIn reports rejected credentials with an
// error wrapping ErrInvalidCredentials; any other error is treated as an
// outage the user may retry.
type AuthProvider interface {
	CurrentUser(ctx context.Context) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*models.User, error)
}

// CompletionSignal tells the host a booking finished, after delay.
type CompletionSignal interface {
	BookingCompleted(ctx context.Context, b models.FinalizedBooking, delay time.Duration) error
}

// Dependencies are the external collaborators of a Wizard.
type Dependencies struct {
	Catalog      CatalogProvider
	Subscription SubscriptionStatus
	Gateway      PaymentGateway
	Verifier     PaymentVerifier
	Store        BookingStore
	Auth         AuthProvider
	Completion   CompletionSignal
}

// Config holds per-deployment wizard settings.
type Config struct {
	ServiceID       string
	Currency        string
	FetchTimeout    time.Duration
	CompletionDelay time.Duration
}

const (
	defaultFetchTimeout    = 10 * time.Second
	defaultCompletionDelay = 2 * time.Second
	defaultCurrency        = "INR"
)

func (c Config) withDefaults() Config {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
	if c.CompletionDelay <= 0 {
		c.CompletionDelay = defaultCompletionDelay
	}
	if c.Currency == "" {
		c.Currency = defaultCurrency
	}
	return c
}
