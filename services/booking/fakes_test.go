package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"maidbook/models"
)

var errNetwork = errors.New("network unreachable")

type fakeCatalog struct {
	mu          sync.Mutex
	locations   []models.Location
	locationErr error
	plans       map[string][]models.Plan
	planErr     error
	questions   map[string][]models.AddOnQuestion
	questionErr error

	// gates holds ListPlans for a location until the channel is closed.
	gates   map[string]chan struct{}
	entered chan string

	planCalls int
}

func (c *fakeCatalog) ListLocationsForService(ctx context.Context, serviceID string) ([]models.Location, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locations, c.locationErr
}

func (c *fakeCatalog) ListPlans(ctx context.Context, locationID, serviceID string) ([]models.Plan, error) {
	c.mu.Lock()
	c.planCalls++
	gate := c.gates[locationID]
	entered := c.entered
	c.mu.Unlock()

	if gate != nil {
		if entered != nil {
			entered <- locationID
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.planErr != nil {
		return nil, c.planErr
	}
	return c.plans[locationID], nil
}

func (c *fakeCatalog) ListAddOnQuestions(ctx context.Context, planID string) ([]models.AddOnQuestion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.questionErr != nil {
		return nil, c.questionErr
	}
	return c.questions[planID], nil
}

type fakeSubscription struct {
	subscribed bool
	err        error
	calls      int
}

func (s *fakeSubscription) IsUserSubscribed(ctx context.Context, userID string) (bool, error) {
	s.calls++
	return s.subscribed, s.err
}

type fakeGateway struct {
	mu      sync.Mutex
	err     error
	amounts []int64
}

func (g *fakeGateway) CreatePaymentSession(ctx context.Context, amount int64, currency string) (*models.PaymentSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.amounts = append(g.amounts, amount)
	if g.err != nil {
		return nil, g.err
	}
	return &models.PaymentSession{
		OrderRef:   "order_1",
		GatewayRef: "pi_1",
		Amount:     amount,
		Currency:   currency,
	}, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.amounts)
}

type fakeVerifier struct {
	valid    bool
	err      error
	calls    int
	sessions []models.PaymentSession
}

func (v *fakeVerifier) VerifyPayment(ctx context.Context, sess models.PaymentSession, res models.PaymentResult) (bool, error) {
	v.calls++
	v.sessions = append(v.sessions, sess)
	return v.valid, v.err
}

type fakeStore struct {
	errs  []error
	saved []models.FinalizedBooking
	calls int
}

func (s *fakeStore) SaveFinalizedBooking(ctx context.Context, b models.FinalizedBooking) (string, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return "", err
		}
	}
	s.saved = append(s.saved, b)
	return "bk_" + b.OrderRef, nil
}

type fakeAuth struct {
	user        *models.User
	account     *models.User
	password    string
	signInErr   error
	signInCalls int
	userCalls   int
}

func (a *fakeAuth) CurrentUser(ctx context.Context) (*models.User, error) {
	a.userCalls++
	return a.user, nil
}

func (a *fakeAuth) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	a.signInCalls++
	if a.signInErr != nil {
		return nil, a.signInErr
	}
	if a.account == nil || email != a.account.Email || password != a.password {
		return nil, ErrInvalidCredentials
	}
	a.user = a.account
	return a.account, nil
}

type fakeCompletion struct {
	bookings []models.FinalizedBooking
	delays   []time.Duration
}

func (c *fakeCompletion) BookingCompleted(ctx context.Context, b models.FinalizedBooking, delay time.Duration) error {
	c.bookings = append(c.bookings, b)
	c.delays = append(c.delays, delay)
	return nil
}

type fixture struct {
	catalog      *fakeCatalog
	subscription *fakeSubscription
	gateway      *fakeGateway
	verifier     *fakeVerifier
	store        *fakeStore
	auth         *fakeAuth
	completion   *fakeCompletion
	cfg          Config
}

// testNow is 2026-10-15 10:00 UTC; "tomorrow" is 2026-10-16.
var testNow = time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)

const (
	validDate = "2026-10-17"
	validTime = "09:30"
)

var signedInUser = &models.User{ID: "u1", Email: "asha@example.com", Name: "Asha"}

func newFixture() *fixture {
	twoBathrooms := models.AddOnQuestion{
		ID:     "q1",
		Prompt: "How many bathrooms?",
		Type:   models.QuestionSingleSelect,
		Options: []models.AddOnOption{
			{Label: "1", PriceDelta: 0},
			{Label: "2", PriceDelta: 500},
			{Label: "3", PriceDelta: 900},
		},
	}
	notes := models.AddOnQuestion{ID: "q2", Prompt: "Pets at home?", Type: models.QuestionFreeText}
	appliances := models.AddOnQuestion{
		ID:     "q3",
		Prompt: "Appliances to clean",
		Type:   models.QuestionMultiSelect,
		Options: []models.AddOnOption{
			{Label: "Fridge", PriceDelta: 300},
			{Label: "Oven", PriceDelta: 200},
		},
	}
	return &fixture{
		catalog: &fakeCatalog{
			locations: []models.Location{
				{ID: "blr", Name: "Bengaluru"},
				{ID: "pune", Name: "Pune"},
				{ID: "goa", Name: "Goa"},
			},
			plans: map[string][]models.Plan{
				"blr": {
					{ID: "deep", Name: "Deep Cleaning", Price: 2500, LocationID: "blr"},
					{ID: "daily", Name: "Daily Maid", Price: 2500, LocationID: "blr"},
					{ID: "kitchen", Name: "Kitchen Cleaning", Price: 1800, LocationID: "blr"},
					{ID: "appliance", Name: "Appliance Care", Price: 1000, LocationID: "blr"},
				},
				"pune": {
					{ID: "hourly", Name: "HOURLY Help", Price: 400, LocationID: "pune"},
				},
			},
			questions: map[string][]models.AddOnQuestion{
				"deep":      {twoBathrooms, notes},
				"daily":     {twoBathrooms, notes},
				"appliance": {appliances},
			},
		},
		subscription: &fakeSubscription{},
		gateway:      &fakeGateway{},
		verifier:     &fakeVerifier{valid: true},
		store:        &fakeStore{},
		auth:         &fakeAuth{user: signedInUser},
		completion:   &fakeCompletion{},
		cfg:          Config{ServiceID: "maid", Currency: "INR", CompletionDelay: 2 * time.Second},
	}
}

func (f *fixture) deps() Dependencies {
	return Dependencies{
		Catalog:      f.catalog,
		Subscription: f.subscription,
		Gateway:      f.gateway,
		Verifier:     f.verifier,
		Store:        f.store,
		Auth:         f.auth,
		Completion:   f.completion,
	}
}

func (f *fixture) wizard(t *testing.T) *Wizard {
	t.Helper()
	return NewWizard(f.deps(), f.cfg, WithLogger(zaptest.NewLogger(t)), WithClock(func() time.Time { return testNow }))
}

func validAddress() models.Address {
	return models.Address{
		FullName:    "Asha Rao",
		Phone:       "9876543210",
		HouseNumber: "12B",
		Street:      "MG Road",
		City:        "Bengaluru",
		State:       "Karnataka",
		PostalCode:  "560001",
	}
}

// toPlan starts the wizard and selects location and plan.
func toPlan(t *testing.T, w *Wizard, locationID, planID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.SelectLocation(ctx, locationID))
	require.NoError(t, w.SelectPlan(ctx, planID))
}

// toReview walks a deep/daily plan through both questions and scheduling.
func toReview(t *testing.T, w *Wizard, planID string) {
	t.Helper()
	toPlan(t, w, "blr", planID)
	require.NoError(t, w.Answer("q1", AnswerInput{Options: []string{"2"}}))
	require.NoError(t, w.NextQuestion())
	require.NoError(t, w.Answer("q2", AnswerInput{Text: "one cat"}))
	require.NoError(t, w.NextQuestion())
	require.NoError(t, w.SetSchedule(validDate, validTime))
	require.NoError(t, w.ContinueToReview())
}
