package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"maidbook/models"
)

func TestWizard_PlainPlanPricing(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	toPlan(t, w, "blr", "deep")

	require.NoError(t, w.Answer("q1", AnswerInput{Options: []string{"2"}}))

	p := w.Draft().Price
	assert.Equal(t, 3000.0, p.Subtotal)
	assert.Equal(t, 0.0, p.Tax)
	assert.Equal(t, 3000.0, p.Total)
	assert.Equal(t, 3000.0, p.FinalAmount)
	assert.False(t, p.Taxable)
}

func TestWizard_DailyPlanIsTaxed(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	toPlan(t, w, "blr", "daily")

	require.NoError(t, w.Answer("q1", AnswerInput{Options: []string{"2"}}))

	p := w.Draft().Price
	assert.Equal(t, 3000.0, p.Subtotal)
	assert.Equal(t, 300.0, p.Tax)
	assert.Equal(t, 3300.0, p.Total)
	assert.Equal(t, 3300.0, p.FinalAmount)
}

func TestWizard_SubscriberDiscount(t *testing.T) {
	f := newFixture()
	f.subscription.subscribed = true
	w := f.wizard(t)
	toPlan(t, w, "blr", "daily")

	require.NoError(t, w.Answer("q1", AnswerInput{Options: []string{"2"}}))

	p := w.Draft().Price
	assert.Equal(t, 3300.0, p.Total)
	assert.Equal(t, 2970.0, p.FinalAmount)
	assert.Equal(t, 330.0, p.Discount)
	assert.True(t, p.Subscribed)
}

func TestWizard_PlanWithoutQuestionsSkipsToScheduling(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	toPlan(t, w, "blr", "kitchen")

	assert.Equal(t, SchedulingAndNotes, w.State())
	p := w.Draft().Price
	assert.Equal(t, 1800.0, p.Subtotal)
	assert.Equal(t, 1800.0, p.FinalAmount)
}

func TestWizard_PaymentSessionFailureKeepsDraft(t *testing.T) {
	f := newFixture()
	f.gateway.err = errNetwork
	w := f.wizard(t)
	toReview(t, w, "deep")
	before := w.Draft()

	err := w.SubmitAddress(context.Background(), validAddress())

	require.Error(t, err)
	assert.True(t, IsKind(err, PaymentSessionFailed))
	assert.ErrorIs(t, err, errNetwork)
	assert.Equal(t, ReviewAndAddress, w.State())
	require.NotNil(t, w.Err())
	assert.Equal(t, PaymentSessionFailed, w.Err().Kind)

	after := w.Draft()
	assert.Equal(t, before.Answers, after.Answers)
	assert.Equal(t, before.Price, after.Price)
	assert.Equal(t, before.Schedule, after.Schedule)
	assert.Equal(t, validAddress(), after.Address)

	f.gateway.err = nil
	require.NoError(t, w.SubmitAddress(context.Background(), after.Address))
	assert.Equal(t, AwaitingPayment, w.State())
	assert.Nil(t, w.Err())
	assert.Equal(t, []int64{300000, 300000}, f.gateway.amounts)
}

func TestWizard_ReselectingOptionReplacesDelta(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	toPlan(t, w, "blr", "deep")

	require.NoError(t, w.Answer("q1", AnswerInput{Options: []string{"2"}}))
	require.NoError(t, w.Answer("q1", AnswerInput{Options: []string{"2"}}))
	assert.Equal(t, 3000.0, w.Draft().Price.Subtotal)

	require.NoError(t, w.Answer("q1", AnswerInput{Options: []string{"3"}}))
	assert.Equal(t, 3400.0, w.Draft().Price.Subtotal)

	require.NoError(t, w.Answer("q1", AnswerInput{Options: []string{"1"}}))
	assert.Equal(t, 2500.0, w.Draft().Price.Subtotal)
}

func TestWizard_MultiSelectAnswer(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	toPlan(t, w, "blr", "appliance")

	require.NoError(t, w.Answer("q3", AnswerInput{Options: []string{"Fridge", "Oven", "Fridge"}}))
	d := w.Draft()
	assert.Equal(t, []string{"Fridge", "Oven"}, d.Answers["q3"].Options)
	assert.Equal(t, 1500.0, d.Price.Subtotal)

	require.NoError(t, w.Answer("q3", AnswerInput{Options: []string{"Oven"}}))
	assert.Equal(t, 1200.0, w.Draft().Price.Subtotal)

	err := w.Answer("q3", AnswerInput{Options: []string{"Dishwasher"}})
	assert.True(t, IsKind(err, ValidationFailed))
	assert.Equal(t, 1200.0, w.Draft().Price.Subtotal)
}

func TestWizard_AnswerValidation(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	toPlan(t, w, "blr", "deep")

	err := w.Answer("q1", AnswerInput{Options: []string{"1", "2"}})
	assert.True(t, IsKind(err, ValidationFailed))

	err = w.Answer("q2", AnswerInput{Text: "not yet"})
	assert.True(t, IsKind(err, ValidationFailed), "only the current question can be answered")

	require.NoError(t, w.Answer("q1", AnswerInput{Options: []string{"1"}}))
	require.NoError(t, w.NextQuestion())

	err = w.Answer("q2", AnswerInput{Text: "   "})
	assert.True(t, IsKind(err, ValidationFailed))
}

func TestWizard_NextQuestionRequiresAnswer(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	toPlan(t, w, "blr", "deep")

	err := w.NextQuestion()
	require.Error(t, err)
	assert.True(t, IsKind(err, ValidationFailed))
	assert.Equal(t, AnsweringQuestions, w.State())
	assert.Equal(t, 0, w.QuestionIndex())

	require.NoError(t, w.Answer("q1", AnswerInput{Options: []string{"2"}}))
	require.NoError(t, w.NextQuestion())
	assert.Equal(t, 1, w.QuestionIndex())

	q, ok := w.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "q2", q.ID)

	require.NoError(t, w.Answer("q2", AnswerInput{Text: "no pets"}))
	require.NoError(t, w.NextQuestion())
	assert.Equal(t, SchedulingAndNotes, w.State())
}

func TestWizard_ScheduleBoundaries(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	toPlan(t, w, "blr", "kitchen")

	err := w.ContinueToReview()
	assert.True(t, IsKind(err, ValidationFailed))

	err = w.SetSchedule("2026-10-16", validTime)
	require.Error(t, err)
	assert.True(t, IsKind(err, ValidationFailed))

	err = w.SetSchedule(validDate, "09:15")
	require.Error(t, err)
	assert.True(t, IsKind(err, ValidationFailed))

	require.NoError(t, w.SetSchedule(validDate, validTime))
	require.NoError(t, w.SetNotes("  gate code 1234  "))
	require.NoError(t, w.ContinueToReview())
	assert.Equal(t, ReviewAndAddress, w.State())
	assert.Equal(t, "gate code 1234", w.Draft().Notes)
}

func TestWizard_InvalidAddressMakesNoExternalCall(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	toReview(t, w, "deep")
	userCalls := f.auth.userCalls

	addr := validAddress()
	addr.Phone = "987654321"
	err := w.SubmitAddress(context.Background(), addr)

	require.Error(t, err)
	var we *WizardError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, ValidationFailed, we.Kind)
	assert.Equal(t, "phone", we.Field)
	assert.Equal(t, ReviewAndAddress, w.State())
	assert.Equal(t, 0, f.gateway.calls())
	assert.Equal(t, userCalls, f.auth.userCalls)
}

func TestWizard_SignInBeforePayment(t *testing.T) {
	f := newFixture()
	f.auth.user = nil
	f.auth.account = signedInUser
	f.auth.password = "s3cret"
	w := f.wizard(t)
	toReview(t, w, "deep")
	ctx := context.Background()

	require.NoError(t, w.SubmitAddress(ctx, validAddress()))
	assert.Equal(t, RequiringAuthentication, w.State())
	assert.Equal(t, 0, f.gateway.calls())

	for i := 0; i < 3; i++ {
		err := w.SignIn(ctx, signedInUser.Email, "wrong")
		require.Error(t, err)
		assert.True(t, IsKind(err, InvalidCredentials))
		assert.Equal(t, RequiringAuthentication, w.State())
		require.NotNil(t, w.Err())
	}

	require.NoError(t, w.SignIn(ctx, signedInUser.Email, "s3cret"))
	assert.Equal(t, AwaitingPayment, w.State())
	assert.Equal(t, "u1", w.Draft().UserID)
	assert.Nil(t, w.Err())
	assert.Equal(t, 0, f.subscription.calls, "subscription status is not re-checked after sign-in")
}

func TestWizard_SignInOutageIsRetryable(t *testing.T) {
	f := newFixture()
	f.auth.user = nil
	f.auth.account = signedInUser
	f.auth.password = "s3cret"
	f.auth.signInErr = errors.New("server selection timeout")
	w := f.wizard(t)
	toReview(t, w, "deep")
	ctx := context.Background()
	require.NoError(t, w.SubmitAddress(ctx, validAddress()))

	err := w.SignIn(ctx, signedInUser.Email, "s3cret")
	require.Error(t, err)
	assert.True(t, IsKind(err, AuthenticationUnavailable))
	assert.False(t, IsKind(err, InvalidCredentials), "an outage is not a wrong password")
	assert.Equal(t, RequiringAuthentication, w.State())

	f.auth.signInErr = nil
	require.NoError(t, w.SignIn(ctx, signedInUser.Email, "s3cret"))
	assert.Equal(t, AwaitingPayment, w.State())
	assert.Nil(t, w.Err())
}

func TestWizard_ConfirmPaymentCompletes(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	toReview(t, w, "daily")
	ctx := context.Background()
	require.NoError(t, w.SubmitAddress(ctx, validAddress()))

	err := w.ConfirmPayment(ctx, models.PaymentResult{OrderRef: "order_1", PaymentRef: "pay_1", Signature: "sig"})

	require.NoError(t, err)
	assert.Equal(t, Completed, w.State())
	require.Len(t, f.store.saved, 1)
	saved := f.store.saved[0]
	assert.Equal(t, "u1", saved.UserID)
	assert.Equal(t, "daily", saved.PlanID)
	assert.Equal(t, "Bengaluru", saved.LocationName)
	assert.Equal(t, "pay_1", saved.PaymentRef)
	assert.Equal(t, "pi_1", saved.GatewayRef)
	require.Len(t, f.verifier.sessions, 1)
	assert.Equal(t, "pi_1", f.verifier.sessions[0].GatewayRef)
	assert.Equal(t, int64(330000), f.verifier.sessions[0].Amount)
	assert.Equal(t, int64(330000), saved.Amount)
	assert.Equal(t, 3300.0, saved.Price.FinalAmount)
	assert.Equal(t, models.BookingStatusConfirmed, saved.Status)

	fin := w.Finalized()
	require.NotNil(t, fin)
	assert.Equal(t, "bk_order_1", fin.ID)
	require.Len(t, f.completion.bookings, 1)
	assert.Equal(t, 2*time.Second, f.completion.delays[0])

	assert.True(t, IsKind(w.Back(), InvalidTransition))
}

func TestWizard_SignatureMismatchReturnsToReview(t *testing.T) {
	f := newFixture()
	f.verifier.valid = false
	w := f.wizard(t)
	toReview(t, w, "deep")
	ctx := context.Background()
	require.NoError(t, w.SubmitAddress(ctx, validAddress()))

	err := w.ConfirmPayment(ctx, models.PaymentResult{OrderRef: "order_1", PaymentRef: "pay_1", Signature: "forged"})

	assert.True(t, IsKind(err, PaymentSignatureMismatch))
	assert.Equal(t, ReviewAndAddress, w.State())
	assert.Empty(t, f.store.saved)
	assert.Equal(t, validAddress(), w.Draft().Address)
}

func TestWizard_ConfirmForOtherOrderIsRejected(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	toReview(t, w, "deep")
	ctx := context.Background()
	require.NoError(t, w.SubmitAddress(ctx, validAddress()))

	err := w.ConfirmPayment(ctx, models.PaymentResult{OrderRef: "order_other", PaymentRef: "pay_1", Signature: "sig"})

	assert.True(t, IsKind(err, PaymentSignatureMismatch))
	assert.Equal(t, 0, f.verifier.calls)
	assert.Empty(t, f.store.saved)
}

func TestWizard_GatewayCancellation(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	toReview(t, w, "deep")
	ctx := context.Background()
	require.NoError(t, w.SubmitAddress(ctx, validAddress()))

	require.NoError(t, w.PaymentFailed("checkout closed"))

	assert.Equal(t, ReviewAndAddress, w.State())
	require.NotNil(t, w.Err())
	assert.Equal(t, PaymentSessionFailed, w.Err().Kind)
	assert.Equal(t, "checkout closed", w.Err().Message)

	w.DismissError()
	assert.Nil(t, w.Err())
	require.NoError(t, w.SubmitAddress(ctx, validAddress()))
	assert.Equal(t, AwaitingPayment, w.State())
}

func TestWizard_PersistenceFailureIsSurfaced(t *testing.T) {
	f := newFixture()
	f.store.errs = []error{errors.New("insert timeout")}
	w := f.wizard(t)
	toReview(t, w, "deep")
	ctx := context.Background()
	require.NoError(t, w.SubmitAddress(ctx, validAddress()))

	err := w.ConfirmPayment(ctx, models.PaymentResult{OrderRef: "order_1", PaymentRef: "pay_1", Signature: "sig"})

	require.Error(t, err)
	assert.True(t, IsKind(err, PersistenceFailed))
	assert.Equal(t, Errored, w.State())
	assert.Contains(t, w.Err().Message, "contact support")
	assert.Empty(t, f.completion.bookings)

	w.DismissError()
	assert.Equal(t, Errored, w.State(), "a failed save after payment stays visible")

	require.NoError(t, w.RetryPersistence(ctx))
	assert.Equal(t, Completed, w.State())
	assert.Len(t, f.store.saved, 1)
	assert.Len(t, f.completion.bookings, 1)
}

func TestWizard_NoPlansForLocation(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	ctx := context.Background()
	require.NoError(t, w.Start(ctx))

	err := w.SelectLocation(ctx, "goa")

	assert.True(t, IsKind(err, NoMatchingPlansForLocation))
	assert.Equal(t, Errored, w.State())

	require.NoError(t, w.SelectLocation(ctx, "blr"))
	assert.Equal(t, SelectingPlan, w.State())
	assert.Nil(t, w.Err())
}

func TestWizard_CatalogFailureAndManualRetry(t *testing.T) {
	f := newFixture()
	f.catalog.planErr = errNetwork
	w := f.wizard(t)
	ctx := context.Background()
	require.NoError(t, w.Start(ctx))

	err := w.SelectLocation(ctx, "blr")
	assert.True(t, IsKind(err, CatalogFetchFailed))
	assert.Equal(t, Errored, w.State())
	assert.Equal(t, 1, f.catalog.planCalls, "no automatic retry")

	f.catalog.planErr = nil
	require.NoError(t, w.SelectLocation(ctx, "blr"))
	assert.Equal(t, SelectingPlan, w.State())
}

func TestWizard_QuestionFetchFailure(t *testing.T) {
	f := newFixture()
	f.catalog.questionErr = errNetwork
	w := f.wizard(t)
	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.SelectLocation(ctx, "blr"))

	err := w.SelectPlan(ctx, "deep")
	assert.True(t, IsKind(err, CatalogFetchFailed))

	f.catalog.questionErr = nil
	require.NoError(t, w.SelectPlan(ctx, "deep"))
	assert.Equal(t, AnsweringQuestions, w.State())
}

func TestWizard_StartFailure(t *testing.T) {
	f := newFixture()
	f.catalog.locationErr = errNetwork
	w := f.wizard(t)
	ctx := context.Background()

	err := w.Start(ctx)
	assert.True(t, IsKind(err, CatalogFetchFailed))
	assert.Equal(t, Errored, w.State())

	f.catalog.locationErr = nil
	require.NoError(t, w.Start(ctx))
	assert.Equal(t, SelectingLocation, w.State())
}

func TestWizard_FetchTimeout(t *testing.T) {
	f := newFixture()
	f.catalog.gates = map[string]chan struct{}{"blr": make(chan struct{})}
	f.cfg.FetchTimeout = 20 * time.Millisecond
	w := f.wizard(t)
	ctx := context.Background()
	require.NoError(t, w.Start(ctx))

	err := w.SelectLocation(ctx, "blr")

	assert.True(t, IsKind(err, CatalogFetchFailed))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWizard_StaleResultIsDiscarded(t *testing.T) {
	f := newFixture()
	gate := make(chan struct{})
	f.catalog.gates = map[string]chan struct{}{"blr": gate}
	f.catalog.entered = make(chan string, 1)
	w := f.wizard(t)
	ctx := context.Background()
	require.NoError(t, w.Start(ctx))

	done := make(chan error, 1)
	go func() {
		done <- w.SelectLocation(ctx, "blr")
	}()
	<-f.catalog.entered

	require.NoError(t, w.SelectLocation(ctx, "pune"))
	close(gate)
	staleErr := <-done

	assert.ErrorIs(t, staleErr, ErrStale)
	assert.Equal(t, SelectingPlan, w.State())
	d := w.Draft()
	require.NotNil(t, d.Location)
	assert.Equal(t, "pune", d.Location.ID)
	assert.Equal(t, []models.Plan{{ID: "hourly", Name: "HOURLY Help", Price: 400, LocationID: "pune"}}, w.Snapshot().Plans)
}

func TestWizard_BackAbandonsInFlightFetch(t *testing.T) {
	f := newFixture()
	gate := make(chan struct{})
	f.catalog.gates = map[string]chan struct{}{"blr": gate}
	f.catalog.entered = make(chan string, 1)
	w := f.wizard(t)
	ctx := context.Background()
	require.NoError(t, w.Start(ctx))

	done := make(chan error, 1)
	go func() {
		done <- w.SelectLocation(ctx, "blr")
	}()
	<-f.catalog.entered
	require.NoError(t, w.Back())
	close(gate)

	assert.ErrorIs(t, <-done, ErrStale)
	assert.Equal(t, SelectingLocation, w.State())
	assert.Empty(t, w.Snapshot().Plans)
}

func TestWizard_BackNavigation(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	toReview(t, w, "deep")

	require.NoError(t, w.Back())
	assert.Equal(t, SchedulingAndNotes, w.State())

	require.NoError(t, w.Back())
	assert.Equal(t, AnsweringQuestions, w.State())
	assert.Equal(t, 1, w.QuestionIndex())

	require.NoError(t, w.Back())
	assert.Equal(t, 0, w.QuestionIndex())

	require.NoError(t, w.Back())
	assert.Equal(t, SelectingPlan, w.State())
	assert.Equal(t, 3000.0, w.Draft().Price.Subtotal, "draft survives backward navigation")

	require.NoError(t, w.SelectPlan(context.Background(), "kitchen"))
	assert.Empty(t, w.Draft().Answers)
	assert.Equal(t, 1800.0, w.Draft().Price.Subtotal)
}

func TestWizard_InvalidTransitions(t *testing.T) {
	f := newFixture()
	w := f.wizard(t)
	ctx := context.Background()

	assert.True(t, IsKind(w.SelectLocation(ctx, "blr"), InvalidTransition))
	assert.True(t, IsKind(w.NextQuestion(), InvalidTransition))
	assert.True(t, IsKind(w.SubmitAddress(ctx, validAddress()), InvalidTransition))
	assert.True(t, IsKind(w.ConfirmPayment(ctx, models.PaymentResult{}), InvalidTransition))

	require.NoError(t, w.Start(ctx))
	assert.True(t, IsKind(w.Start(ctx), InvalidTransition))
	assert.True(t, IsKind(w.SelectLocation(ctx, "mars"), ValidationFailed))
	assert.Equal(t, SelectingLocation, w.State())
}

func TestWizard_SnapshotRestore(t *testing.T) {
	f := newFixture()
	f.subscription.subscribed = true
	w := f.wizard(t)
	toPlan(t, w, "blr", "daily")
	require.NoError(t, w.Answer("q1", AnswerInput{Options: []string{"3"}}))
	require.NoError(t, w.NextQuestion())

	snap := w.Snapshot()
	restored := RestoreWizard(f.deps(), f.cfg, snap, WithLogger(zaptest.NewLogger(t)), WithClock(func() time.Time { return testNow }))

	assert.Equal(t, AnsweringQuestions, restored.State())
	assert.Equal(t, 1, restored.QuestionIndex())
	assert.Equal(t, w.Draft(), restored.Draft())
	assert.Equal(t, snap.CurrentQuestion().ID, "q2")

	require.NoError(t, restored.Answer("q2", AnswerInput{Text: "dog"}))
	require.NoError(t, restored.NextQuestion())
	assert.Equal(t, SchedulingAndNotes, restored.State())
	// (2500 + 900) * 1.1 = 3740, discounted to 3366
	assert.Equal(t, 3366.0, restored.Draft().Price.FinalAmount)
}

// TestWizard_RandomWalkKeepsPriceInStep drives the question steps with
// random answers, re-answers, navigation and plan changes, and checks the
// draft price against the answers a user would see after every step.
func TestWizard_RandomWalkKeepsPriceInStep(t *testing.T) {
	plans := []string{"deep", "daily", "appliance", "kitchen"}

	for seed := int64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			r := rand.New(rand.NewSource(seed))
			f := newFixture()
			f.subscription.subscribed = seed%2 == 0
			w := f.wizard(t)
			ctx := context.Background()
			require.NoError(t, w.Start(ctx))
			require.NoError(t, w.SelectLocation(ctx, "blr"))

			var (
				plan    models.Plan
				deltas  map[string]float64
				history []string
			)
			selectPlan := func() {
				id := plans[r.Intn(len(plans))]
				require.NoError(t, w.SelectPlan(ctx, id))
				for _, p := range f.catalog.plans["blr"] {
					if p.ID == id {
						plan = p
					}
				}
				deltas = map[string]float64{}
				history = append(history, "plan "+id)
			}
			answer := func(q models.AddOnQuestion) {
				var (
					in    AnswerInput
					delta float64
				)
				switch q.Type {
				case models.QuestionSingleSelect:
					opt := q.Options[r.Intn(len(q.Options))]
					in.Options = []string{opt.Label}
					delta = opt.PriceDelta
				case models.QuestionMultiSelect:
					for len(in.Options) == 0 {
						delta = 0
						for _, opt := range q.Options {
							if r.Intn(2) == 0 {
								in.Options = append(in.Options, opt.Label)
								delta += opt.PriceDelta
							}
						}
					}
				default:
					in.Text = fmt.Sprintf("note %d", r.Intn(100))
				}
				require.NoError(t, w.Answer(q.ID, in))
				deltas[q.ID] = delta
				history = append(history, fmt.Sprintf("answer %s %v%q", q.ID, in.Options, in.Text))
			}

			selectPlan()
			for step := 0; step < 60; step++ {
				switch w.State() {
				case SelectingPlan:
					selectPlan()
				case SchedulingAndNotes:
					require.NoError(t, w.Back())
					history = append(history, "back")
				case AnsweringQuestions:
					q, ok := w.CurrentQuestion()
					require.True(t, ok)
					switch r.Intn(5) {
					case 0, 1:
						answer(q)
					case 2:
						if _, answered := deltas[q.ID]; answered {
							require.NoError(t, w.NextQuestion())
							history = append(history, "next")
						} else {
							require.True(t, IsKind(w.NextQuestion(), ValidationFailed))
						}
					case 3:
						require.NoError(t, w.Back())
						history = append(history, "back")
					case 4:
						// Same answer twice leaves the price unchanged.
						if a, answered := w.Draft().Answers[q.ID]; answered {
							require.NoError(t, w.Answer(q.ID, AnswerInput{Text: a.Text, Options: a.Options}))
							history = append(history, "same "+q.ID)
						}
					}
				default:
					t.Fatalf("unexpected state %s after %v", w.State(), history)
				}

				var answered []string
				for id := range deltas {
					answered = append(answered, id)
				}
				sort.Strings(answered)
				want := make([]float64, 0, len(answered))
				for _, id := range answered {
					want = append(want, deltas[id])
				}
				require.Equal(t, ComputePrice(plan.Price, plan.Name, want, f.subscription.subscribed), w.Draft().Price,
					"after %v", history)
			}
		})
	}
}
