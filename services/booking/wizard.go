package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"maidbook/models"
)

// Wizard drives one booking session from location selection to a paid,
// persisted booking. It is safe for concurrent use: external calls run
// without the lock held, and their results are applied only if the wizard
// has not moved on while they were in flight.
type Wizard struct {
	mu     sync.Mutex
	deps   Dependencies
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	state      State
	question   int
	errOrigin  State
	lastErr    *WizardError
	generation uint64
	confirming bool

	draft     BookingDraft
	locations []models.Location
	plans     []models.Plan
	questions []models.AddOnQuestion
	session   *models.PaymentSession
	finalized *models.FinalizedBooking
}

// Option customizes a Wizard.
type Option func(*Wizard)

// WithLogger sets the wizard logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Wizard) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithClock overrides the wall clock used for schedule validation.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) {
		if now != nil {
			w.now = now
		}
	}
}

// NewWizard creates a wizard in the Starting state.
func NewWizard(deps Dependencies, cfg Config, opts ...Option) *Wizard {
	cfg = cfg.withDefaults()
	w := &Wizard{
		deps:   deps,
		cfg:    cfg,
		logger: zap.NewNop(),
		now:    time.Now,
		state:  Starting,
		draft:  newDraft(cfg.ServiceID),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ticket identifies the wizard position an external request was issued for.
type ticket struct {
	generation uint64
	state      State
	question   int
}

func (w *Wizard) issue() ticket {
	w.generation++
	return ticket{generation: w.generation, state: w.state, question: w.question}
}

func (w *Wizard) current(t ticket) bool {
	return t.generation == w.generation && t.state == w.state && t.question == w.question
}

// unlocked runs fn with the wizard lock released. The lock must be held on
// entry and is held again on return.
func (w *Wizard) unlocked(fn func()) {
	w.mu.Unlock()
	defer w.mu.Lock()
	fn()
}

func (w *Wizard) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, w.cfg.FetchTimeout)
}

func (w *Wizard) moveTo(s State) {
	if s != w.state {
		w.logger.Debug("booking wizard transition",
			zap.String("from", w.state.String()),
			zap.String("to", s.String()))
	}
	w.state = s
}

func (w *Wizard) enterError(origin State, we *WizardError) error {
	w.logger.Warn("booking wizard error",
		zap.String("state", w.state.String()),
		zap.String("kind", string(we.Kind)),
		zap.Error(we.Err))
	w.moveTo(Errored)
	w.errOrigin = origin
	w.lastErr = we
	return we
}

// Start fetches the subscription status (held fixed for the session) and
// the locations offering the configured service.
func (w *Wizard) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != Starting && !(w.state == Errored && w.errOrigin == Starting) {
		return invalidTransition("start", w.state)
	}
	w.moveTo(Starting)
	w.lastErr = nil
	t := w.issue()

	var (
		userID     string
		subscribed bool
		locations  []models.Location
		err        error
	)
	w.unlocked(func() {
		userID, subscribed = w.lookupSubscription(ctx)
		fctx, cancel := w.fetchContext(ctx)
		defer cancel()
		locations, err = w.deps.Catalog.ListLocationsForService(fctx, w.cfg.ServiceID)
	})
	if !w.current(t) {
		return ErrStale
	}

	w.draft.UserID = userID
	w.draft.Subscribed = subscribed
	w.draft.reprice()

	if err != nil {
		return w.enterError(Starting, newError(CatalogFetchFailed, "could not load locations", err))
	}
	if len(locations) == 0 {
		return w.enterError(Starting, newError(CatalogFetchFailed, "no locations offer this service yet", nil))
	}
	w.locations = locations
	w.moveTo(SelectingLocation)
	return nil
}

// lookupSubscription runs without the lock held.
func (w *Wizard) lookupSubscription(ctx context.Context) (string, bool) {
	u, err := w.currentUser(ctx)
	if err != nil {
		w.logger.Warn("could not resolve current user", zap.Error(err))
	}
	if u == nil || w.deps.Subscription == nil {
		return "", false
	}
	fctx, cancel := w.fetchContext(ctx)
	defer cancel()
	subscribed, err := w.deps.Subscription.IsUserSubscribed(fctx, u.ID)
	if err != nil {
		w.logger.Warn("subscription lookup failed, pricing without discount",
			zap.String("userID", u.ID), zap.Error(err))
		return u.ID, false
	}
	return u.ID, subscribed
}

func (w *Wizard) currentUser(ctx context.Context) (*models.User, error) {
	if w.deps.Auth == nil {
		return nil, nil
	}
	fctx, cancel := w.fetchContext(ctx)
	defer cancel()
	return w.deps.Auth.CurrentUser(fctx)
}

// SelectLocation records the location and fetches its plans. Selecting
// again after a failure retries the fetch.
func (w *Wizard) SelectLocation(ctx context.Context, locationID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.state == SelectingLocation, w.state == SelectingPlan:
	case w.state == Errored && w.errOrigin == SelectingLocation:
	default:
		return invalidTransition("select location", w.state)
	}
	loc, ok := w.findLocation(locationID)
	if !ok {
		return NewValidationError("locationId", "unknown location")
	}

	w.moveTo(SelectingLocation)
	w.lastErr = nil
	w.draft.Location = &loc
	w.draft.clearPlan()
	w.plans, w.questions, w.question = nil, nil, 0
	t := w.issue()

	var (
		plans []models.Plan
		err   error
	)
	w.unlocked(func() {
		fctx, cancel := w.fetchContext(ctx)
		defer cancel()
		plans, err = w.deps.Catalog.ListPlans(fctx, loc.ID, w.cfg.ServiceID)
	})
	if !w.current(t) {
		return ErrStale
	}
	if err != nil {
		return w.enterError(SelectingLocation, newError(CatalogFetchFailed, "could not load plans for "+loc.Name, err))
	}
	if len(plans) == 0 {
		return w.enterError(SelectingLocation, newError(NoMatchingPlansForLocation, "no plans are offered in "+loc.Name, nil))
	}
	w.plans = plans
	w.moveTo(SelectingPlan)
	return nil
}

// SelectPlan records the plan and fetches its add-on questions. A plan
// without questions goes straight to scheduling.
func (w *Wizard) SelectPlan(ctx context.Context, planID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != SelectingPlan && !(w.state == Errored && w.errOrigin == SelectingPlan) {
		return invalidTransition("select plan", w.state)
	}
	plan, ok := w.findPlan(planID)
	if !ok {
		return NewValidationError("planId", "unknown plan")
	}

	w.moveTo(SelectingPlan)
	w.lastErr = nil
	w.draft.clearPlan()
	w.draft.Plan = &plan
	w.draft.reprice()
	w.questions, w.question = nil, 0
	t := w.issue()

	var (
		questions []models.AddOnQuestion
		err       error
	)
	w.unlocked(func() {
		fctx, cancel := w.fetchContext(ctx)
		defer cancel()
		questions, err = w.deps.Catalog.ListAddOnQuestions(fctx, plan.ID)
	})
	if !w.current(t) {
		return ErrStale
	}
	if err != nil {
		return w.enterError(SelectingPlan, newError(CatalogFetchFailed, "could not load options for "+plan.Name, err))
	}
	w.questions = questions
	if len(questions) == 0 {
		w.moveTo(SchedulingAndNotes)
		return nil
	}
	w.moveTo(AnsweringQuestions)
	return nil
}

// AnswerInput is a user's answer to the current question. Text is used for
// free-text questions, Options for choice questions.
type AnswerInput struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// Answer records the answer to the current question and reprices. Answering
// the same question again replaces the previous answer and its delta.
func (w *Wizard) Answer(questionID string, in AnswerInput) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != AnsweringQuestions {
		return invalidTransition("answer", w.state)
	}
	q := w.questions[w.question]
	if q.ID != questionID {
		return NewValidationError("questionId", "only the current question can be answered")
	}
	ans, err := buildAnswer(q, in)
	if err != nil {
		return err
	}
	w.draft.Answers[q.ID] = ans
	w.draft.reprice()
	w.lastErr = nil
	return nil
}

func buildAnswer(q models.AddOnQuestion, in AnswerInput) (models.Answer, error) {
	ans := models.Answer{QuestionID: q.ID, Prompt: q.Prompt}
	switch q.Type {
	case models.QuestionSingleSelect, models.QuestionMultiSelect:
		labels := dedupeLabels(in.Options)
		if len(labels) == 0 {
			return ans, NewValidationError("answer", "choose an option")
		}
		if q.Type == models.QuestionSingleSelect && len(labels) > 1 {
			return ans, NewValidationError("answer", "choose exactly one option")
		}
		for _, label := range labels {
			opt, ok := q.Option(label)
			if !ok {
				return ans, NewValidationError("answer", "unknown option "+label)
			}
			ans.PriceDelta += opt.PriceDelta
		}
		ans.Options = labels
	default:
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return ans, NewValidationError("answer", "an answer is required")
		}
		ans.Text = text
	}
	return ans, nil
}

func dedupeLabels(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, l := range in {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// NextQuestion advances past the current question once it is answered.
func (w *Wizard) NextQuestion() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != AnsweringQuestions {
		return invalidTransition("next question", w.state)
	}
	q := w.questions[w.question]
	if a, ok := w.draft.Answers[q.ID]; !ok || a.IsEmpty() {
		return NewValidationError("answer", "answer the current question to continue")
	}
	if w.question == len(w.questions)-1 {
		w.moveTo(SchedulingAndNotes)
		return nil
	}
	w.question++
	return nil
}

// SetSchedule records the visit date and time after validating them.
func (w *Wizard) SetSchedule(date, tm string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != SchedulingAndNotes {
		return invalidTransition("set schedule", w.state)
	}
	date, tm = strings.TrimSpace(date), strings.TrimSpace(tm)
	if err := ValidateSchedule(date, tm, w.now()); err != nil {
		return err
	}
	w.draft.Schedule = models.Schedule{Date: date, Time: tm}
	return nil
}

// SetNotes records free-text notes for the provider.
func (w *Wizard) SetNotes(notes string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != SchedulingAndNotes {
		return invalidTransition("set notes", w.state)
	}
	w.draft.Notes = strings.TrimSpace(notes)
	return nil
}

// ContinueToReview moves to review once a valid schedule is set.
func (w *Wizard) ContinueToReview() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != SchedulingAndNotes {
		return invalidTransition("continue to review", w.state)
	}
	if !w.draft.Schedule.IsSet() {
		return NewValidationError("date", "choose a date and time")
	}
	if err := ValidateSchedule(w.draft.Schedule.Date, w.draft.Schedule.Time, w.now()); err != nil {
		return err
	}
	w.moveTo(ReviewAndAddress)
	return nil
}

// SubmitAddress validates the address and, for a signed-in user, opens a
// payment session. Unauthenticated users are sent to sign in first.
// Invalid addresses never reach an external collaborator.
func (w *Wizard) SubmitAddress(ctx context.Context, addr models.Address) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != ReviewAndAddress {
		return invalidTransition("submit address", w.state)
	}
	addr = NormalizeAddress(addr)
	if err := ValidateAddress(addr); err != nil {
		return err
	}
	w.draft.Address = addr
	w.lastErr = nil
	t := w.issue()

	var (
		u   *models.User
		err error
	)
	w.unlocked(func() {
		u, err = w.currentUser(ctx)
	})
	if !w.current(t) {
		return ErrStale
	}
	if err != nil {
		w.logger.Warn("could not resolve current user", zap.Error(err))
	}
	if u == nil {
		w.moveTo(RequiringAuthentication)
		return nil
	}
	w.draft.UserID = u.ID
	return w.beginPayment(ctx)
}

// SignIn authenticates the user and resumes into payment. Failures leave
// the wizard waiting for another attempt.
func (w *Wizard) SignIn(ctx context.Context, email, password string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != RequiringAuthentication {
		return invalidTransition("sign in", w.state)
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		w.lastErr = newError(InvalidCredentials, "email and password are required", nil)
		return w.lastErr
	}
	if w.deps.Auth == nil {
		w.lastErr = newError(InvalidCredentials, "sign-in is unavailable", nil)
		return w.lastErr
	}
	t := w.issue()

	var (
		u   *models.User
		err error
	)
	w.unlocked(func() {
		fctx, cancel := w.fetchContext(ctx)
		defer cancel()
		u, err = w.deps.Auth.SignIn(fctx, email, password)
	})
	if !w.current(t) {
		return ErrStale
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials) || (err == nil && u == nil):
		w.logger.Info("sign-in rejected", zap.String("email", email))
		w.lastErr = newError(InvalidCredentials, "invalid email or password", err)
		return w.lastErr
	case err != nil:
		w.logger.Warn("sign-in failed", zap.String("email", email), zap.Error(err))
		w.lastErr = newError(AuthenticationUnavailable, "sign-in is temporarily unavailable, please try again", err)
		return w.lastErr
	}
	w.draft.UserID = u.ID
	w.lastErr = nil
	w.moveTo(ReviewAndAddress)
	return w.beginPayment(ctx)
}

// beginPayment opens a payment session for the current final amount. The
// lock must be held and the wizard must be in ReviewAndAddress.
func (w *Wizard) beginPayment(ctx context.Context) error {
	amount := ToMinorUnits(w.draft.Price.FinalAmount)
	if amount <= 0 {
		w.lastErr = newError(PaymentSessionFailed, "there is nothing to pay for this booking", nil)
		return w.lastErr
	}
	t := w.issue()

	var (
		sess *models.PaymentSession
		err  error
	)
	w.unlocked(func() {
		fctx, cancel := w.fetchContext(ctx)
		defer cancel()
		sess, err = w.deps.Gateway.CreatePaymentSession(fctx, amount, w.cfg.Currency)
	})
	if !w.current(t) {
		return ErrStale
	}
	if err != nil || sess == nil {
		w.logger.Warn("payment session creation failed",
			zap.Int64("amount", amount), zap.String("currency", w.cfg.Currency), zap.Error(err))
		w.lastErr = newError(PaymentSessionFailed, "could not start the payment, please try again", err)
		return w.lastErr
	}
	w.session = sess
	w.moveTo(AwaitingPayment)
	return nil
}

// PaymentFailed records a gateway failure or a cancelled checkout. The draft
// is kept and the user can submit the address again.
func (w *Wizard) PaymentFailed(reason string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != AwaitingPayment || w.confirming {
		return invalidTransition("report payment failure", w.state)
	}
	msg := "the payment did not go through, please try again"
	if reason = strings.TrimSpace(reason); reason != "" {
		msg = reason
	}
	w.session = nil
	w.issue()
	w.moveTo(ReviewAndAddress)
	w.lastErr = newError(PaymentSessionFailed, msg, nil)
	w.logger.Info("payment failed or cancelled", zap.String("reason", msg))
	return nil
}

// ConfirmPayment verifies the checkout result and, when valid, persists the
// finalized booking. The wizard never completes without verification.
func (w *Wizard) ConfirmPayment(ctx context.Context, res models.PaymentResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != AwaitingPayment || w.confirming {
		return invalidTransition("confirm payment", w.state)
	}
	if w.session == nil || res.OrderRef != w.session.OrderRef {
		return w.rejectPayment(newError(PaymentSignatureMismatch, "payment does not belong to this booking", nil))
	}

	w.confirming = true
	defer func() { w.confirming = false }()
	sess := *w.session

	var (
		valid bool
		err   error
	)
	w.unlocked(func() {
		fctx, cancel := w.fetchContext(ctx)
		defer cancel()
		valid, err = w.deps.Verifier.VerifyPayment(fctx, sess, res)
	})
	if err != nil || !valid {
		return w.rejectPayment(newError(PaymentSignatureMismatch, "the payment could not be verified", err))
	}

	b := w.finalize(res)
	w.finalized = &b
	return w.persist(ctx)
}

func (w *Wizard) rejectPayment(we *WizardError) error {
	w.logger.Warn("payment rejected", zap.String("kind", string(we.Kind)), zap.Error(we.Err))
	w.session = nil
	w.issue()
	w.moveTo(ReviewAndAddress)
	w.lastErr = we
	return we
}

func (w *Wizard) finalize(res models.PaymentResult) models.FinalizedBooking {
	d := w.draft.clone()
	b := models.FinalizedBooking{
		ID:         uuid.New().String(),
		UserID:     d.UserID,
		ServiceID:  d.ServiceID,
		Answers:    d.Answers,
		Schedule:   d.Schedule,
		Notes:      d.Notes,
		Address:    d.Address,
		Price:      d.Price,
		Amount:     w.session.Amount,
		Currency:   w.session.Currency,
		OrderRef:   res.OrderRef,
		PaymentRef: res.PaymentRef,
		GatewayRef: w.session.GatewayRef,
		Status:     models.BookingStatusConfirmed,
		CreatedAt:  w.now().UTC(),
	}
	if d.Location != nil {
		b.LocationID, b.LocationName = d.Location.ID, d.Location.Name
	}
	if d.Plan != nil {
		b.PlanID, b.PlanName = d.Plan.ID, d.Plan.Name
	}
	return b
}

// persist saves w.finalized. The lock must be held.
func (w *Wizard) persist(ctx context.Context) error {
	b := *w.finalized

	var (
		id  string
		err error
	)
	w.unlocked(func() {
		fctx, cancel := w.fetchContext(ctx)
		defer cancel()
		id, err = w.deps.Store.SaveFinalizedBooking(fctx, b)
	})
	if err != nil {
		w.logger.Error("booking could not be saved after a successful payment",
			zap.String("orderRef", b.OrderRef),
			zap.String("paymentRef", b.PaymentRef),
			zap.String("userID", b.UserID),
			zap.Error(err))
		return w.enterError(AwaitingPayment, newError(PersistenceFailed,
			"your payment succeeded but the booking could not be saved, please contact support", err))
	}
	if id != "" {
		w.finalized.ID = id
	}
	w.session = nil
	w.lastErr = nil
	w.moveTo(Completed)
	w.logger.Info("booking completed",
		zap.String("bookingID", w.finalized.ID),
		zap.String("orderRef", b.OrderRef),
		zap.Float64("amount", b.Price.FinalAmount))

	if w.deps.Completion != nil {
		done := *w.finalized
		w.unlocked(func() {
			if err := w.deps.Completion.BookingCompleted(ctx, done, w.cfg.CompletionDelay); err != nil {
				w.logger.Warn("completion signal failed", zap.String("bookingID", done.ID), zap.Error(err))
			}
		})
	}
	return nil
}

// RetryPersistence re-attempts saving a paid booking whose insert failed.
func (w *Wizard) RetryPersistence(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != Errored || w.errOrigin != AwaitingPayment || w.finalized == nil || w.confirming {
		return invalidTransition("retry saving", w.state)
	}
	w.confirming = true
	defer func() { w.confirming = false }()
	return w.persist(ctx)
}

// Back moves one step backwards where the flow allows it. Requests still in
// flight for the step being left are abandoned.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.confirming {
		return invalidTransition("go back", w.state)
	}
	switch w.state {
	case SelectingLocation:
	case SelectingPlan:
		w.moveTo(SelectingLocation)
	case AnsweringQuestions:
		if w.question > 0 {
			w.question--
		} else {
			w.moveTo(SelectingPlan)
		}
	case SchedulingAndNotes:
		if len(w.questions) > 0 {
			w.question = len(w.questions) - 1
			w.moveTo(AnsweringQuestions)
		} else {
			w.moveTo(SelectingPlan)
		}
	case ReviewAndAddress:
		w.moveTo(SchedulingAndNotes)
	case RequiringAuthentication:
		w.moveTo(ReviewAndAddress)
	case AwaitingPayment:
		w.session = nil
		w.moveTo(ReviewAndAddress)
	case Errored:
		if w.errOrigin != SelectingLocation && w.errOrigin != SelectingPlan {
			return invalidTransition("go back", w.state)
		}
		w.moveTo(w.errOrigin)
	default:
		return invalidTransition("go back", w.state)
	}
	w.lastErr = nil
	w.issue()
	return nil
}

// DismissError clears the error banner. Catalog failures return to the step
// that triggered them; a failed save after payment stays visible.
func (w *Wizard) DismissError() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == Errored {
		switch w.errOrigin {
		case SelectingLocation, SelectingPlan:
			w.moveTo(w.errOrigin)
		default:
			return
		}
	}
	w.lastErr = nil
}

func (w *Wizard) findLocation(id string) (models.Location, bool) {
	for _, l := range w.locations {
		if l.ID == id {
			return l, true
		}
	}
	return models.Location{}, false
}

func (w *Wizard) findPlan(id string) (models.Plan, bool) {
	for _, p := range w.plans {
		if p.ID == id {
			return p, true
		}
	}
	return models.Plan{}, false
}

// State returns the current step.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// QuestionIndex returns the index of the current add-on question.
func (w *Wizard) QuestionIndex() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.question
}

// CurrentQuestion returns the question being answered, if any.
func (w *Wizard) CurrentQuestion() (models.AddOnQuestion, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != AnsweringQuestions || w.question >= len(w.questions) {
		return models.AddOnQuestion{}, false
	}
	return w.questions[w.question], true
}

// Draft returns a copy of the accumulated draft.
func (w *Wizard) Draft() BookingDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.clone()
}

// Err returns the error banner currently shown, if any.
func (w *Wizard) Err() *WizardError {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Finalized returns the finalized booking once payment was verified.
func (w *Wizard) Finalized() *models.FinalizedBooking {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finalized == nil {
		return nil
	}
	b := *w.finalized
	return &b
}
