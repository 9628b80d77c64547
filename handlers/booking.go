package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"maidbook/models"
	"maidbook/services/booking"
	"maidbook/services/session"
	"maidbook/services/user"
	"maidbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the booking wizard over HTTP. Each request restores
// the wizard from the session store, applies one operation and saves the
// result against the version it loaded.
type BookingHandler struct {
	Sessions session.Store
	Users    user.UserService
	// Deps are the shared collaborators. Auth is replaced per request.
	Deps   booking.Dependencies
	Config booking.Config
	Now    func() time.Time
}

// SessionView is the client-facing state of a booking session.
type SessionView struct {
	ID              string                   `json:"id"`
	Version         int64                    `json:"version"`
	State           booking.State            `json:"state"`
	QuestionIndex   int                      `json:"questionIndex"`
	QuestionCount   int                      `json:"questionCount"`
	CurrentQuestion *models.AddOnQuestion    `json:"currentQuestion,omitempty"`
	Error           *booking.WizardError     `json:"error,omitempty"`
	Draft           booking.BookingDraft     `json:"draft"`
	Locations       []models.Location        `json:"locations,omitempty"`
	Plans           []models.Plan            `json:"plans,omitempty"`
	TimeSlots       []string                 `json:"timeSlots,omitempty"`
	Payment         *models.PaymentSession   `json:"payment,omitempty"`
	Booking         *models.FinalizedBooking `json:"booking,omitempty"`
	// Token is set once, on the response to a successful sign-in.
	Token string `json:"token,omitempty"`
}

func newSessionView(rec *session.Record) SessionView {
	snap := rec.Snapshot
	v := SessionView{
		ID:              rec.ID,
		Version:         rec.Version,
		State:           snap.State,
		QuestionIndex:   snap.Question,
		QuestionCount:   len(snap.Questions),
		CurrentQuestion: snap.CurrentQuestion(),
		Error:           snap.Error,
		Draft:           snap.Draft,
		Locations:       snap.Locations,
		Plans:           snap.Plans,
		Payment:         snap.Session,
		Booking:         snap.Finalized,
	}
	if snap.State == booking.SchedulingAndNotes {
		v.TimeSlots = booking.TimeSlots()
	}
	return v
}

// errorBody is the response to a failed operation. The session view shows
// where the wizard ended up.
type errorBody struct {
	utils.ErrorResponse
	Session *SessionView `json:"session,omitempty"`
}

// statusFor maps a wizard error kind to an HTTP status.
func statusFor(kind booking.ErrorKind) int {
	switch kind {
	case booking.ValidationFailed:
		return http.StatusUnprocessableEntity
	case booking.InvalidCredentials:
		return http.StatusUnauthorized
	case booking.AuthenticationUnavailable:
		return http.StatusServiceUnavailable
	case booking.CatalogFetchFailed, booking.PaymentSessionFailed:
		return http.StatusBadGateway
	case booking.NoMatchingPlansForLocation:
		return http.StatusNotFound
	case booking.PaymentSignatureMismatch:
		return http.StatusPaymentRequired
	case booking.InvalidTransition:
		return http.StatusConflict
	case booking.PersistenceFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (h *BookingHandler) options(logger *zap.Logger) []booking.Option {
	opts := []booking.Option{booking.WithLogger(logger)}
	if h.Now != nil {
		opts = append(opts, booking.WithClock(h.Now))
	}
	return opts
}

func (h *BookingHandler) depsFor(auth *user.RequestAuth) booking.Dependencies {
	deps := h.Deps
	deps.Auth = auth
	return deps
}

// operation is one wizard call made on behalf of a request.
type operation func(ctx context.Context, w *booking.Wizard) error

// run loads the session, applies op, saves and responds.
func (h *BookingHandler) run(c *gin.Context, op operation) {
	logger := getLogger(c)
	ctx := c.Request.Context()
	id := c.Param("id")

	rec, err := h.Sessions.Load(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "booking session not found", id)
			return
		}
		logger.Error("failed to load booking session", zap.String("sessionID", id), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to load booking session", "")
		return
	}

	logger = logger.With(zap.String("sessionID", id))
	auth := user.NewRequestAuth(h.Users, c.GetString("userID"))
	w := booking.RestoreWizard(h.depsFor(auth), h.Config, rec.Snapshot, h.options(logger)...)

	opErr := op(ctx, w)
	if errors.Is(opErr, booking.ErrStale) {
		utils.JSONError(c, http.StatusConflict, "the booking session moved on, reload and try again", "")
		return
	}

	saved, err := h.Sessions.Save(ctx, id, rec.Version, w.Snapshot())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrVersionConflict):
			utils.JSONError(c, http.StatusConflict, "the booking session moved on, reload and try again", "")
		case errors.Is(err, session.ErrNotFound):
			utils.JSONError(c, http.StatusNotFound, "booking session expired", id)
		default:
			logger.Error("failed to save booking session", zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "failed to save booking session", "")
		}
		return
	}

	view := newSessionView(saved)
	view.Token = auth.Token()
	respond(c, view, opErr)
}

func respond(c *gin.Context, view SessionView, opErr error) {
	if opErr == nil {
		c.JSON(http.StatusOK, view)
		return
	}
	var we *booking.WizardError
	if !errors.As(opErr, &we) {
		getLogger(c).Error("unexpected booking error", zap.Error(opErr))
		c.JSON(http.StatusInternalServerError, errorBody{
			ErrorResponse: utils.ErrorResponse{Message: "Internal Server Error"},
			Session:       &view,
		})
		return
	}
	getLogger(c).Info("booking operation rejected",
		zap.String("kind", string(we.Kind)), zap.String("field", we.Field))
	c.JSON(statusFor(we.Kind), errorBody{
		ErrorResponse: utils.ErrorResponse{Message: we.Message, Kind: string(we.Kind), Field: we.Field},
		Session:       &view,
	})
}

// bind decodes the JSON body into dst, answering 400 on failure.
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// StartSession creates a session and loads the locations.
func (h *BookingHandler) StartSession(c *gin.Context) {
	logger := getLogger(c)
	ctx := c.Request.Context()

	auth := user.NewRequestAuth(h.Users, c.GetString("userID"))
	w := booking.NewWizard(h.depsFor(auth), h.Config, h.options(logger)...)
	opErr := w.Start(ctx)

	rec, err := h.Sessions.Create(ctx, w.Snapshot())
	if err != nil {
		logger.Error("failed to create booking session", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to create booking session", "")
		return
	}
	view := newSessionView(rec)
	if opErr == nil {
		c.JSON(http.StatusCreated, view)
		return
	}
	respond(c, view, opErr)
}

// RetryStart reloads the locations after a failed start.
func (h *BookingHandler) RetryStart(c *gin.Context) {
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.Start(ctx)
	})
}

// GetSession returns the current view without changing the session.
func (h *BookingHandler) GetSession(c *gin.Context) {
	rec, err := h.Sessions.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "booking session not found", c.Param("id"))
			return
		}
		getLogger(c).Error("failed to load booking session", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to load booking session", "")
		return
	}
	c.JSON(http.StatusOK, newSessionView(rec))
}

// CancelSession deletes the session.
func (h *BookingHandler) CancelSession(c *gin.Context) {
	if err := h.Sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		getLogger(c).Error("failed to delete booking session", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to cancel booking session", "")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) SelectLocation(c *gin.Context) {
	var in struct {
		LocationID string `json:"locationId" binding:"required"`
	}
	if !bind(c, &in) {
		return
	}
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.SelectLocation(ctx, in.LocationID)
	})
}

func (h *BookingHandler) SelectPlan(c *gin.Context) {
	var in struct {
		PlanID string `json:"planId" binding:"required"`
	}
	if !bind(c, &in) {
		return
	}
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.SelectPlan(ctx, in.PlanID)
	})
}

func (h *BookingHandler) Answer(c *gin.Context) {
	var in struct {
		QuestionID string `json:"questionId" binding:"required"`
		booking.AnswerInput
	}
	if !bind(c, &in) {
		return
	}
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.Answer(in.QuestionID, in.AnswerInput)
	})
}

func (h *BookingHandler) NextQuestion(c *gin.Context) {
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.NextQuestion()
	})
}

// SetSchedule records date and time, and optionally notes. With
// "continue": true it also moves on to review.
func (h *BookingHandler) SetSchedule(c *gin.Context) {
	var in struct {
		Date     string  `json:"date"`
		Time     string  `json:"time"`
		Notes    *string `json:"notes"`
		Continue bool    `json:"continue"`
	}
	if !bind(c, &in) {
		return
	}
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		if err := w.SetSchedule(in.Date, in.Time); err != nil {
			return err
		}
		if in.Notes != nil {
			if err := w.SetNotes(*in.Notes); err != nil {
				return err
			}
		}
		if in.Continue {
			return w.ContinueToReview()
		}
		return nil
	})
}

func (h *BookingHandler) SetNotes(c *gin.Context) {
	var in struct {
		Notes string `json:"notes"`
	}
	if !bind(c, &in) {
		return
	}
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.SetNotes(in.Notes)
	})
}

func (h *BookingHandler) ContinueToReview(c *gin.Context) {
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.ContinueToReview()
	})
}

func (h *BookingHandler) SubmitAddress(c *gin.Context) {
	var in models.Address
	if !bind(c, &in) {
		return
	}
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.SubmitAddress(ctx, in)
	})
}

func (h *BookingHandler) SignIn(c *gin.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bind(c, &in) {
		return
	}
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.SignIn(ctx, in.Email, in.Password)
	})
}

func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
	var in models.PaymentResult
	if !bind(c, &in) {
		return
	}
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.ConfirmPayment(ctx, in)
	})
}

func (h *BookingHandler) PaymentFailed(c *gin.Context) {
	var in struct {
		Reason string `json:"reason"`
	}
	// The body is optional.
	_ = c.ShouldBindJSON(&in)
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.PaymentFailed(in.Reason)
	})
}

func (h *BookingHandler) RetryPersistence(c *gin.Context) {
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.RetryPersistence(ctx)
	})
}

func (h *BookingHandler) Back(c *gin.Context) {
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.Back()
	})
}

func (h *BookingHandler) DismissError(c *gin.Context) {
	h.run(c, func(ctx context.Context, w *booking.Wizard) error {
		w.DismissError()
		return nil
	})
}

// TimeSlots lists the bookable half-hour slots.
func (h *BookingHandler) TimeSlots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"timeSlots": booking.TimeSlots()})
}
