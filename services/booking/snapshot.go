package booking

import (
	"maidbook/models"
)

// Snapshot is the serialisable state of a wizard, used to carry a session
// across requests.
type Snapshot struct {
	State       State                    `json:"state"`
	Question    int                      `json:"question"`
	ErrorOrigin State                    `json:"errorOrigin,omitempty"`
	Error       *WizardError             `json:"error,omitempty"`
	Draft       BookingDraft             `json:"draft"`
	Locations   []models.Location        `json:"locations,omitempty"`
	Plans       []models.Plan            `json:"plans,omitempty"`
	Questions   []models.AddOnQuestion   `json:"questions,omitempty"`
	Session     *models.PaymentSession   `json:"session,omitempty"`
	Finalized   *models.FinalizedBooking `json:"finalized,omitempty"`
}

// CurrentQuestion returns the question being answered in the snapshot.
func (s Snapshot) CurrentQuestion() *models.AddOnQuestion {
	if s.State != AnsweringQuestions || s.Question < 0 || s.Question >= len(s.Questions) {
		return nil
	}
	q := s.Questions[s.Question]
	return &q
}

// Snapshot captures the wizard state.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		State:       w.state,
		Question:    w.question,
		ErrorOrigin: w.errOrigin,
		Draft:       w.draft.clone(),
		Locations:   append([]models.Location(nil), w.locations...),
		Plans:       append([]models.Plan(nil), w.plans...),
		Questions:   append([]models.AddOnQuestion(nil), w.questions...),
	}
	if w.lastErr != nil {
		e := *w.lastErr
		snap.Error = &e
	}
	if w.session != nil {
		s := *w.session
		snap.Session = &s
	}
	if w.finalized != nil {
		f := *w.finalized
		snap.Finalized = &f
	}
	return snap
}

// RestoreWizard rebuilds a wizard from a snapshot. Derived prices are
// recomputed rather than trusted.
func RestoreWizard(deps Dependencies, cfg Config, snap Snapshot, opts ...Option) *Wizard {
	w := NewWizard(deps, cfg, opts...)
	w.state = snap.State
	if w.state == "" {
		w.state = Starting
	}
	w.question = snap.Question
	if w.question < 0 || (len(snap.Questions) > 0 && w.question >= len(snap.Questions)) {
		w.question = 0
	}
	w.errOrigin = snap.ErrorOrigin
	w.lastErr = snap.Error
	w.draft = snap.Draft.clone()
	if w.draft.ServiceID == "" {
		w.draft.ServiceID = w.cfg.ServiceID
	}
	w.draft.reprice()
	w.locations = snap.Locations
	w.plans = snap.Plans
	w.questions = snap.Questions
	w.session = snap.Session
	w.finalized = snap.Finalized
	if w.state == AnsweringQuestions && len(w.questions) == 0 {
		w.state = SchedulingAndNotes
	}
	return w
}
