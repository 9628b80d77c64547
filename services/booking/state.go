package booking

// State is a step of the booking wizard.
type State string

const (
	Starting                State = "starting"
	SelectingLocation       State = "selectingLocation"
	SelectingPlan           State = "selectingPlan"
	AnsweringQuestions      State = "answeringQuestions"
	SchedulingAndNotes      State = "schedulingAndNotes"
	ReviewAndAddress        State = "reviewAndAddress"
	RequiringAuthentication State = "requiringAuthentication"
	AwaitingPayment         State = "awaitingPayment"
	Completed               State = "completed"
	Errored                 State = "errored"
)

func (s State) String() string {
	return string(s)
}
