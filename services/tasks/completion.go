package tasks

import (
	"encoding/json"
	"time"

	"maidbook/models"

	"github.com/hibiken/asynq"
)

const TypeBookingCompleted = "booking:completed"

// NewBookingCompletedTask builds the delayed completion task for b.
func NewBookingCompletedTask(b models.FinalizedBooking, delay time.Duration) (*asynq.Task, []asynq.Option, error) {
	payload := models.BookingCompletedPayload{
		BookingID: b.ID,
		UserID:    b.UserID,
		PlanName:  b.PlanName,
		Date:      b.Schedule.Date,
		Time:      b.Schedule.Time,
		Amount:    b.Price.FinalAmount,
		Currency:  b.Currency,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingCompleted, data)
	opts := []asynq.Option{
		asynq.ProcessIn(delay),
		asynq.MaxRetry(5),
		// one completion per booking, even if the save is retried
		asynq.TaskID("booking-completed:" + b.ID),
	}
	return task, opts, nil
}

// ParseBookingCompleted decodes a completion task payload.
func ParseBookingCompleted(task *asynq.Task) (models.BookingCompletedPayload, error) {
	var p models.BookingCompletedPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
