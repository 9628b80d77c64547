package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maidbook/models"
	"maidbook/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the subset of *asynq.Client used to schedule tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqCompletionSignal schedules a booking:completed task after the
// configured delay. The worker in package cron consumes it.
type AsynqCompletionSignal struct {
	client Enqueuer
	logger *zap.Logger
}

func NewAsynqCompletionSignal(client Enqueuer, logger *zap.Logger) *AsynqCompletionSignal {
	return &AsynqCompletionSignal{client: client, logger: logger}
}

func (s *AsynqCompletionSignal) BookingCompleted(ctx context.Context, b models.FinalizedBooking, delay time.Duration) error {
	task, opts, err := tasks.NewBookingCompletedTask(b, delay)
	if err != nil {
		return fmt.Errorf("failed to build completion task: %w", err)
	}
	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			s.logger.Debug("completion already scheduled", zap.String("bookingID", b.ID))
			return nil
		}
		return fmt.Errorf("failed to enqueue completion task: %w", err)
	}
	s.logger.Info("completion scheduled",
		zap.String("bookingID", b.ID),
		zap.String("taskID", info.ID),
		zap.Duration("delay", delay))
	return nil
}
