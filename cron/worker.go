package cron

import (
	"context"
	"fmt"
	"time"

	"maidbook/config"
	"maidbook/services/notification"
	"maidbook/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt returns the asynq connection for the completion queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCompletionQueueDB,
	}
}

// NewCompletionMux routes completion tasks to notifSvc.
func NewCompletionMux(notifSvc notification.NotificationService, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingCompleted, handleBookingCompleted(notifSvc, logger))
	return mux
}

// InitCompletionWorker runs the async worker in background. The returned
// server must be shut down by the caller.
func InitCompletionWorker(notifSvc notification.NotificationService, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)
	mux := NewCompletionMux(notifSvc, logger)

	go func() {
		const maxAttempts = 5
		logger.Info("starting completion worker")

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("failed to start completion worker",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("completion worker gave up, completion pushes are disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleBookingCompleted(notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseBookingCompleted(task)
		if err != nil {
			logger.Error("invalid completion payload", zap.Error(err))
			return fmt.Errorf("invalid completion payload: %v: %w", err, asynq.SkipRetry)
		}

		logger.Info("booking completed",
			zap.String("bookingID", p.BookingID),
			zap.String("userID", p.UserID))

		if err := notifSvc.NotifyBookingCompleted(ctx, p); err != nil {
			logger.Warn("completion notification failed", zap.String("bookingID", p.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}
