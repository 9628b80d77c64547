package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"maidbook/models"
	"maidbook/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeNotifier struct {
	got []models.BookingCompletedPayload
	err error
}

func (f *fakeNotifier) NotifyBookingCompleted(ctx context.Context, p models.BookingCompletedPayload) error {
	f.got = append(f.got, p)
	return f.err
}

func TestCompletionMux(t *testing.T) {
	n := &fakeNotifier{}
	mux := NewCompletionMux(n, zaptest.NewLogger(t))

	task, _, err := tasks.NewBookingCompletedTask(models.FinalizedBooking{ID: "bk_1", UserID: "u1"}, time.Second)
	require.NoError(t, err)

	require.NoError(t, mux.ProcessTask(context.Background(), task))
	require.Len(t, n.got, 1)
	assert.Equal(t, "bk_1", n.got[0].BookingID)

	n.err = errors.New("fcm unavailable")
	assert.Error(t, mux.ProcessTask(context.Background(), task))
}

func TestCompletionMux_BadPayloadSkipsRetry(t *testing.T) {
	mux := NewCompletionMux(&fakeNotifier{}, zaptest.NewLogger(t))

	err := mux.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeBookingCompleted, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
