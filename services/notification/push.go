package notification

import (
	"context"
	"fmt"

	userRepo "maidbook/database/repository/user"
	"maidbook/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// MessageSender is the subset of *messaging.Client used for pushes.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// NotificationService tells users about their bookings.
type NotificationService interface {
	NotifyBookingCompleted(ctx context.Context, p models.BookingCompletedPayload) error
}

// PushSender delivers booking notifications over FCM. A nil sender turns
// every notification into a logged no-op.
type PushSender struct {
	users  userRepo.UserRepository
	sender MessageSender
	logger *zap.Logger
}

func NewPushSender(users userRepo.UserRepository, sender MessageSender, logger *zap.Logger) *PushSender {
	return &PushSender{users: users, sender: sender, logger: logger}
}

// NotifyBookingCompleted looks up the user's FCM token and sends a push.
// Users without a token are skipped.
func (s *PushSender) NotifyBookingCompleted(ctx context.Context, p models.BookingCompletedPayload) error {
	if s.sender == nil {
		s.logger.Info("push disabled, skipping completion notice", zap.String("bookingID", p.BookingID))
		return nil
	}
	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("NotifyBookingCompleted: could not find user %s: %w", p.UserID, err)
	}
	if u == nil || u.FCMToken == "" {
		s.logger.Debug("user has no FCM token", zap.String("userID", p.UserID))
		return nil
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: "Your booking is confirmed",
			Body:  fmt.Sprintf("%s on %s at %s. Paid %s %.0f.", p.PlanName, p.Date, p.Time, p.Currency, p.Amount),
		},
		Data: map[string]string{
			"type":      "booking_completed",
			"bookingId": p.BookingID,
			"role":      "user",
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("NotifyBookingCompleted: failed to send FCM message: %w", err)
	}
	s.logger.Debug("completion push sent", zap.String("bookingID", p.BookingID), zap.String("messageID", id))
	return nil
}
