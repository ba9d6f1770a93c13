package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/pkg/sms"
)

// UserLookup finds passenger accounts
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// SMSNotifier texts passengers when their booking is confirmed
type SMSNotifier struct {
	gateway  sms.Gateway
	users    UserLookup
	currency string
	logger   *logrus.Logger
}

// NewSMSNotifier creates a new SMS notifier
func NewSMSNotifier(gateway sms.Gateway, users UserLookup, currency string, logger *logrus.Logger) *SMSNotifier {
	return &SMSNotifier{gateway: gateway, users: users, currency: currency, logger: logger}
}

// BookingConfirmed sends the confirmation text. Passengers without a phone
// number are skipped.
func (n *SMSNotifier) BookingConfirmed(ctx context.Context, userID string, params models.CreateBookingParams, result *models.BookingResult) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	user, err := n.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Phone == nil || *user.Phone == "" {
		n.logger.WithField("user_id", userID).Debug("No phone number, skipping booking SMS")
		return nil
	}

	messageID, err := n.gateway.Send(ctx, *user.Phone, ConfirmationMessage(params, result, n.currency))
	if err != nil {
		return fmt.Errorf("failed to send booking SMS: %w", err)
	}

	n.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"booking_id": result.BookingID,
		"message_id": messageID,
	}).Info("Booking confirmation SMS sent")
	return nil
}

// ConfirmationMessage is the SMS body for a confirmed booking
func ConfirmationMessage(params models.CreateBookingParams, result *models.BookingResult, currency string) string {
	msg := fmt.Sprintf("Tour Kenya: booking confirmed. %s to %s on %s at %s, seat(s) %s. Total %s.",
		params.FromLocation, params.ToLocation, params.DepartureDate, params.DepartureTime,
		joinSeats(params.SeatNumbers), FormatAmount(currency, params.Price))
	if result != nil && result.ReceiptNumber != "" {
		msg += " Receipt " + result.ReceiptNumber + "."
	}
	return msg
}
