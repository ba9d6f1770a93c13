package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

func confirmedBooking() (models.CreateBookingParams, *models.BookingResult) {
	params := models.CreateBookingParams{
		FromLocation:  "Nairobi",
		ToLocation:    "Mombasa",
		DepartureDate: "2024-07-10",
		DepartureTime: "08:00",
		SeatNumbers:   []int{3, 4},
		Price:         4800,
	}
	return params, &models.BookingResult{BookingID: "bk-1", ReceiptNumber: "TK-000123"}
}

func TestConfirmationMessage(t *testing.T) {
	params, result := confirmedBooking()
	msg := ConfirmationMessage(params, result, "KES")

	assert.Contains(t, msg, "Nairobi to Mombasa on 2024-07-10 at 08:00")
	assert.Contains(t, msg, "seat(s) 3, 4")
	assert.Contains(t, msg, "KES 4,800.00")
	assert.Contains(t, msg, "Receipt TK-000123.")
}

func TestBookingConfirmed_SendsSMS(t *testing.T) {
	userID := uuid.New()
	phone := "0712345678"

	users := new(mockUsers)
	users.On("GetByID", mock.Anything, userID).Return(&models.User{ID: userID, Phone: &phone}, nil)
	gateway := new(mockGateway)
	gateway.On("Send", mock.Anything, phone, mock.AnythingOfType("string")).Return("ATXid_1", nil)

	params, result := confirmedBooking()
	err := NewSMSNotifier(gateway, users, "KES", testLogger()).BookingConfirmed(context.Background(), userID.String(), params, result)
	require.NoError(t, err)
	gateway.AssertExpectations(t)
}

func TestBookingConfirmed_NoPhone(t *testing.T) {
	userID := uuid.New()
	users := new(mockUsers)
	users.On("GetByID", mock.Anything, userID).Return(&models.User{ID: userID}, nil)
	gateway := new(mockGateway)

	params, result := confirmedBooking()
	err := NewSMSNotifier(gateway, users, "KES", testLogger()).BookingConfirmed(context.Background(), userID.String(), params, result)
	require.NoError(t, err)
	gateway.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingConfirmed_GatewayError(t *testing.T) {
	userID := uuid.New()
	phone := "0712345678"
	users := new(mockUsers)
	users.On("GetByID", mock.Anything, userID).Return(&models.User{ID: userID, Phone: &phone}, nil)
	gateway := new(mockGateway)
	gateway.On("Send", mock.Anything, phone, mock.Anything).Return("", errors.New("gateway returned 401"))

	params, result := confirmedBooking()
	err := NewSMSNotifier(gateway, users, "KES", testLogger()).BookingConfirmed(context.Background(), userID.String(), params, result)
	assert.Error(t, err)
}

func TestBookingConfirmed_InvalidUserID(t *testing.T) {
	params, result := confirmedBooking()
	err := NewSMSNotifier(new(mockGateway), new(mockUsers), "KES", testLogger()).BookingConfirmed(context.Background(), "not-a-uuid", params, result)
	assert.Error(t, err)
}
