package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/database"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

// ErrReceiptNotFound means the receipt id has no row
var ErrReceiptNotFound = database.ErrReceiptNotFound

// ReceiptReader is the read side of receipts
type ReceiptReader interface {
	GetDetail(ctx context.Context, id string) (*models.ReceiptDetail, error)
	List(ctx context.Context, filter models.ReceiptFilter) ([]models.ReceiptDetail, error)
	CountPending(ctx context.Context) (int, error)
}

// ReceiptService reads receipts and runs admin receipt actions
type ReceiptService struct {
	receipts   ReceiptReader
	procedures BookingProcedures
	logger     *logrus.Logger
}

// NewReceiptService creates a new receipt service
func NewReceiptService(receipts ReceiptReader, procedures BookingProcedures, logger *logrus.Logger) *ReceiptService {
	return &ReceiptService{receipts: receipts, procedures: procedures, logger: logger}
}

// GetForViewer returns the receipt when the viewer owns it or is an admin
func (s *ReceiptService) GetForViewer(ctx context.Context, receiptID, viewerID string, isAdmin bool) (*models.ReceiptDetail, error) {
	detail, err := s.receipts.GetDetail(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && detail.UserID != viewerID {
		return nil, ErrForbidden
	}
	return detail, nil
}

// List returns receipts for the back office
func (s *ReceiptService) List(ctx context.Context, filter models.ReceiptFilter) ([]models.ReceiptDetail, error) {
	return s.receipts.List(ctx, filter)
}

// Verify runs verify_receipt for an admin
func (s *ReceiptService) Verify(ctx context.Context, receiptID, adminID string, req models.VerifyReceiptRequest) (models.ReceiptActionResult, error) {
	raw, err := s.procedures.VerifyReceipt(ctx, receiptID, req.BookingID, &adminID)
	if err != nil {
		return nil, remote("verify_receipt", err)
	}
	return s.actionResult("verify_receipt", raw)
}

// SignOff runs sign_off_receipt for an admin
func (s *ReceiptService) SignOff(ctx context.Context, receiptID, adminID string, req models.SignOffReceiptRequest) (models.ReceiptActionResult, error) {
	if _, err := s.receipts.GetDetail(ctx, receiptID); err != nil {
		return nil, err
	}
	raw, err := s.procedures.SignOffReceipt(ctx, receiptID, adminID, req.Notes)
	if err != nil {
		return nil, remote("sign_off_receipt", err)
	}
	return s.actionResult("sign_off_receipt", raw)
}

func (s *ReceiptService) actionResult(procedure string, raw []byte) (models.ReceiptActionResult, error) {
	result, err := models.ParseReceiptActionResult(raw)
	if err != nil {
		return nil, remote(procedure, err)
	}
	if msg, failed := result.Failure(); failed {
		return nil, remote(procedure, errors.New(msg))
	}
	return result, nil
}
