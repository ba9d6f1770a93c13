package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/middleware"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/services"
)

// ReceiptHandler serves receipts to passengers and the back office
type ReceiptHandler struct {
	receipts     *services.ReceiptService
	documents    *services.ReceiptDocumentService
	auditService *services.AuditService
	logger       *logrus.Logger
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receipts *services.ReceiptService, documents *services.ReceiptDocumentService, auditService *services.AuditService, logger *logrus.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receipts:     receipts,
		documents:    documents,
		auditService: auditService,
		logger:       logger,
	}
}

func isAdmin(user middleware.UserContext) bool {
	return user.HasRole(models.RoleAdmin, models.RoleSuperAdmin, models.RoleBranchAdmin)
}

func (h *ReceiptHandler) viewerReceipt(c *gin.Context) (*models.ReceiptDetail, bool) {
	user := middleware.MustGetUserContext(c)
	detail, err := h.receipts.GetForViewer(c.Request.Context(), c.Param("id"), user.UserID.String(), isAdmin(user))
	if err != nil {
		respondError(c, h.logger, err, "")
		return nil, false
	}
	return detail, true
}

// GetReceipt returns a receipt the caller owns
// @Summary Get receipt
// @Tags Receipts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Success 200 {object} models.ReceiptDetail
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /receipts/{id} [get]
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	detail, ok := h.viewerReceipt(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DownloadReceipt renders the receipt as a PDF
// @Summary Download receipt PDF
// @Tags Receipts
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /receipts/{id}/pdf [get]
func (h *ReceiptHandler) DownloadReceipt(c *gin.Context) {
	detail, ok := h.viewerReceipt(c)
	if !ok {
		return
	}

	pdf, err := h.documents.Render(detail)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.documents.Filename(detail)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ListReceipts returns receipts for the back office
// @Summary List receipts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param payment_status query string false "Payment status"
// @Param signed_off query bool false "Signed off"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /admin/receipts [get]
func (h *ReceiptHandler) ListReceipts(c *gin.Context) {
	var filter models.ReceiptFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	receipts, err := h.receipts.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts, "count": len(receipts)})
}

// VerifyReceipt runs receipt verification
// @Summary Verify receipt
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Param request body models.VerifyReceiptRequest false "Booking to check against"
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} ErrorResponse
// @Router /admin/receipts/{id}/verify [post]
func (h *ReceiptHandler) VerifyReceipt(c *gin.Context) {
	var req models.VerifyReceiptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	admin := middleware.MustGetUserContext(c)
	receiptID := c.Param("id")

	result, err := h.receipts.Verify(c.Request.Context(), receiptID, admin.UserID.String(), req)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	h.safeLogReceiptAction(c, admin.UserID, "receipt_verify", receiptID, result)
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// SignOffReceipt marks a receipt as signed off
// @Summary Sign off receipt
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Param request body models.SignOffReceiptRequest false "Notes"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /admin/receipts/{id}/sign-off [post]
func (h *ReceiptHandler) SignOffReceipt(c *gin.Context) {
	var req models.SignOffReceiptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	admin := middleware.MustGetUserContext(c)
	receiptID := c.Param("id")

	result, err := h.receipts.SignOff(c.Request.Context(), receiptID, admin.UserID.String(), req)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	h.safeLogReceiptAction(c, admin.UserID, "receipt_sign_off", receiptID, result)
	c.JSON(http.StatusOK, gin.H{"result": result})
}
