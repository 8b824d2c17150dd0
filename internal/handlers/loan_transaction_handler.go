// internal/handlers/loan_transaction_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/izzatfirdaus/motac-rms/internal/services"
	"github.com/izzatfirdaus/motac-rms/internal/utils"
)

type LoanTransactionHandler struct {
	transactions *services.LoanTransactionService
}

func NewLoanTransactionHandler(transactions *services.LoanTransactionService) *LoanTransactionHandler {
	return &LoanTransactionHandler{transactions: transactions}
}

// Issue handles POST /api/v1/loan-applications/:id/issue
func (h *LoanTransactionHandler) Issue(c *gin.Context) {
	officerID, ok := currentUserID(c)
	if !ok {
		return
	}
	applicationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.IssueEquipmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	transaction, err := h.transactions.IssueEquipment(applicationID, officerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, transaction)
}

// Return handles POST /api/v1/loan-transactions/:id/return
func (h *LoanTransactionHandler) Return(c *gin.Context) {
	officerID, ok := currentUserID(c)
	if !ok {
		return
	}
	transactionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.ProcessReturnRequest
	if !bindAndValidate(c, &req) {
		return
	}

	transaction, err := h.transactions.ProcessReturn(transactionID, officerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, transaction)
}

// Get handles GET /api/v1/loan-transactions/:id
func (h *LoanTransactionHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	transaction, err := h.transactions.GetTransaction(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, transaction)
}
