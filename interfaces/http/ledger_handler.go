package http

import (
	"net/http"
	"strconv"

	"token-platform/domain/dto"
	"token-platform/domain/model"
	"token-platform/interfaces/middleware"
	"token-platform/usecase"

	"github.com/gin-gonic/gin"
)

type ILedgerHandler interface {
	GetAccount(c *gin.Context)
	ListTransactions(c *gin.Context)
	CreateTransaction(c *gin.Context)
	AdminCreateTransaction(c *gin.Context)
	Reconcile(c *gin.Context)
}

type LedgerHandler struct {
	ledger usecase.ILedgerUsecase
}

func NewLedgerHandler(ledger usecase.ILedgerUsecase) ILedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// GetAccount handles GET /api/account
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	account, err := h.ledger.GetAccount(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, account)
}

// ListTransactions handles GET /api/transactions?limit=
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.ledger.ListEntries(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"entries": entries})
}

// CreateTransaction handles POST /api/transactions
func (h *LedgerHandler) CreateTransaction(c *gin.Context) {
	var req dto.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	balance, err := h.ledger.UserEntry(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusCreated, dto.EntryResponse{NewBalance: balance})
}

// AdminCreateTransaction handles POST /admin/transactions
func (h *LedgerHandler) AdminCreateTransaction(c *gin.Context) {
	var req dto.AdminEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	balance, err := h.ledger.ApplyEntry(c.Request.Context(), model.LedgerEntry{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Kind:        model.EntryKind(req.Kind),
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusCreated, dto.EntryResponse{NewBalance: balance})
}

// Reconcile handles GET /admin/accounts/:id/reconcile
func (h *LedgerHandler) Reconcile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rec, err := h.ledger.Reconcile(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, rec)
}
