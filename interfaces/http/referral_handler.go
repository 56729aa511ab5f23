package http

import (
	"net/http"
	"time"

	"token-platform/domain/model"
	"token-platform/interfaces/middleware"
	"token-platform/usecase"

	"github.com/gin-gonic/gin"
)

type IReferralHandler interface {
	ListReferred(c *gin.Context)
	PayoutHistory(c *gin.Context)
	Leaderboard(c *gin.Context)
	RunPayout(c *gin.Context)
}

type ReferralHandler struct {
	referrals usecase.IReferralUsecase
	now       func() time.Time
}

func NewReferralHandler(referrals usecase.IReferralUsecase, now func() time.Time) IReferralHandler {
	return &ReferralHandler{referrals: referrals, now: now}
}

// ListReferred handles GET /api/referrals
func (h *ReferralHandler) ListReferred(c *gin.Context) {
	edges, err := h.referrals.ListReferred(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"referrals": edges})
}

// PayoutHistory handles GET /api/referral/payout
func (h *ReferralHandler) PayoutHistory(c *gin.Context) {
	history, err := h.referrals.PayoutHistory(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, history)
}

// Leaderboard handles GET /api/referral/leaderboard
func (h *ReferralHandler) Leaderboard(c *gin.Context) {
	board, err := h.referrals.Leaderboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, board)
}

// RunPayout handles POST /admin/referral/payout?as_of=RFC3339
func (h *ReferralHandler) RunPayout(c *gin.Context) {
	asOf := h.now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(c, model.NewValidationError("as_of must be RFC3339"))
			return
		}
		asOf = parsed
	}
	result, err := h.referrals.RunWeeklyPayout(c.Request.Context(), asOf)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, result)
}
