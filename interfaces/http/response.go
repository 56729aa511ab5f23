package http

import (
	"errors"
	"net/http"
	"strconv"

	"token-platform/domain/dto"
	"token-platform/domain/model"
	"token-platform/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

const (
	ErrorUnmarshal = "Error while unmarshal"
	MessageSuccess = "Success"
)

func writeOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, dto.Res{ResponseCode: strconv.Itoa(status), ResponseMessage: MessageSuccess, Data: data})
}

// writeError maps domain errors onto status codes. Data always carries a
// machine readable "code".
func writeError(c *gin.Context, err error) {
	status, data := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithRequest(c.Request.Context()).WithField("error", err).Error("request failed")
		message = "Internal server error"
	}
	c.JSON(status, dto.Res{ResponseCode: strconv.Itoa(status), ResponseMessage: message, Data: data})
}

func classify(err error) (int, gin.H) {
	var funds *model.InsufficientFundsError
	var tooLow *model.BidTooLowError
	switch {
	case errors.As(err, &funds):
		return http.StatusBadRequest, gin.H{"code": "insufficient_funds", "balance": funds.Balance, "required": funds.Required}
	case errors.Is(err, model.ErrInsufficientFunds):
		return http.StatusBadRequest, gin.H{"code": "insufficient_funds"}
	case errors.As(err, &tooLow):
		return http.StatusBadRequest, gin.H{"code": "bid_too_low", "min_bid": tooLow.MinBid}
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, gin.H{"code": "validation_error"}
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, gin.H{"code": "invalid_credentials"}
	case errors.Is(err, model.ErrNotOwner):
		return http.StatusForbidden, gin.H{"code": "not_owner"}
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, gin.H{"code": "not_found"}
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict, gin.H{"code": "conflict"}
	}
	return http.StatusInternalServerError, gin.H{"code": "internal_error"}
}

func writeBindError(c *gin.Context, err error) {
	logger.WithRequest(c.Request.Context()).WithField("error", err).Warn(ErrorUnmarshal)
	c.JSON(http.StatusBadRequest, dto.Res{
		ResponseCode:    strconv.Itoa(http.StatusBadRequest),
		ResponseMessage: ErrorUnmarshal + ": " + err.Error(),
		Data:            gin.H{"code": "validation_error"},
	})
}

// pathID parses a positive int64 path parameter or answers 400.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, model.NewValidationError("%s must be a positive integer", name))
		return 0, false
	}
	return id, true
}
