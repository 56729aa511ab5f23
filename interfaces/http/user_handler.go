package http

import (
	"net/http"

	"token-platform/domain/dto"
	"token-platform/domain/model"
	"token-platform/usecase"

	"github.com/gin-gonic/gin"
)

type IUserHandler interface {
	Login(c *gin.Context)
	Register(c *gin.Context)
}

type UserHandler struct {
	userUsecase usecase.IUserUsecase
}

func NewUserHandler(userUsecase usecase.IUserUsecase) IUserHandler {
	return &UserHandler{userUsecase: userUsecase}
}

func (userHandler *UserHandler) Login(c *gin.Context) {
	var req model.ReqLogin
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	token, err := userHandler.userUsecase.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, dto.ResLogin{Token: token})
}

func (userHandler *UserHandler) Register(c *gin.Context) {
	var req model.ReqRegister
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, account, err := userHandler.userUsecase.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusCreated, gin.H{"user": user, "account": account})
}
