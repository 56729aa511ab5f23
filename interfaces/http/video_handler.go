package http

import (
	"net/http"

	"token-platform/domain/dto"
	"token-platform/interfaces/middleware"
	"token-platform/usecase"

	"github.com/gin-gonic/gin"
)

type IVideoHandler interface {
	ListMine(c *gin.Context)
	Generate(c *gin.Context)
	ListPublic(c *gin.Context)
	MarkStatus(c *gin.Context)
}

type VideoHandler struct {
	videos usecase.IVideoUsecase
}

func NewVideoHandler(videos usecase.IVideoUsecase) IVideoHandler {
	return &VideoHandler{videos: videos}
}

// ListMine handles GET /api/videos
func (h *VideoHandler) ListMine(c *gin.Context) {
	videos, err := h.videos.ListMine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"videos": videos})
}

// Generate handles POST /api/videos
func (h *VideoHandler) Generate(c *gin.Context) {
	var req dto.GenerateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	video, balance, err := h.videos.Generate(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusCreated, gin.H{"video": video, "new_balance": balance})
}

// ListPublic handles GET /api/videos/public
func (h *VideoHandler) ListPublic(c *gin.Context) {
	videos, err := h.videos.ListPublic(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"videos": videos})
}

// MarkStatus handles PATCH /admin/videos/:videoId/status
func (h *VideoHandler) MarkStatus(c *gin.Context) {
	id, ok := pathID(c, "videoId")
	if !ok {
		return
	}
	var req dto.VideoStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	video, err := h.videos.MarkStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, video)
}
