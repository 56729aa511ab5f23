package http

import (
	"net/http"

	"token-platform/domain/dto"
	"token-platform/interfaces/middleware"
	"token-platform/usecase"

	"github.com/gin-gonic/gin"
)

type IFeaturedHandler interface {
	Featured(c *gin.Context)
	PlaceBid(c *gin.Context)
	Unpublish(c *gin.Context)
}

type FeaturedHandler struct {
	featured usecase.IFeaturedUsecase
}

func NewFeaturedHandler(featured usecase.IFeaturedUsecase) IFeaturedHandler {
	return &FeaturedHandler{featured: featured}
}

// Featured handles GET /api/videos/featured
func (h *FeaturedHandler) Featured(c *gin.Context) {
	state, err := h.featured.State(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, state)
}

// PlaceBid handles POST /api/videos/:videoId/publish
func (h *FeaturedHandler) PlaceBid(c *gin.Context) {
	id, ok := pathID(c, "videoId")
	if !ok {
		return
	}
	var req dto.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.featured.PlaceBid(c.Request.Context(), id, middleware.UserID(c), req.BidAmount)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, res)
}

// Unpublish handles DELETE /api/videos/:videoId/publish
func (h *FeaturedHandler) Unpublish(c *gin.Context) {
	id, ok := pathID(c, "videoId")
	if !ok {
		return
	}
	video, err := h.featured.Unpublish(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, video)
}
