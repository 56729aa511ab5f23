package server

import (
	"time"

	"token-platform/domain/repository"
	"token-platform/infrastructure/metrics"
	httpHandler "token-platform/interfaces/http"
	"token-platform/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	User     httpHandler.IUserHandler
	Ledger   httpHandler.ILedgerHandler
	Video    httpHandler.IVideoHandler
	Featured httpHandler.IFeaturedHandler
	Referral httpHandler.IReferralHandler
	Health   httpHandler.IHealthHandler
	// Stream serves the featured slot SSE feed.
	Stream gin.HandlerFunc
}

type Security struct {
	UserRepository repository.IUser
	SecretKey      string
	AdminKey       string
	AllowOrigins   []string
}

func InitiateRouter(h Handlers, sec Security) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(metrics.Middleware())

	origins := sec.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:4200"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Admin-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", h.Health.Healthz)
	router.GET("/metrics", metrics.Handler())

	router.POST("/login", h.User.Login)
	router.POST("/register", h.User.Register)
	// sign up through a referral link; the referrer is fixed here
	router.POST("/api/referral/register", h.User.Register)

	router.GET("/api/videos/featured", h.Featured.Featured)
	router.GET("/api/videos/public", h.Video.ListPublic)
	if h.Stream != nil {
		router.GET("/api/featured/stream", h.Stream)
	}

	api := router.Group("api")
	api.Use(middleware.Auth(sec.UserRepository, sec.SecretKey))
	{
		api.GET("/account", h.Ledger.GetAccount)
		api.GET("/transactions", h.Ledger.ListTransactions)
		api.POST("/transactions", h.Ledger.CreateTransaction)

		api.GET("/videos", h.Video.ListMine)
		api.POST("/videos", h.Video.Generate)
		api.POST("/videos/:videoId/publish", h.Featured.PlaceBid)
		api.DELETE("/videos/:videoId/publish", h.Featured.Unpublish)

		api.GET("/referrals", h.Referral.ListReferred)
		api.GET("/referral/payout", h.Referral.PayoutHistory)
		api.GET("/referral/leaderboard", h.Referral.Leaderboard)
	}

	admin := router.Group("admin")
	admin.Use(middleware.AdminKey(sec.AdminKey))
	{
		admin.POST("/referral/payout", h.Referral.RunPayout)
		admin.POST("/transactions", h.Ledger.AdminCreateTransaction)
		admin.GET("/accounts/:id/reconcile", h.Ledger.Reconcile)
		admin.PATCH("/videos/:videoId/status", h.Video.MarkStatus)
	}

	return router
}
