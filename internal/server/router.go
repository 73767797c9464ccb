package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gigflow/internal/metrics"
	handler "gigflow/services/bidding/handler"
	"gigflow/services/bidding/helpers"
)

// AuthService is what the router needs from accounts: the handlers' operations
// plus token authentication for the middleware.
type AuthService interface {
	handler.AuthServiceInterface
	Authenticator
}

// Dependencies are the services and settings the HTTP surface is built from.
type Dependencies struct {
	Auth       AuthService
	Bidding    handler.BiddingServiceInterface
	Hiring     handler.HiringServiceInterface
	LiveSocket gin.HandlerFunc
	Cookie     helpers.CookieOptions
	CORSOrigin string
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestIDMiddleware)     // correlate logs per request
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(CORSMiddleware(deps.CORSOrigin))
	router.Use(metrics.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/metrics", metrics.Handler())

	requireAuth := AuthMiddleware(deps.Auth, deps.Cookie.Name)

	if deps.LiveSocket != nil {
		router.GET("/ws", deps.LiveSocket)
	}

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookie)
	biddingHandler := handler.NewBiddingHandler(deps.Bidding, deps.Hiring)

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.RegisterHandler)
		authRoutes.POST("/login", authHandler.LoginHandler)
		authRoutes.POST("/logout", authHandler.LogoutHandler)
		authRoutes.GET("/me", requireAuth, authHandler.MeHandler)
	}

	gigs := api.Group("/gigs")
	{
		gigs.GET("", biddingHandler.ListGigsHandler)
		gigs.POST("", requireAuth, biddingHandler.CreateGigHandler)
	}

	bids := api.Group("/bids", requireAuth)
	{
		bids.POST("", biddingHandler.PlaceBidHandler)
		// both routes share the :id wildcard; it names a gig on the first and a bid on the second
		bids.GET("/:id", biddingHandler.GetBidsByGigHandler)
		bids.PATCH("/:id/hire", biddingHandler.HireHandler)
	}

	return router
}
