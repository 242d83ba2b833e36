package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sublethub/sublethub-backend/internal/handler"
	"github.com/sublethub/sublethub-backend/internal/middleware"
	"github.com/sublethub/sublethub-backend/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	listingHandler *handler.ListingHandler,
	searchHandler *handler.SearchHandler,
	boostHandler *handler.BoostHandler,
	messageHandler *handler.MessageHandler,
	jwtManager *jwt.Manager,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Gateway webhooks carry their own signature; never behind JWT
	router.POST("/webhooks/stripe", boostHandler.Webhook)

	api := router.Group("/api/v1")
	authed := middleware.JWTAuth(jwtManager)

	listings := api.Group("/listings")
	{
		// Public reads. Detail resolves the viewer when a token is
		// present so the saved flag is accurate.
		listings.GET("", searchHandler.Search)
		listings.GET("/featured", searchHandler.Featured)
		listings.GET("/:id", middleware.OptionalAuth(jwtManager), listingHandler.Get)

		listings.GET("/mine", authed, listingHandler.MyListings)
		listings.GET("/saved", authed, listingHandler.SavedListings)

		listings.POST("", authed, listingHandler.Create)
		listings.PUT("/:id", authed, listingHandler.Update)
		listings.DELETE("/:id", authed, listingHandler.Delete)
		listings.POST("/:id/bump", authed, listingHandler.Bump)
		listings.POST("/:id/save", authed, listingHandler.ToggleSave)

		listings.POST("/:id/images", authed, listingHandler.AddImages)
		listings.PUT("/:id/images/:imageID/primary", authed, listingHandler.SetPrimaryImage)
		listings.DELETE("/:id/images/:imageID", authed, listingHandler.RemoveImage)

		listings.POST("/:id/boost", authed, boostHandler.RequestBoost)

		listings.POST("/:id/messages", authed, messageHandler.Send)
		listings.POST("/:id/inquiries", authed, messageHandler.SendInquiry)
	}

	// Buyer lands here after gateway checkout
	api.GET("/boost/success", authed, boostHandler.ConfirmSuccess)

	messages := api.Group("/messages", authed)
	{
		messages.GET("/inbox", messageHandler.Inbox)
		messages.GET("/sent", messageHandler.Sent)
		messages.GET("/unread-count", messageHandler.UnreadCount)
		messages.GET("/:id/thread", messageHandler.Thread)
	}

	api.GET("/inquiries", authed, messageHandler.Inquiries)
	api.GET("/inquiries/:id", authed, messageHandler.Inquiry)
}
