package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/byndl-mvp/PoC-sub000/controllers"
	"github.com/byndl-mvp/PoC-sub000/middlewares"
	"github.com/byndl-mvp/PoC-sub000/models"
)

// SetupRouter wires all routes. The limiter must be installed here,
// before any route is registered, or gin leaves it out of the captured
// handler chains.
func SetupRouter(db *gorm.DB, limiter *middlewares.RateLimiter) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(limiter.RateLimit())

	userCtrl := controllers.NewUserController(db)
	notificationCtrl := controllers.NewNotificationController(db)
	conversationCtrl := controllers.NewConversationController(db)
	adminCtrl := controllers.NewAdminController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Login/register get the strict limiter.
	public := r.Group("/api")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	api := r.Group("/api")
	{
		// Notification feeds, one per user role. Bare arrays; the
		// pollers replace local state with the body wholesale.
		api.GET("/bauherr/:user_id/notifications", notificationCtrl.ListFor(models.RoleBauherr))
		api.GET("/handwerker/:user_id/notifications", notificationCtrl.ListFor(models.RoleHandwerker))

		api.POST("/notifications/:notif_id/mark-read", notificationCtrl.MarkRead)
		api.POST("/notifications/mark-all-read", notificationCtrl.MarkAllRead)
		api.DELETE("/notifications/:notif_id", notificationCtrl.DeleteNotification)

		// GET /conversations/:id/:user_id is the per-user list; :id
		// carries the user type there (one wildcard name per segment).
		api.GET("/conversations/:id/:user_id", conversationCtrl.ListConversations)
		api.GET("/conversations/:id/messages", conversationCtrl.ListMessages)
		api.POST("/conversations/:id/mark-read", conversationCtrl.MarkRead)
		api.POST("/conversations/:id/messages", conversationCtrl.SendMessage)

		// Internal surface, admin key gated.
		api.POST("/notifications", middlewares.RequireAdmin(), notificationCtrl.CreateNotification)
		api.POST("/conversations", middlewares.RequireAdmin(), conversationCtrl.CreateConversation)
		api.GET("/admin/stats", middlewares.RequireAdmin(), adminCtrl.GetPlatformStats)
	}

	auth := r.Group("/api")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/profile", userCtrl.GetProfile)
		auth.POST("/logout", userCtrl.Logout)
	}

	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/:role", controllers.EventStreamHandler)
	}

	return r
}
