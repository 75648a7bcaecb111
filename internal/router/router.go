package router

import (
	"time"

	"github.com/afterlife-dev/afterlife/internal/handlers"
	"github.com/afterlife-dev/afterlife/internal/middleware"
	"github.com/afterlife-dev/afterlife/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.NotificationSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		memorials := api.Group("/memorials", middleware.AuthMiddleware())
		{
			memorials.POST("", handlers.CreateMemorial)
			memorials.GET("/:memorial_id", handlers.GetMemorial)
		}

		events := api.Group("/events", middleware.AuthMiddleware())
		{
			events.POST("", handlers.CreateEvent)
			events.GET("", handlers.ListEvents)
			events.GET("/:event_id", handlers.GetEvent)
			events.PUT("/:event_id", handlers.UpdateEvent)
			events.DELETE("/:event_id", handlers.DeleteEvent)

			// RSVP
			events.PUT("/:event_id/rsvp", handlers.UpdateRSVP)
			events.GET("/:event_id/rsvp", handlers.GetMyRSVP)

			// Participants
			events.GET("/:event_id/participants", handlers.ListParticipants)
			events.DELETE("/:event_id/participants", handlers.RemoveParticipant)

			// Invitations
			events.POST("/:event_id/invitations", handlers.InviteParticipants)
			events.POST("/:event_id/invitations/import", handlers.ImportInvitations)

			// Privileged procedures
			events.POST("/:event_id/status", handlers.ChangeEventStatus)
			events.POST("/:event_id/role", handlers.ManageRole)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.GET("/unread-count", handlers.UnreadNotificationCount)
			notifications.POST("/:notification_id/read", handlers.MarkNotificationRead)
		}
	}

	return r
}
