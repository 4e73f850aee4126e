// Package routes wires the HTTP surface onto the controllers.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/casportal/casportal/internal/app/controllers"
	"github.com/casportal/casportal/internal/middleware"
	"github.com/casportal/casportal/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	profileController *controllers.ProfileController,
	groupController *controllers.GroupController,
	reflectionController *controllers.ReflectionController,
	commentController *controllers.CommentController,
	notificationController *controllers.NotificationController,
	tagController *controllers.TagController,
	reportController *controllers.ReportController,
	chatController *controllers.ChatController,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/foreign-login", authController.ForeignLogin)
		auth.POST("/confirm-email", authController.ConfirmEmail)
		auth.POST("/resend-confirmation", authController.ResendConfirmation)
		auth.POST("/recover", authController.RequestRecovery)
		auth.POST("/reset-password", authController.ResetPassword)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		profiles := authenticated.Group("/profiles")
		{
			profiles.GET("/me", profileController.Me)
			profiles.GET("/:id", profileController.GetProfile)
			profiles.POST("/query", profileController.QueryProfiles)
			profiles.PUT("/:id", profileController.UpdateProfile)
			profiles.DELETE("/:id", profileController.DeleteProfile)
			profiles.POST("/:id/avatar", profileController.UpdateAvatar)
			profiles.DELETE("/:id/avatar", profileController.DeleteAvatar)

			profilesAdmin := profiles.Group("")
			profilesAdmin.Use(authMiddleware.RoleRequired())
			{
				profilesAdmin.PUT("/:id/roles", profileController.UpdateRoles)
			}
		}

		groups := authenticated.Group("/groups")
		{
			groups.POST("", groupController.CreateGroup)
			groups.GET("/:id", groupController.GetGroup)
			groups.POST("/query", groupController.QueryGroups)
			groups.PUT("/:id", groupController.UpdateGroup)
			groups.DELETE("/:id", groupController.DeleteGroup)
			groups.POST("/:id/avatar", groupController.UpdateAvatar)
			groups.DELETE("/:id/avatar", groupController.DeleteAvatar)

			groups.POST("/:id/join-requests", groupController.RequestJoin)
			groups.GET("/:id/join-requests", groupController.ListJoinRequests)
			groups.POST("/:id/join-requests/:profileId/accept", groupController.AcceptJoinRequest)
			groups.POST("/:id/join-requests/:profileId/deny", groupController.DenyJoinRequest)

			groups.POST("/leave", groupController.LeaveGroup)
			groups.DELETE("/:id/members/:profileId", groupController.RemoveMember)
		}

		reflections := authenticated.Group("/reflections")
		{
			reflections.POST("", reflectionController.CreateReflection)
			reflections.GET("/:id", reflectionController.GetReflection)
			reflections.GET("/slug/:slug", reflectionController.GetReflectionBySlug)
			reflections.POST("/query", reflectionController.QueryReflections)
			reflections.PUT("/:id", reflectionController.UpdateReflection)
			reflections.DELETE("/:id", reflectionController.DeleteReflection)

			reflections.POST("/favourites/query", reflectionController.QueryFavourites)
			reflections.POST("/:id/favourite", reflectionController.Favourite)
			reflections.DELETE("/:id/favourite", reflectionController.Unfavourite)

			reflections.POST("/:id/attachments", reflectionController.AddAttachment)
			reflections.POST("/:id/report", reflectionController.ReportReflection)
		}

		attachments := authenticated.Group("/attachments")
		{
			attachments.GET("/:attachmentId", reflectionController.DownloadAttachment)
			attachments.DELETE("/:attachmentId", reflectionController.DeleteAttachment)
		}

		comments := authenticated.Group("/comments")
		{
			comments.POST("", commentController.CreateComment)
			comments.POST("/query", commentController.QueryComments)
			comments.PUT("/:id", commentController.UpdateComment)
			comments.DELETE("/:id", commentController.DeleteComment)
			comments.POST("/:id/report", commentController.ReportComment)
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("/:id", notificationController.GetNotification)
			notifications.POST("/received/query", notificationController.QueryReceived)
			notifications.POST("/posted/query", notificationController.QueryPosted)
			notifications.GET("/unread-count", notificationController.UnreadCount)
			notifications.PUT("/:id/read", notificationController.MarkRead)
			notifications.PUT("/:id", notificationController.UpdateNotification)
			notifications.DELETE("/:id", notificationController.DeleteNotification)

			notificationsRole := notifications.Group("")
			notificationsRole.Use(authMiddleware.RoleRequired())
			{
				notificationsRole.POST("", notificationController.Send)
			}
		}

		tags := authenticated.Group("/tags")
		{
			tags.POST("/query", tagController.QueryTags)
			tags.DELETE("/:id", tagController.DeleteTag)
		}

		reports := authenticated.Group("/reports")
		reports.Use(authMiddleware.RoleRequired())
		{
			reports.POST("/reflections/query", reportController.ListReflectionReports)
			reports.POST("/comments/query", reportController.ListCommentReports)
			reports.DELETE("/reflections/:id", reportController.DismissReflectionReport)
			reports.DELETE("/comments/:id", reportController.DismissCommentReport)
		}

		messages := authenticated.Group("/messages")
		{
			messages.POST("/:profileId/query", chatController.Conversation)
		}

		// the relay authenticates through the token query parameter
		authenticated.GET("/ws/messages", wsHandler.HandleConnection)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
