package routes

import (
	"log"
	"os"

	controller "tribeconnect/controllers"
	"tribeconnect/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize logger
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/forgot-password", controller.ForgotPassword)
	auth.Post("/verify-reset-otp", controller.VerifyResetPasswordOTP)
	auth.Post("/reset-password", controller.ResetPassword)
	auth.Post("/refresh", controller.RefreshToken)

	// Google OAuth routes
	auth.Get("/google", controller.GoogleOAuth)
	auth.Get("/google/callback", controller.GoogleOAuthCallback)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Post("/change-password", controller.ChangePassword)
	protectedAuth.Get("/me", controller.GetCurrentUser)

	// Log initialization
	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize controllers with their respective loggers
	circleController := controller.NewCircleController(db, log.New(os.Stdout, "CIRCLE: ", log.LstdFlags))
	eventController := controller.NewEventController(db, log.New(os.Stdout, "EVENT: ", log.LstdFlags))
	notificationController := controller.NewNotificationController(db, log.New(os.Stdout, "NOTIFY: ", log.LstdFlags))
	familyController := controller.NewFamilyController(db, log.New(os.Stdout, "FAMILY: ", log.LstdFlags))
	profileController := controller.NewProfileController(db, log.New(os.Stdout, "PROFILE: ", log.LstdFlags))
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))
	resourceController := controller.NewResourceController(db, log.New(os.Stdout, "RESOURCE: ", log.LstdFlags))
	mapController := controller.NewMapController(db, log.New(os.Stdout, "MAP: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.Get("/stats", dashboardController.GetDashboardStats)

	// Profile routes
	profile := api.Group("/profile")
	profile.Get("/", profileController.GetProfile)
	profile.Put("/", profileController.UpdateProfile)
	profile.Post("/photo", profileController.UploadProfilePhoto)

	// Circle routes; invite creation is rate limited
	circle := api.Group("/circles")
	circle.Post("/", middleware.InviteRateLimiter(), circleController.CreateCircle)
	circle.Get("/", circleController.GetCircles)
	circle.Get("/:id", circleController.GetCircle)
	circle.Delete("/:id", circleController.DeleteCircle)
	circle.Delete("/:id/members/:userId", circleController.RemoveMember)
	circle.Put("/:id/members/:userId/role", circleController.UpdateMemberRole)
	circle.Post("/:id/invites", middleware.InviteRateLimiter(), circleController.CreateInvite)
	circle.Delete("/:id/invites/:inviteId", circleController.RevokeInvite)
	api.Post("/circles/join", circleController.JoinCircle)

	// Family roster routes, nested under a circle
	family := circle.Group("/:circleId/family")
	family.Post("/", familyController.AddFamilyMember)
	family.Get("/", familyController.GetFamilyMembers)
	family.Put("/:memberId", familyController.UpdateFamilyMember)
	family.Delete("/:memberId", familyController.DeleteFamilyMember)

	// Event and calendar routes
	event := api.Group("/events")
	event.Post("/", eventController.CreateEvent)
	event.Get("/", eventController.GetEvents)
	event.Get("/:id", eventController.GetEvent)
	event.Put("/:id", eventController.UpdateEvent)
	event.Delete("/:id", eventController.DeleteEvent)
	api.Get("/calendar", eventController.GetCalendar)

	// Resource library routes
	resource := api.Group("/resources")
	resource.Post("/", resourceController.CreateResource)
	resource.Get("/", resourceController.GetResources)
	resource.Delete("/:id", resourceController.DeleteResource)

	// Community map routes
	mapGroup := api.Group("/map-points")
	mapGroup.Post("/", mapController.CreateMapPoint)
	mapGroup.Get("/", mapController.GetMapPoints)
	mapGroup.Delete("/:id", mapController.DeleteMapPoint)

	// Notification routes
	notification := api.Group("/notifications")
	notification.Get("/", notificationController.GetNotifications)
	notification.Post("/", notificationController.CreateNotification)
	notification.Put("/:id/read", notificationController.MarkRead)
	notification.Put("/read-all", notificationController.MarkAllRead)

	// WebSocket route for live notifications; authenticates via its
	// first message, so it must stay off the Protected /api/v1 prefix
	// (the group middleware would 401 cookie-less browsers before the
	// upgrade)
	app.Get("/ws/notifications", websocket.New(func(c *websocket.Conn) {
		controller.HandleNotificationsWS(c)
	}))

	// Standalone invite mail relay, mirrors the hosted function contract
	app.Post("/functions/send-circle-invite", middleware.Protected(), circleController.SendInviteEmail)

	// Log initialization
	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
