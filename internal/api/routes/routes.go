// server/internal/api/routes/routes.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/config"
	"motohub-api-server/internal/api/handlers"
	"motohub-api-server/internal/api/middleware"
	"motohub-api-server/internal/models"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth           *handlers.AuthHandler
	Users          *handlers.UserHandler
	Inventory      *handlers.InventoryHandler
	Requests       *handlers.RequestHandler
	Promotions     *handlers.PromotionHandler
	Cars           *handlers.CarHandler
	ServiceHistory *handlers.ServiceHistoryHandler
	Logs           *handlers.LogHandler
	Dashboard      *handlers.DashboardHandler
	WebSocket      *handlers.WebSocketHandler
}

// SetupRouter wires middleware and routes under /api/v1.
func SetupRouter(cfg config.Config, logger *log.Logger, tokens middleware.TokenParser, users middleware.UserLookup, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	admin := middleware.Authorize(models.RoleAdmin)
	staff := middleware.Authorize(models.RoleAdmin, models.RoleMechanic)

	apiV1 := router.Group("/api/v1")
	{
		// The websocket handshake carries its token in the query string.
		apiV1.GET("/ws", h.WebSocket.ServeWs)

		// === Public ===
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
		}
		apiV1.GET("/public/promotions", h.Promotions.ListCurrentPromotions)

		// === Protected ===
		protected := apiV1.Group("/")
		protected.Use(middleware.Authenticate(tokens, users))

		me := protected.Group("/me")
		{
			me.GET("", h.Users.GetMe)
			me.PUT("", h.Users.UpdateMe)
			me.POST("/password", h.Users.ChangePassword)
		}

		adminGroup := protected.Group("/admin", admin)
		{
			adminGroup.GET("/users", h.Users.ListUsers)
			adminGroup.POST("/users", h.Users.CreateUser)
			adminGroup.GET("/users/:id", h.Users.GetUser)
			adminGroup.PUT("/users/:id/role", h.Users.UpdateRole)
			adminGroup.DELETE("/users/:id", h.Users.DeleteUser)

			adminGroup.GET("/logs", h.Logs.ListLogs)
			adminGroup.GET("/dashboard", h.Dashboard.GetDashboard)
		}

		inventory := protected.Group("/inventory")
		{
			inventory.GET("", staff, h.Inventory.ListParts)
			inventory.GET("/low-stock", staff, h.Inventory.LowStock)
			inventory.GET("/:id", staff, h.Inventory.GetPart)
			inventory.POST("", admin, h.Inventory.CreatePart)
			inventory.PUT("/:id", admin, h.Inventory.UpdatePart)
			inventory.DELETE("/:id", admin, h.Inventory.DeletePart)
			inventory.POST("/:id/restock", admin, h.Inventory.Restock)
			inventory.POST("/:id/image", admin, h.Inventory.UploadImage)
		}

		requests := protected.Group("/requests", staff)
		{
			requests.POST("", h.Requests.CreateRequest)
			requests.GET("", h.Requests.ListRequests)
			requests.GET("/:id", h.Requests.GetRequest)
			requests.DELETE("/:id", h.Requests.DeleteRequest)
			requests.POST("/:id/approve", admin, h.Requests.ApproveRequest)
			requests.POST("/:id/reject", admin, h.Requests.RejectRequest)
		}

		promotions := protected.Group("/promotions")
		{
			promotions.GET("", h.Promotions.ListPromotions)
			promotions.GET("/:id", h.Promotions.GetPromotion)
			promotions.POST("", admin, h.Promotions.CreatePromotion)
			promotions.PUT("/:id", admin, h.Promotions.UpdatePromotion)
			promotions.DELETE("/:id", admin, h.Promotions.DeletePromotion)
			promotions.POST("/:id/toggle", admin, h.Promotions.TogglePromotion)
		}

		// Customers reach their own garage; staff reach everyone's.
		garage := protected.Group("/users/:uid", middleware.OwnerOrRoles("uid", models.RoleAdmin, models.RoleMechanic))
		{
			garage.GET("/cars", h.Cars.ListCars)
			garage.POST("/cars", h.Cars.CreateCar)
			garage.GET("/cars/:carId", h.Cars.GetCar)
			garage.PUT("/cars/:carId", h.Cars.UpdateCar)
			garage.DELETE("/cars/:carId", h.Cars.DeleteCar)

			garage.GET("/service-history", h.ServiceHistory.ListReports)
			garage.GET("/service-history/:reportId", h.ServiceHistory.GetReport)
			garage.POST("/service-history", staff, h.ServiceHistory.CreateReport)
		}
	}

	return router
}
