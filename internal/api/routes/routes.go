// Package routes handles the setup and configuration of API routes
package routes

import (
	_ "floorkeeper/docs" // Import swagger docs
	"floorkeeper/internal/api/handlers"
	"floorkeeper/internal/api/middleware"
	"floorkeeper/internal/auth"
	"floorkeeper/internal/booking"
	"floorkeeper/internal/cache"
	"floorkeeper/internal/config"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies are the collaborators the routes are wired to
type Dependencies struct {
	Config  *config.Config
	Repos   booking.Repositories
	Users   repository.UserRepository
	Auth    *auth.Service
	Booking *booking.Service
	// Cache serves reservation and block listings; nil disables it
	Cache *cache.ListCache
}

// SetupRoutes configures all API routes and their handlers
func SetupRoutes(deps Dependencies) *gin.Engine {
	r := gin.Default()

	// Routes without rate limiting
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.Use(middleware.NewRateLimiter(deps.Config.RateLimit).Middleware())

	authMiddleware := middleware.NewAuthMiddleware(deps.Auth, deps.Users)
	authenticated := authMiddleware.AuthRequired()
	admin := authMiddleware.AdminRequired()
	bookingStaff := authMiddleware.RoleRequired(models.RoleAdmin, models.RoleWaiter, models.RoleCashier)
	floorStaff := authMiddleware.RoleRequired(models.RoleAdmin, models.RoleWaiter)

	healthHandler := handlers.NewHealthHandler(deps.Repos.Tx, deps.Config.Engine.StoreDriver)
	authHandler := handlers.NewAuthHandler(deps.Auth)
	floorHandler := handlers.NewFloorHandler(deps.Repos.Floors)
	zoneHandler := handlers.NewZoneHandler(deps.Repos.Zones)
	tableHandler := handlers.NewTableHandler(deps.Repos.Tables, deps.Booking)
	reservationHandler := handlers.NewReservationHandler(deps.Booking)
	blockHandler := handlers.NewBlockHandler(deps.Booking)

	listCache := middleware.ResponseCache(deps.Cache)
	invalidate := middleware.InvalidateOnWrite(deps.Cache)

	v1 := r.Group("/api/v1")
	{
		// Health check (no authentication required)
		v1.GET("/health", healthHandler.Health)

		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", authenticated, authHandler.Me)
			authRoutes.POST("/users", authenticated, admin, authHandler.CreateUser)
		}

		floors := v1.Group("/floors")
		floors.Use(authenticated)
		{
			floors.GET("", floorHandler.ListFloors)
			floors.GET("/:id", floorHandler.GetFloor)
			floors.POST("", admin, floorHandler.CreateFloor)
			floors.PUT("/:id", admin, floorHandler.UpdateFloor)
			floors.DELETE("/:id", admin, floorHandler.DeleteFloor)
		}

		zones := v1.Group("/zones")
		zones.Use(authenticated)
		{
			zones.GET("", zoneHandler.ListZones)
			zones.GET("/:id", zoneHandler.GetZone)
			zones.POST("", admin, zoneHandler.CreateZone)
			zones.PUT("/:id", admin, zoneHandler.UpdateZone)
			zones.DELETE("/:id", admin, zoneHandler.DeleteZone)
		}

		// Table numbers appear in listing labels, so table edits invalidate the list cache
		tables := v1.Group("/tables")
		tables.Use(authenticated)
		{
			tables.GET("", tableHandler.ListTables)
			tables.GET("/:id", tableHandler.GetTable)
			tables.POST("", admin, tableHandler.CreateTable)
			tables.PUT("/:id", admin, invalidate, tableHandler.UpdateTable)
			tables.PATCH("/:id/estado", floorStaff, tableHandler.UpdateTableStatus)
			tables.DELETE("/:id", admin, tableHandler.DeleteTable)
		}

		reservations := v1.Group("/reservations")
		reservations.Use(authenticated, invalidate)
		{
			reservations.GET("", listCache, reservationHandler.ListReservations)
			reservations.GET("/:id", reservationHandler.GetReservation)
			reservations.GET("/:id/history", reservationHandler.ReservationHistory)
			reservations.POST("", bookingStaff, reservationHandler.CreateReservation)
			reservations.PUT("/:id", bookingStaff, reservationHandler.UpdateReservation)
			reservations.POST("/:id/confirm", bookingStaff, reservationHandler.ConfirmReservation)
			reservations.POST("/:id/cancel", bookingStaff, reservationHandler.CancelReservation)
			reservations.POST("/:id/complete", bookingStaff, reservationHandler.CompleteReservation)
			reservations.POST("/:id/no-show", bookingStaff, reservationHandler.NoShowReservation)
		}

		blocks := v1.Group("/blocks")
		blocks.Use(authenticated, invalidate)
		{
			blocks.GET("", listCache, blockHandler.ListBlocks)
			blocks.GET("/:id", blockHandler.GetBlock)
			blocks.GET("/:id/history", blockHandler.BlockHistory)
			blocks.POST("", admin, blockHandler.CreateBlock)
			blocks.PUT("/:id", admin, blockHandler.UpdateBlock)
			blocks.POST("/:id/activate", admin, blockHandler.ActivateBlock)
			blocks.POST("/:id/complete", admin, blockHandler.CompleteBlock)
			blocks.DELETE("/:id", admin, blockHandler.CancelBlock)
		}
	}

	return r
}
