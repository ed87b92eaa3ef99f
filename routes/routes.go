package routes

import (
	"time"

	"ctrlroom/handlers"
	"ctrlroom/metrics"
	"ctrlroom/middleware"
	"ctrlroom/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes registers account endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/signup", hb.Users.Signup)
		authGroup.POST("/login", hb.Users.Login)
	}

	me := r.Group("/api/users/me")
	{
		me.Use(middleware.AuthMiddleware(hb.Verifier))
		me.GET("", hb.Users.Me)
		me.PUT("/device", hb.Users.RegisterDevice)
	}
}

// RegisterEngineerRoutes registers the engineer directory and its availability reads.
func RegisterEngineerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/engineers")
	{
		api.GET("", hb.Engineers.ListEngineers)
		api.GET("/:id", hb.Engineers.GetEngineer)
		api.GET("/:id/availability", hb.Bookings.GetAvailability)
		api.POST("/:id/availability/check", hb.Bookings.CheckAvailability)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(hb.Verifier))
		protected.GET("/:id/schedule", hb.Bookings.GetSchedule)
		protected.POST("", middleware.RequireRole(models.RoleAdmin), hb.Engineers.CreateEngineer)
		protected.PUT("/:id", middleware.RequireRole(models.RoleAdmin), hb.Engineers.UpdateEngineer)
	}
}

// RegisterStudioRoutes registers studio settings and resources. Reads are
// open to any signed-in account.
func RegisterStudioRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/studio")
	{
		api.Use(middleware.AuthMiddleware(hb.Verifier))
		api.GET("/settings", hb.Studio.GetSettings)
		api.GET("/resources", hb.Studio.ListResources)

		admin := api.Group("")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		admin.PUT("/settings", hb.Studio.UpdateSettings)
		admin.POST("/resources", hb.Studio.CreateResource)
		admin.PATCH("/resources/:id/status", hb.Studio.UpdateResourceStatus)
	}
}

// RegisterFileRoutes registers session file endpoints.
func RegisterFileRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/files")
	{
		api.Use(middleware.AuthMiddleware(hb.Verifier))
		api.GET("", hb.Files.ListFiles)
		api.POST("", hb.Files.UploadFile)
		api.DELETE("/:id", hb.Files.DeleteFile)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.AuthMiddleware(hb.Verifier), middleware.RequireRole(models.RoleAdmin))
		adminGroup.GET("/bookings/export", hb.Export.ExportBookings)
	}
}

// RegisterHealthRoutes registers health and metrics endpoints.
func RegisterHealthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: !contains(origins, "*"),
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterEngineerRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterStudioRoutes(r, hb)
	RegisterFileRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
