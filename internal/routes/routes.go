package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yasminey01/station-manager-portal-sub000/internal/attendance"
	"github.com/yasminey01/station-manager-portal-sub000/internal/config"
	"github.com/yasminey01/station-manager-portal-sub000/internal/handlers"
	"github.com/yasminey01/station-manager-portal-sub000/internal/middleware"
)

func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) {
	router.Use(corsMiddleware(cfg.AllowedOriginsRaw))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "station-manager-portal"})
	})

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ledger := attendance.NewLedger(db, cfg.Location)

	authHandler := handlers.NewAuthHandler(db, cfg)
	employeeHandler := handlers.NewEmployeeHandler(db)
	stationHandler := handlers.NewStationHandler(db)
	catalogHandler := handlers.NewCatalogHandler(db)
	saleHandler := handlers.NewSaleHandler(db)
	attendanceHandler := handlers.NewAttendanceHandler(db, ledger)
	dashboardHandler := handlers.NewDashboardHandler(db, ledger)
	settingsHandler := handlers.NewSettingsHandler(db)

	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/forgot-password/start", authHandler.ForgotPasswordStart)
		api.POST("/auth/forgot-password/verify", authHandler.ForgotPasswordVerify)
		api.POST("/auth/refresh", authHandler.Refresh)
		api.POST("/auth/logout", authHandler.Logout)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthRequired(cfg.JwtSecret))
	{
		protected.GET("/me", authHandler.Me)
		protected.PUT("/me", authHandler.UpdateProfile)
		protected.PUT("/me/password", authHandler.ChangePassword)
		protected.POST("/me/totp/setup", authHandler.TOTPSetup)
		protected.POST("/me/totp/activate", authHandler.TOTPActivate)
		protected.GET("/dashboard", middleware.RequireAnyRole("admin", "manager"), dashboardHandler.Get)
		protected.GET("/settings/logo", settingsHandler.GetLogo)
		protected.PUT("/settings/logo", middleware.RequireAnyRole("admin", "manager"), settingsHandler.UpdateLogo)

		protected.GET("/employees", employeeHandler.List)
		protected.POST("/employees", middleware.RequireAnyRole("admin", "manager"), employeeHandler.Create)
		protected.PUT("/employees/:id", middleware.RequireAnyRole("admin", "manager"), employeeHandler.Update)
		protected.DELETE("/employees/:id", middleware.RequireAnyRole("admin", "manager"), employeeHandler.Delete)
		protected.POST("/employees/:id/user", middleware.RequireAnyRole("admin", "manager"), employeeHandler.CreateUser)
		protected.PUT("/employees/:id/user/password", middleware.RequireAnyRole("admin", "manager"), employeeHandler.UpsertUserPassword)

		protected.GET("/stations", stationHandler.List)
		protected.POST("/stations", middleware.RequireAnyRole("admin"), stationHandler.Create)
		protected.PUT("/stations/:id", middleware.RequireAnyRole("admin"), stationHandler.Update)
		protected.DELETE("/stations/:id", middleware.RequireAnyRole("admin"), stationHandler.Delete)

		protected.GET("/pumps", stationHandler.ListPumps)
		protected.POST("/pumps", middleware.RequireAnyRole("admin", "manager"), stationHandler.CreatePump)
		protected.PUT("/pumps/:id", middleware.RequireAnyRole("admin", "manager"), stationHandler.UpdatePump)
		protected.DELETE("/pumps/:id", middleware.RequireAnyRole("admin", "manager"), stationHandler.DeletePump)

		protected.GET("/tanks", stationHandler.ListTanks)
		protected.POST("/tanks", middleware.RequireAnyRole("admin", "manager"), stationHandler.CreateTank)
		protected.PUT("/tanks/:id", middleware.RequireAnyRole("admin", "manager"), stationHandler.UpdateTank)
		protected.DELETE("/tanks/:id", middleware.RequireAnyRole("admin", "manager"), stationHandler.DeleteTank)

		protected.GET("/products", catalogHandler.ListProducts)
		protected.POST("/products", middleware.RequireAnyRole("admin", "manager"), catalogHandler.CreateProduct)
		protected.PUT("/products/:id", middleware.RequireAnyRole("admin", "manager"), catalogHandler.UpdateProduct)
		protected.DELETE("/products/:id", middleware.RequireAnyRole("admin", "manager"), catalogHandler.DeleteProduct)

		protected.GET("/suppliers", middleware.RequireAnyRole("admin", "manager"), catalogHandler.ListSuppliers)
		protected.POST("/suppliers", middleware.RequireAnyRole("admin", "manager"), catalogHandler.CreateSupplier)
		protected.PUT("/suppliers/:id", middleware.RequireAnyRole("admin", "manager"), catalogHandler.UpdateSupplier)
		protected.DELETE("/suppliers/:id", middleware.RequireAnyRole("admin", "manager"), catalogHandler.DeleteSupplier)

		protected.GET("/sales", middleware.RequireAnyRole("admin", "manager", "employee"), saleHandler.List)
		protected.POST("/sales", middleware.RequireAnyRole("admin", "manager", "employee"), saleHandler.Create)
		protected.DELETE("/sales/:id", middleware.RequireAnyRole("admin", "manager"), saleHandler.Delete)

		protected.GET("/stock-entries", middleware.RequireAnyRole("admin", "manager"), saleHandler.ListStockEntries)
		protected.POST("/stock-entries", middleware.RequireAnyRole("admin", "manager"), saleHandler.CreateStockEntry)
		protected.DELETE("/stock-entries/:id", middleware.RequireAnyRole("admin", "manager"), saleHandler.DeleteStockEntry)

		protected.GET("/attendance", middleware.RequireAnyRole("admin", "manager", "employee"), attendanceHandler.List)
		protected.POST("/attendance/checkin", middleware.RequireAnyRole("admin", "manager", "employee"), attendanceHandler.CheckIn)
		protected.POST("/attendance/checkout", middleware.RequireAnyRole("admin", "manager", "employee"), attendanceHandler.CheckOut)
		protected.PATCH("/attendance/:id", middleware.RequireAnyRole("admin", "manager"), attendanceHandler.Update)
		protected.DELETE("/attendance/:id", middleware.RequireAnyRole("admin", "manager"), attendanceHandler.Delete)
		protected.DELETE("/attendance/employee/:employeeId", middleware.RequireAnyRole("admin", "manager"), attendanceHandler.DeleteByEmployee)
	}
}

func corsMiddleware(allowed string) gin.HandlerFunc {
	origins := []string{}
	for _, origin := range strings.Split(allowed, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}

	return cors.New(corsConfig)
}
