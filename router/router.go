package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/config"
	"github.com/yeremiapane/table-order/controllers"
	"github.com/yeremiapane/table-order/kds"
	"github.com/yeremiapane/table-order/middlewares"
	"github.com/yeremiapane/table-order/models"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/storage"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, cfg *config.Config, hub *kds.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigin))
	r.Use(middlewares.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst).RateLimit())

	r.Static("/uploads", cfg.UploadDir)

	opts := services.Options{
		QueryTimeout: cfg.QueryTimeout,
		ReadRetries:  cfg.ReadRetries,
		RetryBackoff: cfg.RetryBackoff,
	}
	blobs := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)

	sessionService := services.NewSessionService(db, opts)
	menuService := services.NewMenuService(db, blobs, opts)

	tableController := controllers.NewTableController(sessionService)
	menuController := controllers.NewMenuController(menuService)
	cartController := controllers.NewCartController(services.NewCartService(db, opts))
	orderController := controllers.NewOrderController(
		services.NewOrderService(db, opts),
		services.NewKitchenService(db, opts),
		services.NewHistoryService(db, opts),
	)
	userController := controllers.NewUserController(services.NewUserService(db, opts), cfg.JWTTTL)
	adminController := controllers.NewAdminController(
		services.NewDashboardService(db, opts),
		services.NewLogoService(db, blobs, opts),
	)
	kdsController := controllers.NewKDSController(hub)

	// Public
	r.GET("/session/validate", tableController.ValidateSession)
	r.GET("/menus", menuController.GetAllMenus)
	r.GET("/logo", adminController.GetLogo)
	r.POST("/login", middlewares.NewStrictRateLimiter().RateLimit(), userController.Login)

	// Customer, scoped to one table
	customer := r.Group("/")
	customer.Use(middlewares.TableSessionMiddleware(sessionService))
	{
		customer.GET("/cart", cartController.GetCart)
		customer.POST("/cart/items", cartController.AddItem)
		customer.PATCH("/cart/items/:cart_id", cartController.UpdateQuantity)
		customer.POST("/cart/confirm", orderController.ConfirmOrder)
		customer.GET("/orders", orderController.GetTableOrders)
	}

	staff := r.Group("/")
	staff.Use(middlewares.AuthMiddleware())
	{
		staff.POST("/logout", userController.Logout)
		staff.GET("/admin/profile", userController.GetProfile)
	}

	kitchen := r.Group("/kitchen")
	kitchen.Use(middlewares.AuthMiddleware(), middlewares.RequireRoles(models.RoleKitchen, models.RoleAdmin))
	{
		kitchen.GET("/orders", orderController.GetKitchenOrders)
		kitchen.POST("/orders/:order_id/served", orderController.MarkServed)
		kitchen.GET("/history", orderController.GetHistory)
	}

	r.GET("/ws/kitchen", middlewares.KitchenStreamAuth(), kdsController.Stream)

	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/menus", menuController.CreateMenu)
		admin.PATCH("/menus/:menu_id", menuController.UpdateMenu)
		admin.DELETE("/menus/:menu_id", menuController.DeleteMenu)

		admin.POST("/logo", adminController.UploadLogo)

		admin.GET("/tables", tableController.GetAllTables)
		admin.POST("/tables/:table_num/token", tableController.IssueToken)
		admin.DELETE("/tables/:table_num/token", tableController.RevokeToken)

		admin.POST("/users", userController.CreateUser)
		admin.GET("/dashboard/stats", adminController.GetDashboardStats)
	}

	return r
}
