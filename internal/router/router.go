// File: internal/router/router.go
package router

import (
	"github.com/labstack/echo/v4"

	"mini-ecommerce/internal/cache"
	"mini-ecommerce/internal/config"
	"mini-ecommerce/internal/database"
	"mini-ecommerce/internal/handler"
	"mini-ecommerce/internal/handler/auth"
	"mini-ecommerce/internal/handler/orders"
	"mini-ecommerce/internal/handler/products"
	"mini-ecommerce/internal/handler/uploads"
	"mini-ecommerce/internal/middleware"
	"mini-ecommerce/internal/service"
	"mini-ecommerce/internal/worker"
)

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, db database.DB, rdb cache.Cache, wp worker.Pool, authSvc *service.Auth, cfg *config.Config) {
	requireAuth := middleware.RequireAuth(authSvc, db)
	requireAdmin := middleware.RequireAdmin(authSvc, db)

	api := e.Group("/api")

	// 健康檢查（需登入）
	api.GET("/ping", handler.PingHandler(db, rdb), requireAuth)

	// 註冊與登入；/auth/* 為舊路徑別名
	api.POST("/users/register", auth.RegisterHandler(authSvc, db))
	api.POST("/auth/register", auth.RegisterHandler(authSvc, db))
	api.POST("/users/login", auth.LoginHandler(authSvc, db))
	api.POST("/auth/login", auth.LoginHandler(authSvc, db))
	api.GET("/users/profile", auth.ProfileHandler(), requireAuth)
	api.GET("/auth/me", auth.ProfileHandler(), requireAuth)

	// 商品：讀取公開，寫入限管理員
	apiProducts := api.Group("/products")
	apiProducts.GET("", products.ListProductsHandler(db))
	apiProducts.GET("/featured", products.FeaturedProductsHandler(db, rdb))
	apiProducts.GET("/:id", products.GetProductHandler(db))
	apiProducts.POST("", products.CreateProductHandler(db, rdb, wp), requireAdmin)
	apiProducts.PUT("/:id", products.UpdateProductHandler(db, rdb, wp), requireAdmin)
	apiProducts.DELETE("/:id", products.DeleteProductHandler(db, rdb, wp), requireAdmin)

	// 訂單
	apiOrders := api.Group("/orders")
	apiOrders.GET("", orders.ListAllOrdersHandler(db), requireAdmin)
	apiOrders.POST("", orders.CreateOrderHandler(db), requireAuth)
	apiOrders.GET("/my-orders", orders.ListMyOrdersHandler(db), requireAuth)
	apiOrders.PATCH("/:id/fulfill", orders.FulfillOrderHandler(db), requireAdmin)

	// 圖片上傳與靜態檔案
	api.POST("/upload", uploads.UploadImageHandler(cfg.UploadDir))
	e.Static("/uploads", cfg.UploadDir)
}
