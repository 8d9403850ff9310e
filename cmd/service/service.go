// @title        Mini E-Commerce API
// @version      1.0
// @description  電商後端 API：帳號、商品、訂單與圖片上傳
// @host         localhost:8080
// @BasePath     /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"mini-ecommerce/internal/cache"
	"mini-ecommerce/internal/config"
	"mini-ecommerce/internal/database"
	"mini-ecommerce/internal/router"
	"mini-ecommerce/internal/service"
	"mini-ecommerce/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "mini-ecommerce/docs" // 引入 swag 產出的 docs

	echoSwagger "github.com/swaggo/echo-swagger"
)

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var (
	loadConfig      = config.Load
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	mkdirAll        = os.MkdirAll
	startServer     = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	newWorkerPool   = worker.NewPool
	exitFunc        = os.Exit
)

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := newPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %v", err)
	}
	defer db.Close()

	redis, err := newRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("Redis 連線失敗: %v", err)
	}
	defer redis.Close()

	if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("Migration 執行失敗: %v", err)
	}

	if err := mkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("建立上傳目錄失敗: %v", err)
	}

	wp := newWorkerPool(cfg.WorkerCount)
	defer wp.Stop()

	authSvc := service.NewAuth(cfg.JWTSecret, cfg.TokenTTL)

	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Debug = !cfg.IsProduction()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	router.Setup(e, db, redis, wp, authSvc, cfg)

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	return startServer(e, ":"+cfg.Port)
}

func main() {
	if err := run(); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
