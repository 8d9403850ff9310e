package products

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mini-ecommerce/internal/api"
	"mini-ecommerce/internal/cache"
	"mini-ecommerce/internal/database"
	"mini-ecommerce/internal/model"
	"mini-ecommerce/internal/store"
	"mini-ecommerce/internal/worker"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

const (
	uploadPathPrefix = "/uploads/"

	featuredCacheKey = "products:featured"
	featuredCacheTTL = 5 * time.Minute
	featuredLimit    = 6
)

var (
	createProduct        = store.CreateProduct
	getProductByID       = store.GetProductByID
	listProducts         = store.ListProducts
	listFeaturedProducts = store.ListFeaturedProducts
	updateProduct        = store.UpdateProduct
	deleteProduct        = store.DeleteProduct
)

// normalizeImageURL 確保圖片參照帶有上傳目錄前綴
func normalizeImageURL(imageURL string) string {
	if strings.HasPrefix(imageURL, uploadPathPrefix) {
		return imageURL
	}
	return uploadPathPrefix + imageURL
}

// invalidateFeatured 透過 worker pool 非同步清除精選商品快取
func invalidateFeatured(wp worker.Pool, rdb cache.Cache) {
	wp.Submit(func() {
		rdb.Del(context.Background(), featuredCacheKey)
	})
}

// ListProductsHandler 商品列表（公開）
// @Summary     List all products
// @Description 回傳全部商品，依建立時間新到舊排序
// @Tags        products
// @Produce     json
// @Success     200 {array}  model.Product
// @Failure     500 {object} api.ErrorResponse
// @Router      /products [get]
func ListProductsHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		products, err := listProducts(c.Request().Context(), db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to fetch products"})
		}
		return c.JSON(http.StatusOK, products)
	}
}

// FeaturedProductsHandler 精選商品（公開，帶快取）
// @Summary     List featured products
// @Description 回傳首頁精選商品（最多 6 筆），結果快取五分鐘
// @Tags        products
// @Produce     json
// @Success     200 {array}  model.Product
// @Failure     500 {object} api.ErrorResponse
// @Router      /products/featured [get]
func FeaturedProductsHandler(db database.DB, rdb cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		if cached, err := rdb.Get(ctx, featuredCacheKey).Result(); err == nil {
			var products []model.Product
			if err := json.Unmarshal([]byte(cached), &products); err == nil {
				return c.JSON(http.StatusOK, products)
			}
		}

		products, err := listFeaturedProducts(ctx, db, featuredLimit)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to fetch products"})
		}

		// 快取失敗不影響回應
		if payload, err := json.Marshal(products); err == nil {
			rdb.Set(ctx, featuredCacheKey, payload, featuredCacheTTL)
		}
		return c.JSON(http.StatusOK, products)
	}
}

// GetProductHandler 依 ID 取得商品（公開）
// @Summary     Get a product by ID
// @Description 透過 ID 查詢並回傳商品詳細資料
// @Tags        products
// @Produce     json
// @Param       id  path      int  true  "商品 ID"
// @Success     200 {object}  model.Product
// @Failure     404 {object}  api.ErrorResponse
// @Router      /products/{id} [get]
func GetProductHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		// 參照格式不正確視同不存在
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "product not found"})
		}
		product, err := getProductByID(c.Request().Context(), db, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "product not found"})
			}
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to fetch product"})
		}
		return c.JSON(http.StatusOK, product)
	}
}

// CreateProductHandler 新增商品（限管理員）
// @Summary     Create a new product
// @Description 建立商品，圖片參照自動補上 /uploads/ 前綴
// @Tags        products
// @Accept      json
// @Produce     json
// @Param       request body api.CreateProductRequest true "商品資料"
// @Success     201 {object} model.Product
// @Failure     400 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /products [post]
func CreateProductHandler(db database.DB, rdb cache.Cache, wp worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.CreateProductRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
		}

		product, err := createProduct(c.Request().Context(), db, &model.Product{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			ImageURL:    normalizeImageURL(req.ImageURL),
			Category:    req.Category,
			Stock:       req.Stock,
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to create product"})
		}

		invalidateFeatured(wp, rdb)
		return c.JSON(http.StatusCreated, product)
	}
}

// UpdateProductHandler 部分更新商品（限管理員）
// @Summary     Update a product
// @Description 僅更新請求中提供的欄位，其餘維持原值
// @Tags        products
// @Accept      json
// @Produce     json
// @Param       id      path int                      true "商品 ID"
// @Param       request body api.UpdateProductRequest true "更新欄位"
// @Success     200 {object} model.Product
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /products/{id} [put]
func UpdateProductHandler(db database.DB, rdb cache.Cache, wp worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "product not found"})
		}

		var req api.UpdateProductRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
		}

		upd := &store.ProductUpdate{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Category:    req.Category,
			Stock:       req.Stock,
		}
		if req.ImageURL != nil {
			normalized := normalizeImageURL(*req.ImageURL)
			upd.ImageURL = &normalized
		}

		product, err := updateProduct(c.Request().Context(), db, id, upd)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "product not found"})
			}
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to update product"})
		}

		invalidateFeatured(wp, rdb)
		return c.JSON(http.StatusOK, product)
	}
}

// DeleteProductHandler 刪除商品（限管理員）
// @Summary     Delete a product
// @Description 無條件刪除商品；既有訂單仍保留原商品參照
// @Tags        products
// @Produce     json
// @Param       id path int true "商品 ID"
// @Success     200 {object} api.MessageResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /products/{id} [delete]
func DeleteProductHandler(db database.DB, rdb cache.Cache, wp worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "product not found"})
		}
		deleted, err := deleteProduct(c.Request().Context(), db, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to delete product"})
		}
		if !deleted {
			return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "product not found"})
		}

		invalidateFeatured(wp, rdb)
		return c.JSON(http.StatusOK, api.MessageResponse{Message: "Product deleted successfully"})
	}
}
