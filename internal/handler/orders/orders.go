package orders

import (
	"errors"
	"net/http"
	"strconv"

	"mini-ecommerce/internal/api"
	"mini-ecommerce/internal/database"
	"mini-ecommerce/internal/middleware"
	"mini-ecommerce/internal/model"
	"mini-ecommerce/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// deletedUserName 下單使用者已不存在時的替代顯示值
const deletedUserName = "Deleted User"

var (
	createOrder           = store.CreateOrder
	getOrderByID          = store.GetOrderByID
	listAllOrders         = store.ListAllOrders
	listOrdersByUser      = store.ListOrdersByUser
	getProductByID        = store.GetProductByID
	decrementProductStock = store.DecrementProductStock
	updateOrderStatus     = store.UpdateOrderStatus
)

// CreateOrderHandler 建立訂單（需登入）
// @Summary     Create an order
// @Description 依購物車項目建立訂單，狀態為 pending
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       request body api.CreateOrderRequest true "訂單資料"
// @Success     201 {object} model.Order
// @Failure     400 {object} api.ErrorResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /orders [post]
func CreateOrderHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get(middleware.ContextUserKey).(*middleware.CurrentUser)
		if !ok {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "invalid or missing token"})
		}

		var req api.CreateOrderRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
		}
		if len(req.Items) == 0 {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "no items in order"})
		}

		items := make([]model.OrderItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, model.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.Price,
			})
		}

		// 金額以前端計算值為準，不在此重算
		order, err := createOrder(c.Request().Context(), db, &model.Order{
			UserID:      user.ID,
			Items:       items,
			TotalAmount: req.TotalAmount,
			ShippingInfo: model.ShippingInfo{
				Address:    req.ShippingInfo.Address,
				City:       req.ShippingInfo.City,
				PostalCode: req.ShippingInfo.PostalCode,
				Country:    req.ShippingInfo.Country,
			},
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to create order"})
		}
		return c.JSON(http.StatusCreated, order)
	}
}

// ListAllOrdersHandler 全部訂單（限管理員）
// @Summary     List all orders
// @Description 回傳所有訂單（新到舊），展開下單使用者與商品摘要
// @Tags        orders
// @Produce     json
// @Success     200 {object} api.AdminOrdersResponse
// @Failure     403 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /orders [get]
func ListAllOrdersHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		details, err := listAllOrders(c.Request().Context(), db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to fetch orders"})
		}

		orders := make([]api.AdminOrderResponse, 0, len(details))
		for _, d := range details {
			user := api.OrderUserSummary{ID: d.Order.UserID, Name: deletedUserName}
			if d.User != nil {
				user = api.OrderUserSummary{ID: d.User.ID, Name: d.User.Name, Email: d.User.Email}
			}

			items := make([]api.OrderItemDetail, 0, len(d.Order.Items))
			for _, item := range d.Order.Items {
				detail := api.OrderItemDetail{Quantity: item.Quantity, Price: item.Price}
				if p := d.Products[item.ProductID]; p != nil {
					detail.Product = &api.ProductSummary{
						ID:       p.ID,
						Name:     p.Name,
						Price:    p.Price,
						ImageURL: p.ImageURL,
					}
				}
				items = append(items, detail)
			}

			orders = append(orders, api.AdminOrderResponse{
				ID:           d.Order.ID,
				User:         user,
				Items:        items,
				TotalAmount:  d.Order.TotalAmount,
				Status:       d.Order.Status,
				ShippingInfo: d.Order.ShippingInfo,
				CreatedAt:    d.Order.CreatedAt,
			})
		}

		return c.JSON(http.StatusOK, api.AdminOrdersResponse{
			Success: true,
			Count:   len(orders),
			Orders:  orders,
		})
	}
}

// ListMyOrdersHandler 當前使用者的訂單（需登入）
// @Summary     List my orders
// @Description 回傳當前使用者的訂單，新到舊排序
// @Tags        orders
// @Produce     json
// @Success     200 {array}  model.Order
// @Failure     401 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /orders/my-orders [get]
func ListMyOrdersHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get(middleware.ContextUserKey).(*middleware.CurrentUser)
		if !ok {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "invalid or missing token"})
		}
		orders, err := listOrdersByUser(c.Request().Context(), db, user.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to fetch orders"})
		}
		return c.JSON(http.StatusOK, orders)
	}
}

// FulfillOrderHandler 出貨：扣庫存並將訂單標記為 delivered（限管理員）
// @Summary     Fulfill an order
// @Description 逐項扣除商品庫存後將訂單狀態改為 delivered；已刪除的商品不扣庫存直接略過
// @Tags        orders
// @Produce     json
// @Param       id path int true "訂單 ID"
// @Success     200 {object} api.FulfillOrderResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /orders/{id}/fulfill [patch]
func FulfillOrderHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "order not found"})
		}

		ctx := c.Request().Context()
		order, err := getOrderByID(ctx, db, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "order not found"})
			}
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to fetch order"})
		}

		if order.Status == model.OrderStatusDelivered {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "order is already marked as delivered"})
		}

		// 逐項以條件更新扣庫存；某項不足即中止，先前已扣的不回補
		for _, item := range order.Items {
			product, err := getProductByID(ctx, db, item.ProductID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					// 商品已刪除：不扣庫存，直接略過
					continue
				}
				return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to fetch product"})
			}

			if err := decrementProductStock(ctx, db, product.ID, item.Quantity); err != nil {
				if errors.Is(err, store.ErrInsufficientStock) {
					return c.JSON(http.StatusBadRequest, api.ErrorResponse{
						Message: "not enough stock to fulfill " + product.Name,
					})
				}
				return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to update stock"})
			}
		}

		if err := updateOrderStatus(ctx, db, order.ID, model.OrderStatusDelivered); err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to update order"})
		}
		order.Status = model.OrderStatusDelivered

		return c.JSON(http.StatusOK, api.FulfillOrderResponse{
			Success: true,
			Message: "Order marked as delivered and stock updated",
			Order:   *order,
		})
	}
}
