package api

import (
	"time"

	"mini-ecommerce/internal/model"
)

// AdminOrdersResponse 管理端訂單列表
// swagger:model api.AdminOrdersResponse
type AdminOrdersResponse struct {
	Success bool                 `json:"success"`
	Count   int                  `json:"count"`
	Orders  []AdminOrderResponse `json:"orders"`
}

// swagger:model api.AdminOrderResponse
type AdminOrderResponse struct {
	ID           int                `json:"id"`
	User         OrderUserSummary   `json:"user"`
	Items        []OrderItemDetail  `json:"items"`
	TotalAmount  float64            `json:"total_amount"`
	Status       string             `json:"status"`
	ShippingInfo model.ShippingInfo `json:"shipping_info"`
	CreatedAt    time.Time          `json:"created_at"`
}

// OrderUserSummary 下單使用者摘要，使用者已刪除時 name 為替代顯示值
// swagger:model api.OrderUserSummary
type OrderUserSummary struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// swagger:model api.OrderItemDetail
type OrderItemDetail struct {
	Product  *ProductSummary `json:"product"`
	Quantity int             `json:"quantity"`
	Price    float64         `json:"price"`
}

// ProductSummary 訂單項目中的商品摘要，商品已刪除時為 null
// swagger:model api.ProductSummary
type ProductSummary struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
}

// FulfillOrderResponse 出貨完成回應
// swagger:model api.FulfillOrderResponse
type FulfillOrderResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Order   model.Order `json:"order"`
}
