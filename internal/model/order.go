package model

import "time"

// 訂單狀態，僅允許往前推進
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
)

type Order struct {
	ID           int          `db:"id" json:"id"`
	UserID       int          `db:"user_id" json:"user_id"`
	Items        []OrderItem  `json:"items"`
	TotalAmount  float64      `db:"total_amount" json:"total_amount"`
	ShippingInfo ShippingInfo `json:"shipping_info"`
	Status       string       `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// OrderItem 下單當下的商品快照，price 為成交單價
type OrderItem struct {
	ID        int     `db:"id" json:"id"`
	OrderID   int     `db:"order_id" json:"order_id"`
	ProductID int     `db:"product_id" json:"product_id"`
	Quantity  int     `db:"quantity" json:"quantity"`
	Price     float64 `db:"price" json:"price"`
}

type ShippingInfo struct {
	Address    string `db:"address" json:"address"`
	City       string `db:"city" json:"city"`
	PostalCode string `db:"postal_code" json:"postal_code"`
	Country    string `db:"country" json:"country"`
}
