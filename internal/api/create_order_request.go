package api

// swagger:model api.CreateOrderRequest
type CreateOrderRequest struct {
	Items        []OrderItemRequest  `json:"items" validate:"required,min=1,dive"`
	TotalAmount  float64             `json:"total_amount" validate:"gte=0" example:"25.5"`
	ShippingInfo ShippingInfoRequest `json:"shipping_info"`
}

// swagger:model api.OrderItemRequest
type OrderItemRequest struct {
	ProductID int     `json:"product_id" validate:"required" example:"3"`
	Quantity  int     `json:"quantity" validate:"required,min=1" example:"2"`
	Price     float64 `json:"price" validate:"gte=0" example:"9.99"`
}

// swagger:model api.ShippingInfoRequest
type ShippingInfoRequest struct {
	Address    string `json:"address" example:"1 Main St"`
	City       string `json:"city" example:"Taipei"`
	PostalCode string `json:"postal_code" example:"100"`
	Country    string `json:"country" example:"Taiwan"`
}
