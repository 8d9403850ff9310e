package api

// swagger:model api.CreateProductRequest
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required" example:"Milk"`
	Description string  `json:"description" validate:"required" example:"Fresh whole milk"`
	Price       float64 `json:"price" validate:"gte=0" example:"9.99"`
	ImageURL    string  `json:"image_url" validate:"required" example:"/uploads/milk.png"`
	Category    string  `json:"category" validate:"required" example:"dairy"`
	Stock       int     `json:"stock" validate:"gte=0" example:"10"`
}
