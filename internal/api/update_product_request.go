package api

// UpdateProductRequest 部分更新，未提供的欄位維持原值
// swagger:model api.UpdateProductRequest
type UpdateProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1"`
	Description *string  `json:"description" validate:"omitempty,min=1"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,min=1"`
	Category    *string  `json:"category" validate:"omitempty,min=1"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
}
