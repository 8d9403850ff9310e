package api

// swagger:model api.UploadResponse
type UploadResponse struct {
	ImageURL string `json:"imageUrl" example:"/uploads/1700000000000-milk.png"`
	Message  string `json:"message" example:"Image uploaded successfully"`
}
