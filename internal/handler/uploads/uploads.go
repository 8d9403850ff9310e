package uploads

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"mini-ecommerce/internal/api"

	"github.com/labstack/echo/v4"
)

var nowUnixMilli = func() int64 { return time.Now().UnixMilli() }

// UploadImageHandler 接收 multipart 圖片並存到上傳目錄
// @Summary     Upload an image
// @Description 儲存上傳的圖片檔，回傳可供商品引用的 /uploads/ 路徑
// @Tags        uploads
// @Accept      multipart/form-data
// @Produce     json
// @Param       image formData file true "圖片檔"
// @Success     200 {object} api.UploadResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /upload [post]
func UploadImageHandler(uploadDir string) echo.HandlerFunc {
	return func(c echo.Context) error {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "no file uploaded"})
		}

		src, err := fileHeader.Open()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to read upload"})
		}
		defer src.Close()

		// 以毫秒時間戳為前綴避免檔名衝突，Base 去除用戶端路徑
		name := fmt.Sprintf("%d-%s", nowUnixMilli(), filepath.Base(fileHeader.Filename))
		dst, err := os.Create(filepath.Join(uploadDir, name))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to save upload"})
		}
		defer dst.Close()

		if _, err := io.Copy(dst, src); err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to save upload"})
		}

		return c.JSON(http.StatusOK, api.UploadResponse{
			ImageURL: "/uploads/" + name,
			Message:  "File uploaded successfully",
		})
	}
}
