package recipe

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-calculator/internal/api/middleware"
	"recipe-calculator/internal/core/image"
	"recipe-calculator/internal/pkg/common"
)

// imageFormField multipart 上傳欄位名稱
const imageFormField = "file"

// ImageRequest 以 JSON 傳送圖片時的請求格式
type ImageRequest struct {
	Image string `json:"image" binding:"required"`
}

// TextRequest 文字解析請求，text 與 lines 擇一
type TextRequest struct {
	Text  string   `json:"text"`
	Lines []string `json:"lines"`
}

// URLRequest 以 JSON 傳送網址時的請求格式
type URLRequest struct {
	URL string `json:"url"`
}

// readImage 讀取上傳圖片：multipart 的 file 欄位，或 JSON 的 data URL
func readImage(c *gin.Context) ([]byte, string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile(imageFormField)
		if err != nil {
			return nil, "multipart", bodyError(err, "missing form field \""+imageFormField+"\"")
		}
		f, err := header.Open()
		if err != nil {
			return nil, "multipart", common.ErrInvalidRequest.Wrap(err)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "multipart", bodyError(err, "failed to read upload")
		}
		return data, "multipart", nil
	}

	var req ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, "json", bodyError(err, "expected multipart field \"file\" or JSON {\"image\": data URL}")
	}
	data, err := image.FromDataURL(req.Image)
	return data, getImageType(req.Image), err
}

// bodyError 請求體超過上限時回傳 413，其餘為 400
func bodyError(err error, msg string) error {
	if middleware.IsBodyTooLarge(err) {
		return common.ErrPayloadTooLarge.Wrap(err)
	}
	return common.ErrInvalidRequest.Wrap(fmt.Errorf("%s: %w", msg, err))
}

// getImageType 獲取圖片類型（用於日誌記錄）
func getImageType(image string) string {
	if image == "" {
		return "empty"
	}
	if strings.HasPrefix(image, "data:image/") {
		header, _, ok := strings.Cut(image, ";base64,")
		if ok {
			return "data_uri_" + strings.TrimPrefix(header, "data:image/")
		}
		return "invalid_data_uri"
	}
	return "unknown_format"
}

// respondError 將錯誤轉為統一的錯誤響應
func respondError(c *gin.Context, err error) {
	ce := common.AsCustomError(err)

	fields := []zap.Field{
		zap.String("code", ce.Code),
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
	}
	if ce.Status >= http.StatusInternalServerError && !errors.Is(err, common.ErrOCRBusy) {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求處理失敗", fields...)
	}

	_ = c.Error(err)
	c.JSON(ce.Status, ce.ToResponse())
}
