package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	_ "image/gif"  // 支援 GIF
	_ "image/jpeg" // 支援 JPEG

	_ "golang.org/x/image/bmp"  // 支援 BMP
	_ "golang.org/x/image/tiff" // 支援 TIFF（掃描檔常見）
	_ "golang.org/x/image/webp" // 支援 WebP

	"recipe-calculator/internal/infrastructure/config"
	"recipe-calculator/internal/pkg/common"
)

// Service 圖片處理服務：驗證上傳內容並產生適合 OCR 的黑白圖
type Service struct {
	maxSizeBytes int64
	maxDimension int
	maxPixels    int64
}

// NewService 創建新的圖片處理服務
// MaxDimension <= 0 時不縮圖，MaxPixels <= 0 時不限制像素數
func NewService(cfg config.ImageConfig) *Service {
	return &Service{
		maxSizeBytes: cfg.MaxSizeBytes,
		maxDimension: cfg.MaxDimension,
		maxPixels:    cfg.MaxPixels,
	}
}

// Decode 檢查大小、格式與像素數後解碼圖片
// 像素數在解碼前由檔頭判斷，避免小檔案展開成巨大圖片
func (s *Service) Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", common.ErrInvalidImageFormat.Wrap(errors.New("empty image"))
	}
	if s.maxSizeBytes > 0 && int64(len(data)) > s.maxSizeBytes {
		return nil, "", common.ErrInvalidImageSize.Wrap(
			fmt.Errorf("image size %d exceeds maximum limit of %d bytes", len(data), s.maxSizeBytes))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}
	if !isSupportedFormat(format) {
		return nil, "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("unsupported image format: %s", format))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", common.ErrInvalidImageSize.Wrap(
			fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height))
	}
	if s.maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > s.maxPixels {
		return nil, "", common.ErrInvalidImageSize.Wrap(
			fmt.Errorf("image dimensions %dx%d exceed maximum of %d pixels", cfg.Width, cfg.Height, s.maxPixels))
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}
	return img, format, nil
}

// Prepare 解碼並前處理圖片，回傳 PNG 編碼的黑白圖
func (s *Service) Prepare(data []byte) ([]byte, error) {
	img, _, err := s.Decode(data)
	if err != nil {
		return nil, err
	}

	processed := Preprocess(img, s.maxDimension)

	var buf bytes.Buffer
	if err := png.Encode(&buf, processed); err != nil {
		return nil, common.ErrInternalError.Wrap(fmt.Errorf("failed to encode image as PNG: %w", err))
	}
	return buf.Bytes(), nil
}

// FromDataURL 解析 "data:image/...;base64,..." 格式的圖片
func FromDataURL(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return nil, common.ErrInvalidImageFormat.Wrap(errors.New("invalid image data format"))
	}

	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, common.ErrInvalidImageFormat.Wrap(errors.New("invalid base64 data format"))
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode base64 data: %w", err))
	}
	return decoded, nil
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	switch format {
	case "jpeg", "png", "gif", "webp", "bmp", "tiff":
		return true
	}
	return false
}
