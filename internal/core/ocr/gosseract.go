//go:build ocr

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"recipe-calculator/internal/infrastructure/config"
)

// gosseractEngine 透過 cgo 呼叫 libtesseract
// gosseract.Client 不可併發使用，每次辨識各自建立
type gosseractEngine struct{}

// NewEngine 建立 gosseract 引擎
func NewEngine(_ config.OCRConfig) (Engine, error) {
	return &gosseractEngine{}, nil
}

func (e *gosseractEngine) Name() string {
	return "gosseract " + gosseract.Version()
}

func (e *gosseractEngine) Recognize(ctx context.Context, img []byte, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(opts.Language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	for k, v := range tesseractVariables {
		if err := client.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return "", fmt.Errorf("failed to set %s: %w", k, err)
		}
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

func (e *gosseractEngine) Close() error {
	return nil
}
