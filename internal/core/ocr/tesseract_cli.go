//go:build !ocr

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"recipe-calculator/internal/infrastructure/config"
	"recipe-calculator/internal/pkg/common"
)

// 行程被終止後等待輸出管線關閉的上限
const waitDelay = 2 * time.Second

// 常見安裝位置，依序嘗試
var tesseractCandidates = []string{"/usr/bin/tesseract", "/usr/local/bin/tesseract", "tesseract"}

// cliEngine 執行 tesseract 指令
type cliEngine struct {
	path string
}

// NewEngine 尋找 tesseract 執行檔，找不到時回傳 ErrOCRUnavailable
func NewEngine(cfg config.OCRConfig) (Engine, error) {
	path, err := resolveTesseract(cfg.TesseractCmd)
	if err != nil {
		return nil, common.ErrOCRUnavailable.Wrap(err)
	}
	return &cliEngine{path: path}, nil
}

func resolveTesseract(preferred string) (string, error) {
	candidates := tesseractCandidates
	if preferred != "" {
		candidates = append([]string{preferred}, candidates...)
	}
	for _, c := range candidates {
		if p, err := exec.LookPath(c); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("tesseract executable not found (tried %s)", strings.Join(candidates, ", "))
}

func (e *cliEngine) Name() string {
	return "tesseract-cli"
}

func (e *cliEngine) Recognize(ctx context.Context, img []byte, opts Options) (string, error) {
	cmd := exec.CommandContext(ctx, e.path, cliArgs(opts)...)
	cmd.Stdin = bytes.NewReader(img)
	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		// 逾時被終止時 err 只是 "signal: killed"
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("tesseract: %w (%v)", ctxErr, err)
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}

func (e *cliEngine) Close() error {
	return nil
}
