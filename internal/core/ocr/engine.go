// Package ocr 以 Tesseract 將前處理後的圖片轉為文字。
//
// 使用 -tags ocr 編譯時透過 gosseract 直接呼叫函式庫，
// 否則改為執行系統上的 tesseract 指令。
package ocr

import (
	"context"
	"strconv"
)

// Options 辨識參數
type Options struct {
	Language    string // 例如 "dan"
	PageSegMode int    // 6 = 單一文字區塊
}

// Engine 定義 OCR 引擎介面
type Engine interface {
	// Name 引擎名稱，用於日誌與健康檢查
	Name() string

	// Recognize 辨識圖片中的文字
	Recognize(ctx context.Context, img []byte, opts Options) (string, error)

	// Close 釋放資源
	Close() error
}

// LSTM 引擎並保留詞間空白，讓分數與單位之間的距離不被吃掉
const ocrEngineMode = 3

var tesseractVariables = map[string]string{
	"preserve_interword_spaces": "1",
}

// cliArgs 組出 tesseract 指令參數，從 stdin 讀圖、輸出到 stdout
func cliArgs(opts Options) []string {
	args := []string{
		"stdin", "stdout",
		"-l", opts.Language,
		"--oem", strconv.Itoa(ocrEngineMode),
		"--psm", strconv.Itoa(opts.PageSegMode),
	}
	for k, v := range tesseractVariables {
		args = append(args, "-c", k+"="+v)
	}
	return args
}
