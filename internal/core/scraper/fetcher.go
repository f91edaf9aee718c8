package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"recipe-calculator/internal/infrastructure/config"
	"recipe-calculator/internal/pkg/common"
)

var errBodyTooLarge = errors.New("response body too large")

// Fetcher 抓取網頁並解析為 goquery 文件
type Fetcher struct {
	client     *resty.Client
	attempts   uint
	retryDelay time.Duration
	maxBody    int64
}

// NewFetcher 創建網頁抓取器
func NewFetcher(cfg config.ScraperConfig) *Fetcher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Charset", "utf-8").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	attempts := cfg.Attempts
	if attempts == 0 {
		attempts = 1
	}

	return &Fetcher{
		client:     client,
		attempts:   attempts,
		retryDelay: cfg.RetryDelay,
		maxBody:    cfg.MaxBodyBytes,
	}
}

// ValidateURL 只接受 http/https 絕對網址
func ValidateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, common.ErrInvalidURL.Wrap(err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, common.ErrInvalidURL.Wrap(fmt.Errorf("unsupported url %q", rawURL))
	}
	return u, nil
}

// Fetch 下載頁面並依 Content-Type / meta 標籤轉為 UTF-8 後解析
// 連線錯誤與 5xx 會重試；4xx 直接失敗
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	var (
		body        []byte
		contentType string
	)
	err = retry.Do(
		func() error {
			data, ct, err := f.get(ctx, u.String())
			if err != nil {
				return err
			}
			body, contentType = data, ct
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			common.LogWarn("抓取網頁失敗，重試中",
				zap.String("url", u.String()),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, common.ErrFetchFailed.Wrap(err)
	}

	doc, err := ParseHTML(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, common.ErrFetchFailed.Wrap(err)
	}
	return doc, nil
}

func (f *Fetcher) get(ctx context.Context, target string) ([]byte, string, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(target)
	if err != nil {
		return nil, "", err
	}
	raw := resp.RawBody()
	defer raw.Close()

	status := resp.StatusCode()
	switch {
	case status >= http.StatusInternalServerError:
		return nil, "", fmt.Errorf("upstream returned status %d", status)
	case status >= http.StatusBadRequest:
		return nil, "", retry.Unrecoverable(fmt.Errorf("upstream returned status %d", status))
	}

	reader := io.Reader(raw)
	if f.maxBody > 0 {
		reader = io.LimitReader(raw, f.maxBody+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", err
	}
	if f.maxBody > 0 && int64(len(data)) > f.maxBody {
		return nil, "", retry.Unrecoverable(errBodyTooLarge)
	}
	return data, resp.Header().Get("Content-Type"), nil
}

// ParseHTML 依 contentType 與頁面 meta 偵測編碼，轉為 UTF-8 後解析
func ParseHTML(r io.Reader, contentType string) (*goquery.Document, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}
