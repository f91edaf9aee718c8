// Package recipe 串接圖片、網頁與文字來源，產生統一格式的食材回應。
package recipe

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-calculator/internal/core/cache"
	"recipe-calculator/internal/core/parser"
	"recipe-calculator/internal/core/scraper"
	"recipe-calculator/internal/pkg/common"
)

// ImagePreparer 將上傳的圖片轉為適合 OCR 的格式
type ImagePreparer interface {
	Prepare(data []byte) ([]byte, error)
}

// TextExtractor 從圖片取出文字
type TextExtractor interface {
	Extract(ctx context.Context, img []byte) (string, error)
}

// PageScraper 抓取網頁並擷取食材與標題
type PageScraper interface {
	Scrape(ctx context.Context, rawURL string) (*scraper.Page, error)
	ProbeTitle(ctx context.Context, rawURL string) (string, string, error)
}

// Service 食材解析服務
type Service struct {
	parser *parser.Parser
	images ImagePreparer
	ocr    TextExtractor
	pages  PageScraper
	cache  cache.Store
}

// NewService 創建新的食材解析服務，store 可為 nil
func NewService(p *parser.Parser, images ImagePreparer, ocr TextExtractor, pages PageScraper, store cache.Store) *Service {
	return &Service{
		parser: p,
		images: images,
		ocr:    ocr,
		pages:  pages,
		cache:  store,
	}
}

// Parser 回傳使用中的解析器
func (s *Service) Parser() *parser.Parser {
	return s.parser
}

// ParseImage 前處理、OCR 後以多行解析；同一張圖片的結果會被快取
func (s *Service) ParseImage(ctx context.Context, data []byte) (*common.RecipeResponse, error) {
	key := cache.ImageKey(data)
	if cached, ok := s.getCached(ctx, key); ok {
		return cached, nil
	}

	start := time.Now()
	prepared, err := s.images.Prepare(data)
	if err != nil {
		return nil, err
	}

	text, err := s.ocr.Extract(ctx, prepared)
	if err != nil {
		return nil, err
	}

	ingredients := s.parser.ParseBlock(text)
	common.LogParseResult("image", strings.Count(text, "\n")+1, len(ingredients), time.Since(start))

	resp := common.NewRecipeResponse(ingredients, "", common.MsgNoIngredientsInImage)
	s.setCached(ctx, key, resp)
	return resp, nil
}

// ParseURL 抓取網頁並擷取食材；只有成功的結果會被快取
// 沒有食材時仍回傳找到的食譜名稱
func (s *Service) ParseURL(ctx context.Context, rawURL string) (*common.RecipeResponse, error) {
	u, err := scraper.ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	target := u.String()

	key := cache.URLKey(target)
	if cached, ok := s.getCached(ctx, key); ok {
		return cached, nil
	}

	start := time.Now()
	page, err := s.pages.Scrape(ctx, target)
	if err != nil {
		return nil, err
	}
	common.LogParseResult("url", page.Candidates, len(page.Ingredients), time.Since(start))

	resp := common.NewRecipeResponse(page.Ingredients, page.Title, common.MsgNoIngredientsOnPage)
	if resp.Success {
		s.setCached(ctx, key, resp)
	}
	return resp, nil
}

// ParseText 解析貼上的多行文字
func (s *Service) ParseText(text string) *common.RecipeResponse {
	start := time.Now()
	ingredients := s.parser.ParseBlock(text)
	common.LogParseResult("text", strings.Count(text, "\n")+1, len(ingredients), time.Since(start))
	return common.NewRecipeResponse(ingredients, "", common.MsgNoIngredientsInText)
}

// ParseLines 解析食材字串列表
func (s *Service) ParseLines(lines []string) *common.RecipeResponse {
	start := time.Now()
	ingredients := s.parser.ParseList(lines)
	common.LogParseResult("lines", len(lines), len(ingredients), time.Since(start))
	return common.NewRecipeResponse(ingredients, "", common.MsgNoIngredientsInText)
}

// SampleResult 自我檢測結果
type SampleResult struct {
	Original string             `json:"original"`
	Parsed   *common.Ingredient `json:"parsed"`
}

// SampleResults 以固定範例行檢查單行解析
func (s *Service) SampleResults() []SampleResult {
	results := make([]SampleResult, 0, len(parser.SampleLines))
	for _, line := range parser.SampleLines {
		result := SampleResult{Original: line}
		if ing, ok := s.parser.ParseLine(line); ok {
			result.Parsed = &ing
		}
		results = append(results, result)
	}
	return results
}

// TitleProbe 標題擷取檢測結果
type TitleProbe struct {
	URL            string  `json:"url"`
	ExtractedTitle *string `json:"extracted_title"`
	PageTitle      *string `json:"page_title"`
}

// ProbeTitle 只擷取網頁標題，用於檢查標題策略
func (s *Service) ProbeTitle(ctx context.Context, rawURL string) (*TitleProbe, error) {
	extracted, pageTitle, err := s.pages.ProbeTitle(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	probe := &TitleProbe{URL: rawURL}
	if extracted != "" {
		probe.ExtractedTitle = common.StringPtr(extracted)
	}
	if pageTitle != "" {
		probe.PageTitle = common.StringPtr(pageTitle)
	}
	return probe, nil
}

// CacheStats 快取統計，未設定快取時回傳 nil
func (s *Service) CacheStats() *cache.Stats {
	if s.cache == nil {
		return nil
	}
	stats := s.cache.Stats()
	return &stats
}

// getCached 快取失敗只記錄，不影響請求
func (s *Service) getCached(ctx context.Context, key string) (*common.RecipeResponse, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) && !errors.Is(err, common.ErrCacheDisabled) {
			common.LogWarn("讀取快取失敗", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var resp common.RecipeResponse
	if err := common.ParseJSONBytes(data, &resp); err != nil {
		common.LogWarn("快取內容無法解析", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &resp, true
}

func (s *Service) setCached(ctx context.Context, key string, resp *common.RecipeResponse) {
	if s.cache == nil {
		return
	}

	data, err := common.ToJSON(resp)
	if err != nil {
		common.LogWarn("序列化快取內容失敗", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, []byte(data)); err != nil {
		common.LogWarn("寫入快取失敗", zap.String("key", key), zap.Error(err))
	}
}
