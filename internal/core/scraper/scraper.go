// Package scraper 下載食譜網頁並擷取食材清單與食譜名稱。
package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"recipe-calculator/internal/pkg/common"
)

// Page 單一頁面的擷取結果
type Page struct {
	URL         string
	Title       string // 食譜名稱，找不到時為空
	PageTitle   string // 原始 <title>
	Ingredients []common.Ingredient
	Candidates  int    // 勝出策略交給解析器的項目數
	Strategy    string // 產生食材的策略，沒有食材時為空
}

// Scraper 組合抓取與擷取
type Scraper struct {
	fetcher   *Fetcher
	extractor *Extractor
}

// New 創建 Scraper
func New(fetcher *Fetcher, extractor *Extractor) *Scraper {
	return &Scraper{
		fetcher:   fetcher,
		extractor: extractor,
	}
}

// Scrape 抓取並擷取頁面；沒有食材不算錯誤
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*Page, error) {
	doc, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	page := s.Extract(doc)
	page.URL = rawURL
	return page, nil
}

// Extract 從已解析文件擷取（標題先於食材）
func (s *Scraper) Extract(doc *goquery.Document) *Page {
	title := s.extractor.Title(doc)
	r := s.extractor.extract(doc)
	return &Page{
		Title:       title,
		PageTitle:   PageTitle(doc),
		Ingredients: r.ingredients,
		Candidates:  r.candidates,
		Strategy:    r.strategy,
	}
}

// ProbeTitle 只擷取標題，回傳擷取結果與原始 <title>
func (s *Scraper) ProbeTitle(ctx context.Context, rawURL string) (string, string, error) {
	doc, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", "", err
	}
	return s.extractor.Title(doc), PageTitle(doc), nil
}
