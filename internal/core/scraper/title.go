package scraper

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"recipe-calculator/internal/pkg/common"
)

// 食譜標題選擇器，依優先順序
var titleSelectors = []string{
	".recipe-title",
	".recipe-header h1",
	".recipe-name",
	".entry-title",
	".post-title",
	".recipe__title",
	".wprm-recipe-name",
	".opskrift-titel",
	"h1.recipe",
	`[itemprop="name"]`,
}

// h1 含有這些字時視為導覽標題
var h1Blocklist = []string{"home", "menu", "blog", "about", "contact", "search", "kategori", "arkiv"}

// siteSuffix 去除 "<title>" 中 " - 網站名"、" – 網站名"、" | 網站名" 之後的部分
var siteSuffix = regexp.MustCompile(`\s+[-–|]\s+.*$`)

const (
	minTitleLength = 3   // 需大於
	maxTitleLength = 200 // 需小於
)

type titleStrategy struct {
	name    string
	extract func(doc *goquery.Document) (string, bool)
}

var titleStrategies = []titleStrategy{
	{name: "json-ld", extract: titleFromJSONLD},
	{name: "selector", extract: titleFromSelectors},
	{name: "h1", extract: titleFromH1},
	{name: "title", extract: titleFromDocumentTitle},
}

// Title 依序嘗試各策略取得食譜名稱，找不到時回傳空字串
func (e *Extractor) Title(doc *goquery.Document) string {
	for _, s := range titleStrategies {
		if title, ok := s.extract(doc); ok {
			common.LogDebug("擷取標題成功", zap.String("strategy", s.name), zap.String("title", title))
			return title
		}
	}
	common.LogDebug("找不到食譜標題")
	return ""
}

// PageTitle 原始 <title> 文字
func PageTitle(doc *goquery.Document) string {
	return firstText(doc.Find("title"))
}

func acceptableTitle(title string) bool {
	n := utf8.RuneCountInString(title)
	return n > minTitleLength && n < maxTitleLength
}

func titleFromJSONLD(doc *goquery.Document) (string, bool) {
	for _, recipe := range findRecipes(doc) {
		if name := common.CollapseSpaces(recipe.name()); acceptableTitle(name) {
			return name, true
		}
	}
	return "", false
}

func titleFromSelectors(doc *goquery.Document) (string, bool) {
	for _, selector := range titleSelectors {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if text := elementText(s); acceptableTitle(text) {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

func titleFromH1(doc *goquery.Document) (string, bool) {
	var found string
	doc.Find("h1").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := elementText(s)
		if !acceptableTitle(text) || isNavigationTitle(text) {
			return true
		}
		found = text
		return false
	})
	return found, found != ""
}

func isNavigationTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range h1Blocklist {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func titleFromDocumentTitle(doc *goquery.Document) (string, bool) {
	title := PageTitle(doc)
	if utf8.RuneCountInString(title) <= minTitleLength {
		return "", false
	}
	title = strings.TrimSpace(siteSuffix.ReplaceAllString(title, ""))
	return title, acceptableTitle(title)
}
