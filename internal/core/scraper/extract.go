package scraper

import (
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"recipe-calculator/internal/core/parser"
	"recipe-calculator/internal/pkg/common"
)

// 食材容器選擇器，依優先順序
var ingredientSelectors = []string{
	".recipe-ingredients",
	".ingredients-list",
	".ingredient-list",
	".ingredients",
	`[itemprop="recipeIngredient"]`,
	".recipe__ingredients",
	".opskrift-ingredienser",
	".ingredient-group",
	".recipe-ingredients__list",
	".ingredienser",
	".wprm-recipe-ingredient",
	".wprm-recipe-ingredients",
}

// 清單項目文字長度需大於此值
const minItemLength = 2

// 擷取策略名稱
const (
	StrategyJSONLD   = "json-ld"
	StrategySelector = "selector"
	StrategyGeneric  = "generic-li"
)

// extraction 單一策略的結果，candidates 為交給解析器的項目數
type extraction struct {
	ingredients []common.Ingredient
	candidates  int
	strategy    string
}

// ingredientStrategy 單一擷取策略；ok=false 表示不適用，交給下一個策略
type ingredientStrategy struct {
	name    string
	extract func(doc *goquery.Document) (result extraction, ok bool)
}

// Extractor 從已解析的頁面擷取食材與標題，無可變狀態
type Extractor struct {
	parser     *parser.Parser
	strategies []ingredientStrategy
}

// NewExtractor 創建擷取器
func NewExtractor(p *parser.Parser) *Extractor {
	e := &Extractor{parser: p}
	e.strategies = []ingredientStrategy{
		{name: StrategyJSONLD, extract: e.fromJSONLD},
		{name: StrategySelector, extract: e.fromSelectors},
		{name: StrategyGeneric, extract: e.fromGenericLists},
	}
	return e
}

// Ingredients 依序嘗試各策略，第一個產生食材的策略勝出
// 回傳使用的策略名稱，全部失敗時為空字串
func (e *Extractor) Ingredients(doc *goquery.Document) ([]common.Ingredient, string) {
	r := e.extract(doc)
	return r.ingredients, r.strategy
}

func (e *Extractor) extract(doc *goquery.Document) extraction {
	for _, s := range e.strategies {
		r, ok := s.extract(doc)
		if ok && len(r.ingredients) > 0 {
			r.strategy = s.name
			common.LogDebug("擷取食材成功",
				zap.String("strategy", s.name),
				zap.Int("candidates", r.candidates),
				zap.Int("count", len(r.ingredients)),
			)
			return r
		}
	}
	return extraction{}
}

func (e *Extractor) parseItems(items []string) extraction {
	return extraction{ingredients: e.parser.ParseItems(items), candidates: len(items)}
}

// fromJSONLD 每個 Recipe 物件各自解析，第一個有結果的勝出
func (e *Extractor) fromJSONLD(doc *goquery.Document) (extraction, bool) {
	for _, recipe := range findRecipes(doc) {
		if r := e.parseItems(recipe.ingredients()); len(r.ingredients) > 0 {
			return r, true
		}
	}
	return extraction{}, false
}

// fromSelectors 第一個有命中元素的選擇器即決定結果，即使解析後為空
func (e *Extractor) fromSelectors(doc *goquery.Document) (extraction, bool) {
	for _, selector := range ingredientSelectors {
		elements := doc.Find(selector)
		if elements.Length() == 0 {
			continue
		}
		common.LogDebug("找到食材區塊", zap.String("selector", selector), zap.Int("elements", elements.Length()))

		var items []string
		elements.Each(func(_ int, el *goquery.Selection) {
			if lis := el.Find("li"); lis.Length() > 0 {
				items = append(items, itemTexts(lis)...)
				return
			}
			items = append(items, itemTexts(el)...)
		})
		return e.parseItems(items), true
	}
	return extraction{}, false
}

func (e *Extractor) fromGenericLists(doc *goquery.Document) (extraction, bool) {
	return e.parseItems(itemTexts(doc.Find("li"))), true
}

// itemTexts 取出每個元素的文字（合併空白），略過過短的項目
func itemTexts(sel *goquery.Selection) []string {
	var texts []string
	sel.Each(func(_ int, s *goquery.Selection) {
		text := elementText(s)
		if utf8.RuneCountInString(text) > minItemLength {
			texts = append(texts, text)
		}
	})
	return texts
}

func elementText(s *goquery.Selection) string {
	return common.CollapseSpaces(s.Text())
}

// firstText 取第一個元素的文字
func firstText(sel *goquery.Selection) string {
	return elementText(sel.First())
}
