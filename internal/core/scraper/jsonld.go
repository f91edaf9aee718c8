package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"recipe-calculator/internal/pkg/common"
)

const recipeType = "Recipe"

// recipeNode 結構化資料中 @type 含 Recipe 的物件
type recipeNode map[string]any

// findRecipes 找出頁面所有 ld+json 區塊中的 Recipe 物件（依出現順序）
// 無法解析的區塊直接略過
func findRecipes(doc *goquery.Document) []recipeNode {
	var recipes []recipeNode
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data any
		if err := common.ParseJSON(strings.TrimSpace(s.Text()), &data); err != nil {
			return
		}
		collectRecipes(data, &recipes)
	})
	return recipes
}

// collectRecipes 走訪單一物件、頂層陣列、@graph 與 mainEntity
func collectRecipes(v any, out *[]recipeNode) {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			collectRecipes(item, out)
		}
	case map[string]any:
		if isRecipeType(t["@type"]) {
			*out = append(*out, t)
		}
		if graph, ok := t["@graph"]; ok {
			collectRecipes(graph, out)
		}
		if entity, ok := t["mainEntity"]; ok {
			collectRecipes(entity, out)
		}
	}
}

// isRecipeType @type 可以是字串或字串陣列
func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return t == recipeType
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == recipeType {
				return true
			}
		}
	}
	return false
}

// ingredients recipeIngredient 可以是字串陣列或單一字串
func (r recipeNode) ingredients() []string {
	switch t := r["recipeIngredient"].(type) {
	case string:
		return []string{t}
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		return items
	}
	return nil
}

func (r recipeNode) name() string {
	s, _ := r["name"].(string)
	return strings.TrimSpace(s)
}
