package parser

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"recipe-calculator/internal/pkg/common"
)

const (
	minLineLength = 3
	maxLineTokens = 10
)

// 捨棄原因
const (
	discardEmpty       = "empty"
	discardTooShort    = "too_short"
	discardTooLong     = "too_many_tokens"
	discardInstruction = "instruction"
)

// ParseBlock 解析多行文字（OCR 輸出）
func (p *Parser) ParseBlock(text string) []common.Ingredient {
	return p.parseCandidates(strings.Split(text, "\n"))
}

// ParseList 解析原始食材字串列表（例如 JSON-LD recipeIngredient）
func (p *Parser) ParseList(lines []string) []common.Ingredient {
	return p.parseCandidates(lines)
}

// ParseItems 逐項解析，不做步驟過濾，最後去重
// 用於結構化資料與 HTML 清單，這些來源本身已經是食材
func (p *Parser) ParseItems(items []string) []common.Ingredient {
	var ingredients []common.Ingredient
	for _, item := range items {
		if ing, ok := p.ParseLine(item); ok {
			ingredients = append(ingredients, ing)
		}
	}
	return Deduplicate(ingredients)
}

func (p *Parser) parseCandidates(lines []string) []common.Ingredient {
	var ingredients []common.Ingredient
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if reason := p.discardReason(line); reason != "" {
			common.LogDebug("略過非食材行",
				zap.String("line", line),
				zap.String("reason", reason),
			)
			continue
		}

		ing, ok := p.ParseLine(p.Normalize(line))
		if !ok {
			common.LogDebug("無法取得食材名稱", zap.String("line", line))
			continue
		}
		ingredients = append(ingredients, ing)
	}
	return Deduplicate(ingredients)
}

// discardReason 判斷一行是否應略過，回傳空字串表示保留
// 這是啟發式規則，可能誤刪較長的食材行，也可能漏掉短的步驟說明
func (p *Parser) discardReason(line string) string {
	if line == "" {
		return discardEmpty
	}
	if utf8.RuneCountInString(line) < minLineLength {
		return discardTooShort
	}
	if len(strings.Fields(line)) > maxLineTokens {
		return discardTooLong
	}
	if p.IsInstruction(line) {
		return discardInstruction
	}
	return ""
}

// IsInstruction 行內（不分大小寫）是否包含步驟動詞
func (p *Parser) IsInstruction(line string) bool {
	lower := strings.ToLower(line)
	for _, verb := range p.verbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

// Deduplicate 依名稱+單位去重，保留第一次出現的項目與原始順序
func Deduplicate(ingredients []common.Ingredient) []common.Ingredient {
	seen := make(map[string]struct{}, len(ingredients))
	unique := make([]common.Ingredient, 0, len(ingredients))
	for _, ing := range ingredients {
		key := ing.DedupKey()
		if _, exists := seen[key]; exists {
			common.LogInfo("略過重複食材",
				zap.String("name", ing.Name),
				zap.String("unit", ing.Unit),
			)
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, ing)
	}
	return unique
}

// SampleLines 自我檢測用的範例行
var SampleLines = []string{
	"6 fed hvidløg",
	"2 håndfulde bredbladet persille, finthakket",
	"1/2 citron, saft og fintrevet skal heraf",
	"3 store kartofler, skrællede og skåret i kvarte",
	"1 tsk salt",
	"2 dl mælk",
	"500 g pasta",
	"1 chili",
	"styrke",
	"mere",
}
