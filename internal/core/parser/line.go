package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"recipe-calculator/internal/pkg/common"
)

// amountPattern 行首的數量
// 整數/小數/分數與範圍 ("2-3", "1,5", "1/2")、"?"、數字加分數符號 ("1 ½")、單獨分數符號
// 數字加分數符號放在最前面，否則 "1 ½" 只會取到 "1"
var amountPattern = regexp.MustCompile(`^(\d+\s*[½¼¾]|\d+(?:[.,/]\d+)?(?:\s*-\s*\d+(?:[.,/]\d+)?)?|\?|[½¼¾])`)

// ParseLine 解析單行食材文字
// 數量與單位只在行首比對一次；名稱清理後為空時整行捨棄（即使已找到數量）。
func (p *Parser) ParseLine(text string) (common.Ingredient, bool) {
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return common.Ingredient{}, false
	}

	amount := UnknownAmount
	remaining := text
	if loc := amountPattern.FindStringSubmatchIndex(text); loc != nil {
		amount = text[loc[2]:loc[3]]
		remaining = strings.TrimSpace(text[loc[1]:])
	}

	unit := ""
	if raw, rest, ok := p.matchUnit(remaining); ok {
		unit = p.NormalizeUnit(raw)
		remaining = rest
	}

	name, ok := p.CleanName(remaining)
	if !ok {
		return common.Ingredient{}, false
	}

	return common.Ingredient{
		Name:   name,
		Amount: amount,
		Unit:   unit,
	}, true
}
