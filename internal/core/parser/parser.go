// Package parser 將雜亂的丹麥文食譜文字轉換為結構化食材 (名稱、數量、單位)。
//
// 流程：Normalize 修正 OCR 錯字並展開單位縮寫，ParseLine 以前綴比對取出數量與單位，
// CleanName 清理名稱，ParseBlock / ParseList 過濾步驟說明並去重。
// Parser 無可變狀態，可同時被多個請求使用。
package parser

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"recipe-calculator/internal/core/lexicon"
)

// UnknownAmount 找不到數量時的佔位符
const UnknownAmount = "?"

// Parser 食材解析器
type Parser struct {
	lex         *lexicon.Lexicon
	units       []string
	verbs       []string
	prepPattern *regexp.Regexp
}

// New 以指定詞庫建立解析器
func New(lex *lexicon.Lexicon) *Parser {
	return &Parser{
		lex:         lex,
		units:       lex.UnitTokens(),
		verbs:       lex.InstructionVerbs(),
		prepPattern: buildPrepPattern(lex.PrepTerms()),
	}
}

// Lexicon 回傳解析器使用的詞庫
func (p *Parser) Lexicon() *lexicon.Lexicon {
	return p.lex
}

// buildPrepPattern 以整詞方式比對處理方式詞
// Go 的 \b 只認 ASCII，這裡改用 Unicode 字母/數字作為詞邊界
func buildPrepPattern(terms []string) *regexp.Regexp {
	if len(terms) == 0 {
		return nil
	}
	sorted := append([]string(nil), terms...)
	sort.Slice(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})
	quoted := make([]string, len(sorted))
	for i, t := range sorted {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}_])(?:` + strings.Join(quoted, "|") + `)([^\p{L}\p{N}_]|$)`)
}
