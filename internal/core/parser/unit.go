package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeUnit 標準化單位
// 特殊單位（fed、håndfuld…）原樣保留，優先於其他規則；
// 標準縮寫展開為完整形式；未知單位原樣回傳。
func (p *Parser) NormalizeUnit(raw string) string {
	unit := strings.ToLower(strings.TrimSpace(raw))
	if unit == "" {
		return ""
	}
	if p.lex.IsSpecialUnit(unit) {
		return unit
	}
	if expanded, ok := p.lex.ExpandUnit(unit); ok {
		return expanded
	}
	return unit
}

// matchUnit 在 s 開頭比對單位（不分大小寫、長者優先、需落在詞邊界）
// 回傳原始字面、剩餘文字與是否命中
func (p *Parser) matchUnit(s string) (string, string, bool) {
	for _, unit := range p.units {
		if len(s) < len(unit) {
			continue
		}
		prefix := s[:len(unit)]
		if !strings.EqualFold(prefix, unit) {
			continue
		}
		rest := s[len(unit):]
		if !atWordBoundary(rest) {
			continue
		}
		return prefix, strings.TrimSpace(rest), true
	}
	return "", s, false
}

// atWordBoundary 判斷 rest 的開頭是否為詞邊界
func atWordBoundary(rest string) bool {
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}
