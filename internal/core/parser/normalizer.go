package parser

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize 清理並標準化一段丹麥文文字
// 丟棄無效的 UTF-8 位元組、轉小寫、去頭尾空白，逐詞套用錯字更正；
// 沒有更正命中時才展開標準單位縮寫。結果以單一空格連接。
func (p *Parser) Normalize(raw string) string {
	text := strings.ToValidUTF8(raw, "")
	text = norm.NFC.String(text)
	text = strings.ToLower(strings.TrimSpace(text))

	words := strings.Fields(text)
	for i, word := range words {
		if corrected, ok := p.lex.Correct(word); ok {
			words[i] = corrected
			continue
		}
		if expanded, ok := p.lex.ExpandUnit(word); ok {
			words[i] = expanded
		}
	}
	return strings.Join(words, " ")
}
