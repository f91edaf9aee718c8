package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"recipe-calculator/internal/pkg/common"
)

// 黏在食材名稱後面的固定說明片段，依序移除
var instructionFragments = []*regexp.Regexp{
	regexp.MustCompile(`(?i),?\s*(saft og .*skal.*)`), // "saft og fintrevet skal heraf"
	regexp.MustCompile(`(?i),?\s*(kun saften)`),
	regexp.MustCompile(`\(.*?\)`),
}

const (
	edgePunctuation = ",.- "
	maxCleanPasses  = 8
)

// CleanName 清理食材名稱
// 名稱為空、或是非食材詞時回傳 false，呼叫端應直接捨棄該行。
func (p *Parser) CleanName(raw string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(norm.NFC.String(raw)))

	// 反覆清理直到結果不再變化，確保 CleanName 冪等
	for i := 0; i < maxCleanPasses; i++ {
		next := p.cleanPass(name)
		if next == name {
			break
		}
		name = next
	}

	if name == "" || p.lex.IsNonIngredient(name) {
		return "", false
	}
	if canonical, ok := p.lex.Canonical(name); ok {
		return canonical, true
	}
	return name, true
}

func (p *Parser) cleanPass(s string) string {
	for _, re := range instructionFragments {
		s = re.ReplaceAllString(s, "")
	}
	s = p.removePrepTerms(s)
	s = common.CollapseSpaces(s)
	return strings.Trim(s, edgePunctuation)
}

// removePrepTerms 移除整詞的處理方式詞
// 比對會吃掉前後的分隔字元，相鄰的兩個詞需要重跑才能都移除
func (p *Parser) removePrepTerms(s string) string {
	if p.prepPattern == nil {
		return s
	}
	for {
		next := p.prepPattern.ReplaceAllString(s, "${1} ${2}")
		if next == s {
			return s
		}
		s = next
	}
}
