// Package lexicon 提供丹麥文食材解析所需的靜態詞庫。
// Lexicon 建立後不可變，可在多個 goroutine 間共用。
package lexicon

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Tables 詞庫原始資料，用於建立 Lexicon
type Tables struct {
	Corrections      map[string]string   `json:"corrections"`       // OCR 常見錯字 → 正確拼寫
	Units            map[string]string   `json:"units"`             // 標準單位縮寫 → 完整形式
	SpecialUnits     []string            `json:"special_units"`     // 不可轉換的特殊單位
	NonIngredients   []string            `json:"non_ingredients"`   // 永遠不是食材的詞
	Aliases          map[string][]string `json:"aliases"`           // 標準名稱 → 變體
	PrepTerms        []string            `json:"prep_terms"`        // 需從名稱移除的處理方式詞
	InstructionVerbs []string            `json:"instruction_verbs"` // 判定為步驟說明的動詞
}

// Lexicon 不可變詞庫
type Lexicon struct {
	corrections      map[string]string
	units            map[string]string
	expansions       map[string]string // 完整形式 → 縮寫
	specialUnits     map[string]struct{}
	nonIngredients   map[string]struct{}
	aliases          map[string][]string
	aliasIndex       map[string]string // 變體 → 標準名稱
	prepTerms        []string
	instructionVerbs []string
	unitTokens       []string // 所有可辨識單位，長者優先
}

// New 由 Tables 建立詞庫，所有資料都會複製並轉為小寫
func New(t Tables) *Lexicon {
	l := &Lexicon{
		corrections:    make(map[string]string, len(t.Corrections)),
		units:          make(map[string]string, len(t.Units)),
		expansions:     make(map[string]string, len(t.Units)),
		specialUnits:   toSet(t.SpecialUnits),
		nonIngredients: toSet(t.NonIngredients),
		aliases:        make(map[string][]string, len(t.Aliases)),
		aliasIndex:     make(map[string]string),
	}

	for k, v := range t.Corrections {
		l.corrections[lower(k)] = lower(v)
	}
	for abbr, full := range t.Units {
		l.units[lower(abbr)] = lower(full)
		l.expansions[lower(full)] = lower(abbr)
	}
	for canonical, variants := range t.Aliases {
		c := lower(canonical)
		vs := make([]string, 0, len(variants))
		for _, v := range variants {
			vs = append(vs, lower(v))
			l.aliasIndex[lower(v)] = c
		}
		l.aliases[c] = vs
	}
	for _, p := range t.PrepTerms {
		l.prepTerms = append(l.prepTerms, lower(p))
	}
	for _, v := range t.InstructionVerbs {
		l.instructionVerbs = append(l.instructionVerbs, lower(v))
	}

	l.unitTokens = buildUnitTokens(l)
	return l
}

// buildUnitTokens 合併縮寫、完整形式與特殊單位，依長度由長到短排序
func buildUnitTokens(l *Lexicon) []string {
	seen := make(map[string]struct{})
	var tokens []string
	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		tokens = append(tokens, s)
	}
	for abbr, full := range l.units {
		add(abbr)
		add(full)
	}
	for u := range l.specialUnits {
		add(u)
	}

	sort.Slice(tokens, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(tokens[i]), utf8.RuneCountInString(tokens[j])
		if li != lj {
			return li > lj
		}
		return tokens[i] < tokens[j]
	})
	return tokens
}

// Correct 查詢單一詞的更正拼寫
func (l *Lexicon) Correct(token string) (string, bool) {
	v, ok := l.corrections[token]
	return v, ok
}

// ExpandUnit 查詢標準單位縮寫的完整形式
func (l *Lexicon) ExpandUnit(abbr string) (string, bool) {
	v, ok := l.units[abbr]
	return v, ok
}

// Abbreviation 由完整形式反查縮寫
func (l *Lexicon) Abbreviation(expansion string) (string, bool) {
	v, ok := l.expansions[expansion]
	return v, ok
}

// IsSpecialUnit 是否為特殊單位
func (l *Lexicon) IsSpecialUnit(unit string) bool {
	_, ok := l.specialUnits[unit]
	return ok
}

// IsNonIngredient 是否為非食材詞
func (l *Lexicon) IsNonIngredient(word string) bool {
	_, ok := l.nonIngredients[word]
	return ok
}

// Canonical 若 name 是某個食材的變體，回傳標準名稱
func (l *Lexicon) Canonical(name string) (string, bool) {
	v, ok := l.aliasIndex[name]
	return v, ok
}

// UnitTokens 回傳所有可辨識單位（長者優先）的副本
func (l *Lexicon) UnitTokens() []string {
	return append([]string(nil), l.unitTokens...)
}

// PrepTerms 回傳處理方式詞的副本
func (l *Lexicon) PrepTerms() []string {
	return append([]string(nil), l.prepTerms...)
}

// InstructionVerbs 回傳步驟動詞的副本
func (l *Lexicon) InstructionVerbs() []string {
	return append([]string(nil), l.instructionVerbs...)
}

// Tables 匯出詞庫內容（副本），供 CLI 顯示
func (l *Lexicon) Tables() Tables {
	t := Tables{
		Corrections:      make(map[string]string, len(l.corrections)),
		Units:            make(map[string]string, len(l.units)),
		SpecialUnits:     sortedKeys(l.specialUnits),
		NonIngredients:   sortedKeys(l.nonIngredients),
		Aliases:          make(map[string][]string, len(l.aliases)),
		PrepTerms:        l.PrepTerms(),
		InstructionVerbs: l.InstructionVerbs(),
	}
	for k, v := range l.corrections {
		t.Corrections[k] = v
	}
	for k, v := range l.units {
		t.Units[k] = v
	}
	for k, v := range l.aliases {
		t.Aliases[k] = append([]string(nil), v...)
	}
	return t
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[lower(it)] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
