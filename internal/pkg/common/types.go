package common

import (
	"fmt"
	"strings"
)

// Ingredient 解析後的食材
// Amount 為顯示用字串（如 "2-3"、"1,5"、"½"），找不到數量時為 "?"
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

// String 以 "數量 單位 名稱" 格式輸出
func (i Ingredient) String() string {
	parts := make([]string, 0, 3)
	parts = append(parts, i.Amount)
	if i.Unit != "" {
		parts = append(parts, i.Unit)
	}
	parts = append(parts, i.Name)
	return strings.Join(parts, " ")
}

// DedupKey 去重用的鍵：名稱 + 單位（皆轉小寫）
func (i Ingredient) DedupKey() string {
	return fmt.Sprintf("%s_%s", strings.ToLower(i.Name), strings.ToLower(i.Unit))
}

// RecipeResponse 服務回應
// RecipeName 只在網址解析時填入，圖片解析時一律省略
type RecipeResponse struct {
	Ingredients []Ingredient `json:"ingredients"`
	Success     bool         `json:"success"`
	RecipeName  *string      `json:"recipeName,omitempty"`
	Error       *string      `json:"error,omitempty"`
}

// 解析失敗時回傳給使用者的丹麥文訊息
const (
	MsgNoIngredientsInImage = "Kunne ikke finde ingredienser i billedet"
	MsgNoIngredientsOnPage  = "Kunne ikke finde ingredienser på siden"
	MsgNoIngredientsInText  = "Kunne ikke finde ingredienser i teksten"
)

// NewRecipeResponse 依食材數量組裝回應，沒有食材時 success=false 並附上訊息
func NewRecipeResponse(ingredients []Ingredient, recipeName string, failureMsg string) *RecipeResponse {
	if ingredients == nil {
		ingredients = []Ingredient{}
	}
	resp := &RecipeResponse{
		Ingredients: ingredients,
		Success:     len(ingredients) > 0,
	}
	if recipeName != "" {
		resp.RecipeName = StringPtr(recipeName)
	}
	if !resp.Success {
		resp.Error = StringPtr(failureMsg)
	}
	return resp
}

// FormatIngredients 格式化食材列表
func FormatIngredients(ingredients []Ingredient) string {
	var sb strings.Builder
	for _, ing := range ingredients {
		sb.WriteString("- ")
		sb.WriteString(ing.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
