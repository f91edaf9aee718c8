package lexicon

// danishTables 丹麥文詞庫資料
var danishTables = Tables{
	Corrections: map[string]string{
		"ræsk":         "græsk",
		"yohurt":       "yoghurt",
		"hviøg":        "hvidløg",
		"kyllinebryst": "kyllingebryst",
		"spisesked":    "spiseske",
		"tesked":       "teske",
		"stykher":      "stykker",
		"pakher":       "pakker",
		"daser":        "dåser",
		"dose":         "dåse",
		"øg":           "løg",
		"røøg":         "rødløg",
		"fed hviøg":    "fed hvidløg", // 多詞鍵，逐詞比對時不會命中
		"citroner":     "citron",
		"kartofier":    "kartofler",
		"guierod":      "gulerod",
		"guierødder":   "gulerødder",
		"tomatcr":      "tomater",
		"basilikuni":   "basilikum",
		"persilje":     "persille",
	},

	// 只放有標準完整形式的縮寫，特殊單位不可放這裡
	Units: map[string]string{
		"spsk": "spiseske",
		"tsk":  "teske",
		"stk":  "stykker",
		"pk":   "pakke",
		"dl":   "deciliter",
		"g":    "gram",
		"kg":   "kilogram",
		"l":    "liter",
		"ml":   "milliliter",
		"cl":   "centiliter",
		"ds":   "dåse",
	},

	SpecialUnits: []string{
		"fed", "håndfuld", "håndfulde", "knivspids", "pind", "pose", "bundt",
		"bundle", "neve", "klat", "skive", "klump",
	},

	NonIngredients: []string{
		"styrke", "mere", "mindre", "efter", "smag", "behov", "ønske", "cirka", "ca",
		"evt", "eventuelt", "til", "som", "eller", "og", "af", "med", "uden", "for",
		"servering", "pynt", "garnering", "side", "ekstra", "let", "god", "fin", "stor", "lille",
	},

	Aliases: map[string][]string{
		"hvidløg":   {"hvidløgsfed"},
		"persille":  {"bredbladet persille", "bladpersille"},
		"basilikum": {"frisk basilikum"},
		"tomater":   {"hakkede tomater", "cherry tomater", "cocktail tomater"},
	},

	PrepTerms: []string{
		"finthakkede", "fintrevet", "hakket", "finsnittet", "opskåret", "skårne", "skåret",
		"delte", "opdelte", "smuldret", "fintsnittet", "groftrevet", "kogte", "ristede",
		"sautéede", "opvarmede", "grillede", "stegte", "blancherede", "røget",
		"skrællede", "rensede", "pressede", "finthakket", "grofthakket",
	},

	InstructionVerbs: []string{
		"bland", "tilsæt", "hæld", "kog", "steg", "varm", "server", "rør", "kom",
	},
}

// Danish 回傳預設的丹麥文詞庫
func Danish() *Lexicon {
	return New(danishTables)
}
