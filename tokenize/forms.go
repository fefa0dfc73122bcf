package tokenize

import "strings"

// NoForm is the conjugation tag of a unit without inflection.
const NoForm = "*"

// formLabels maps segmenter conjugation forms to display labels. An empty
// label hides the form.
var formLabels = map[string]string{
	NoForm: NoForm,

	// JUMAN
	"タ形":       "Past",
	"ダ列タ形":     "Past",
	"タ系連用テ形":   "Te-form",
	"ダ列タ系連用テ形": "Te-form",
	"タ系連用タリ形":  "Tari-form",
	"命令形":      "Imperative",
	"意志形":      "Volitional",
	"基本条件形":    "",

	// IPA
	"基本形":   "",
	"連用形":   "Continuative",
	"連用タ接続": "Ta-stem",
	"連用テ接続": "Te-form",
	"未然形":   "Negative stem",
	"未然ウ接続": "Volitional stem",
	"仮定形":   "Conditional",
	"仮定縮約１": "Conditional",
	"体言接続":  "Attributive",
	"命令ｅ":   "Imperative",
	"命令ｒｏ":  "Imperative",
	"命令ｙｏ":  "Imperative",
	"命令ｉ":   "Imperative",

	// UniDic
	"終止形-一般":  "",
	"連体形-一般":  "",
	"連用形-一般":  "Continuative",
	"連用形-促音便": "Ta-stem",
	"連用形-イ音便": "Ta-stem",
	"連用形-撥音便": "Ta-stem",
	"未然形-一般":  "Negative stem",
	"仮定形-一般":  "Conditional",
	"意志推量形":   "Volitional",
}

// FormLabel returns the display label of a conjugation form. Unknown forms
// are returned as is.
func FormLabel(form string) string {
	if label, ok := formLabels[form]; ok {
		return label
	}
	return form
}

// FormsString joins the labels of forms, skipping hidden ones. A token with
// no inflection yields "*".
func FormsString(forms []string) string {
	labels := make([]string, 0, len(forms))
	for _, f := range forms {
		if l := FormLabel(f); l != "" {
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		return NoForm
	}
	return strings.Join(labels, ", ")
}
