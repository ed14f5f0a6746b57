package gateway

import "sort"

const DefaultLocale = "en_US"

// SupportedLocales lists the LANGUAGE values accepted by the hosted payment
// page, keyed by code.
var SupportedLocales = map[string]string{
	"ar_AR": "Arabic",
	"cs_CZ": "Czech",
	"de_DE": "German",
	"dk_DK": "Danish",
	"el_GR": "Greek",
	"en_US": "English",
	"es_ES": "Spanish",
	"fi_FI": "Finnish",
	"fr_FR": "French",
	"he_IL": "Hebrew",
	"hu_HU": "Hungarian",
	"it_IT": "Italian",
	"ja_JP": "Japanese",
	"ko_KR": "Korean",
	"nl_BE": "Flemish",
	"nl_NL": "Dutch",
	"no_NO": "Norwegian",
	"pl_PL": "Polish",
	"pt_PT": "Portuguese",
	"ru_RU": "Russian",
	"se_SE": "Swedish",
	"sk_SK": "Slovak",
	"tr_TR": "Turkish",
	"zh_CN": "Simplified Chinese",
}

func IsSupportedLocale(code string) bool {
	_, ok := SupportedLocales[code]
	return ok
}

// LocaleCodes returns the supported codes sorted.
func LocaleCodes() []string {
	codes := make([]string, 0, len(SupportedLocales))
	for code := range SupportedLocales {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
