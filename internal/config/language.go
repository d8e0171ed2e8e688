package config

import "strings"

// CJK language codes (first 3 chars of the code).
var cjkCodes = map[string]bool{
	"zho": true,
	"jpn": true,
	"kor": true,
	"chi": true,
	"zh":  true,
	"ja":  true,
	"ko":  true,
}

// IsCJK returns true if the language code represents Chinese, Japanese, or Korean.
func IsCJK(langCode string) bool {
	langCode = strings.ToLower(langCode)
	if i := strings.IndexAny(langCode, "-_"); i > 0 {
		langCode = langCode[:i]
	}
	if len(langCode) > 3 {
		langCode = langCode[:3]
	}
	return cjkCodes[langCode]
}

// WordJoiner returns the separator placed between caption words for a language.
// Korean is spaced like Latin scripts; Chinese and Japanese are not.
func WordJoiner(langCode string) string {
	if IsCJK(langCode) && !strings.HasPrefix(strings.ToLower(langCode), "ko") {
		return ""
	}
	return " "
}
