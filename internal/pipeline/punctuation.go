package pipeline

import (
	"strings"
	"unicode"
)

var sentencePunctuation = map[rune]struct{}{
	'.': {}, '!': {}, '?': {},
	'。': {}, '！': {}, '？': {}, // 。！？
}

var clausePunctuation = map[rune]struct{}{
	';': {}, ':': {}, ')': {}, ']': {}, '}': {}, ',': {}, '(': {}, '[': {}, '{': {}, '-': {},
	'"': {}, '\'': {}, '…': {}, // …
	'；': {}, '：': {}, '》': {}, '」': {}, '】': {}, '）': {}, // ；：》」】）
	'，': {}, '、': {}, '《': {}, '「': {}, '【': {}, '（': {}, // ，、《「【（
	'“': {}, '”': {}, '‘': {}, '’': {}, // “”‘’
}

// isPunctuation checks whether a rune is punctuation for caption purposes.
func isPunctuation(r rune) bool {
	if _, ok := sentencePunctuation[r]; ok {
		return true
	}
	if _, ok := clausePunctuation[r]; ok {
		return true
	}
	return unicode.IsPunct(r)
}

// isPunctuationOnly reports whether text is non-empty and made only of punctuation.
func isPunctuationOnly(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !isPunctuation(r) {
			return false
		}
	}
	return true
}

// normalizeToken lowercases a spoken word and trims surrounding punctuation
// so "Rome," matches the keyword "rome".
func normalizeToken(word string) string {
	return strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return isPunctuation(r) || unicode.IsSpace(r)
	}))
}

// keywordTokens splits a section name or keyword such as "ancient_rome" or
// "Ancient Rome" into normalized tokens.
func keywordTokens(keyword string) []string {
	fields := strings.FieldsFunc(keyword, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := normalizeToken(f); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
