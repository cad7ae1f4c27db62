// Package textmatch finds whole-word phrases in free text.
package textmatch

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Index returns the byte offset and length of the first occurrence of phrase
// in text that starts and ends on a word boundary. A match may extend over
// one of suffixes (plural endings) before the closing boundary. It returns
// -1, 0 when there is none. Both strings are compared as given.
func Index(text, phrase string, suffixes ...string) (int, int) {
	if phrase == "" {
		return -1, 0
	}

	for from := 0; from < len(text); {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(phrase)

		if boundaryBefore(text, start) {
			if boundaryAfter(text, end) {
				return start, len(phrase)
			}
			for _, s := range suffixes {
				if s != "" && strings.HasPrefix(text[end:], s) && boundaryAfter(text, end+len(s)) {
					return start, len(phrase) + len(s)
				}
			}
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return -1, 0
}

// Contains reports whether Index finds phrase.
func Contains(text, phrase string, suffixes ...string) bool {
	i, _ := Index(text, phrase, suffixes...)
	return i >= 0
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
