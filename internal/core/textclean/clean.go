// Package textclean normalizes text produced by PDF decoders and OCR.
package textclean

import (
	"regexp"
	"strings"
	"unicode"
)

var blankLines = regexp.MustCompile(`\n\s*\n`)

// Clean collapses whitespace, rejoins words that extraction split into single
// letters, and drops every character other than letters, numbers, underscore,
// whitespace and ". , : / -". Clean is idempotent.
func Clean(raw string) string {
	text := raw
	for {
		next := cleanOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

// cleanOnce applies one pass of the rules. Stripping characters can leave new
// whitespace runs or single-letter runs behind, so Clean repeats it.
func cleanOnce(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = blankLines.ReplaceAllString(strings.TrimSpace(text), "\n")
	text = joinSplitWords(text)
	text = strings.Map(keepRune, text)
	return strings.TrimSpace(text)
}

// joinSplitWords removes the spaces inside runs such as "i n v o i c e". A run
// is two or more single word characters separated by one whitespace character;
// it must not be preceded or followed by a word character.
func joinSplitWords(text string) string {
	runes := []rune(text)
	n := len(runes)

	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < n; {
		if !isWord(runes[i]) || (i > 0 && isWord(runes[i-1])) {
			b.WriteRune(runes[i])
			i++
			continue
		}

		end := -1
		j := i + 1
		for {
			if j < n && isWord(runes[j]) {
				break
			}
			if j > i+1 {
				end = j
			}
			if j+1 < n && unicode.IsSpace(runes[j]) && isWord(runes[j+1]) {
				j += 2
				continue
			}
			break
		}

		if end < 0 {
			b.WriteRune(runes[i])
			i++
			continue
		}
		for k := i; k < end; k += 2 {
			b.WriteRune(runes[k])
		}
		i = end
	}
	return b.String()
}

func keepRune(r rune) rune {
	if isWord(r) || unicode.IsSpace(r) {
		return r
	}
	switch r {
	case '.', ',', ':', '/', '-':
		return r
	}
	return -1
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
