// Package textutil provides text processing utilities for post classification.
package textutil

import (
	"strings"
	"unicode/utf8"
)

const (
	minWordLen = 2
	maxWordLen = 10
)

// replaced bytes are turned into word separators.
var replaced = asciiSet(".?!,:;(){}[]/=|~")

// dropped bytes are removed so that "don't" and "non-blocking" stay one word.
var dropped = asciiSet("'\"`-_*&")

type byteSet [128]bool

func asciiSet(chars string) byteSet {
	var s byteSet
	for i := 0; i < len(chars); i++ {
		s[chars[i]] = true
	}
	return s
}

// Words normalizes free text into a sequence of word tokens.
//
// Non-ASCII runes are removed, punctuation is either replaced by a space or
// dropped, the text is lower-cased and split on whitespace. Tokens made only
// of letters with a length strictly between 2 and 10 are kept, a single
// trailing "s" is stripped and tokens of length 2 or less are discarded.
// Duplicates are kept in source order.
func Words(text string) []string {
	buf := make([]byte, 0, len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r >= utf8.RuneSelf {
			continue
		}
		c := byte(r)
		switch {
		case replaced[c]:
			buf = append(buf, ' ')
		case dropped[c]:
		default:
			buf = append(buf, c)
		}
	}

	// buf only holds ASCII bytes, so it is valid UTF-8.
	fields := strings.Fields(strings.ToLower(string(buf)))

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= minWordLen || len(f) >= maxWordLen || !isLetters(f) {
			continue
		}
		f = Depluralize(f)
		if len(f) <= minWordLen {
			continue
		}
		words = append(words, f)
	}
	return words
}

// Depluralize strips a single trailing "s". Irregular plurals are not handled.
func Depluralize(word string) string {
	return strings.TrimSuffix(word, "s")
}

func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// IsWord reports whether word has a shape Words can produce: lower-case
// letters only, longer than 2 and shorter than 10 bytes.
func IsWord(word string) bool {
	return len(word) > minWordLen && len(word) < maxWordLen && isLetters(word)
}
