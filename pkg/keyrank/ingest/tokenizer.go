package ingest

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Tokenizer splits text into sentences and sentences into words.
type Tokenizer struct {
	alphabet Alphabet
}

// NewTokenizer creates a tokenizer for the given alphabet.
// A nil alphabet selects French.
func NewTokenizer(a Alphabet) *Tokenizer {
	if a == nil {
		a = French
	}
	return &Tokenizer{alphabet: a}
}

// Alphabet returns the tokenizer's alphabet.
func (t *Tokenizer) Alphabet() Alphabet {
	return t.alphabet
}

// SplitSentences cuts text at every '.' and newline. The separators are
// dropped, and the text after the last separator is always returned as the
// final sentence, even when empty.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '.' || text[i] == '\n' {
			sentences = append(sentences, text[start:i])
			start = i + 1
		}
	}
	return append(sentences, text[start:])
}

// SplitWords returns the maximal runs of word characters in sentence.
func (t *Tokenizer) SplitWords(sentence string) []string {
	return strings.FieldsFunc(sentence, func(r rune) bool {
		return !t.alphabet.IsWordChar(r)
	})
}

// Sentences composes text to NFC, so decomposed accents match the
// alphabet, then splits it into sentences of words.
func (t *Tokenizer) Sentences(text string) [][]string {
	parts := SplitSentences(norm.NFC.String(text))
	out := make([][]string, len(parts))
	for i, s := range parts {
		out[i] = t.SplitWords(s)
	}
	return out
}

func lower(a Alphabet, word string) string {
	return strings.Map(a.ToLower, word)
}
