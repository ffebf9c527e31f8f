package ingest

import (
	"unicode/utf8"

	"github.com/cognicore/keyrank/pkg/keyrank/lexicon"
)

// NoNode marks a token that has no graph node.
const NoNode = -1

// minWordLen is the shortest token, in characters, that can carry content.
const minWordLen = 3

// Token is a classified word of a sentence.
//
// Node is the index of the token's lemma in the graph node table, or NoNode
// for stop tokens. It is a lookup handle only; the graph owns the node.
type Token struct {
	Surface string
	Pos     lexicon.Pos
	Lemma   string
	Node    int
}

// Dictionary is the read side of a lexicon.
type Dictionary interface {
	Lookup(word string) (lexicon.Entry, bool)
}

// Classifier maps words to a part of speech and a lemma.
type Classifier struct {
	dict      Dictionary
	alphabet  Alphabet
	stopwords map[string]struct{}
}

// NewClassifier creates a classifier backed by dict. Extra stopwords are
// matched after lower-casing and always classify as STOP. A nil alphabet
// selects French.
func NewClassifier(dict Dictionary, a Alphabet, stopwords []string) *Classifier {
	if a == nil {
		a = French
	}
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[lower(a, w)] = struct{}{}
	}
	return &Classifier{dict: dict, alphabet: a, stopwords: stops}
}

// Classify returns the part of speech and lemma of word.
//
// Words shorter than three characters or without any letter are STOP with
// an empty lemma. Otherwise the word is looked up as written, then lower
// cased. Words the lexicon does not know are UNKNOWN and keep themselves as
// lemma.
func (c *Classifier) Classify(word string) (lexicon.Pos, string) {
	if utf8.RuneCountInString(word) < minWordLen || !c.hasLetter(word) {
		return lexicon.Stop, ""
	}

	folded := lower(c.alphabet, word)
	if _, ok := c.stopwords[folded]; ok {
		return lexicon.Stop, ""
	}

	if pos, lemma, ok := c.lookup(word); ok {
		return pos, lemma
	}
	if folded != word {
		if pos, lemma, ok := c.lookup(folded); ok {
			return pos, lemma
		}
	}

	return lexicon.Unknown, word
}

// lookup resolves one spelling. ok is false when the caller should keep
// trying: the word is absent, or tagged without a usable lemma.
func (c *Classifier) lookup(word string) (lexicon.Pos, string, bool) {
	e, found := c.dict.Lookup(word)
	if !found {
		return lexicon.Unknown, "", false
	}
	if e.Pos == lexicon.Stop {
		return lexicon.Stop, "", true
	}
	if e.Lemma == "" {
		return lexicon.Unknown, "", false
	}
	return e.Pos, e.Lemma, true
}

func (c *Classifier) hasLetter(word string) bool {
	for _, r := range word {
		if c.alphabet.IsLetter(r) {
			return true
		}
	}
	return false
}

// Tokens classifies each word of a sentence.
func (c *Classifier) Tokens(words []string) []Token {
	tokens := make([]Token, len(words))
	for i, w := range words {
		pos, lemma := c.Classify(w)
		tokens[i] = Token{Surface: w, Pos: pos, Lemma: lemma, Node: NoNode}
	}
	return tokens
}
