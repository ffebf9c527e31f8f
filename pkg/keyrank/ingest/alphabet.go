package ingest

import "unicode"

// Alphabet decides which characters make up words and how they fold to
// lower case. It replaces any dependence on the process locale, so the same
// text tokenizes the same way everywhere.
type Alphabet interface {
	// IsWordChar reports whether r belongs inside a token.
	IsWordChar(r rune) bool
	// IsLetter reports whether r is alphabetic.
	IsLetter(r rune) bool
	// ToLower folds r to lower case. Characters outside the alphabet are
	// returned unchanged.
	ToLower(r rune) rune
}

// FrenchLetters are the accented letters recognised by French.
const FrenchLetters = "éÉêÊèÈëËâÂàÀîÎïÏôÔùÙûÛüÜçÇœŒæÆ"

// French is the default alphabet: ASCII letters and digits, the hyphen, and
// FrenchLetters.
var French Alphabet = NewAlphabet(FrenchLetters)

type latinAlphabet struct {
	extra map[rune]struct{}
}

// NewAlphabet returns an alphabet of ASCII letters, digits and the hyphen,
// extended with every rune of letters.
func NewAlphabet(letters string) Alphabet {
	extra := make(map[rune]struct{}, len(letters))
	for _, r := range letters {
		extra[r] = struct{}{}
	}
	return &latinAlphabet{extra: extra}
}

func (a *latinAlphabet) IsWordChar(r rune) bool {
	return a.IsLetter(r) || (r >= '0' && r <= '9') || r == '-'
}

func (a *latinAlphabet) IsLetter(r rune) bool {
	if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
		return true
	}
	_, ok := a.extra[r]
	return ok
}

func (a *latinAlphabet) ToLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	if _, ok := a.extra[r]; !ok {
		return r
	}
	// Only fold into a letter the alphabet knows about.
	if l := unicode.ToLower(r); l != r {
		if _, ok := a.extra[l]; ok {
			return l
		}
	}
	return r
}
