package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/cognicore/keyrank/pkg/keyrank/internalerr"
)

// candidate is the best row seen so far for one word of a frequency list.
type candidate struct {
	pos     Pos
	lemma   string
	freq    float64
	hasFreq bool
}

// Prepare builds sorted lexicon records from a tab-separated frequency list.
//
// Each line is word, POS, lemma, frequency; missing trailing fields are
// empty. POS "NOM" becomes NOUN, "ADJ" becomes ADJ, an empty POS is UNKNOWN
// and every other tag is STOP. When a word appears more than once, the row
// with the highest frequency wins, and a row with a lemma replaces an
// untagged one.
//
// Every word is kept, including nouns and adjectives that are their own
// lemma: the classifier's lower-case fallback relies on them. Words longer
// than MaxWordLen bytes are skipped.
func Prepare(r io.Reader) ([]Record, error) {
	rows := make(map[string]candidate)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			continue
		}

		fields := strings.SplitN(text, "\t", 5)
		for len(fields) < 4 {
			fields = append(fields, "")
		}
		word, tag, lemma, freqText := fields[0], fields[1], fields[2], fields[3]
		if word == "" || len(word) > MaxWordLen {
			continue
		}

		c := candidate{pos: sourcePos(tag), lemma: lemma}
		if freqText != "" {
			f, err := strconv.ParseFloat(freqText, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: frequency %q", internalerr.ErrInvalidInput, line, freqText)
			}
			c.freq, c.hasFreq = f, true
		}

		prev, seen := rows[word]
		if !seen || replaces(prev, c) {
			rows[word] = c
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read frequency list: %w", err)
	}

	words := make([]string, 0, len(rows))
	for word := range rows {
		words = append(words, word)
	}
	sort.Strings(words)

	records := make([]Record, len(words))
	for i, word := range words {
		c := rows[word]
		records[i] = Record{Word: word, Pos: c.pos, LemmaIndex: -1}
		if c.lemma == "" || c.lemma == word {
			continue
		}
		j := sort.SearchStrings(words, c.lemma)
		if j < len(words) && words[j] == c.lemma {
			records[i].LemmaIndex = int32(j)
		}
	}

	return records, nil
}

// replaces reports whether row next should take the place of prev.
func replaces(prev, next candidate) bool {
	switch {
	case !prev.hasFreq && next.hasFreq:
		return true
	case prev.hasFreq && next.hasFreq && prev.freq < next.freq:
		return true
	case prev.pos == Unknown && next.lemma != "":
		return true
	}
	return false
}

func sourcePos(tag string) Pos {
	switch tag {
	case "NOM":
		return Noun
	case "ADJ":
		return Adj
	case "":
		return Unknown
	default:
		return Stop
	}
}
