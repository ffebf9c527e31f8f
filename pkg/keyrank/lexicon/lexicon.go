package lexicon

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/cognicore/keyrank/pkg/keyrank/internalerr"
)

// Pos is a part-of-speech tag.
type Pos uint8

const (
	Unknown Pos = iota
	Adj
	Adv
	Stop
	Noun
	Verb
)

func (p Pos) String() string {
	switch p {
	case Adj:
		return "ADJ"
	case Adv:
		return "ADV"
	case Stop:
		return "STOP"
	case Noun:
		return "NOUN"
	case Verb:
		return "VER"
	default:
		return "UNKNOWN"
	}
}

// Entry is one word of the lexicon with its tag and lemma.
// Lemma is never empty for a loaded entry: it is either Word itself or the
// Word of another entry.
type Entry struct {
	Word  string
	Pos   Pos
	Lemma string
}

// Lexicon is an immutable dictionary sorted by word.
//
// Lookups are binary searches, so the file it was read from must already be
// sorted by word bytes. The producer guarantees this; Read does not re-sort.
// A Lexicon is safe for concurrent reads.
type Lexicon struct {
	entries []Entry
}

// recordHeader is tag (1) + lemma index (4) + word length (1).
const recordHeader = 6

// Load reads a binary lexicon file.
func Load(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon: %w", err)
	}
	defer f.Close()

	var sizeHint int
	if st, err := f.Stat(); err == nil {
		sizeHint = int(st.Size() / 17)
	}

	return read(f, sizeHint)
}

// Read decodes a lexicon from r until end of stream.
//
// A truncated final record is dropped silently. Lemma indexes are resolved
// once the whole table is in memory, since a record may point at a word that
// appears later in the stream. An index outside the table is reported as
// internalerr.ErrInvalidLexicon.
func Read(r io.Reader) (*Lexicon, error) {
	return read(r, 0)
}

func read(r io.Reader, sizeHint int) (*Lexicon, error) {
	br := bufio.NewReader(r)
	entries := make([]Entry, 0, sizeHint)
	indexes := make([]int32, 0, sizeHint)

	var hdr [recordHeader]byte
	for {
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("read lexicon record %d: %w", len(entries), err)
		}

		word := make([]byte, hdr[5])
		if _, err := io.ReadFull(br, word); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("read lexicon record %d: %w", len(entries), err)
		}

		entries = append(entries, Entry{Word: string(word), Pos: tagPos(hdr[0])})
		indexes = append(indexes, int32(binary.LittleEndian.Uint32(hdr[1:5])))
	}

	for i, idx := range indexes {
		switch {
		case idx == -1:
			entries[i].Lemma = entries[i].Word
		case idx < 0 || int(idx) >= len(entries):
			return nil, fmt.Errorf("%w: record %d (%q) has lemma index %d, table has %d entries",
				internalerr.ErrInvalidLexicon, i, entries[i].Word, idx, len(entries))
		default:
			entries[i].Lemma = entries[idx].Word
		}
	}

	return &Lexicon{entries: entries}, nil
}

// Lookup returns the entry whose word is exactly word.
func (l *Lexicon) Lookup(word string) (Entry, bool) {
	i := sort.Search(len(l.entries), func(i int) bool {
		return l.entries[i].Word >= word
	})
	if i < len(l.entries) && l.entries[i].Word == word {
		return l.entries[i], true
	}
	return Entry{}, false
}

// Len returns the number of entries.
func (l *Lexicon) Len() int {
	return len(l.entries)
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	s := Stats{Entries: len(l.entries), ByPos: make(map[Pos]int)}
	for _, e := range l.entries {
		s.ByPos[e.Pos]++
		if e.Lemma != e.Word {
			s.WithLemma++
		}
	}
	return s
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	Entries   int         // Total number of entries
	WithLemma int         // Entries whose lemma differs from the word
	ByPos     map[Pos]int // Entry count per tag
}

func tagPos(b byte) Pos {
	switch b {
	case 'N':
		return Noun
	case 'A':
		return Adj
	case 'S':
		return Stop
	default:
		return Unknown
	}
}

func posTag(p Pos) byte {
	switch p {
	case Noun:
		return 'N'
	case Adj:
		return 'A'
	case Stop:
		return 'S'
	default:
		return ' '
	}
}
