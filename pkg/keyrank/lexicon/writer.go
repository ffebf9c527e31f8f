package lexicon

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/cognicore/keyrank/pkg/keyrank/internalerr"
)

// MaxWordLen is the longest word, in bytes, a record can carry.
const MaxWordLen = 255

// Record is one entry as stored on disk. LemmaIndex is the position of the
// lemma's own record in the same sorted table, or -1.
//
// Only NOUN, ADJ and STOP have a tag byte; any other Pos is written as
// UNKNOWN.
type Record struct {
	Word       string
	Pos        Pos
	LemmaIndex int32
}

// Write encodes records in order. The caller is responsible for sorting them
// by word and for computing lemma indexes against that order.
func Write(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)

	var hdr [recordHeader]byte
	for i, rec := range records {
		if len(rec.Word) > MaxWordLen {
			return fmt.Errorf("%w: record %d: word is %d bytes, max %d",
				internalerr.ErrInvalidInput, i, len(rec.Word), MaxWordLen)
		}
		hdr[0] = posTag(rec.Pos)
		binary.LittleEndian.PutUint32(hdr[1:5], uint32(rec.LemmaIndex))
		hdr[5] = byte(len(rec.Word))

		if _, err := bw.Write(hdr[:]); err != nil {
			return err
		}
		if _, err := bw.WriteString(rec.Word); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteFile writes records to path, replacing any existing file.
func WriteFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create lexicon: %w", err)
	}

	if err := Write(f, records); err != nil {
		f.Close()
		return fmt.Errorf("write lexicon: %w", err)
	}
	return f.Close()
}
