package lexicon

import (
	"bytes"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/cognicore/keyrank/pkg/keyrank/internalerr"
)

const frequencyList = "chats\tNOM\tchat\t12.5\n" +
	"chat\tNOM\tchat\t40.1\n" +
	"le\tART:def\tle\t1000\n" +
	"grandes\tADJ\tgrand\t3.2\n" +
	"grandes\tVER\tgrander\t0.1\n" +
	"grand\tADJ\tgrand\t50\n" +
	"maison\tNOM\tmaison\t80\n" +
	"truc\t\t\t\n" +
	"\n"

func TestPrepareSortedWithLemmaIndexes(t *testing.T) {
	records, err := Prepare(strings.NewReader(frequencyList))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	words := make([]string, len(records))
	for i, r := range records {
		words[i] = r.Word
	}
	if !sort.StringsAreSorted(words) {
		t.Fatalf("records not sorted: %v", words)
	}

	want := []string{"chat", "chats", "grand", "grandes", "le", "maison", "truc"}
	if strings.Join(words, ",") != strings.Join(want, ",") {
		t.Fatalf("words = %v, want %v", words, want)
	}

	byWord := make(map[string]Record)
	for _, r := range records {
		byWord[r.Word] = r
	}
	if got := byWord["chats"].LemmaIndex; got != 0 {
		t.Errorf("chats lemma index = %d, want 0", got)
	}
	if got := byWord["grandes"]; got.LemmaIndex != 2 || got.Pos != Adj {
		t.Errorf("grandes = %+v, want ADJ with lemma index 2", got)
	}
	if got := byWord["le"]; got.Pos != Stop || got.LemmaIndex != -1 {
		t.Errorf("le = %+v, want STOP with lemma index -1", got)
	}
	if got := byWord["maison"]; got.Pos != Noun || got.LemmaIndex != -1 {
		t.Errorf("maison = %+v, want NOUN with lemma index -1", got)
	}
	if got := byWord["truc"]; got.Pos != Unknown {
		t.Errorf("truc = %+v, want UNKNOWN", got)
	}
}

func TestPrepareFeedsRead(t *testing.T) {
	records, err := Prepare(strings.NewReader(frequencyList))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, records); err != nil {
		t.Fatalf("Write: %v", err)
	}
	lex, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	e, ok := lex.Lookup("grandes")
	if !ok || e.Lemma != "grand" {
		t.Errorf("Lookup(grandes) = %+v, %v; want lemma grand", e, ok)
	}
	if e, ok := lex.Lookup("maison"); !ok || e.Pos != Noun || e.Lemma != "maison" {
		t.Errorf("Lookup(maison) = %+v, %v; want NOUN maison", e, ok)
	}
}

func TestPrepareMissingLemmaTarget(t *testing.T) {
	records, err := Prepare(strings.NewReader("souris\tVER\tsourire\t2\n"))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(records) != 1 || records[0].LemmaIndex != -1 {
		t.Errorf("records = %+v, want one record with lemma index -1", records)
	}
}

func TestPrepareBadFrequency(t *testing.T) {
	_, err := Prepare(strings.NewReader("chat\tNOM\tchat\tlots\n"))
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestPrepareSkipsOversizedWords(t *testing.T) {
	input := strings.Repeat("x", MaxWordLen+1) + "\tVER\t\t1\nlong\tVER\t\t1\n"
	records, err := Prepare(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(records) != 1 || records[0].Word != "long" {
		t.Errorf("records = %+v, want only %q", records, "long")
	}
}
