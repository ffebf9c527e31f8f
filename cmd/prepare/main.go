package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/cognicore/keyrank/pkg/keyrank/lexicon"
)

const usage = `Usage: prepare [flags] <input.tsv> <output.bin>

Builds a binary lexicon from a tab-separated frequency list with the columns
word, part of speech, lemma and frequency.

Flags:
`

func main() {
	fs := flag.NewFlagSet("prepare", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return
		}
		os.Exit(2)
	}
	if fs.NArg() != 2 {
		fs.Usage()
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintln(os.Stderr, "prepare: create logger:", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	stats, err := prepare(fs.Arg(0), fs.Arg(1), logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "prepare:", err)
		os.Exit(1)
	}
	printStats(os.Stdout, fs.Arg(1), stats)
}

// prepare converts the frequency list at input into a lexicon at output and
// returns statistics read back from the written file.
func prepare(input, output string, logger *zap.Logger) (lexicon.Stats, error) {
	f, err := os.Open(input)
	if err != nil {
		return lexicon.Stats{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	records, err := lexicon.Prepare(f)
	if err != nil {
		return lexicon.Stats{}, fmt.Errorf("parse %s: %w", input, err)
	}
	logger.Debug("prepared records", zap.String("input", input), zap.Int("records", len(records)))

	if err := lexicon.WriteFile(output, records); err != nil {
		return lexicon.Stats{}, err
	}

	// Read the file back so a broken lemma index fails here, not at ranking time.
	lex, err := lexicon.Load(output)
	if err != nil {
		return lexicon.Stats{}, fmt.Errorf("verify %s: %w", output, err)
	}
	stats := lex.Stats()
	logger.Debug("wrote lexicon",
		zap.String("output", output),
		zap.Int("entries", stats.Entries),
		zap.Int("with_lemma", stats.WithLemma),
	)
	return stats, nil
}

func printStats(w io.Writer, path string, s lexicon.Stats) {
	fmt.Fprintf(w, "%s: %d entries, %d with a lemma\n", path, s.Entries, s.WithLemma)
	for _, p := range []lexicon.Pos{lexicon.Noun, lexicon.Adj, lexicon.Stop, lexicon.Unknown} {
		fmt.Fprintf(w, "  %-7s %d\n", p, s.ByPos[p])
	}
}
