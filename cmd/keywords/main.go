package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cognicore/keyrank/internal/corpus"
	"github.com/cognicore/keyrank/pkg/keyrank"
	"github.com/cognicore/keyrank/pkg/keyrank/config"
	"github.com/cognicore/keyrank/pkg/keyrank/rank"
	"github.com/cognicore/keyrank/pkg/keyrank/store"
	"github.com/cognicore/keyrank/pkg/keyrank/store/sqlite"
)

const usage = `Usage: keywords [flags] <lexicon> [input]

Extracts keywords from input (standard input when omitted) and writes one
"phrase<TAB>score" line per keyword, best first. With -jsonl, input is a
JSON Lines corpus and each line of output starts with the document URL.

Flags:
`

// options are the parsed command line.
type options struct {
	configPath   string
	stoplistPath string
	lexiconPath  string
	inputPath    string

	window     int
	keywords   int
	iterations int
	damping    float64

	html      bool
	jsonl     bool
	dbPath    string
	top       int
	pretty    bool
	dumpGraph bool
	verbose   bool

	// set records which flags were given explicitly.
	set map[string]bool
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err == flag.ErrHelp {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "keywords:", err)
		os.Exit(2)
	}

	if err := run(context.Background(), opts, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "keywords:", err)
		os.Exit(1)
	}
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("keywords", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	defaults := rank.DefaultParams()
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "Config file (YAML, optional)")
	fs.StringVar(&opts.stoplistPath, "stoplist", "", "Extra stopword list (YAML, optional)")
	fs.IntVar(&opts.window, "window", defaults.WindowSize, "Co-occurrence window size")
	fs.IntVar(&opts.keywords, "n", defaults.NumKeywords, "Number of keywords to return")
	fs.IntVar(&opts.iterations, "iterations", defaults.NumIterations, "TextRank iterations")
	fs.Float64Var(&opts.damping, "damping", defaults.Damping, "TextRank damping factor")
	fs.BoolVar(&opts.html, "html", false, "Strip HTML markup from the input")
	fs.BoolVar(&opts.jsonl, "jsonl", false, "Input is a JSON Lines corpus of {url, title, text, html} documents")
	fs.StringVar(&opts.dbPath, "db", "", "Record runs in this SQLite database")
	fs.IntVar(&opts.top, "top", 0, "Print the N phrases found in most recorded runs and exit (needs -db)")
	fs.BoolVar(&opts.pretty, "pretty", false, "Colour the output")
	fs.BoolVar(&opts.dumpGraph, "graph", false, "Write the co-occurrence graph to stderr")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose logging")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	rest := fs.Args()
	if opts.top > 0 {
		if len(rest) > 0 {
			return options{}, fmt.Errorf("-top takes no arguments")
		}
		return opts, nil
	}
	switch len(rest) {
	case 1:
		opts.lexiconPath = rest[0]
	case 2:
		opts.lexiconPath, opts.inputPath = rest[0], rest[1]
	default:
		fs.Usage()
		return options{}, fmt.Errorf("expected <lexicon> [input], got %d arguments", len(rest))
	}
	if opts.jsonl && opts.inputPath == "" {
		return options{}, fmt.Errorf("-jsonl needs an input file")
	}
	return opts, nil
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, opts.verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	var st store.Store
	if cfg.Database != "" {
		st, err = sqlite.OpenSQLite(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()
		logger.Debug("opened run store", zap.String("path", cfg.Database))
	}

	if opts.top > 0 {
		if st == nil {
			return fmt.Errorf("-top needs -db or database in the config")
		}
		return printTop(ctx, st, opts.top, stdout)
	}

	loader := config.Loader{
		Config:       cfg,
		LexiconPath:  opts.lexiconPath,
		StoplistPath: opts.stoplistPath,
	}
	comp, err := loader.Load()
	if err != nil {
		return err
	}
	logger.Debug("loaded lexicon",
		zap.String("path", comp.Config.Lexicon),
		zap.Int("entries", comp.Lexicon.Len()),
		zap.Int("stopwords", len(comp.Stopwords)),
	)

	engine, err := keyrank.New(keyrank.Options{
		Lexicon:   comp.Lexicon,
		Alphabet:  comp.Alphabet,
		Stopwords: comp.Stopwords,
		Params:    cfg.Params(),
		Logger:    logger,
		Store:     st,
	})
	if err != nil {
		return err
	}

	if opts.jsonl {
		return rankCorpus(ctx, engine, opts, logger, stdout)
	}

	doc, err := readDocument(opts, stdin)
	if err != nil {
		return err
	}

	if opts.dumpGraph {
		g, err := engine.Graph(doc)
		if err != nil {
			return err
		}
		if err := g.Dump(stderr); err != nil {
			return err
		}
	}

	res, err := engine.Rank(ctx, doc)
	if err != nil {
		return err
	}
	return printResults(res.Results, "", opts.pretty, stdout)
}

// rankCorpus ranks every document of a JSON Lines corpus in file order.
func rankCorpus(ctx context.Context, engine *keyrank.Engine, opts options, logger *zap.Logger, w io.Writer) error {
	items, err := corpus.LoadFromJSONL(opts.inputPath, logger)
	if err != nil {
		return err
	}

	for i, item := range items {
		source := item.URL
		if source == "" {
			source = fmt.Sprintf("%s#%d", opts.inputPath, i+1)
		}
		res, err := engine.Rank(ctx, keyrank.Document{
			Source: source,
			Text:   item.Text(),
			HTML:   item.HTML || opts.html,
		})
		if err != nil {
			return fmt.Errorf("rank %s: %w", source, err)
		}
		if err := printResults(res.Results, source+"\t", opts.pretty, w); err != nil {
			return err
		}
	}
	logger.Info("ranked corpus", zap.String("path", opts.inputPath), zap.Int("documents", len(items)))
	return nil
}

// applyFlags copies explicitly set flags over the configuration.
func applyFlags(cfg *config.Config, opts options) {
	if opts.set["window"] {
		cfg.Ranking.WindowSize = opts.window
	}
	if opts.set["n"] {
		cfg.Ranking.NumKeywords = opts.keywords
	}
	if opts.set["iterations"] {
		cfg.Ranking.Iterations = opts.iterations
	}
	if opts.set["damping"] {
		cfg.Ranking.Damping = opts.damping
	}
	if opts.dbPath != "" {
		cfg.Database = opts.dbPath
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func readDocument(opts options, stdin io.Reader) (keyrank.Document, error) {
	doc := keyrank.Document{Source: "-", HTML: opts.html}

	var data []byte
	var err error
	if opts.inputPath == "" {
		data, err = io.ReadAll(stdin)
	} else {
		doc.Source = opts.inputPath
		data, err = os.ReadFile(opts.inputPath)
		if ext := filepath.Ext(opts.inputPath); ext == ".html" || ext == ".htm" {
			doc.HTML = true
		}
	}
	if err != nil {
		return keyrank.Document{}, fmt.Errorf("read input: %w", err)
	}
	doc.Text = string(data)
	return doc, nil
}

// printResults writes one line per result, each starting with prefix.
func printResults(results []rank.Result, prefix string, pretty bool, w io.Writer) error {
	phrase := color.New(color.FgCyan, color.Bold)
	score := color.New(color.FgYellow)

	for _, r := range results {
		var err error
		if pretty {
			_, err = fmt.Fprintf(w, "%s%s\t%s\n", prefix, phrase.Sprint(r.Phrase), score.Sprintf("%.6g", r.Score))
		} else {
			_, err = fmt.Fprintf(w, "%s%s\t%.6g\n", prefix, r.Phrase, r.Score)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func printTop(ctx context.Context, st store.Store, k int, w io.Writer) error {
	stats, err := st.TopPhrases(ctx, k)
	if err != nil {
		return fmt.Errorf("top phrases: %w", err)
	}
	for _, s := range stats {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%.6g\n", s.Phrase, s.Runs, s.MaxScore); err != nil {
			return err
		}
	}
	return nil
}
