// Package keyrank extracts keywords and keyphrases from text with TextRank
// over a lemma co-occurrence graph.
//
// Rank is the one-shot entry point. Engine adds logging, run IDs and an
// optional store for callers that rank many documents.
package keyrank

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/keyrank/pkg/keyrank/graph"
	"github.com/cognicore/keyrank/pkg/keyrank/ingest"
	"github.com/cognicore/keyrank/pkg/keyrank/internalerr"
	"github.com/cognicore/keyrank/pkg/keyrank/rank"
	"github.com/cognicore/keyrank/pkg/keyrank/store"
)

// Rank extracts the keywords of text using dict and the French alphabet.
func Rank(text string, dict ingest.Dictionary, p rank.Params) []rank.Result {
	pipeline := ingest.NewPipeline(ingest.NewTokenizer(ingest.French), ingest.NewClassifier(dict, ingest.French, nil))
	g := graph.Build(pipeline.Process(text), p.WindowSize)
	return rank.NewRanker(p).Rank(g)
}

// Engine ranks documents with a fixed lexicon and parameters.
// It is safe for concurrent use; every call builds its own graph.
type Engine struct {
	pipeline *ingest.Pipeline
	params   rank.Params
	logger   *zap.Logger
	store    store.Store

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures an Engine
type Options struct {
	Lexicon   ingest.Dictionary
	Alphabet  ingest.Alphabet // nil selects French
	Stopwords []string
	Params    rank.Params // zero value selects rank.DefaultParams
	Logger    *zap.Logger // nil disables logging
	Store     store.Store // nil disables persistence
}

// New creates an Engine with the given dependencies
func New(opts Options) (*Engine, error) {
	if opts.Lexicon == nil {
		return nil, fmt.Errorf("%w: no lexicon", internalerr.ErrInvalidInput)
	}
	params := opts.Params
	if params == (rank.Params{}) {
		params = rank.DefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	alphabet := opts.Alphabet
	if alphabet == nil {
		alphabet = ingest.French
	}

	return &Engine{
		pipeline: ingest.NewPipeline(
			ingest.NewTokenizer(alphabet),
			ingest.NewClassifier(opts.Lexicon, alphabet, opts.Stopwords),
		),
		params:  params,
		logger:  logger,
		store:   opts.Store,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close releases the store, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Params returns the parameters the engine ranks with.
func (e *Engine) Params() rank.Params {
	return e.params
}

// Document is one text to rank.
type Document struct {
	Source string // reported in logs and stored runs
	Text   string
	HTML   bool // strip markup before ranking
}

// Run is the outcome of ranking one document.
type Run struct {
	ID        string
	Source    string
	CreatedAt time.Time
	Params    rank.Params
	Results   []rank.Result

	Sentences int
	Nodes     int
	Edges     int
}

// Rank ranks doc and persists the run when a store is configured.
func (e *Engine) Rank(ctx context.Context, doc Document) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}

	text, err := doc.plainText()
	if err != nil {
		return Run{}, err
	}

	start := time.Now()
	sentences := e.pipeline.Process(text)
	g := graph.Build(sentences, e.params.WindowSize)
	results := rank.NewRanker(e.params).Rank(g)

	run := Run{
		ID:        e.newID(start),
		Source:    doc.Source,
		CreatedAt: start.UTC(),
		Params:    e.params,
		Results:   results,
		Sentences: len(sentences),
		Nodes:     g.Len(),
		Edges:     g.EdgeCount(),
	}

	e.logger.Info("ranked document",
		zap.String("run_id", run.ID),
		zap.String("source", run.Source),
		zap.Int("sentences", run.Sentences),
		zap.Int("nodes", run.Nodes),
		zap.Int("edges", run.Edges),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if e.store != nil {
		if err := e.store.SaveRun(ctx, run.record()); err != nil {
			return run, fmt.Errorf("save run %s: %w", run.ID, err)
		}
		e.logger.Debug("saved run", zap.String("run_id", run.ID))
	}

	return run, nil
}

// Graph builds the co-occurrence graph of doc without ranking it.
func (e *Engine) Graph(doc Document) (*graph.Graph, error) {
	text, err := doc.plainText()
	if err != nil {
		return nil, err
	}
	return graph.Build(e.pipeline.Process(text), e.params.WindowSize), nil
}

func (d Document) plainText() (string, error) {
	if !d.HTML {
		return d.Text, nil
	}
	text, err := ingest.StripHTML(strings.NewReader(d.Text))
	if err != nil {
		return "", fmt.Errorf("strip html: %w", err)
	}
	return text, nil
}

func (e *Engine) newID(t time.Time) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), e.entropy).String()
}

// record converts r to its stored form.
func (r Run) record() store.Run {
	keywords := make([]store.Keyword, len(r.Results))
	for i, res := range r.Results {
		keywords[i] = store.Keyword{Phrase: res.Phrase, Score: res.Score}
	}
	return store.Run{
		ID:        r.ID,
		Source:    r.Source,
		CreatedAt: r.CreatedAt,
		Params: store.Params{
			WindowSize:    r.Params.WindowSize,
			NumKeywords:   r.Params.NumKeywords,
			NumIterations: r.Params.NumIterations,
			Damping:       r.Params.Damping,
		},
		Keywords: keywords,
	}
}
