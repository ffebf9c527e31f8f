package rank

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/keyrank/pkg/keyrank/graph"
	"github.com/cognicore/keyrank/pkg/keyrank/ingest"
	"github.com/cognicore/keyrank/pkg/keyrank/internalerr"
)

// Params controls graph construction and TextRank scoring.
type Params struct {
	WindowSize    int     // following non-stop lemmas linked to each anchor
	NumKeywords   int     // single keywords selected, and length of the output
	NumIterations int     // propagation rounds
	Damping       float64 // share of score taken from neighbors
}

// DefaultParams returns the parameters used by the keywords command.
func DefaultParams() Params {
	return Params{
		WindowSize:    graph.DefaultWindowSize,
		NumKeywords:   10,
		NumIterations: 20,
		Damping:       0.85,
	}
}

// Validate checks that the parameters can drive a ranking run.
func (p Params) Validate() error {
	switch {
	case p.WindowSize < 0:
		return fmt.Errorf("%w: window size %d", internalerr.ErrInvalidConfig, p.WindowSize)
	case p.NumKeywords <= 0:
		return fmt.Errorf("%w: keyword count %d", internalerr.ErrInvalidConfig, p.NumKeywords)
	case p.NumIterations < 0:
		return fmt.Errorf("%w: iteration count %d", internalerr.ErrInvalidConfig, p.NumIterations)
	case !(p.Damping >= 0 && p.Damping <= 1): // NaN fails both comparisons
		return fmt.Errorf("%w: damping %g outside [0,1]", internalerr.ErrInvalidConfig, p.Damping)
	}
	return nil
}

// Result is a ranked keyword or keyphrase.
type Result struct {
	Phrase string
	Score  float64
}

// Ranker scores a co-occurrence graph with TextRank
type Ranker struct {
	params Params
}

// NewRanker creates a ranker with the given parameters
func NewRanker(p Params) *Ranker {
	return &Ranker{params: p}
}

// Rank scores g, marks its top keywords and returns keywords and merged
// keyphrases by descending score, at most NumKeywords of them. Equal scores
// keep discovery order: single keywords first, then phrases in text order.
func (r *Ranker) Rank(g *graph.Graph) []Result {
	if g.Len() == 0 || r.params.NumKeywords <= 0 {
		return []Result{}
	}

	Iterate(g, r.params.NumIterations, r.params.Damping)
	top := SelectKeywords(g, r.params.NumKeywords)

	results := make([]Result, 0, len(top))
	seen := make(map[string]struct{}, len(top))
	for _, i := range top {
		n := g.At(i)
		results = append(results, Result{Phrase: n.Lemma, Score: n.Score})
		seen[n.Lemma] = struct{}{}
	}

	for _, p := range MergePhrases(g) {
		if _, dup := seen[p.Phrase]; dup {
			continue
		}
		seen[p.Phrase] = struct{}{}
		results = append(results, p)
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	if len(results) > r.params.NumKeywords {
		results = results[:r.params.NumKeywords]
	}
	return results
}

// Iterate runs TextRank on g. Every score starts at 1; each round computes
//
//	score = (1-d) + d·Σ weight(n,m)·prev(m)/total(m)
//
// over neighbors m, entirely from the previous round's scores, so the order
// nodes are visited in does not matter. Neighbors are summed in index order
// to keep results bit-for-bit reproducible.
func Iterate(g *graph.Graph, iterations int, d float64) {
	g.Totals()
	n := g.Len()
	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		g.At(i).Score = 1
		neighbors[i] = g.Neighbors(i)
	}

	for it := 0; it < iterations; it++ {
		for i := 0; i < n; i++ {
			node := g.At(i)
			node.PrevScore = node.Score
		}
		for i := 0; i < n; i++ {
			node := g.At(i)
			sum := 0.0
			for _, j := range neighbors[i] {
				m := g.At(j)
				if m.Total == 0 {
					continue
				}
				sum += float64(node.Edges[j]) * m.PrevScore / float64(m.Total)
			}
			node.Score = (1 - d) + d*sum
		}
	}
}

// SelectKeywords marks the k highest-scoring nodes as keywords and returns
// their indexes, best first. Equal scores are ordered by lemma. k is clamped
// to the number of nodes.
func SelectKeywords(g *graph.Graph, k int) []int {
	order := make([]int, g.Len())
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		na, nb := g.At(order[a]), g.At(order[b])
		if na.Score != nb.Score {
			return na.Score > nb.Score
		}
		return na.Lemma < nb.Lemma
	})

	k = min(max(k, 0), len(order))
	for _, i := range order[:k] {
		g.At(i).Keyword = true
	}
	return order[:k]
}

// MergePhrases joins every run of two or more consecutive keyword tokens of
// a sentence into one phrase scored by the sum of its nodes. Repeated
// phrases are reported once, at their first occurrence.
func MergePhrases(g *graph.Graph) []Result {
	var phrases []Result
	seen := make(map[string]struct{})

	for _, tokens := range g.Sentences() {
		for i := 0; i < len(tokens); {
			if !isKeyword(g, tokens[i]) {
				i++
				continue
			}
			j := i + 1
			for j < len(tokens) && isKeyword(g, tokens[j]) {
				j++
			}
			if j-i > 1 {
				lemmas := make([]string, 0, j-i)
				score := 0.0
				for _, tok := range tokens[i:j] {
					lemmas = append(lemmas, tok.Lemma)
					score += g.At(tok.Node).Score
				}
				phrase := strings.Join(lemmas, " ")
				if _, dup := seen[phrase]; !dup {
					seen[phrase] = struct{}{}
					phrases = append(phrases, Result{Phrase: phrase, Score: score})
				}
			}
			i = j
		}
	}

	return phrases
}

func isKeyword(g *graph.Graph, tok ingest.Token) bool {
	return tok.Node != ingest.NoNode && g.At(tok.Node).Keyword
}
