package rank

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/cognicore/keyrank/pkg/keyrank/graph"
	"github.com/cognicore/keyrank/pkg/keyrank/ingest"
	"github.com/cognicore/keyrank/pkg/keyrank/internalerr"
	"github.com/cognicore/keyrank/pkg/keyrank/lexicon"
)

const eps = 1e-9

// sentence builds tokens from lemmas; "_" is a stop token.
func sentence(lemmas ...string) []ingest.Token {
	tokens := make([]ingest.Token, len(lemmas))
	for i, l := range lemmas {
		if l == "_" {
			tokens[i] = ingest.Token{Surface: "de", Pos: lexicon.Stop, Node: ingest.NoNode}
			continue
		}
		tokens[i] = ingest.Token{Surface: l, Pos: lexicon.Noun, Lemma: l, Node: ingest.NoNode}
	}
	return tokens
}

func score(t *testing.T, g *graph.Graph, lemma string) float64 {
	t.Helper()
	i, ok := g.Lookup(lemma)
	if !ok {
		t.Fatalf("node %q missing", lemma)
	}
	return g.At(i).Score
}

func TestIterateIsolatedNode(t *testing.T) {
	for _, iterations := range []int{1, 2, 20} {
		g := graph.Build([][]ingest.Token{sentence("chat")}, 3)
		Iterate(g, iterations, 0.85)
		if got := score(t, g, "chat"); math.Abs(got-0.15) > eps {
			t.Errorf("%d iterations: score = %v, want 0.15", iterations, got)
		}
	}
}

func TestIterateZeroIterations(t *testing.T) {
	g := graph.Build([][]ingest.Token{sentence("a", "b", "c")}, 1)
	Iterate(g, 0, 0.85)
	for _, l := range []string{"a", "b", "c"} {
		if got := score(t, g, l); got != 1 {
			t.Errorf("score(%s) = %v, want 1", l, got)
		}
	}
}

func TestIterateSynchronousUpdate(t *testing.T) {
	// Path a - b - c.
	g := graph.Build([][]ingest.Token{sentence("a", "b", "c")}, 1)
	Iterate(g, 1, 0.85)

	want := map[string]float64{
		"a": 0.15 + 0.85*(1.0/2.0),
		"b": 0.15 + 0.85*(1.0/1.0+1.0/1.0),
		"c": 0.15 + 0.85*(1.0/2.0),
	}
	for l, w := range want {
		if got := score(t, g, l); math.Abs(got-w) > eps {
			t.Errorf("score(%s) = %v, want %v", l, got, w)
		}
	}
}

func TestIterateOrderIndependent(t *testing.T) {
	g1 := graph.Build([][]ingest.Token{sentence("a", "b", "c", "d"), sentence("d", "a")}, 2)
	g2 := graph.Build([][]ingest.Token{sentence("d", "a"), sentence("a", "b", "c", "d")}, 2)
	Iterate(g1, 20, 0.85)
	Iterate(g2, 20, 0.85)

	for _, l := range []string{"a", "b", "c", "d"} {
		if s1, s2 := score(t, g1, l), score(t, g2, l); math.Abs(s1-s2) > eps {
			t.Errorf("score(%s) depends on node order: %v vs %v", l, s1, s2)
		}
	}
}

func TestIterateHubScoresHighest(t *testing.T) {
	g := graph.Build([][]ingest.Token{
		sentence("hub", "a"), sentence("hub", "b"), sentence("hub", "c"), sentence("hub", "d"),
	}, 3)
	Iterate(g, 20, 0.85)

	hub := score(t, g, "hub")
	for _, l := range []string{"a", "b", "c", "d"} {
		if s := score(t, g, l); s >= hub {
			t.Errorf("score(%s) = %v should be below hub %v", l, s, hub)
		}
	}
}

func TestSelectKeywordsTieBreakByLemma(t *testing.T) {
	g := graph.Build([][]ingest.Token{sentence("zeta"), sentence("alpha"), sentence("mu")}, 3)
	Iterate(g, 5, 0.85)

	top := SelectKeywords(g, 2)
	var got []string
	for _, i := range top {
		got = append(got, g.At(i).Lemma)
	}
	if !reflect.DeepEqual(got, []string{"alpha", "mu"}) {
		t.Errorf("SelectKeywords = %v, want [alpha mu]", got)
	}

	zeta, _ := g.Lookup("zeta")
	if g.At(zeta).Keyword {
		t.Error("zeta should not be marked as keyword")
	}
}

func TestSelectKeywordsClamp(t *testing.T) {
	g := graph.Build([][]ingest.Token{sentence("a", "b")}, 3)
	Iterate(g, 1, 0.85)

	if got := SelectKeywords(g, 10); len(got) != 2 {
		t.Errorf("SelectKeywords(10) returned %d nodes, want 2", len(got))
	}
	if got := SelectKeywords(g, -1); len(got) != 0 {
		t.Errorf("SelectKeywords(-1) returned %d nodes, want 0", len(got))
	}
}

func TestRankMergesKeyphrase(t *testing.T) {
	g := graph.Build([][]ingest.Token{sentence("soft", "ware")}, 3)
	p := DefaultParams()
	p.NumKeywords = 2

	got := NewRanker(p).Rank(g)
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(got), got)
	}

	soft, ware := score(t, g, "soft"), score(t, g, "ware")
	if got[0].Phrase != "soft ware" || math.Abs(got[0].Score-(soft+ware)) > eps {
		t.Errorf("first result = %+v, want {soft ware %v}", got[0], soft+ware)
	}
	if got[1].Phrase != "soft" {
		t.Errorf("second result = %+v, want soft", got[1])
	}
}

func TestMergePhrasesRequiresAdjacency(t *testing.T) {
	g := graph.Build([][]ingest.Token{sentence("soft", "_", "ware")}, 3)
	Iterate(g, 3, 0.85)
	SelectKeywords(g, 2)

	if phrases := MergePhrases(g); len(phrases) != 0 {
		t.Errorf("a stop token breaks the run, got %+v", phrases)
	}
}

func TestMergePhrasesDeduplicates(t *testing.T) {
	g := graph.Build([][]ingest.Token{
		sentence("data", "base"),
		sentence("data", "base", "_", "data", "base"),
	}, 3)
	Iterate(g, 10, 0.85)
	SelectKeywords(g, 2)

	phrases := MergePhrases(g)
	if len(phrases) != 1 || phrases[0].Phrase != "data base" {
		t.Errorf("MergePhrases = %+v, want one \"data base\"", phrases)
	}
}

func TestMergePhrasesLongRun(t *testing.T) {
	g := graph.Build([][]ingest.Token{sentence("x", "a", "b", "c", "_", "y")}, 3)
	Iterate(g, 5, 0.85)
	for _, l := range []string{"a", "b", "c"} {
		i, _ := g.Lookup(l)
		g.At(i).Keyword = true
	}

	phrases := MergePhrases(g)
	if len(phrases) != 1 || phrases[0].Phrase != "a b c" {
		t.Fatalf("MergePhrases = %+v, want [a b c]", phrases)
	}
	want := score(t, g, "a") + score(t, g, "b") + score(t, g, "c")
	if math.Abs(phrases[0].Score-want) > eps {
		t.Errorf("phrase score = %v, want %v", phrases[0].Score, want)
	}
}

func TestRankTopKBound(t *testing.T) {
	g := graph.Build([][]ingest.Token{
		sentence("a", "b", "c", "d", "e", "f"),
		sentence("b", "c", "_", "e", "f", "a"),
	}, 3)
	p := DefaultParams()
	p.NumKeywords = 3

	got := NewRanker(p).Rank(g)
	if len(got) > 3 {
		t.Fatalf("got %d results, want at most 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("results not sorted: %+v", got)
		}
	}

	// Every excluded single keyword scores no higher than the last kept result.
	last := got[len(got)-1].Score
	kept := make(map[string]bool)
	for _, r := range got {
		kept[r.Phrase] = true
	}
	for i := 0; i < g.Len(); i++ {
		n := g.At(i)
		if n.Keyword && !kept[n.Lemma] && n.Score > last+eps {
			t.Errorf("excluded %s (%v) outscores kept %v", n.Lemma, n.Score, last)
		}
	}
}

func TestRankDeterministic(t *testing.T) {
	build := func() *graph.Graph {
		return graph.Build([][]ingest.Token{
			sentence("traitement", "langage", "naturel", "_", "graphe"),
			sentence("graphe", "_", "mot", "langage", "traitement"),
			sentence("mot", "clé", "graphe"),
		}, 3)
	}
	p := DefaultParams()

	first := NewRanker(p).Rank(build())
	for i := 0; i < 5; i++ {
		if again := NewRanker(p).Rank(build()); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestRankEmptyGraph(t *testing.T) {
	got := NewRanker(DefaultParams()).Rank(graph.Build(nil, 3))
	if got == nil || len(got) != 0 {
		t.Errorf("Rank(empty) = %#v, want empty non-nil slice", got)
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("DefaultParams().Validate() = %v", err)
	}

	bad := []Params{
		{WindowSize: -1, NumKeywords: 1, NumIterations: 1, Damping: 0.85},
		{WindowSize: 3, NumKeywords: 0, NumIterations: 1, Damping: 0.85},
		{WindowSize: 3, NumKeywords: 1, NumIterations: -1, Damping: 0.85},
		{WindowSize: 3, NumKeywords: 1, NumIterations: 1, Damping: 1.5},
		{WindowSize: 3, NumKeywords: 1, NumIterations: 1, Damping: -0.1},
		{WindowSize: 3, NumKeywords: 1, NumIterations: 1, Damping: math.NaN()},
		{WindowSize: 3, NumKeywords: 1, NumIterations: 1, Damping: math.Inf(1)},
	}
	for _, p := range bad {
		if err := p.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidConfig", p, err)
		}
	}
}
