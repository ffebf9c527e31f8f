// Package graph builds the lemma co-occurrence graph ranked by TextRank.
//
// Nodes live in a table and are addressed by index. Tokens point back at
// their node through that index, so the graph and the token stream never
// share pointers.
package graph

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/cognicore/keyrank/pkg/keyrank/ingest"
	"github.com/cognicore/keyrank/pkg/keyrank/lexicon"
)

// DefaultWindowSize is the number of following non-stop lemmas an anchor
// links to.
const DefaultWindowSize = 3

// Node is one distinct lemma of the text.
type Node struct {
	Lemma     string
	Score     float64
	PrevScore float64
	Edges     map[int]int // neighbor index -> weight
	Total     int         // sum of Edges, refreshed by Totals
	Keyword   bool
}

// Graph is an undirected weighted co-occurrence graph plus the classified
// sentences it was built from.
type Graph struct {
	nodes     []Node
	index     map[string]int
	sentences [][]ingest.Token
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// Build links every non-stop token of each sentence to up to windowSize
// following non-stop tokens of the same sentence. Stop tokens are skipped
// and do not count against the window. Each non-stop token records the index
// of its lemma's node.
//
// Build takes ownership of sentences.
func Build(sentences [][]ingest.Token, windowSize int) *Graph {
	g := New()
	g.sentences = sentences

	for _, tokens := range sentences {
		for i := range tokens {
			if tokens[i].Pos == lexicon.Stop {
				continue
			}
			anchor := g.Node(tokens[i].Lemma)
			tokens[i].Node = anchor

			linked := 0
			for j := i + 1; j < len(tokens) && linked < windowSize; j++ {
				if tokens[j].Pos == lexicon.Stop {
					continue
				}
				g.AddEdge(anchor, g.Node(tokens[j].Lemma))
				linked++
			}
		}
	}

	return g
}

// Node returns the index of lemma's node, creating it on first use.
func (g *Graph) Node(lemma string) int {
	if i, ok := g.index[lemma]; ok {
		return i
	}
	i := len(g.nodes)
	g.nodes = append(g.nodes, Node{Lemma: lemma, Score: 1, Edges: make(map[int]int)})
	g.index[lemma] = i
	return i
}

// AddEdge adds one to the weight between a and b, on both sides. A lemma
// linked to itself therefore gains two on its own entry.
func (g *Graph) AddEdge(a, b int) {
	g.nodes[a].Edges[b]++
	g.nodes[b].Edges[a]++
}

// Lookup returns the index of lemma's node.
func (g *Graph) Lookup(lemma string) (int, bool) {
	i, ok := g.index[lemma]
	return i, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// At returns the node at index i. The pointer is valid until the next node
// is created.
func (g *Graph) At(i int) *Node {
	return &g.nodes[i]
}

// Weight returns the edge weight between a and b.
func (g *Graph) Weight(a, b int) int {
	return g.nodes[a].Edges[b]
}

// Neighbors returns the neighbor indexes of node i in ascending order.
func (g *Graph) Neighbors(i int) []int {
	out := make([]int, 0, len(g.nodes[i].Edges))
	for j := range g.nodes[i].Edges {
		out = append(out, j)
	}
	sort.Ints(out)
	return out
}

// Totals recomputes every node's total edge weight.
func (g *Graph) Totals() {
	for i := range g.nodes {
		total := 0
		for _, w := range g.nodes[i].Edges {
			total += w
		}
		g.nodes[i].Total = total
	}
}

// Sentences returns the classified sentences, with node indexes filled in.
func (g *Graph) Sentences() [][]ingest.Token {
	return g.sentences
}

// EdgeCount returns the number of distinct undirected edges, self-links
// included.
func (g *Graph) EdgeCount() int {
	n := 0
	for i := range g.nodes {
		for j := range g.nodes[i].Edges {
			if j >= i {
				n++
			}
		}
	}
	return n
}

// Dump writes one line per node in index order: the lemma, a tab, then
// "(neighbor,weight)" pairs in neighbor index order.
func (g *Graph) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i := range g.nodes {
		bw.WriteString(g.nodes[i].Lemma)
		bw.WriteByte('\t')
		for _, j := range g.Neighbors(i) {
			fmt.Fprintf(bw, "(%s,%d) ", g.nodes[j].Lemma, g.nodes[i].Edges[j])
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
