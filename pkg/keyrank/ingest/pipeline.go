package ingest

// Pipeline turns raw text into classified sentences:
// text → sentences → words → (POS, lemma) tokens
type Pipeline struct {
	tokenizer  *Tokenizer
	classifier *Classifier
}

// NewPipeline creates an ingestion pipeline with the given components
func NewPipeline(tokenizer *Tokenizer, classifier *Classifier) *Pipeline {
	return &Pipeline{
		tokenizer:  tokenizer,
		classifier: classifier,
	}
}

// Process splits and classifies text. Every sentence is returned, including
// empty ones, in input order.
func (p *Pipeline) Process(text string) [][]Token {
	sentences := p.tokenizer.Sentences(text)
	out := make([][]Token, len(sentences))
	for i, words := range sentences {
		out[i] = p.classifier.Tokens(words)
	}
	return out
}
