package config

import (
	"fmt"

	"github.com/cognicore/keyrank/pkg/keyrank/ingest"
	"github.com/cognicore/keyrank/pkg/keyrank/internalerr"
	"github.com/cognicore/keyrank/pkg/keyrank/lexicon"
)

// Loader loads the configuration and the files it points to
type Loader struct {
	Config       *Config // used as is when set; ConfigPath is then ignored
	ConfigPath   string
	LexiconPath  string // overrides the config file and KEYRANK_LEXICON
	StoplistPath string // overrides the config file
}

// Components holds everything needed to build a keyrank.Engine
type Components struct {
	Config    *Config
	Lexicon   *lexicon.Lexicon
	Alphabet  ingest.Alphabet
	Stopwords []string
}

// Load reads the configuration, the lexicon and the stoplist
func (l *Loader) Load() (*Components, error) {
	cfg := l.Config
	if cfg == nil {
		var err error
		if cfg, err = Load(l.ConfigPath); err != nil {
			return nil, err
		}
	}
	if l.LexiconPath != "" {
		cfg.Lexicon = l.LexiconPath
	}
	if l.StoplistPath != "" {
		cfg.StoplistPath = l.StoplistPath
	}

	comp := &Components{Config: cfg, Alphabet: ingest.French}

	if cfg.Alphabet.Letters != "" {
		comp.Alphabet = ingest.NewAlphabet(cfg.Alphabet.Letters)
	}

	if cfg.Lexicon == "" {
		return nil, fmt.Errorf("%w: no lexicon path", internalerr.ErrInvalidConfig)
	}
	lex, err := lexicon.Load(cfg.Lexicon)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	comp.Lexicon = lex

	comp.Stopwords = append(comp.Stopwords, cfg.Stopwords...)
	if cfg.StoplistPath != "" {
		stoplist, err := LoadStoplist(cfg.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Stopwords = append(comp.Stopwords, stoplist.Terms...)
	}

	return comp, nil
}
