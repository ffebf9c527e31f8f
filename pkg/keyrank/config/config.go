package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/keyrank/pkg/keyrank/internalerr"
	"github.com/cognicore/keyrank/pkg/keyrank/rank"
)

// Config is the keywords configuration file.
//
//	lexicon: data/lexique.bin
//	ranking:
//	  window_size: 3
//	  num_keywords: 10
//	  iterations: 20
//	  damping: 0.85
//	alphabet:
//	  letters: "éèêàçñ"
//	stopwords: [avoir, être]
//	stoplist: config/stoplist.yaml
//	log_level: warn
//	database: runs.db
type Config struct {
	Lexicon      string   `yaml:"lexicon"`
	Ranking      Ranking  `yaml:"ranking"`
	Alphabet     Alphabet `yaml:"alphabet"`
	Stopwords    []string `yaml:"stopwords"`
	StoplistPath string   `yaml:"stoplist"`
	LogLevel     string   `yaml:"log_level"`
	Database     string   `yaml:"database"`
}

// Ranking holds the TextRank parameters
type Ranking struct {
	WindowSize  int     `yaml:"window_size"`
	NumKeywords int     `yaml:"num_keywords"`
	Iterations  int     `yaml:"iterations"`
	Damping     float64 `yaml:"damping"`
}

// Alphabet lists the non-ASCII letters of the input language.
// Empty selects French.
type Alphabet struct {
	Letters string `yaml:"letters"`
}

// Default returns the built-in configuration
func Default() *Config {
	p := rank.DefaultParams()
	return &Config{
		Ranking: Ranking{
			WindowSize:  p.WindowSize,
			NumKeywords: p.NumKeywords,
			Iterations:  p.NumIterations,
			Damping:     p.Damping,
		},
		LogLevel: "warn",
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file. A .env file in the
// working directory is loaded into the environment first, if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", internalerr.ErrInvalidConfig, path, err)
		}
	}

	_ = godotenv.Load()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Lexicon = getEnv("KEYRANK_LEXICON", c.Lexicon)
	c.Ranking.WindowSize = getEnvInt("KEYRANK_WINDOW_SIZE", c.Ranking.WindowSize)
	c.Ranking.NumKeywords = getEnvInt("KEYRANK_NUM_KEYWORDS", c.Ranking.NumKeywords)
	c.Ranking.Iterations = getEnvInt("KEYRANK_ITERATIONS", c.Ranking.Iterations)
	c.Ranking.Damping = getEnvFloat("KEYRANK_DAMPING", c.Ranking.Damping)
	c.LogLevel = getEnv("KEYRANK_LOG_LEVEL", c.LogLevel)
	c.Database = getEnv("KEYRANK_DB", c.Database)
}

// Params returns the ranking parameters
func (c *Config) Params() rank.Params {
	return rank.Params{
		WindowSize:    c.Ranking.WindowSize,
		NumKeywords:   c.Ranking.NumKeywords,
		NumIterations: c.Ranking.Iterations,
		Damping:       c.Ranking.Damping,
	}
}

// Validate checks the ranking parameters and the log level
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", internalerr.ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
