package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Item is one document of a JSON Lines corpus.
type Item struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Body  string `json:"text"`
	HTML  bool   `json:"html"`
}

// Text returns the title and body as one text. The title ends its own
// sentence.
func (it Item) Text() string {
	if it.Title == "" {
		return it.Body
	}
	return it.Title + ".\n" + it.Body
}

// LoadFromJSONL loads items from a JSONL file. Malformed lines are logged
// and skipped; a file without any valid item is an error.
func LoadFromJSONL(path string, logger *zap.Logger) ([]Item, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	var items []Item
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			logger.Warn("skipping malformed JSON line",
				zap.String("path", path),
				zap.Int("line", line),
				zap.Error(err),
			)
			continue
		}
		items = append(items, item)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid items found in %s", path)
	}

	return items, nil
}
