package suggest

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	terrors "github.com/Aman-CERP/typeahead/internal/errors"
)

// WordList is an in-memory prefix matcher over an ordered vocabulary.
// Matches are returned in vocabulary order.
type WordList struct {
	mu         sync.RWMutex
	words      []string
	maxResults int
}

// NewWordList creates a matcher over words. A non-positive maxResults uses
// DefaultMaxResults.
func NewWordList(words []string, maxResults int) *WordList {
	return &WordList{
		words:      NormalizeWords(words),
		maxResults: clampLimit(maxResults),
	}
}

// LoadWordList reads one word per line from path.
func LoadWordList(path string, maxResults int) (*WordList, error) {
	words, err := ReadWords(path)
	if err != nil {
		return nil, err
	}
	return NewWordList(words, maxResults), nil
}

// ReadWords reads one word per line from path.
func ReadWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, terrors.New(terrors.ErrCodeWordsNotFound, fmt.Sprintf("words file not found: %s", path), err).
				WithSuggestion("create the file or unset backend.words_file to use the built-in vocabulary")
		}
		return nil, fmt.Errorf("failed to open words file: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read words file: %w", err)
	}
	return NormalizeWords(words), nil
}

// Replace swaps the vocabulary atomically.
func (w *WordList) Replace(words []string) {
	normalized := NormalizeWords(words)
	w.mu.Lock()
	w.words = normalized
	w.mu.Unlock()
}

// Words returns a copy of the vocabulary.
func (w *WordList) Words() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cloneItems(w.words)
}

// Len returns the vocabulary size.
func (w *WordList) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.words)
}

// Lookup returns up to maxResults words starting with the normalized query.
// A blank query matches nothing.
func (w *WordList) Lookup(ctx context.Context, query string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	q := Normalize(query)
	if q == "" {
		return Result{Items: []string{}}, nil
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	items := make([]string, 0, w.maxResults)
	for _, word := range w.words {
		if strings.HasPrefix(word, q) {
			items = append(items, word)
			if len(items) == w.maxResults {
				break
			}
		}
	}
	return Result{Items: items}, nil
}

var _ Lookup = (*WordList)(nil)
