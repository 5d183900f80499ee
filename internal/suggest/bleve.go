package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	terrors "github.com/Aman-CERP/typeahead/internal/errors"
)

// BleveIndex keeps the vocabulary in a Bleve index and answers prefix
// queries against a keyword-analysed field, ordered by insertion rank.
type BleveIndex struct {
	mu         sync.RWMutex
	index      bleve.Index
	path       string
	maxResults int
	nextRank   int
	closed     bool
}

type bleveWord struct {
	Word string  `json:"word"`
	Rank float64 `json:"rank"`
}

// NewBleveIndex opens or creates a Bleve index at path.
// If path is empty, creates an in-memory index.
func NewBleveIndex(path string, maxResults int) (*BleveIndex, error) {
	indexMapping := createWordMapping()

	var idx bleve.Index
	var err error
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}

		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, indexMapping)
		} else if err == bleve.ErrorIndexMetaCorrupt {
			slog.Warn("bleve_index_corrupted",
				slog.String("path", path),
				slog.String("error", err.Error()))

			if removeErr := os.RemoveAll(path); removeErr != nil {
				return nil, terrors.New(terrors.ErrCodeCorruptIndex,
					fmt.Sprintf("index corrupted at %s and cannot be removed", path), removeErr)
			}
			idx, err = bleve.New(path, indexMapping)
		}
	}
	if err != nil {
		return nil, terrors.New(terrors.ErrCodeIndexOpen, "failed to create/open bleve index", err)
	}

	count, err := idx.DocCount()
	if err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	return &BleveIndex{
		index:      idx,
		path:       path,
		maxResults: clampLimit(maxResults),
		nextRank:   int(count),
	}, nil
}

// createWordMapping indexes "word" verbatim so prefix queries see whole words.
func createWordMapping() *mapping.IndexMappingImpl {
	wordField := bleve.NewKeywordFieldMapping()
	wordField.Store = false

	rankField := bleve.NewNumericFieldMapping()
	rankField.Store = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("word", wordField)
	doc.AddFieldMappingsAt("rank", rankField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = doc
	return indexMapping
}

// Add indexes words in a single batch. The word doubles as document ID.
func (b *BleveIndex) Add(ctx context.Context, words []string) error {
	words = NormalizeWords(words)
	if len(words) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("index is closed")
	}

	existing, err := b.existingLocked(ctx, words)
	if err != nil {
		return err
	}

	batch := b.index.NewBatch()
	rank := b.nextRank
	for _, w := range words {
		if _, ok := existing[w]; ok {
			continue
		}
		if err := batch.Index(w, bleveWord{Word: w, Rank: float64(rank)}); err != nil {
			return fmt.Errorf("failed to index word %s: %w", w, err)
		}
		rank++
	}

	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}
	b.nextRank = rank
	return nil
}

// existingLocked returns which of words are already indexed.
func (b *BleveIndex) existingLocked(ctx context.Context, words []string) (map[string]struct{}, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewDocIDQuery(words), len(words), 0, false)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing words: %w", err)
	}
	existing := make(map[string]struct{}, len(res.Hits))
	for _, hit := range res.Hits {
		existing[hit.ID] = struct{}{}
	}
	return existing, nil
}

// Lookup runs a prefix query over the word field.
func (b *BleveIndex) Lookup(ctx context.Context, query string) (Result, error) {
	q := Normalize(query)
	if q == "" {
		return Result{Items: []string{}}, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return Result{}, fmt.Errorf("index is closed")
	}

	start := time.Now()

	prefix := bleve.NewPrefixQuery(q)
	prefix.SetField("word")

	req := bleve.NewSearchRequestOptions(prefix, b.maxResults, 0, false)
	req.SortBy([]string{"rank"})

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("search failed: %w", err)
	}

	items := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		items = append(items, hit.ID)
	}
	return Result{Items: items, Latency: time.Since(start)}, nil
}

// Count returns the number of indexed words.
func (b *BleveIndex) Count() (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0, fmt.Errorf("index is closed")
	}
	n, err := b.index.DocCount()
	return int(n), err
}

// Close closes the index.
func (b *BleveIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.index.Close()
}

var _ Index = (*BleveIndex)(nil)
