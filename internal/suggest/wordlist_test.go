package suggest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	terrors "github.com/Aman-CERP/typeahead/internal/errors"
)

func TestWordList_PrefixMatchInVocabularyOrder(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"re prefix", "re", []string{"react", "redux", "render", "ref", "request", "response"}},
		{"case and space insensitive", "  REd ", []string{"redux"}},
		{"single letter capped at seven", "r", []string{"react", "redux", "router", "render", "ref", "request", "response"}},
		{"no match", "zz", []string{}},
		{"blank", "   ", []string{}},
	}

	wl := NewWordList(DefaultWords, DefaultMaxResults)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := wl.Lookup(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Items)
		})
	}
}

func TestWordList_RespectsMaxResults(t *testing.T) {
	wl := NewWordList(DefaultWords, 2)

	res, err := wl.Lookup(context.Background(), "t")

	require.NoError(t, err)
	assert.Equal(t, []string{"typescript", "tailwind"}, res.Items)
}

func TestWordList_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWordList(DefaultWords, 0).Lookup(ctx, "re")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestWordList_Replace(t *testing.T) {
	// Given: a word list
	wl := NewWordList([]string{"alpha"}, 0)

	// When: the vocabulary is replaced
	wl.Replace([]string{"beta", "Beta", "  ", "#comment", "bravo"})

	// Then: lookups see normalized, deduplicated words
	assert.Equal(t, []string{"beta", "bravo"}, wl.Words())
	assert.Equal(t, 2, wl.Len())
	res, err := wl.Lookup(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestLoadWordList(t *testing.T) {
	// Given: a words file with blanks and comments
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("Golang\n\n# ignored\ngopher\ngolang\n"), 0644))

	// When: loading
	wl, err := LoadWordList(path, 0)

	// Then: the vocabulary is normalized
	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "gopher"}, wl.Words())
}

func TestReadWords_MissingFile(t *testing.T) {
	_, err := ReadWords(filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	assert.Equal(t, terrors.ErrCodeWordsNotFound, terrors.GetCode(err))
}

func TestLookupFunc_Adapts(t *testing.T) {
	var l Lookup = LookupFunc(func(ctx context.Context, q string) (Result, error) {
		return Result{Items: []string{q}}, nil
	})

	res, err := l.Lookup(context.Background(), "x")

	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, res.Items)
}
