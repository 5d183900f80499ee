package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status_MarkerAndMessage(t *testing.T) {
	// Given: a writer without color
	buf := &bytes.Buffer{}
	w := New(buf, false)

	// When: printing a status line
	w.Status(">", "Indexing words")

	// Then: marker and message are on one line
	assert.Equal(t, "> Indexing words\n", buf.String())
}

func TestWriter_Status_EmptyMarkerIndents(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf, false)

	w.Status("", "detail")

	assert.Equal(t, "  detail\n", buf.String())
}

func TestWriter_Markers(t *testing.T) {
	tests := []struct {
		name  string
		print func(w *Writer)
		want  string
	}{
		{"success", func(w *Writer) { w.Success("done") }, "ok done\n"},
		{"successf", func(w *Writer) { w.Successf("indexed %d", 3) }, "ok indexed 3\n"},
		{"warning", func(w *Writer) { w.Warning("exists") }, "warning: exists\n"},
		{"warningf", func(w *Writer) { w.Warningf("%s exists", "x") }, "warning: x exists\n"},
		{"error", func(w *Writer) { w.Error("failed") }, "error: failed\n"},
		{"statusf", func(w *Writer) { w.Statusf("-", "%d items", 7) }, "- 7 items\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.print(New(buf, false))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_Field_PadsKeys(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf, false)

	w.Field("Path", 8, "/tmp/words.db")
	w.Field("Words", 8, 16)

	assert.Equal(t, "  Path:    /tmp/words.db\n  Words:   16\n", buf.String())
}

func TestWriter_Code_IndentsLines(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf, false)

	w.Code("typeahead index\ntypeahead run\n")

	assert.Equal(t, "\n    typeahead index\n    typeahead run\n\n", buf.String())
}

func TestWriter_Newline(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf, false).Newline()
	assert.Equal(t, "\n", buf.String())
}

func TestWriter_NoColorHasNoEscapes(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf, false)

	w.Success("done")
	w.Warning("careful")
	w.Error("broken")

	assert.NotContains(t, buf.String(), "\x1b[")
}
