package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorCmd_DefaultConfig(t *testing.T) {
	// Given: defaults in an isolated home
	isolate(t)

	// When: running doctor
	out, _, err := execute(t, nil, "doctor")

	// Then: required checks pass
	require.NoError(t, err)
	assert.Contains(t, out, "[PASS] backend: wordlist: built-in vocabulary (16 words)")
	assert.Contains(t, out, "[PASS] data_dir")
}

func TestDoctorCmd_MissingIndexFails(t *testing.T) {
	// Given: a bleve backend with no index built
	isolate(t)
	t.Setenv("TYPEAHEAD_BACKEND", "bleve")
	t.Setenv("TYPEAHEAD_INDEX_PATH", filepath.Join(t.TempDir(), "words.bleve"))

	// When: running doctor as JSON
	out, _, err := execute(t, nil, "doctor", "--json")

	// Then: it fails and reports the backend check
	require.Error(t, err)
	var report struct {
		Status string `json:"status"`
		Checks []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "failed", report.Status)
	for _, c := range report.Checks {
		if c.Name == "backend" {
			assert.Equal(t, "fail", c.Status)
		}
	}
}
