package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/typeahead/pkg/version"
)

func TestVersionCmd_Default(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, nil, "version")

	require.NoError(t, err)
	assert.Equal(t, version.String()+"\n", out)
}

func TestVersionCmd_Short(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, nil, "version", "--short")

	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)
}

func TestVersionCmd_JSON(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, nil, "version", "--json")

	require.NoError(t, err)
	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info.Version)
}
