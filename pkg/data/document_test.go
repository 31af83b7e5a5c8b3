package data

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type testDoc struct {
	Category string `json:"category" yaml:"category"`
	Count    int    `json:"count" yaml:"count"`
}

func TestWriteDocument(t *testing.T) {
	dir := t.TempDir()
	in := testDoc{Category: "cs.DC", Count: 3}

	jsonPath := filepath.Join(dir, "out", "report.json")
	require.NoError(t, WriteDocument(in, jsonPath))
	b, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "\n  \"category\"")
	var j testDoc
	require.NoError(t, json.Unmarshal(b, &j))
	assert.Equal(t, in, j)

	yamlPath := filepath.Join(dir, "report.yml")
	require.NoError(t, WriteDocument(in, yamlPath))
	b, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	var y testDoc
	require.NoError(t, yaml.Unmarshal(b, &y))
	assert.Equal(t, in, y)

	assert.Error(t, WriteDocument(in, ""))
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("a.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("a.YML"))
	assert.Equal(t, FormatJSON, FormatFor("a.json"))
	assert.Equal(t, FormatJSON, FormatFor("a"))
}

func TestArtifactStem(t *testing.T) {
	assert.Equal(t, "cs_DC", ArtifactStem("cs.DC"))
	assert.Equal(t, "q-bio_QM", ArtifactStem("q-bio.QM"))
}
