package data

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVocabulary(t *testing.T) {
	v, err := NewVocabulary([]string{"cs.DC", " cs.AI ", "q-bio.QM"})
	require.NoError(t, err)
	assert.Equal(t, 3, v.Len())

	i, ok := v.Index("cs.AI")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = v.Index("cs.XX")
	assert.False(t, ok)

	i, ok = v.Index("q-bio.QM")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, err = NewVocabulary([]string{"cs.DC", "cs.DC"})
	assert.Error(t, err)

	_, err = NewVocabulary([]string{"cs.DC", ""})
	assert.Error(t, err)
}

func TestLoadVocabulary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph_metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"categories": ["cs.DC", "cs.AI"], "num_nodes": 2}`), 0600))

	v, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Len())
	i, ok := v.Index("cs.AI")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestLoadVocabulary_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"empty.json": `{"categories": []}`,
		"bad.json":   `{"categories": "cs.DC"}`,
		"dupe.json":  `{"categories": ["a", "a"]}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))
			_, err := LoadVocabulary(path)
			var loadErr *LoadError
			assert.True(t, errors.As(err, &loadErr))
		})
	}

	_, err := LoadVocabulary(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
	_, err = LoadVocabulary("")
	assert.Error(t, err)
}
