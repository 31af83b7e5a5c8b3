package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mchmarny/catclean/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")

	c1, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, ThresholdDefault, c1.Threshold)

	c1.Threshold = 4
	c1.Workers = 2
	c1.Papers = "papers.json"

	require.NoError(t, Save(dir, c1))

	c2, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, c1.Threshold, c2.Threshold)
	assert.Equal(t, c1.Workers, c2.Workers)
	assert.Equal(t, c1.Papers, c2.Papers)
}

func TestLoad_KeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("threshold: 5\n"), 0600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Threshold)
	assert.Equal(t, Default().Papers, c.Papers)
	assert.Equal(t, data.FormatJSON, c.Format)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("threshold: [1"), 0600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSave_Errors(t *testing.T) {
	assert.Error(t, Save("", Default()))
	assert.Error(t, Save(t.TempDir(), nil))
}

func TestReadOrCreate_EmptyDir(t *testing.T) {
	_, err := ReadOrCreate("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"yaml", func(c *Config) { c.Format = "YAML" }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, false},
		{"negative sample", func(c *Config) { c.Sample = -1 }, false},
		{"bad format", func(c *Config) { c.Format = "xml" }, false},
		{"negative threshold", func(c *Config) { c.Threshold = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			err := Validate(c)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var cfgErr *data.ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}

	assert.Error(t, Validate(nil))
}

func TestGetOrCreateHomeDir_EmptyName(t *testing.T) {
	_, _, err := GetOrCreateHomeDir("")
	assert.Error(t, err)
}

func TestGetOrCreateHomeDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, created, err := GetOrCreateHomeDir("catclean-test")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, ".catclean-test", filepath.Base(dir))

	_, created, err = GetOrCreateHomeDir(".catclean-test")
	require.NoError(t, err)
	assert.False(t, created)
}
