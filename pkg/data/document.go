package data

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatFor returns the document format implied by the path extension.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// WriteDocument serializes v to path as indented JSON, or YAML when the
// path ends in .yaml or .yml.
func WriteDocument(v any, path string) error {
	if path == "" {
		return errors.New("path required")
	}

	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return errors.Wrapf(err, "failed to create dir for: %s", path)
	}

	var (
		b   []byte
		err error
	)
	if FormatFor(path) == FormatYAML {
		b, err = yaml.Marshal(v)
	} else {
		b, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return errors.Wrapf(err, "failed to marshal document: %s", path)
	}

	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write document: %s", path)
	}
	return nil
}

// ArtifactStem turns a category code into a file name fragment (cs.DC -> cs_DC).
func ArtifactStem(category string) string {
	return strings.ReplaceAll(category, ".", "_")
}
