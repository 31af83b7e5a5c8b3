package data

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/mchmarny/catclean/pkg/net"
	"github.com/pkg/errors"
)

// Record is a single paper from the export.
type Record struct {
	ID         string   `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
	Title      string   `json:"title" yaml:"title"`
	Abstract   string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// Primary returns the first listed category, or an empty string.
func (r Record) Primary() string {
	if len(r.Categories) == 0 {
		return ""
	}
	return r.Categories[0]
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// LoadRecords loads the paper export from a file path or an http(s) URL.
// The client is only used for URLs; nil selects the default client.
func LoadRecords(ctx context.Context, src string, client *http.Client) ([]Record, error) {
	if src == "" {
		return nil, loadErr("records", errors.New("source not specified"))
	}

	var list []Record
	if isURL(src) {
		if err := net.GetJSON(ctx, client, src, &list); err != nil {
			return nil, loadErr(src, err)
		}
		return list, nil
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, loadErr(src, errors.Wrap(err, "error opening records file"))
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&list); err != nil {
		return nil, loadErr(src, errors.Wrap(err, "error decoding records"))
	}

	return list, nil
}
