package data

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/mchmarny/catclean/pkg/net"
)

// Resolve returns a local path for src. URLs are downloaded into dir,
// keeping the remote file name so the extension still selects the format.
// Local paths are returned unchanged.
func Resolve(ctx context.Context, client *http.Client, src, dir string) (string, error) {
	if !isURL(src) {
		return src, nil
	}

	u, err := url.Parse(src)
	if err != nil {
		return "", loadErr(src, err)
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "download"
	}

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", loadErr(src, err)
	}

	local := filepath.Join(dir, name)
	if err := net.Download(ctx, client, src, local); err != nil {
		return "", loadErr(src, err)
	}
	return local, nil
}
