package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"os"
)

var ErrorURLNotFound = errors.New("URL not found")

func getResp(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	if client == nil {
		c, err := GetHTTPClient()
		if err != nil {
			return nil, fmt.Errorf("error creating HTTP client: %w", err)
		}
		client = c
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP Get request: %w", err)
	}

	req.Header.Set("User-Agent", clientAgent)

	resp, err := client.Do(req) //nolint:gosec // URL supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("error executing HTTP Get request: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrorURLNotFound
	}

	if resp.StatusCode != http.StatusOK {
		PrintHTTPResponse(resp)
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected response (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	return resp, nil
}

// GetJSON retrieves the HTTP content and decodes it into the passed target.
func GetJSON[T any](ctx context.Context, client *http.Client, url string, target *T) error {
	resp, err := getResp(ctx, client, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("error decoding content: %w", err)
	}
	return nil
}

// Download saves the content at url into the file at path.
func Download(ctx context.Context, client *http.Client, url, path string) (retErr error) {
	resp, err := getResp(ctx, client, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating file %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	if _, err = io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("error saving downloaded content to file: %w", err)
	}

	return nil
}

// PrintHTTPResponse dumps the response at debug level.
func PrintHTTPResponse(resp *http.Response) {
	if resp == nil {
		return
	}
	if respDump, err := httputil.DumpResponse(resp, true); err == nil {
		slog.Debug("http response", "dump", string(respDump))
	}
}
