// Package treemaker holds the input plumbing shared by the command line and
// web front ends. Allele tables can come from local files, stdin, http(s) or
// Google Storage, and may be compressed.
package treemaker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// Stdin is the path that reads from standard input.
const Stdin = "-"

// IsGoogleStorage reports whether path points to a gs:// object.
func IsGoogleStorage(path string) bool {
	return strings.HasPrefix(path, "gs://")
}

// SplitGoogleStoragePath returns the bucket and object names of a gs:// path.
func SplitGoogleStoragePath(path string) (bucket, object string, err error) {
	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] == "" {
		return "", "", fmt.Errorf("tried to split your google storage path into a bucket and an object, but got %v", pathParts)
	}

	return pathParts[0], pathParts[1], nil
}

// Open returns a reader over the decompressed contents of path. client may be
// nil unless path is a gs:// object.
func Open(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	raw, err := openRaw(ctx, path, client)
	if err != nil {
		return nil, err
	}

	rc, _, err := Decompress(raw)
	if err != nil {
		raw.Close()
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return &stackedCloser{Reader: rc, closers: []io.Closer{rc, raw}}, nil
}

func openRaw(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	if path == Stdin {
		return io.NopCloser(os.Stdin), nil
	}

	if IsGoogleStorage(path) {
		if client == nil {
			return nil, fmt.Errorf("%s: a google storage client is required", path)
		}

		bucketName, objectName, err := SplitGoogleStoragePath(path)
		if err != nil {
			return nil, err
		}

		r, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
		}
		return r, nil
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, pfx.Err(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, pfx.Err(err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("%s: %s", path, resp.Status)
		}
		return resp.Body, nil
	}

	expanded, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(expanded)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return f, nil
}

// ReadAll reads the whole (decompressed) input at path into a string.
func ReadAll(ctx context.Context, path string, client *storage.Client) (string, error) {
	rc, err := Open(ctx, path, client)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return string(b), nil
}

// stackedCloser closes the decoder before the underlying source.
type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
