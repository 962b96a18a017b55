// Package fetcher retrieves statement exports from remote sources: data
// portals over HTTP and vendor FTP drops. Both backends rate-limit and
// retry transient failures; parsing the downloaded files is the ingest
// package's job.
package fetcher

import (
	"context"
	"io"
)

// Fetcher downloads remote statement exports. The ref is a full URL for the
// HTTP backend and a remote path (or ftp:// URL) for the FTP backend.
type Fetcher interface {
	// Download fetches ref and returns the response body. The caller must
	// close the reader.
	Download(ctx context.Context, ref string) (io.ReadCloser, error)

	// DownloadToFile fetches ref and writes it to path, returning bytes
	// written.
	DownloadToFile(ctx context.Context, ref string, path string) (int64, error)
}
