package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/crestline-research/finmap/internal/resilience"
)

// FTPOptions configures the FTP fetcher. Host names the vendor drop server
// (port 21 assumed when omitted); User and Password default to anonymous.
type FTPOptions struct {
	Host       string
	User       string
	Password   string
	Timeout    time.Duration
	MaxRetries int
}

// FTPFetcher downloads statement exports from a vendor FTP drop. A ref may
// be a bare remote path resolved against the configured host, or a full
// ftp:// URL naming its own host. Transfers retry on RFC 959 transient
// replies and connection drops; permanent replies (bad path, bad login)
// fail fast.
type FTPFetcher struct {
	opts FTPOptions
}

// NewFTPFetcher creates an FTPFetcher with the given options.
func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	return &FTPFetcher{opts: opts}
}

func (f *FTPFetcher) retryConfig(op string) resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = f.opts.MaxRetries
	cfg.OnRetry = resilience.RetryLogger("drop", op)
	return cfg
}

// parseFTPURL extracts host (with port) and path from an FTP URL.
func parseFTPURL(rawURL string) (host string, path string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", eris.Wrap(err, "fetcher: parse ftp url")
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("fetcher: expected ftp scheme, got %q", u.Scheme)
	}

	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	path = u.Path
	if path == "" {
		return "", "", eris.New("fetcher: empty path in ftp url")
	}

	return host, path, nil
}

// resolve turns a ref into a dial target and remote path.
func (f *FTPFetcher) resolve(ref string) (host string, path string, err error) {
	if strings.HasPrefix(ref, "ftp://") {
		return parseFTPURL(ref)
	}
	if f.opts.Host == "" {
		return "", "", eris.Errorf("fetcher: no ftp host configured for path %q", ref)
	}
	host = f.opts.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}
	return host, ref, nil
}

func (f *FTPFetcher) connect(ctx context.Context, host string) (*ftp.ServerConn, error) {
	zap.L().Debug("ftp: connecting", zap.String("host", host))

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: ftp dial")
	}

	user, pass := f.opts.User, f.opts.Password
	if user == "" {
		user, pass = "anonymous", "anonymous@"
	}
	if err := conn.Login(user, pass); err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "fetcher: ftp login")
	}
	return conn, nil
}

// ftpConnReader ties an FTP response to its connection so that closing the
// reader also releases the connection.
type ftpConnReader struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (r *ftpConnReader) Read(p []byte) (int, error) {
	return r.resp.Read(p)
}

func (r *ftpConnReader) Close() error {
	respErr := r.resp.Close()
	quitErr := r.conn.Quit()
	if respErr != nil {
		return eris.Wrap(respErr, "fetcher: close ftp response")
	}
	if quitErr != nil {
		return eris.Wrap(quitErr, "fetcher: quit ftp connection")
	}
	return nil
}

// retrieve makes a single connect-and-RETR attempt. The returned reader owns
// the connection.
func (f *FTPFetcher) retrieve(ctx context.Context, ref string) (io.ReadCloser, error) {
	host, path, err := f.resolve(ref)
	if err != nil {
		return nil, err
	}

	conn, err := f.connect(ctx, host)
	if err != nil {
		return nil, err
	}

	resp, err := conn.Retr(path)
	if err != nil {
		_ = conn.Quit()
		return nil, eris.Wrapf(err, "fetcher: ftp retrieve %s", path)
	}

	return &ftpConnReader{resp: resp, conn: conn}, nil
}

// Download retrieves the ref from the drop and returns a reader. Only
// establishing the transfer retries; once the reader is handed over, a
// mid-stream drop surfaces to the caller. The caller must close the
// returned ReadCloser to release the FTP connection.
func (f *FTPFetcher) Download(ctx context.Context, ref string) (io.ReadCloser, error) {
	return resilience.DoVal(ctx, f.retryConfig(ref), func(ctx context.Context) (io.ReadCloser, error) {
		return f.retrieve(ctx, ref)
	})
}

// DownloadToFile downloads the ref to a local file, retrying the whole
// transfer on transient failures. Each attempt truncates the file, so a
// partial write from a dropped connection never survives. Returns bytes
// written.
func (f *FTPFetcher) DownloadToFile(ctx context.Context, ref string, path string) (int64, error) {
	return resilience.DoVal(ctx, f.retryConfig(ref), func(ctx context.Context) (int64, error) {
		rc, err := f.retrieve(ctx, ref)
		if err != nil {
			return 0, err
		}
		defer rc.Close() //nolint:errcheck

		file, err := os.Create(path)
		if err != nil {
			return 0, eris.Wrap(err, "fetcher: create file")
		}
		defer file.Close() //nolint:errcheck

		n, err := io.Copy(file, rc)
		if err != nil {
			return n, eris.Wrap(err, "fetcher: write file")
		}

		return n, nil
	})
}

// List returns the file names in a drop directory, sorted. Subdirectories
// and links are skipped.
func (f *FTPFetcher) List(ctx context.Context, dir string) ([]string, error) {
	return resilience.DoVal(ctx, f.retryConfig(dir), func(ctx context.Context) ([]string, error) {
		host, path, err := f.resolve(dir)
		if err != nil {
			return nil, err
		}

		conn, err := f.connect(ctx, host)
		if err != nil {
			return nil, err
		}
		defer conn.Quit() //nolint:errcheck

		entries, err := conn.List(path)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: ftp list %s", path)
		}

		var names []string
		for _, e := range entries {
			if e.Type == ftp.EntryTypeFile {
				names = append(names, e.Name)
			}
		}
		sort.Strings(names)
		return names, nil
	})
}
