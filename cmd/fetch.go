package main

import (
	"context"
	"net/url"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/crestline-research/finmap/internal/fetcher"
)

var (
	fetchDir     string
	fetchExtract bool
	fetchMirror  bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [ref]...",
	Short: "Download statement exports",
	Long: "Retrieves export files into a local directory. Refs may be full http(s) or " +
		"ftp URLs, or bare paths resolved against the configured portal base URL. With " +
		"--mirror and no refs, every file in the configured FTP drop directory is pulled.",
	Example: `  finmap fetch results/ACME/fy2024.zip --extract
  finmap fetch https://portal.example.com/exports/acme_bs.csv
  finmap fetch --mirror --dir exports/incoming/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("fetch"); err != nil {
			return err
		}
		if len(args) == 0 && !fetchMirror {
			return eris.New("cmd: no refs given; pass refs or --mirror")
		}

		if err := os.MkdirAll(fetchDir, 0o755); err != nil {
			return eris.Wrapf(err, "cmd: create dir %s", fetchDir)
		}

		if fetchMirror {
			ftpF := newFTPFetcher()
			names, err := ftpF.List(ctx, cfg.Fetcher.FTP.Dir)
			if err != nil {
				return err
			}
			zap.L().Info("mirroring ftp drop",
				zap.String("dir", cfg.Fetcher.FTP.Dir),
				zap.Int("files", len(names)),
			)
			for _, name := range names {
				ref := path.Join(cfg.Fetcher.FTP.Dir, name)
				if err := fetchOne(ctx, ftpF, ref, name); err != nil {
					return err
				}
			}
			return nil
		}

		for _, ref := range args {
			target, viaFTP, err := resolveRef(ref, cfg.Fetcher.BaseURL, cfg.Fetcher.FTP.Host)
			if err != nil {
				return err
			}
			name, err := destName(target)
			if err != nil {
				return err
			}

			var f fetcher.Fetcher
			if viaFTP {
				f = newFTPFetcher()
			} else {
				f = newHTTPFetcher()
			}
			if err := fetchOne(ctx, f, target, name); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDir, "dir", ".", "destination directory")
	fetchCmd.Flags().BoolVar(&fetchExtract, "extract", false, "extract downloaded ZIP bundles in place")
	fetchCmd.Flags().BoolVar(&fetchMirror, "mirror", false, "download every file in the configured FTP drop directory")
	rootCmd.AddCommand(fetchCmd)
}

func newHTTPFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetcher.UserAgent,
		Timeout:    time.Duration(cfg.Fetcher.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetcher.MaxRetries,
		RatePerSec: rate.Limit(cfg.Fetcher.RatePerSec),
		Burst:      cfg.Fetcher.Burst,
	})
}

func newFTPFetcher() *fetcher.FTPFetcher {
	return fetcher.NewFTPFetcher(fetcher.FTPOptions{
		Host:       cfg.Fetcher.FTP.Host,
		User:       cfg.Fetcher.FTP.User,
		Password:   cfg.Fetcher.FTP.Password,
		Timeout:    time.Duration(cfg.Fetcher.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetcher.MaxRetries,
	})
}

// fetchOne downloads a single ref into the destination directory and expands
// it when it is a ZIP bundle and --extract is set.
func fetchOne(ctx context.Context, f fetcher.Fetcher, ref, name string) error {
	dest := filepath.Join(fetchDir, name)
	n, err := f.DownloadToFile(ctx, ref, dest)
	if err != nil {
		return err
	}
	zap.L().Info("downloaded", zap.String("ref", ref), zap.Int64("bytes", n))

	if fetchExtract && strings.EqualFold(filepath.Ext(dest), ".zip") {
		extracted, err := fetcher.ExtractZIP(dest, fetchDir)
		if err != nil {
			return err
		}
		zap.L().Info("extracted bundle",
			zap.String("archive", name),
			zap.Int("members", len(extracted)),
		)
	}
	return nil
}

// resolveRef decides how one ref is retrieved: explicit http(s) and ftp URLs
// pass through, bare paths join the portal base URL, and fall through to the
// FTP drop when only FTP is configured.
func resolveRef(ref, baseURL, ftpHost string) (target string, viaFTP bool, err error) {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref, false, nil
	case strings.HasPrefix(ref, "ftp://"):
		return ref, true, nil
	case baseURL != "":
		return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(ref, "/"), false, nil
	case ftpHost != "":
		return ref, true, nil
	default:
		return "", false, eris.Errorf("cmd: cannot resolve ref %q without a base URL or FTP host", ref)
	}
}

// destName derives the local filename for a target URL or path.
func destName(target string) (string, error) {
	p := target
	if u, err := url.Parse(target); err == nil && u.Scheme != "" {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" || name == "" {
		return "", eris.Errorf("cmd: cannot derive a filename from %q", target)
	}
	return name, nil
}
