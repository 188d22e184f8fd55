package crawler

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"epubs/file"

	"go.uber.org/zap"
)

const maxFilenameLength = 100

// Outcome is the result of one download attempt.
type Outcome int

const (
	Downloaded Outcome = iota
	// SkippedExisting means the file is already at the destination.
	SkippedExisting
)

// DownloadLedger remembers completed downloads across runs. It never
// replaces the destination check: a recorded URL whose file is gone is
// fetched again.
type DownloadLedger interface {
	IsDownloaded(rawURL string) (bool, error)
	MarkDownloaded(rawURL, path string) error
}

type Downloader struct {
	client       *http.Client
	downloadPath string
	userAgent    string
	ledger       DownloadLedger
	logger       *zap.Logger
}

// NewDownloader creates the destination directory. ledger may be nil.
func NewDownloader(client *http.Client, downloadPath, userAgent string, ledger DownloadLedger, logger *zap.Logger) (*Downloader, error) {
	if err := os.MkdirAll(downloadPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create downloads directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{
		client:       client,
		downloadPath: downloadPath,
		userAgent:    userAgent,
		ledger:       ledger,
		logger:       logger,
	}, nil
}

// Download fetches rawURL into the destination unless it is already there.
func (d *Downloader) Download(ctx context.Context, rawURL string) (Outcome, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, fmt.Errorf("invalid URL %s: %w", rawURL, err)
	}

	savePath := filepath.Join(d.downloadPath, FilenameFromURL(u))
	if _, err := os.Stat(savePath); err == nil {
		d.logger.Info("File already exists, skipping download", zap.String("save_path", savePath))
		return SkippedExisting, nil
	}

	if d.ledger != nil {
		done, err := d.ledger.IsDownloaded(rawURL)
		if err != nil {
			d.logger.Warn("Failed to read download ledger", zap.String("url", rawURL), zap.Error(err))
		} else if done {
			d.logger.Info("Recorded download missing from destination, fetching again",
				zap.String("url", rawURL),
				zap.String("save_path", savePath))
		}
	}

	d.logger.Info("Starting file download",
		zap.String("url", rawURL),
		zap.String("save_path", savePath))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	err = file.WriteAtomic(savePath, func(w io.Writer) error {
		_, err := io.Copy(w, resp.Body)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save %s: %w", savePath, err)
	}

	if d.ledger != nil {
		if err := d.ledger.MarkDownloaded(rawURL, savePath); err != nil {
			d.logger.Warn("Failed to record download", zap.String("url", rawURL), zap.Error(err))
		}
	}

	d.logger.Info("File download completed", zap.String("save_path", savePath))
	return Downloaded, nil
}

// FilenameFromURL derives the local file name from the last path segment.
// Overlong names are shortened and suffixed with a hash to stay unique.
func FilenameFromURL(u *url.URL) string {
	defaultName := "download.pdf"

	// u.Path is already unescaped
	filename := path.Base(u.Path)
	filename = strings.Map(func(r rune) rune {
		if r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, filename)
	if filename == "" || filename == "." || filename == "/" || filename == ".." {
		return defaultName
	}

	if len(filename) > maxFilenameLength {
		hash := sha1.New()
		hash.Write([]byte(filename))
		hashStr := hex.EncodeToString(hash.Sum(nil))
		extension := filepath.Ext(filename)
		base := filename[:maxFilenameLength-len(extension)-8]
		return fmt.Sprintf("%s-%s%s", base, hashStr[:7], extension)
	}
	return filename
}
