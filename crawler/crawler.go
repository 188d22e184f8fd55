package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/gocolly/colly/v2"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Result summarizes a collect run.
type Result struct {
	PagesVisited int
	PDFsFound    int
	Downloaded   int
	Skipped      int
	Failed       int
}

// Collector downloads the PDFs linked from the pages of an index page. It is
// best-effort: a failed page or download is logged and skipped, never fatal.
type Collector struct {
	config    *Config
	client    *http.Client
	validator *URLValidator
	tracker   *VisitTracker
	logger    *zap.Logger
	ctx       context.Context
}

func NewCollector(config *Config, logger *zap.Logger) (*Collector, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	u, err := url.Parse(config.SourceURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid source URL %q", config.SourceURL)
	}

	client, err := NewHTTPClient(config.ProxyURL, config.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &Collector{
		config:    config,
		client:    client,
		validator: NewURLValidator(),
		logger:    logger,
		ctx:       context.Background(),
	}, nil
}

// Collect crawls the index and downloads every PDF not yet present.
func (c *Collector) Collect(ctx context.Context) (*Result, error) {
	c.ctx = ctx
	c.tracker = NewVisitTracker()

	var store *BoltDBStorage
	if c.config.StateDBPath != "" {
		store = &BoltDBStorage{DBPath: c.config.StateDBPath}
		if err := store.Init(); err != nil {
			return nil, err
		}
		defer store.Close()
		if err := store.ResetVisited(); err != nil {
			return nil, fmt.Errorf("failed to reset visited pages: %w", err)
		}
	}

	collector := colly.NewCollector(
		colly.UserAgent(c.config.UserAgent),
		colly.MaxDepth(2),
	)
	collector.SetClient(c.client)
	collector.SetRequestTimeout(c.config.RequestTimeout)
	if store != nil {
		if err := collector.SetStorage(store); err != nil {
			return nil, fmt.Errorf("failed to set collector storage: %w", err)
		}
	}

	collector.OnRequest(c.OnRequest())
	collector.OnHTML("html", c.OnHTML())
	collector.OnError(c.OnError())
	collector.OnResponse(c.OnResponse())

	c.logger.Info("Collecting PDFs",
		zap.String("source", c.config.SourceURL),
		zap.String("destination", c.config.Destination))

	if err := collector.Visit(c.config.SourceURL); err != nil {
		return nil, fmt.Errorf("failed to visit index %s: %w", c.config.SourceURL, err)
	}
	collector.Wait()

	var ledger DownloadLedger
	if store != nil {
		ledger = store
	}
	downloader, err := NewDownloader(c.client, c.config.Destination, c.config.UserAgent, ledger, c.logger)
	if err != nil {
		return nil, err
	}

	pdfs := c.tracker.PDFs()
	result := &Result{
		PagesVisited: c.tracker.GetTotalVisits(),
		PDFsFound:    len(pdfs),
	}

	var bar *progressbar.ProgressBar
	if c.config.ShowProgress {
		bar = progressbar.NewOptions(len(pdfs),
			progressbar.OptionSetDescription("Downloading PDFs"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
	}

	for _, pdfURL := range pdfs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome, err := c.download(ctx, downloader, pdfURL)
		switch {
		case err != nil:
			result.Failed++
			c.logger.Warn("Download failed, skipping",
				zap.String("url", pdfURL),
				zap.Error(err))
		case outcome == Downloaded:
			result.Downloaded++
		default:
			result.Skipped++
		}

		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	c.logger.Info("Collect completed",
		zap.Int("pages_visited", result.PagesVisited),
		zap.Int("pdfs_found", result.PDFsFound),
		zap.Int("downloaded", result.Downloaded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))

	return result, nil
}

func (c *Collector) download(ctx context.Context, d *Downloader, rawURL string) (Outcome, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, err
	}
	if !c.validator.IsValidDownloadURL(u) {
		return 0, errors.New("unsupported download URL")
	}
	return d.Download(ctx, rawURL)
}
