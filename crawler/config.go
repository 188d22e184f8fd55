package crawler

import (
	"time"
)

// Config holds the settings for one collect run.
type Config struct {
	// SourceURL is the index page listing the pages to visit.
	SourceURL string
	// Destination is the directory PDFs are downloaded into.
	Destination string
	// SkipLinks is the number of leading relative links on the index page
	// that are not followed (site navigation ahead of the document list).
	SkipLinks int
	UserAgent string
	// RequestTimeout bounds every page fetch and download.
	RequestTimeout time.Duration
	// ProxyURL is an optional http(s):// or socks5:// proxy.
	ProxyURL string
	// StateDBPath is an optional bbolt file for cookies and the download ledger.
	StateDBPath  string
	ShowProgress bool
}

// DefaultConfig returns a default collect configuration
func DefaultConfig() *Config {
	return &Config{
		UserAgent:      "epubs-collector/1.0",
		RequestTimeout: 30 * time.Second,
	}
}
