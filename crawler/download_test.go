package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestFilenameFromURL(t *testing.T) {
	long := strings.Repeat("a", 150) + ".pdf"

	testCases := []struct {
		name     string
		rawURL   string
		expected string
	}{
		{"Simple", "https://example.com/files/ALLEN_BIO.pdf", "ALLEN_BIO.pdf"},
		{"Escaped", "https://example.com/files/Oral%20History.pdf", "Oral History.pdf"},
		{"QueryIgnored", "https://example.com/get/doc.pdf?session=1", "doc.pdf"},
		{"EmptyPath", "https://example.com", "download.pdf"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := url.Parse(tc.rawURL)
			if err != nil {
				t.Fatal(err)
			}
			if got := FilenameFromURL(u); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}

	t.Run("Long", func(t *testing.T) {
		u, _ := url.Parse("https://example.com/" + long)
		got := FilenameFromURL(u)
		if len(got) != maxFilenameLength || !strings.HasSuffix(got, ".pdf") {
			t.Errorf("unexpected shortened name %q (%d)", got, len(got))
		}
	})
}

func TestDownloader_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client, err := NewHTTPClient("", 100*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	dest := t.TempDir()
	d, err := NewDownloader(client, dest, "test", nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := d.Download(context.Background(), srv.URL+"/slow.pdf"); err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	matches, _ := filepath.Glob(filepath.Join(dest, "*"))
	if len(matches) != 0 {
		t.Errorf("expected empty destination, got %v", matches)
	}
}

func TestDownloader_LedgerDoesNotHideMissingFile(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("%PDF-1.4 a"))
	}))
	defer srv.Close()

	store := &BoltDBStorage{DBPath: filepath.Join(t.TempDir(), "state.db")}
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	dest := t.TempDir()
	d, err := NewDownloader(srv.Client(), dest, "test", store, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}

	rawURL := srv.URL + "/a.pdf"
	savePath := filepath.Join(dest, "a.pdf")

	outcome, err := d.Download(context.Background(), rawURL)
	if err != nil || outcome != Downloaded {
		t.Fatalf("expected first download, got %v (%v)", outcome, err)
	}
	if done, _ := store.IsDownloaded(rawURL); !done {
		t.Error("expected the download to be recorded")
	}

	outcome, err = d.Download(context.Background(), rawURL)
	if err != nil || outcome != SkippedExisting {
		t.Fatalf("expected skip while the file is present, got %v (%v)", outcome, err)
	}

	if err := os.Remove(savePath); err != nil {
		t.Fatal(err)
	}

	outcome, err = d.Download(context.Background(), rawURL)
	if err != nil || outcome != Downloaded {
		t.Fatalf("expected a missing file to be fetched again, got %v (%v)", outcome, err)
	}
	if _, err := os.Stat(savePath); err != nil {
		t.Errorf("expected %s present: %v", savePath, err)
	}
	if hits != 2 {
		t.Errorf("expected 2 requests, got %d", hits)
	}
}
