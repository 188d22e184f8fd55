package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"epubs/classify"
	"epubs/file"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load([]string{"-i", "book.pdf", "-o", "book.epub"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Mode != ModeSingleFile || cfg.ConversionKind != KindPDFToEPUB {
		t.Errorf("unexpected mode/kind: %s/%s", cfg.Mode, cfg.ConversionKind)
	}
	if cfg.Title != "My book title" || cfg.Language != "en" {
		t.Errorf("unexpected book defaults: %q %q", cfg.Title, cfg.Language)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("unexpected default timeout %v", cfg.Timeout)
	}
	if policy := cfg.Policy(); policy != (file.Policy{}) {
		t.Errorf("no switches must mean raw text, got %+v", policy)
	}
	if !slices.Equal(cfg.Markers, classify.DefaultMarkers) {
		t.Errorf("expected default markers, got %v", cfg.Markers)
	}
}

func TestLoad_ParFile(t *testing.T) {
	parfile := filepath.Join(t.TempDir(), "params.yaml")
	content := `mode: directory
input-directory: bios
output: from-file.epub
title: From File
trim-header: true
timeout: 45s
`
	if err := os.WriteFile(parfile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load([]string{"--parfile", parfile, "--title", "From Flags"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Mode != ModeDirectory || cfg.InputDirectory != "bios" || cfg.Output != "from-file.epub" {
		t.Errorf("parameter file values not applied: %+v", cfg)
	}
	if cfg.Title != "From Flags" {
		t.Errorf("explicit flag must override the parameter file, got %q", cfg.Title)
	}
	if !cfg.TrimHeader || cfg.Timeout != 45*time.Second {
		t.Errorf("unexpected values: trim-header=%v timeout=%v", cfg.TrimHeader, cfg.Timeout)
	}
	if cfg.Language != "en" {
		t.Errorf("defaults must survive the parameter file, got %q", cfg.Language)
	}
}

func TestLoad_ParameterErrors(t *testing.T) {
	testCases := []struct {
		name  string
		args  []string
		field string
	}{
		{"MissingInput", []string{"-o", "out.epub"}, "input"},
		{"MissingOutput", []string{"-i", "in.pdf"}, "output"},
		{"UnknownMode", []string{"--mode", "merge"}, "mode"},
		{"UnknownKind", []string{"-i", "in.pdf", "-o", "out", "--conversion-kind", "pdf-to-doc"}, "conversion-kind"},
		{"DirectoryNeedsInputDirectory", []string{"--mode", "directory", "-o", "out.epub"}, "input-directory"},
		{"CollectNeedsURL", []string{"--mode", "collect", "-o", "pdfs"}, "pdf-source-url"},
		{"CollectNegativeSkip", []string{"--mode", "collect", "-o", "pdfs", "--pdf-source-url", "https://example.com", "--skip-links=-1"}, "skip-links"},
		{"ClassifyNeedsOutput", []string{"--mode", "classify", "--input-directory", "bios"}, "output"},
		{"HTMLKindWithPDFInput", []string{"-i", "in.pdf", "-o", "out.epub", "--conversion-kind", "html-to-epub"}, "input"},
		{"TextKindWithHTMLInput", []string{"-i", "page.htm", "-o", "out.txt", "--conversion-kind", "pdf-to-text"}, "input"},
		{"UnsupportedInput", []string{"-i", "notes.txt", "-o", "out.epub"}, "input"},
		{"MissingParFile", []string{"--parfile", "does-not-exist.yaml"}, "parfile"},
		{"UnknownFlag", []string{"--no-such-flag"}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.args)
			if !errors.Is(err, ErrParameter) {
				t.Fatalf("expected parameter error, got %v", err)
			}
			var pe *ParameterError
			if !errors.As(err, &pe) || pe.Field != tc.field {
				t.Errorf("expected field %q, got %+v", tc.field, pe)
			}
		})
	}
}

func TestLoad_HelpAndVersion(t *testing.T) {
	if _, err := Load([]string{"--help"}); !errors.Is(err, ErrHelp) {
		t.Errorf("expected ErrHelp, got %v", err)
	}
	if _, err := Load([]string{"--version"}); !errors.Is(err, ErrVersion) {
		t.Errorf("expected ErrVersion, got %v", err)
	}
}

func TestLoad_EscapeTextOptIn(t *testing.T) {
	cfg, err := Load([]string{"-i", "a.pdf", "-o", "b.epub", "--escape-text"})
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Policy().EscapeText {
		t.Error("expected --escape-text to enable escaping")
	}
}

func TestConfig_Policy(t *testing.T) {
	cfg := &Config{
		NormalizeLinebreaks: true,
		TrimFooter:          true,
		StrictPages:         true,
		EscapeText:          true,
		ConversionKind:      KindPDFToEPUB,
	}
	expected := file.Policy{LineBreaks: true, TrimFooter: true, Strict: true, EscapeText: true}
	if got := cfg.Policy(); got != expected {
		t.Errorf("expected %+v, got %+v", expected, got)
	}

	cfg.ConversionKind = KindPDFToText
	if cfg.Policy().EscapeText {
		t.Error("text output must not be escaped")
	}
}

func TestConfig_Derived(t *testing.T) {
	cfg, err := Load([]string{
		"--mode", "collect",
		"--pdf-source-url", "https://example.com/bios/",
		"-o", "pdfs",
		"--skip-links", "3",
		"--proxy", "socks5://127.0.0.1:9050",
		"--state-db", "state.db",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cc := cfg.CrawlerConfig()
	if cc.SourceURL != "https://example.com/bios/" || cc.Destination != "pdfs" || cc.SkipLinks != 3 {
		t.Errorf("unexpected crawler config: %+v", cc)
	}
	if cc.ProxyURL != "socks5://127.0.0.1:9050" || cc.StateDBPath != "state.db" || cc.RequestTimeout != 30*time.Second {
		t.Errorf("unexpected crawler config: %+v", cc)
	}
	if cc.UserAgent == "" {
		t.Error("expected default user agent")
	}

	cfg.InputDirectory = "bios"
	kc := cfg.ClassifyConfig()
	if kc.InputDir != "bios" || kc.OutputDir != "pdfs" || kc.BioMarker != "_BIO" || len(kc.Markers) != len(classify.DefaultMarkers) {
		t.Errorf("unexpected classify config: %+v", kc)
	}

	cfg.Author = "NASA"
	cfg.CSS = "style.css"
	meta := cfg.BookMeta()
	if meta.Title != "My book title" || meta.Author != "NASA" || meta.Stylesheet != "style.css" || meta.Language != "en" {
		t.Errorf("unexpected book meta: %+v", meta)
	}
}
