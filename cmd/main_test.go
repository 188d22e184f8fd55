package main

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"epubs/config"
	"epubs/file"

	"go.uber.org/zap/zaptest"
)

func TestRun_HTMLDirectoryToEPUB(t *testing.T) {
	in := t.TempDir()
	for name, body := range map[string]string{
		"01_launch.html":  "<p>Liftoff.</p>",
		"02_landing.html": "<p>Touchdown.</p>",
		"notes.txt":       "ignored",
	} {
		if err := os.WriteFile(filepath.Join(in, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	output := filepath.Join(t.TempDir(), "mission.epub")

	cfg, err := config.Load([]string{
		"--mode", "directory",
		"--conversion-kind", "html-to-epub",
		"--input-directory", in,
		"-o", output,
		"--title", "Mission",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := run(context.Background(), cfg, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, err := zip.OpenReader(output)
	if err != nil {
		t.Fatalf("failed to open book: %v", err)
	}
	defer r.Close()

	names := make(map[string]bool)
	for _, f := range r.File {
		names[f.Name] = true
	}
	for _, expected := range []string{"mimetype", "EPUB/chapter_1.xhtml", "EPUB/chapter_2.xhtml"} {
		if !names[expected] {
			t.Errorf("expected %s in book", expected)
		}
	}
	if names["EPUB/chapter_3.xhtml"] {
		t.Error("unexpected third chapter")
	}
}

func TestRun_SingleFileFailureWritesNothing(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.epub")
	cfg, err := config.Load([]string{"-i", filepath.Join(t.TempDir(), "missing.pdf"), "-o", output})
	if err != nil {
		t.Fatal(err)
	}

	err = run(context.Background(), cfg, zaptest.NewLogger(t))
	var extractionErr *file.ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if exitCode(err) != exitFailure {
		t.Errorf("expected exit code %d, got %d", exitFailure, exitCode(err))
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("expected no output file")
	}
}

func TestRun_CollectInvalidSource(t *testing.T) {
	cfg, err := config.Load([]string{"--mode", "collect", "--pdf-source-url", "not a url", "-o", t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}

	err = run(context.Background(), cfg, zaptest.NewLogger(t))
	if exitCode(err) != exitParameter {
		t.Errorf("expected parameter exit code, got %d (%v)", exitCode(err), err)
	}
}
