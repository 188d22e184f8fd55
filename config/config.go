package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"epubs/classify"
	"epubs/converter"
	"epubs/crawler"
	"epubs/file"

	"github.com/alexflint/go-arg"
	"gopkg.in/yaml.v3"
)

const (
	program = "epubs"
	version = "1.0.0"
)

// Mode selects the top-level operation.
type Mode string

const (
	ModeSingleFile Mode = "single-file"
	ModeDirectory  Mode = "directory"
	ModeCollect    Mode = "collect"
	ModeClassify   Mode = "classify"
)

// Kind selects the conversion for single-file and directory modes.
type Kind string

const (
	KindPDFToEPUB  Kind = "pdf-to-epub"
	KindPDFToText  Kind = "pdf-to-text"
	KindHTMLToEPUB Kind = "html-to-epub"
)

var (
	modes = []Mode{ModeSingleFile, ModeDirectory, ModeCollect, ModeClassify}
	kinds = []Kind{KindPDFToEPUB, KindPDFToText, KindHTMLToEPUB}
)

// ErrHelp and ErrVersion are returned by Load when --help or --version was
// requested. Neither is a failure.
var (
	ErrHelp    = arg.ErrHelp
	ErrVersion = arg.ErrVersion
)

// Config is the full command line. Fields carry yaml tags so a parameter
// file can supply any of them.
type Config struct {
	Input          string `arg:"--input,-i" yaml:"input" help:"input file (single-file mode)"`
	InputDirectory string `arg:"--input-directory" yaml:"input-directory" help:"input directory (directory and classify modes)"`
	Output         string `arg:"--output,-o" yaml:"output" help:"output file, or output directory for collect and classify"`
	Title          string `arg:"--title" yaml:"title" help:"book title"`
	Author         string `arg:"--author" yaml:"author" help:"book author"`
	CoverImage     string `arg:"--cover-image" yaml:"cover-image" help:"cover image file"`
	CSS            string `arg:"--css" yaml:"css" help:"stylesheet file"`
	Filter         string `arg:"--filter" yaml:"filter" help:"only use files whose name contains this substring"`
	Language       string `arg:"--language" yaml:"language" help:"book language"`

	Mode           Mode `arg:"--mode" yaml:"mode" help:"single-file, directory, collect or classify"`
	ConversionKind Kind `arg:"--conversion-kind" yaml:"conversion-kind" help:"pdf-to-epub, pdf-to-text or html-to-epub"`

	NormalizeLinebreaks bool `arg:"--normalize-linebreaks" yaml:"normalize-linebreaks" help:"replace line breaks with <br/>"`
	TrimHeader          bool `arg:"--trim-header" yaml:"trim-header" help:"drop the first line of every page after the first"`
	TrimFooter          bool `arg:"--trim-footer" yaml:"trim-footer" help:"drop the last line of every page"`
	StrictPages         bool `arg:"--strict-pages" yaml:"strict-pages" help:"fail on pages without a line break to trim at"`
	EscapeText          bool `arg:"--escape-text" yaml:"escape-text" help:"HTML-escape PDF text for e-book output"`
	HTMLReadable        bool `arg:"--html-readable" yaml:"html-readable" help:"reduce HTML input to its main article"`

	PDFSourceURL string        `arg:"--pdf-source-url" yaml:"pdf-source-url" help:"index page to collect PDFs from"`
	SkipLinks    int           `arg:"--skip-links" yaml:"skip-links" help:"leading index links not followed"`
	Proxy        string        `arg:"--proxy,env:PROXY_URL" yaml:"proxy" help:"http(s) or socks5 proxy URL"`
	StateDB      string        `arg:"--state-db" yaml:"state-db" help:"bbolt file keeping cookies and downloaded URLs between runs"`
	Timeout      time.Duration `arg:"--timeout" yaml:"timeout" help:"per-request timeout"`
	Progress     bool          `arg:"--progress" yaml:"progress" help:"show a download progress bar"`

	BioMarker string   `arg:"--bio-marker" yaml:"bio-marker" help:"file name substring selecting biographies"`
	Markers   []string `arg:"--marker,separate" yaml:"markers" help:"phrase confirming a biography (repeatable)"`

	Verbose bool   `arg:"--verbose,-v" yaml:"verbose" help:"development logging"`
	ParFile string `arg:"--parfile" yaml:"-" help:"YAML file of default arguments, overridden by the command line"`
}

// Version implements the go-arg versioned interface.
func (Config) Version() string {
	return program + " " + version
}

// Description implements the go-arg described interface.
func (Config) Description() string {
	return "Convert PDF and HTML documents into EPUB books."
}

func defaults() *Config {
	return &Config{
		Title:          "My book title",
		Language:       "en",
		Mode:           ModeSingleFile,
		ConversionKind: KindPDFToEPUB,
		Timeout:        30 * time.Second,
		BioMarker:      classify.DefaultBioMarker,
	}
}

func newParser(cfg *Config) (*arg.Parser, error) {
	return arg.NewParser(arg.Config{Program: program}, cfg)
}

// Load parses args (without the program name). A parameter file named by
// --parfile supplies defaults that explicit flags override. The result is
// validated. ErrHelp and ErrVersion are returned as is.
func Load(args []string) (*Config, error) {
	probe := &Config{}
	p, err := newParser(probe)
	if err != nil {
		return nil, fmt.Errorf("failed to build argument parser: %w", err)
	}
	if err := p.Parse(args); err != nil {
		return nil, parseError(err)
	}

	cfg := defaults()
	if probe.ParFile != "" {
		if err := readParFile(probe.ParFile, cfg); err != nil {
			return nil, err
		}
	}

	p, err = newParser(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build argument parser: %w", err)
	}
	if err := p.Parse(args); err != nil {
		return nil, parseError(err)
	}

	if len(cfg.Markers) == 0 {
		cfg.Markers = slices.Clone(classify.DefaultMarkers)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseError(err error) error {
	if errors.Is(err, arg.ErrHelp) || errors.Is(err, arg.ErrVersion) {
		return err
	}
	return &ParameterError{Reason: err.Error()}
}

func readParFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ParameterError{Field: "parfile", Reason: err.Error()}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &ParameterError{Field: "parfile", Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}
	return nil
}

// WriteHelp prints the usage text.
func WriteHelp(w io.Writer) {
	p, err := newParser(defaults())
	if err != nil {
		return
	}
	p.WriteHelp(w)
}

// Validate checks the per-mode requirements.
func (c *Config) Validate() error {
	if !slices.Contains(modes, c.Mode) {
		return &ParameterError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", c.Mode)}
	}

	switch c.Mode {
	case ModeSingleFile, ModeDirectory:
		if !slices.Contains(kinds, c.ConversionKind) {
			return &ParameterError{Field: "conversion-kind", Reason: fmt.Sprintf("unknown conversion kind %q", c.ConversionKind)}
		}
		if c.Mode == ModeSingleFile {
			if c.Input == "" {
				return &ParameterError{Field: "input", Reason: "required in single-file mode"}
			}
			if got := file.FormatFromExt(filepath.Ext(c.Input)); got != c.Format() {
				return &ParameterError{
					Field:  "input",
					Reason: fmt.Sprintf("%s expects a %s file, got %q", c.ConversionKind, c.Format(), filepath.Base(c.Input)),
				}
			}
		}
		if c.Mode == ModeDirectory && c.InputDirectory == "" {
			return &ParameterError{Field: "input-directory", Reason: "required in directory mode"}
		}
		if c.Output == "" {
			return &ParameterError{Field: "output", Reason: "required"}
		}
		if c.ConversionKind != KindPDFToText && strings.TrimSpace(c.Title) == "" {
			return &ParameterError{Field: "title", Reason: "must not be empty"}
		}
	case ModeCollect:
		if c.PDFSourceURL == "" {
			return &ParameterError{Field: "pdf-source-url", Reason: "required in collect mode"}
		}
		if c.Output == "" {
			return &ParameterError{Field: "output", Reason: "download directory required in collect mode"}
		}
		if c.SkipLinks < 0 {
			return &ParameterError{Field: "skip-links", Reason: "must not be negative"}
		}
		if c.Timeout <= 0 {
			return &ParameterError{Field: "timeout", Reason: "must be positive"}
		}
	case ModeClassify:
		if c.InputDirectory == "" {
			return &ParameterError{Field: "input-directory", Reason: "required in classify mode"}
		}
		if c.Output == "" {
			return &ParameterError{Field: "output", Reason: "destination directory required in classify mode"}
		}
	}
	return nil
}

// Format is the source format implied by the conversion kind.
func (c *Config) Format() file.Format {
	if c.ConversionKind == KindHTMLToEPUB {
		return file.FormatHTML
	}
	return file.FormatPDF
}

// Policy returns the extraction policy. Escaping only applies to e-book output.
func (c *Config) Policy() file.Policy {
	return file.Policy{
		LineBreaks: c.NormalizeLinebreaks,
		TrimHeader: c.TrimHeader,
		TrimFooter: c.TrimFooter,
		Strict:     c.StrictPages,
		EscapeText: c.EscapeText && c.ConversionKind != KindPDFToText,
	}
}

func (c *Config) BookMeta() converter.BookMeta {
	return converter.BookMeta{
		Title:      c.Title,
		Author:     c.Author,
		Language:   c.Language,
		CoverImage: c.CoverImage,
		Stylesheet: c.CSS,
	}
}

func (c *Config) CrawlerConfig() *crawler.Config {
	cc := crawler.DefaultConfig()
	cc.SourceURL = c.PDFSourceURL
	cc.Destination = c.Output
	cc.SkipLinks = c.SkipLinks
	cc.RequestTimeout = c.Timeout
	cc.ProxyURL = c.Proxy
	cc.StateDBPath = c.StateDB
	cc.ShowProgress = c.Progress
	return cc
}

func (c *Config) ClassifyConfig() classify.Config {
	return classify.Config{
		InputDir:  c.InputDirectory,
		OutputDir: c.Output,
		BioMarker: c.BioMarker,
		Markers:   slices.Clone(c.Markers),
	}
}
