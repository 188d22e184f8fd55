package classify

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"epubs/file"

	"go.uber.org/zap"
)

// DefaultMarkers are the phrases that confirm a biography.
var DefaultMarkers = []string{
	"ASTRONAUT",
	"ASTRONAUT CANDIDATE",
	"MISSION SPECIALIST",
	"PAYLOAD SPECIALIST",
	"PILOT",
	"COMMANDER",
}

const DefaultBioMarker = "_BIO"

// Config holds the settings for one classify run.
type Config struct {
	InputDir  string
	OutputDir string
	// BioMarker selects candidate files by name, case-insensitively.
	BioMarker string
	// Markers are matched case-insensitively against the candidate text.
	Markers []string
}

// Result summarizes a classify run.
type Result struct {
	Candidates int
	Confirmed  []string
	Moved      int
	Failed     int
}

// Classifier finds biographies whose text mentions one of the markers and
// moves every file sharing the biography's name prefix to the output
// directory. Per-file failures are logged and counted, never returned.
type Classifier struct {
	extractor file.TextExtractor
	config    Config
	logger    *zap.Logger
}

func NewClassifier(extractor file.TextExtractor, config Config, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.BioMarker == "" {
		config.BioMarker = DefaultBioMarker
	}
	if len(config.Markers) == 0 {
		config.Markers = DefaultMarkers
	}
	markers := make([]string, 0, len(config.Markers))
	for _, m := range config.Markers {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			markers = append(markers, m)
		}
	}
	config.Markers = markers
	return &Classifier{extractor: extractor, config: config, logger: logger}
}

// Prefix returns the part of a file name before its last underscore. A name
// without an underscore is its own prefix, minus the extension.
func Prefix(name string) string {
	name = filepath.Base(name)
	if i := strings.LastIndex(name, "_"); i >= 0 {
		return name[:i]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Run classifies the input directory. Only listing the input directory and
// creating the output directory can fail the run.
func (c *Classifier) Run() (*Result, error) {
	entries, err := os.ReadDir(c.config.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	if err := os.MkdirAll(c.config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	result := &Result{}
	confirmed := make(map[string]bool)
	bioMarker := strings.ToUpper(c.config.BioMarker)

	for _, name := range names {
		if !strings.Contains(strings.ToUpper(name), bioMarker) {
			continue
		}
		doc, err := file.DocumentFromPath(filepath.Join(c.config.InputDir, name))
		if err != nil {
			c.logger.Debug("skipping candidate", zap.String("file", name), zap.Error(err))
			continue
		}
		result.Candidates++

		text, err := c.extractor.ExtractText(doc, file.Policy{})
		if err != nil {
			c.logger.Warn("failed to extract candidate", zap.String("file", name), zap.Error(err))
			result.Failed++
			continue
		}

		if marker, ok := c.match(text); ok {
			prefix := Prefix(name)
			c.logger.Info("biography confirmed",
				zap.String("file", name),
				zap.String("prefix", prefix),
				zap.String("marker", marker))
			if !confirmed[prefix] {
				confirmed[prefix] = true
				result.Confirmed = append(result.Confirmed, prefix)
			}
		}
	}

	for _, name := range names {
		if !confirmed[Prefix(name)] {
			continue
		}
		src := filepath.Join(c.config.InputDir, name)
		dst := filepath.Join(c.config.OutputDir, name)
		if err := move(src, dst); err != nil {
			c.logger.Warn("failed to move file", zap.String("file", name), zap.Error(err))
			result.Failed++
			continue
		}
		result.Moved++
	}

	c.logger.Info("classify finished",
		zap.Int("candidates", result.Candidates),
		zap.Int("confirmed", len(result.Confirmed)),
		zap.Int("moved", result.Moved),
		zap.Int("failed", result.Failed))

	return result, nil
}

func (c *Classifier) match(text string) (string, bool) {
	upper := strings.ToUpper(text)
	for _, m := range c.config.Markers {
		if strings.Contains(upper, m) {
			return m, true
		}
	}
	return "", false
}

// move renames src to dst and falls back to copy and remove across
// filesystems. An existing dst is never overwritten.
func move(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("destination %s already exists", dst)
	}

	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	err = file.WriteAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return os.Remove(src)
}
