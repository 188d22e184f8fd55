package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"epubs/classify"
	"epubs/config"
	"epubs/converter"
	"epubs/crawler"
	"epubs/file"
	processor "epubs/process"

	"go.uber.org/zap"
)

const (
	exitOK        = 0
	exitFailure   = 1
	exitParameter = 2
)

func main() {
	// =========
	// Config
	// =========
	cfg, err := config.Load(os.Args[1:])
	switch {
	case errors.Is(err, config.ErrHelp):
		config.WriteHelp(os.Stdout)
		os.Exit(exitOK)
	case errors.Is(err, config.ErrVersion):
		fmt.Println(config.Config{}.Version())
		os.Exit(exitOK)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		config.WriteHelp(os.Stderr)
		os.Exit(exitParameter)
	}

	// =========
	// Logging
	// =========
	var logger *zap.Logger
	if cfg.Verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("run failed", zap.String("mode", string(cfg.Mode)), zap.Error(err))
		logger.Sync()
		os.Exit(exitCode(err))
	}
	logger.Sync()
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// =========
	// Text extraction
	// =========
	pages := processor.NewClient(processor.NewLedongthucExtractor())
	extractor := file.NewCore(
		file.NewPDFExtractor(pages, logger),
		file.NewHTMLExtractor(cfg.HTMLReadable, logger),
		logger,
	)

	switch cfg.Mode {
	case config.ModeCollect:
		// =========
		// Collector
		// =========
		collector, err := crawler.NewCollector(cfg.CrawlerConfig(), logger)
		if err != nil {
			return &config.ParameterError{Field: "pdf-source-url", Reason: err.Error()}
		}
		result, err := collector.Collect(ctx)
		if err != nil {
			return err
		}
		logger.Info("collect finished",
			zap.Int("pages", result.PagesVisited),
			zap.Int("pdfs", result.PDFsFound),
			zap.Int("downloaded", result.Downloaded),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed))
		return nil

	case config.ModeClassify:
		// =========
		// Classifier
		// =========
		_, err := classify.NewClassifier(extractor, cfg.ClassifyConfig(), logger).Run()
		return err
	}

	// =========
	// Conversion
	// =========
	driver := converter.NewDriver(extractor, cfg.Policy(), logger)

	switch {
	case cfg.Mode == config.ModeSingleFile && cfg.ConversionKind == config.KindPDFToText:
		return driver.FileToText(cfg.Input, cfg.Output)
	case cfg.Mode == config.ModeSingleFile:
		return driver.ConvertFile(cfg.Input, cfg.Format(), cfg.Output, cfg.BookMeta())
	case cfg.ConversionKind == config.KindPDFToText:
		return driver.DirectoryToText(cfg.InputDirectory, cfg.Filter, cfg.Output)
	default:
		return driver.ConvertDirectory(cfg.InputDirectory, cfg.Format(), cfg.Filter, cfg.Output, cfg.BookMeta())
	}
}

func exitCode(err error) int {
	if errors.Is(err, config.ErrParameter) {
		return exitParameter
	}
	return exitFailure
}
