package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/api"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/config"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/extractor"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/parser"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/writer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	bankFlag := flag.String("bank", "", "Bank: banorte, bbva, inbursa, santander (auto-detected if omitted)")
	outputFlag := flag.String("output", "", "Output file path (defaults to the input name with the format's extension)")
	formatFlag := flag.String("format", cfg.DefaultFormat, "Output format: xlsx, csv or json")
	headerFlag := flag.Bool("header", true, "Include statement metadata rows in CSV output")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API instead of converting files")
	debugFlag := flag.Bool("debug", false, "Log per-page and per-row parser decisions")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Bank Statement PDF Converter

Converts Banorte, BBVA, Inbursa and Santander statement PDFs into
spreadsheets, CSV or JSON.

Usage:
  bank-statement-converter [flags] <input.pdf> [input2.pdf ...]
  bank-statement-converter -serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Auto-detect bank and write statement.xlsx
  bank-statement-converter statement.pdf

  # Specify bank and format explicitly
  bank-statement-converter -bank=bbva -format=csv statement.pdf

  # Custom output path
  bank-statement-converter -bank=santander -output=enero.xlsx statement.pdf

  # Serve the HTTP API on $PORT
  bank-statement-converter -serve

Environment:
  PORT, BODY_LIMIT_MB, READ_TIMEOUT, LOG_LEVEL, DEFAULT_FORMAT (also read from .env)
`)
	}

	flag.Parse()

	level := cfg.Level()
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *versionFlag {
		fmt.Printf("bank-statement-converter v%s\n", api.Version)
		return
	}

	if *serveFlag {
		serve(cfg, logger)
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	format, err := config.ParseFormat(*formatFlag)
	if err != nil {
		fatal(err)
	}

	var bank models.BankType
	if *bankFlag != "" {
		if bank, err = profile.ParseBank(*bankFlag); err != nil {
			fatal(err)
		}
	}

	inputs := flag.Args()
	if *outputFlag != "" && len(inputs) > 1 {
		fatal(fmt.Errorf("-output can only be used with a single input file"))
	}

	job := convertJob{bank: bank, format: format, output: *outputFlag, header: *headerFlag, log: logger}
	for _, in := range inputs {
		if err := job.run(in); err != nil {
			logger.Error("conversion failed", "file", in, "error", err)
			os.Exit(1)
		}
	}
}

func serve(cfg *config.Config, logger *slog.Logger) {
	h := &api.Handler{DefaultFormat: cfg.DefaultFormat, Logger: logger}
	app := api.NewApp(h, cfg.BodyLimit(), cfg.Server.ReadTimeout)

	logger.Info("starting server", "port", cfg.Addr())
	if err := app.Listen(cfg.Addr()); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

type convertJob struct {
	bank   models.BankType
	format string
	output string
	header bool
	log    *slog.Logger
}

func (j convertJob) run(inputPath string) error {
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file not found: %w", err)
	}
	if ext := strings.ToLower(filepath.Ext(inputPath)); ext != ".pdf" {
		return fmt.Errorf("expected .pdf file, got %q", ext)
	}

	log := j.log.With("file", inputPath)
	log.Info("processing")

	doc, err := extractor.ExtractDocument(inputPath)
	if err != nil {
		return fmt.Errorf("PDF extraction failed: %w", err)
	}
	log.Info("extracted pages", "pages", len(doc.Pages))

	bank := j.bank
	if bank == "" {
		if bank, err = parser.AutoDetect(extractor.PageTexts(doc)); err != nil {
			return err
		}
		log.Info("auto-detected bank", "bank", bank)
	}

	engine, err := parser.New(bank, parser.WithLogger(log))
	if err != nil {
		return err
	}
	st, err := engine.Parse(doc)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}

	count := len(st.Transactions())
	debit, credit := st.Totals()
	log.Info("parsed statement",
		"parser", engine.BankName(),
		"transactions", count,
		"debit", debit,
		"credit", credit,
		"company", st.Metadata.Company,
	)
	if count == 0 {
		log.Warn("no transactions found; the layout may not match, try -bank if auto-detection was used")
	}

	outPath := j.output
	if outPath == "" {
		outPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "." + j.format
	}
	if err := writeStatement(outPath, j.format, j.header, st); err != nil {
		return err
	}
	log.Info("wrote output", "output", outPath, "format", j.format)
	return nil
}

func writeStatement(path, format string, header bool, st *models.ParsedStatement) error {
	switch format {
	case config.FormatXLSX:
		if err := (&writer.XLSXWriter{}).WriteToFile(path, st); err != nil {
			return fmt.Errorf("xlsx write failed: %w", err)
		}
	case config.FormatCSV:
		if err := (&writer.CSVWriter{IncludeHeader: header}).WriteToFile(path, st); err != nil {
			return fmt.Errorf("CSV write failed: %w", err)
		}
	default:
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return fmt.Errorf("json encoding failed: %w", err)
		}
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("json write failed: %w", err)
		}
	}
	return nil
}

func fatal(err error) {
	slog.Error(err.Error())
	os.Exit(1)
}
