// Package api exposes the statement parser over HTTP.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/config"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/extractor"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/parser"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/writer"
)

const (
	Version = "2.0.0"

	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
	xlsxMIME        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExtractFunc turns an uploaded PDF into positioned tokens.
type ExtractFunc func(name string, r io.ReaderAt, size int64) (*models.Document, error)

// ConvertResponse is the JSON body of both conversion endpoints.
type ConvertResponse struct {
	Success     bool                    `json:"success"`
	Error       string                  `json:"error,omitempty"`
	RequestID   string                  `json:"requestId,omitempty"`
	Bank        string                  `json:"bank,omitempty"`
	Statement   *models.ParsedStatement `json:"statement,omitempty"`
	TotalDebit  float64                 `json:"totalDebit"`
	TotalCredit float64                 `json:"totalCredit"`
	Count       int                     `json:"count"`
	CSV         string                  `json:"csv,omitempty"`
	Version     string                  `json:"version,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Extract       ExtractFunc
	DefaultFormat string
	Logger        *slog.Logger
}

// NewApp builds a fiber app with the API routes and middleware.
func NewApp(h *Handler, bodyLimit int, readTimeout time.Duration) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "bank-statement-converter",
		BodyLimit:             bodyLimit,
		ReadTimeout:           readTimeout,
		ErrorHandler:          h.handleError,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowMethods:  "GET,POST,OPTIONS",
		ExposeHeaders: requestIDHeader + ",Content-Disposition",
	}))
	app.Use(requestID)
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	g := app.Group("/api")
	g.Get("/health", h.HandleHealth)
	g.Post("/extract/:bank", h.HandleExtract)
	g.Post("/convert", h.HandleConvert)
}

// requestID tags every request with an id, reusing a valid incoming one.
func requestID(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Locals(requestIDKey, id)
	c.Set(requestIDHeader, id)
	return c.Next()
}

func requestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	banks := make([]string, 0, len(profile.All()))
	for _, p := range profile.All() {
		banks = append(banks, string(p.Bank))
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": Version,
		"banks":   banks,
	})
}

// HandleExtract parses an upload with the bank named in the path and
// returns it as xlsx, csv or json.
func (h *Handler) HandleExtract(c *fiber.Ctx) error {
	bank, err := profile.ParseBank(c.Params("bank"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	format := c.Query("format", h.DefaultFormat)
	if format == "" {
		format = config.FormatXLSX
	}
	format, err = config.ParseFormat(format)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	st, name, err := h.parseUpload(c, bank)
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))

	var buf bytes.Buffer
	switch format {
	case config.FormatXLSX:
		if err := (&writer.XLSXWriter{}).Write(&buf, st); err != nil {
			return fmt.Errorf("xlsx generation failed: %w", err)
		}
		c.Attachment(base + ".xlsx")
		c.Set(fiber.HeaderContentType, xlsxMIME)
	case config.FormatCSV:
		w := &writer.CSVWriter{IncludeHeader: c.QueryBool("header", true)}
		if err := w.Write(&buf, st); err != nil {
			return fmt.Errorf("CSV generation failed: %w", err)
		}
		c.Attachment(base + ".csv")
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	default:
		return c.JSON(h.response(c, st, ""))
	}
	return c.Send(buf.Bytes())
}

// HandleConvert detects the bank from the upload's text and returns the
// statement as JSON, with the CSV rendering embedded.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	var bank models.BankType
	if name := c.FormValue("bank"); name != "" {
		b, err := profile.ParseBank(name)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		bank = b
	}

	st, _, err := h.parseUpload(c, bank)
	if err != nil {
		return err
	}

	var csvBuf bytes.Buffer
	w := &writer.CSVWriter{IncludeHeader: c.FormValue("header") != "false"}
	if err := w.Write(&csvBuf, st); err != nil {
		return fmt.Errorf("CSV generation failed: %w", err)
	}
	return c.JSON(h.response(c, st, csvBuf.String()))
}

// parseUpload extracts and parses the multipart "file" field. An empty
// bank is auto-detected from the page text.
func (h *Handler) parseUpload(c *fiber.Ctx, bank models.BankType) (*models.ParsedStatement, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	defer f.Close()

	log := h.logger().With("request_id", requestIDFrom(c), "file", fh.Filename)

	doc, err := h.extract()(fh.Filename, f, fh.Size)
	if err != nil {
		log.Error("PDF extraction failed", "error", err)
		return nil, "", fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
	}

	if bank == "" {
		bank, err = parser.AutoDetect(extractor.PageTexts(doc))
		if err != nil {
			return nil, "", fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		log.Info("auto-detected bank", "bank", bank)
	}

	engine, err := parser.New(bank, parser.WithLogger(log))
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	st, err := engine.Parse(doc)
	if err != nil {
		log.Error("parsing failed", "bank", bank, "error", err)
		return nil, "", fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("Parsing failed: %v", err))
	}

	log.Info("statement parsed", "bank", bank, "pages", len(doc.Pages), "transactions", len(st.Transactions()))
	return st, fh.Filename, nil
}

func (h *Handler) response(c *fiber.Ctx, st *models.ParsedStatement, csv string) ConvertResponse {
	debit, credit := st.Totals()
	return ConvertResponse{
		Success:     true,
		RequestID:   requestIDFrom(c),
		Bank:        string(st.Metadata.Bank),
		Statement:   st,
		TotalDebit:  debit,
		TotalCredit: credit,
		Count:       len(st.Transactions()),
		CSV:         csv,
		Version:     Version,
	}
}

// handleError renders every error as a ConvertResponse.
func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		h.logger().Error("request failed", "request_id", requestIDFrom(c), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(ConvertResponse{
		Success:   false,
		Error:     err.Error(),
		RequestID: requestIDFrom(c),
		Version:   Version,
	})
}

func (h *Handler) extract() ExtractFunc {
	if h.Extract != nil {
		return h.Extract
	}
	return extractor.ExtractReader
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
