package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
)

// words lays out space-separated words from x0, 5pt per character.
func words(text string, x0, top float64) []models.Token {
	var out []models.Token
	x := x0
	for _, w := range strings.Fields(text) {
		width := float64(len(w)) * 5
		out = append(out, models.Token{Text: w, X0: x, X1: x + width, Top: top, Bottom: top + 8})
		x += width + 5
	}
	return out
}

// banorteDoc is a one-page statement with two movements.
func banorteDoc(name string, _ io.ReaderAt, _ int64) (*models.Document, error) {
	var tokens []models.Token
	add := func(ts []models.Token) { tokens = append(tokens, ts...) }

	add(words("FECHA", 20, 100))
	add(words("DESCRIPCION", 120, 100))
	add(words("DEPOSITO", 360, 100))
	add(words("RETIRO", 440, 100))
	add(words("SALDO", 520, 100))

	add(words("03-ENE-24", 20, 120))
	add(words("SPEI RECIBIDO", 120, 120))
	add(words("1,000.00", 360, 120))
	add(words("11,000.00", 520, 120))

	add(words("04-ENE-24", 20, 132))
	add(words("COMPRA TIENDA", 120, 132))
	add(words("250.00", 440, 132))
	add(words("10,750.00", 520, 132))

	return &models.Document{FileName: name, Pages: []models.Page{{
		Width:  600,
		Height: 800,
		Tokens: tokens,
		Text:   "BANCO MERCANTIL DEL NORTE\nENLACE NEGOCIOS BASICA\nFECHA DESCRIPCION DEPOSITO RETIRO SALDO",
	}}}, nil
}

func setupTestApp(extract ExtractFunc) *fiber.App {
	h := &Handler{
		Extract:       extract,
		DefaultFormat: "json",
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return NewApp(h, 4<<20, 5*time.Second)
}

func uploadRequest(t *testing.T, target, filename string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 fake"))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(fiber.HeaderContentType, mw.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response) ConvertResponse {
	t.Helper()
	var out ConvertResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp(banorteDoc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Status string   `json:"status"`
		Engine string   `json:"engine"`
		Banks  []string `json:"banks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "fiber", result.Engine)
	assert.Equal(t, []string{"banorte", "bbva", "inbursa", "santander"}, result.Banks)
}

func TestRequestID(t *testing.T) {
	app := setupTestApp(banorteDoc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	_, err = uuid.Parse(resp.Header.Get("X-Request-ID"))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", id)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, id, resp.Header.Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get("X-Request-ID"))
}

func TestConvertEndpoint(t *testing.T) {
	app := setupTestApp(banorteDoc)

	resp, err := app.Test(uploadRequest(t, "/api/convert", "enero.pdf", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decode(t, resp)
	assert.True(t, out.Success)
	assert.Equal(t, "banorte", out.Bank)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, 250.0, out.TotalDebit)
	assert.Equal(t, 1000.0, out.TotalCredit)
	assert.Equal(t, resp.Header.Get("X-Request-ID"), out.RequestID)
	assert.Contains(t, out.CSV, "SPEI RECIBIDO")

	require.NotNil(t, out.Statement)
	basica := out.Statement.Sections["BASICA"]
	require.Len(t, basica, 2)
	assert.Equal(t, "COMPRA TIENDA", basica[1].Description)
}

func TestConvertEndpointExplicitBank(t *testing.T) {
	app := setupTestApp(banorteDoc)

	resp, err := app.Test(uploadRequest(t, "/api/convert", "enero.pdf", map[string]string{"bank": "hsbc"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode(t, resp).Error, "unknown bank")
}

func TestConvertEndpointRequiresFile(t *testing.T) {
	app := setupTestApp(banorteDoc)

	resp, err := app.Test(uploadRequest(t, "/api/convert", "", map[string]string{"bank": "bbva"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	out := decode(t, resp)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "No file uploaded")
}

func TestConvertEndpointRejectsNonPDF(t *testing.T) {
	app := setupTestApp(banorteDoc)

	resp, err := app.Test(uploadRequest(t, "/api/convert", "enero.xlsx", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestConvertEndpointExtractionFailure(t *testing.T) {
	app := setupTestApp(func(string, io.ReaderAt, int64) (*models.Document, error) {
		return nil, errors.New("PDF has no extractable text")
	})

	resp, err := app.Test(uploadRequest(t, "/api/convert", "scan.pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, decode(t, resp).Error, "no extractable text")
}

func TestConvertEndpointUndetectableBank(t *testing.T) {
	app := setupTestApp(func(name string, _ io.ReaderAt, _ int64) (*models.Document, error) {
		return &models.Document{FileName: name, Pages: []models.Page{{Text: "ESTADO DE CUENTA"}}}, nil
	})

	resp, err := app.Test(uploadRequest(t, "/api/convert", "x.pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestExtractEndpointFormats(t *testing.T) {
	app := setupTestApp(banorteDoc)

	t.Run("json", func(t *testing.T) {
		resp, err := app.Test(uploadRequest(t, "/api/extract/banorte?format=json", "enero.pdf", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		out := decode(t, resp)
		assert.Equal(t, 2, out.Count)
		assert.Empty(t, out.CSV)
	})

	t.Run("csv", func(t *testing.T) {
		resp, err := app.Test(uploadRequest(t, "/api/extract/BANORTE?format=csv&header=false", "enero.pdf", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get(fiber.HeaderContentType))
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "enero.csv")

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(body)), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "Seccion,"))
	})

	t.Run("xlsx", func(t *testing.T) {
		resp, err := app.Test(uploadRequest(t, "/api/extract/banorte?format=xlsx", "enero.pdf", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, xlsxMIME, resp.Header.Get(fiber.HeaderContentType))

		f, err := excelize.OpenReader(resp.Body)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{"info", "cuentas", "basica", "inversion"}, f.GetSheetList())
	})

	t.Run("unknown format", func(t *testing.T) {
		resp, err := app.Test(uploadRequest(t, "/api/extract/banorte?format=pdf", "enero.pdf", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestExtractEndpointUnknownBank(t *testing.T) {
	app := setupTestApp(banorteDoc)

	resp, err := app.Test(uploadRequest(t, "/api/extract/barclays", "enero.pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
