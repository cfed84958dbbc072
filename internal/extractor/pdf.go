// Package extractor turns PDF files into the positioned word tokens the
// statement parser consumes.
package extractor

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/textnorm"
)

var (
	// ErrNoText is returned for PDFs without a text layer, typically scans.
	ErrNoText = errors.New("PDF has no extractable text; it may be image-based or scanned")
	// ErrUnreadable is returned when the text layer decodes to garbage,
	// which happens with custom font encodings.
	ErrUnreadable = errors.New("PDF text could not be decoded into readable content")
)

// US Letter, used when a page declares no MediaBox.
const (
	defaultWidth  = 612.0
	defaultHeight = 792.0
)

// ExtractDocument reads a PDF file and returns its word tokens per page.
func ExtractDocument(path string) (doc *models.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	return readDocument(r, filepath.Base(path))
}

// ExtractReader is ExtractDocument for in-memory uploads.
func ExtractReader(name string, ra io.ReaderAt, size int64) (doc *models.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	return readDocument(r, name)
}

// PageTexts returns the text of each page, for bank auto-detection.
func PageTexts(doc *models.Document) []string {
	out := make([]string, len(doc.Pages))
	for i, p := range doc.Pages {
		out[i] = p.Text
	}
	return out
}

func readDocument(r *pdf.Reader, name string) (*models.Document, error) {
	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	doc := &models.Document{FileName: name}
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		doc.Pages = append(doc.Pages, readPage(page, i-1))
	}

	texts := PageTexts(doc)
	if totalTextLen(texts) == 0 {
		return nil, ErrNoText
	}
	if !isReadableText(texts) {
		return nil, ErrUnreadable
	}
	return doc, nil
}

func readPage(page pdf.Page, index int) models.Page {
	width, height := mediaBox(page.V)
	out := models.Page{Index: index, Width: width, Height: height}

	content := page.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, glyph{s: t.S, x: t.X, y: t.Y, w: t.W, size: t.FontSize})
	}
	for _, w := range mergeWords(glyphs) {
		out.Tokens = append(out.Tokens, w.token(height, index))
	}
	out.Text = rowText(page)
	if out.Text == "" {
		out.Text = tokenText(out.Tokens)
	}
	return out
}

// mediaBox returns the page size, following Parent links for inherited
// boxes.
func mediaBox(v pdf.Value) (float64, float64) {
	cur := v
	for depth := 0; depth < 8 && !cur.IsNull(); depth++ {
		box := cur.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			w := box.Index(2).Float64() - box.Index(0).Float64()
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
		cur = cur.Key("Parent")
	}
	return defaultWidth, defaultHeight
}

// rowText rebuilds the page text line by line from the library's row
// grouping, merging glyphs into words.
func rowText(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}
	var lines []string
	for _, row := range rows {
		glyphs := make([]glyph, 0, len(row.Content))
		for _, t := range row.Content {
			glyphs = append(glyphs, glyph{s: t.S, x: t.X, y: t.Y, w: t.W, size: t.FontSize})
		}
		parts := make([]string, 0, len(glyphs))
		for _, w := range mergeWords(glyphs) {
			parts = append(parts, w.text)
		}
		if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// tokenText joins tokens into lines by their top edge.
func tokenText(tokens []models.Token) string {
	var (
		lines []string
		cur   []string
		top   = math.Inf(-1)
	)
	for _, t := range tokens {
		if len(cur) > 0 && math.Abs(t.Top-top) > 2 {
			lines = append(lines, strings.Join(cur, " "))
			cur = nil
		}
		if len(cur) == 0 {
			top = t.Top
		}
		cur = append(cur, t.Text)
	}
	if len(cur) > 0 {
		lines = append(lines, strings.Join(cur, " "))
	}
	return strings.Join(lines, "\n")
}

// glyph is one positioned text run as drawn by the content stream. Y is
// the baseline in PDF space, growing upward.
type glyph struct {
	s       string
	x, y, w float64
	size    float64
}

// word is a run of glyphs with no visible gap between them.
type word struct {
	text     string
	x0, x1   float64
	baseline float64
	size     float64
}

func (w word) token(pageHeight float64, page int) models.Token {
	return models.Token{
		Text:   w.text,
		X0:     w.x0,
		X1:     w.x1,
		Top:    pageHeight - w.baseline - w.size,
		Bottom: pageHeight - w.baseline,
		Page:   page,
	}
}

// mergeWords groups glyphs into words, top to bottom and left to right.
// A whitespace glyph, a new baseline or a horizontal gap wider than a
// third of the font size ends a word.
func mergeWords(glyphs []glyph) []word {
	gs := make([]glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if g.s != "" {
			gs = append(gs, g)
		}
	}
	sort.SliceStable(gs, func(i, j int) bool {
		yi, yj := math.Round(gs[i].y), math.Round(gs[j].y)
		if yi != yj {
			return yi > yj
		}
		return gs[i].x < gs[j].x
	})

	var (
		out []word
		cur *word
		b   strings.Builder
	)
	closeWord := func() {
		if cur != nil && strings.TrimSpace(b.String()) != "" {
			cur.text = strings.TrimSpace(b.String())
			out = append(out, *cur)
		}
		cur = nil
		b.Reset()
	}

	for _, g := range gs {
		if strings.TrimSpace(g.s) == "" {
			closeWord()
			continue
		}
		if cur != nil {
			gap := g.x - cur.x1
			if math.Abs(g.y-cur.baseline) > baselineTolerance(g, glyph{size: cur.size}) ||
				gap > math.Max(cur.size, g.size)/3 || gap < -math.Max(cur.size, g.size) {
				closeWord()
			}
		}
		// Runs of several characters share their width evenly.
		step := g.w / float64(utf8.RuneCountInString(g.s))
		for i, r := range []rune(g.s) {
			pos := g.x + step*float64(i)
			if unicode.IsSpace(r) {
				closeWord()
				continue
			}
			if cur == nil {
				cur = &word{x0: pos, x1: pos, baseline: g.y, size: g.size}
			}
			b.WriteRune(r)
			cur.x1 = math.Max(cur.x1, pos+step)
			cur.size = math.Max(cur.size, g.size)
		}
	}
	closeWord()
	return out
}

// baselineTolerance is how far apart two baselines may be and still count
// as one line.
func baselineTolerance(a, b glyph) float64 {
	size := math.Max(a.size, b.size)
	if size <= 0 {
		return 1
	}
	return size * 0.3
}

// textQuality returns the ratio of readable characters to all characters.
// Spanish letters count as readable; symbols from identity-encoded fonts
// do not.
func textQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if unicode.IsSpace(r) || unicode.IsDigit(r) || strings.ContainsRune(readableRunes, r) ||
				(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

const readableRunes = "áéíóúüñÁÉÍÓÚÜÑ.,-/:;()'\"$%&@#!?+=*°"

// commonWords appear in virtually every Mexican bank statement. Text
// without any of them is likely garbage.
var commonWords = []string{
	"SALDO", "CUENTA", "FECHA", "PERIODO", "BANCO", "CARGO", "ABONO",
	"DEPOSITO", "RETIRO", "MOVIMIENTOS", "ESTADO", "CLABE", "RFC",
}

// isReadableText requires more than 50 characters, over 60% of them
// readable, and at least one common statement word.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return textnorm.ContainsAny(textnorm.Fold(strings.Join(pages, " ")), commonWords)
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
