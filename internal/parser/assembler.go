package parser

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/textnorm"
)

// openingDescription names the movement that carries the opening balance.
const openingDescription = "SALDO ANTERIOR"

// txRow is the open transaction. amounts holds only the roles already set,
// so later rows fill gaps without overwriting.
type txRow struct {
	section   string
	date      *time.Time
	settle    *time.Time
	reference string
	desc      []string
	amounts   map[models.ColumnRole]float64
	page      int
	top       float64
	// carried is set once the transaction continues onto a new page.
	carried bool
}

// leading holds what an undated row carried before the first date of a
// page; it belongs to the next dated transaction.
type leading struct {
	desc      []string
	reference string
	amounts   map[models.ColumnRole]float64
}

func (l *leading) add(v rowView) {
	if v.desc != "" {
		l.desc = append(l.desc, v.desc)
	}
	if v.reference != "" {
		l.reference = v.reference
	}
	for role, val := range v.amounts {
		if l.amounts == nil {
			l.amounts = make(map[models.ColumnRole]float64)
		}
		l.amounts[role] = val
	}
}

// assembler turns segmented rows into transactions. It is either idle
// (open == nil) or holds one open transaction; flush is the only place a
// transaction is closed.
type assembler struct {
	p      *profile.Profile
	log    *slog.Logger
	seg    *Segmenter
	years  yearResolver
	layout pageLayout

	// section is the active section key; empty means parked.
	section   string
	open      *txRow
	stash     leading
	lastMonth time.Month
	done      bool

	sections map[string][]models.Transaction
	// layoutErrs collects pages that could not be laid out.
	layoutErrs []error
	attempted  int
}

func newAssembler(p *profile.Profile, log *slog.Logger, years yearResolver) *assembler {
	return &assembler{
		p:        p,
		log:      log,
		seg:      NewSegmenter(p),
		years:    years,
		section:  p.DefaultSection,
		sections: make(map[string][]models.Transaction),
	}
}

// run feeds every page through the state machine and closes the last
// transaction.
func (a *assembler) run(pages []models.Page) map[string][]models.Transaction {
	for i, page := range pages {
		if a.done {
			a.log.Debug("document stopped, ignoring page", "page", page.Index)
			continue
		}
		last := i == len(pages)-1
		if a.p.SkipPage != nil && a.p.SkipPage.MatchString(textnorm.Fold(pageText(page))) {
			a.log.Debug("skipping summary page", "page", page.Index)
			a.endPage(last)
			continue
		}

		a.attempted++
		bands, headerY, err := DetectColumns(a.p, page)
		if err != nil {
			a.log.Debug("skipping page without layout", "page", page.Index, "error", err)
			a.layoutErrs = append(a.layoutErrs, err)
			a.endPage(last)
			continue
		}
		a.layout = newPageLayout(bands)
		a.feedPage(page, headerY)
		a.endPage(last)
	}
	a.flush()
	return a.sections
}

func (a *assembler) feedPage(page models.Page, headerY float64) {
	headerRows := GroupRows(tokensAbove(page.Tokens, headerY), math.Inf(-1))
	body := GroupRows(page.Tokens, headerY)
	a.startPage(headerRows, body)

	for _, row := range body {
		folded := textnorm.Fold(row.Text())
		if folded == "" {
			continue
		}
		seg := a.seg.Classify(folded)
		switch seg.Kind {
		case RowDrop:
			a.log.Debug("dropping row", "page", row.Page, "rule", seg.Rule, "text", folded)
			continue
		case RowStopPage:
			a.log.Debug("end of page content", "page", row.Page, "rule", seg.Rule)
			return
		case RowStopDocument:
			a.log.Debug("end of document content", "page", row.Page, "rule", seg.Rule)
			a.flush()
			a.done = true
			return
		case RowMarker:
			a.switchSection(seg.Section)
			continue
		}
		if a.section == "" {
			continue
		}
		a.consume(row)
	}
}

// startPage sets the section a page begins in. Per-page profiles restart
// from the first marker anywhere on the page; the rest only honour markers
// printed above the column header.
func (a *assembler) startPage(headerRows, body []models.Row) {
	if a.p.SectionPerPage {
		a.flush()
		a.section = a.p.DefaultSection
		if key, ok := a.firstMarker(headerRows); ok {
			a.section = key
		} else if key, ok := a.firstMarker(body); ok {
			a.section = key
		}
		return
	}
	for _, r := range headerRows {
		if key, ok := a.seg.Marker(textnorm.Fold(r.Text())); ok {
			a.switchSection(key)
		}
	}
}

func (a *assembler) firstMarker(rows []models.Row) (string, bool) {
	for _, r := range rows {
		if key, ok := a.seg.Marker(textnorm.Fold(r.Text())); ok {
			return key, true
		}
	}
	return "", false
}

// switchSection closes the open transaction and activates key. Repeating
// the active section is not a boundary, so carried rows survive headings
// reprinted on every page.
func (a *assembler) switchSection(key string) {
	if key == a.section {
		return
	}
	a.flush()
	a.stash = leading{}
	a.section = key
}

func (a *assembler) consume(row models.Row) {
	v := a.readRow(row)
	switch {
	case v.date != nil:
		a.flush()
		a.openTx(v, row, v.date)
	case a.open == nil && a.isOpeningRow(v):
		a.emitOpening(v, row)
	case a.open == nil:
		if a.p.StashLeadingText {
			a.stash.add(v)
			return
		}
		a.log.Debug("ignoring row outside a transaction", "page", row.Page, "text", v.folded)
	case a.p.SplitOnReference && a.startsNew(v):
		date := a.open.date
		a.flush()
		a.openTx(v, row, date)
	default:
		a.appendDesc(v.desc)
		a.fill(v)
	}
}

// startsNew reports whether an undated row begins a new transaction that
// shares the open one's date. A reference arriving after the open
// transaction already has content without one also starts a new row.
func (a *assembler) startsNew(v rowView) bool {
	if v.reference != "" {
		if a.open.reference != "" && v.reference != a.open.reference {
			return true
		}
		if a.open.reference == "" && a.open.hasContent() {
			return true
		}
	}
	return a.p.RowStart != nil && a.p.RowStart.MatchString(textnorm.Fold(v.desc))
}

func (tx *txRow) hasContent() bool { return len(tx.desc) > 0 || len(tx.amounts) > 0 }

// isOpeningRow matches the opening-balance line printed before the first
// movement of a section.
func (a *assembler) isOpeningRow(v rowView) bool {
	return a.p.OpeningRow != nil && len(a.sections[a.section]) == 0 && a.p.OpeningRow.MatchString(v.folded)
}

// emitOpening records the opening balance as a movement dated the day
// before the period starts. The balance is the last amount on the row.
func (a *assembler) emitOpening(v rowView, row models.Row) {
	ms := findAmounts(a.p, v.folded)
	if len(ms) == 0 {
		a.log.Debug("opening row without amount", "page", row.Page, "text", v.folded)
		return
	}
	tx := models.Transaction{
		Description: openingDescription,
		Balance:     floatPtr(roundMoney(ms[len(ms)-1].value)),
		Page:        row.Page,
		Top:         row.Top,
	}
	if start := a.years.start; start != nil {
		d := start.AddDate(0, 0, -1)
		tx.Date = &d
	}
	a.sections[a.section] = append(a.sections[a.section], tx)
}

func (a *assembler) openTx(v rowView, row models.Row, date *time.Time) {
	settle := v.settle
	a.open = &txRow{
		section:   a.section,
		date:      date,
		settle:    settle,
		reference: v.reference,
		amounts:   make(map[models.ColumnRole]float64, len(v.amounts)),
		page:      row.Page,
		top:       row.Top,
	}
	for _, s := range a.stash.desc {
		a.appendDesc(s)
	}
	if a.open.reference == "" {
		a.open.reference = a.stash.reference
	}
	for role, val := range a.stash.amounts {
		a.open.amounts[role] = val
	}
	a.stash = leading{}
	a.appendDesc(v.desc)
	for role, val := range v.amounts {
		a.open.amounts[role] = val
	}
}

// appendDesc adds a description piece unless it is noise.
func (a *assembler) appendDesc(s string) {
	if a.open == nil {
		return
	}
	s = a.cleanPiece(s)
	if s == "" {
		return
	}
	if a.isNoise(s) {
		a.log.Debug("dropping description noise", "text", s)
		return
	}
	a.open.desc = append(a.open.desc, s)
}

// cleanPiece removes the profile's piece patterns, plus the continuation
// patterns once the open transaction has crossed a page.
func (a *assembler) cleanPiece(s string) string {
	strip := a.p.PieceStrip
	if a.open.carried {
		strip = append(strip[:len(strip):len(strip)], a.p.ContinuationStrip...)
	}
	if len(strip) == 0 {
		return textnorm.Collapse(s)
	}
	for _, re := range strip {
		s = re.ReplaceAllString(s, " ")
	}
	return trimTrailingPunct(textnorm.Collapse(s))
}

func (a *assembler) isNoise(s string) bool {
	if a.p.NoiseExempt != nil && a.p.NoiseExempt.MatchString(s) {
		return false
	}
	for _, re := range a.p.NoisePatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// fill sets the amounts, reference and settlement date the open
// transaction still lacks.
func (a *assembler) fill(v rowView) {
	for role, val := range v.amounts {
		if _, set := a.open.amounts[role]; !set {
			a.open.amounts[role] = val
		}
	}
	if a.open.reference == "" {
		a.open.reference = v.reference
	}
	if a.open.settle == nil {
		a.open.settle = v.settle
	}
}

// endPage closes the open transaction unless the profile carries it onto
// the next page.
func (a *assembler) endPage(last bool) {
	a.stash = leading{}
	if a.p.CarryAcrossPages && !last {
		if a.open != nil {
			a.open.carried = true
		}
		return
	}
	a.flush()
}

func (a *assembler) flush() {
	tx := a.open
	if tx == nil {
		return
	}
	a.open = nil

	desc := strings.Join(tx.desc, " ")
	folded := textnorm.Fold(desc)
	if a.p.RecoverMisplaced {
		recoverMisplaced(a.p, tx, folded)
	}
	debit, credit := Reconcile(a.p, folded, tx.amounts[models.RoleDebit], tx.amounts[models.RoleCredit])

	out := models.Transaction{
		Date:           tx.date,
		SettlementDate: tx.settle,
		Reference:      tx.reference,
		Description:    desc,
		Debit:          debit,
		Credit:         credit,
		Page:           tx.page,
		Top:            tx.top,
	}
	if b, ok := tx.amounts[models.RoleBalance]; ok {
		out.Balance = floatPtr(roundMoney(b))
	}
	if b, ok := tx.amounts[models.RoleSettlementBalance]; ok {
		out.SettlementBalance = floatPtr(roundMoney(b))
	}
	a.sections[tx.section] = append(a.sections[tx.section], out)
}

// recoverMisplaced treats a lone balance as the movement amount when no
// debit or credit was read, which happens when an amount drifts right into
// the balance columns.
func recoverMisplaced(p *profile.Profile, tx *txRow, folded string) {
	if tx.amounts[models.RoleDebit] != 0 || tx.amounts[models.RoleCredit] != 0 {
		return
	}
	bal := tx.amounts[models.RoleBalance]
	settle := tx.amounts[models.RoleSettlementBalance]
	if (bal != 0) == (settle != 0) {
		return
	}
	amount := bal + settle
	isCredit, isDebit := keywordHits(p, folded)
	if isCredit && !isDebit {
		tx.amounts[models.RoleCredit] = amount
	} else {
		tx.amounts[models.RoleDebit] = amount
	}
	delete(tx.amounts, models.RoleBalance)
	delete(tx.amounts, models.RoleSettlementBalance)
}
