package parser

import (
	"sort"
	"strconv"
	"time"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/textnorm"
)

// maxDateTokens bounds how many tokens a printed date may span.
const maxDateTokens = 6

// rowView is one body row read against the page's column bands.
type rowView struct {
	folded    string
	date      *time.Time
	settle    *time.Time
	reference string
	desc      string
	// amounts holds only the roles the row actually sets.
	amounts map[models.ColumnRole]float64
}

// pageLayout is the per-page result of column detection.
type pageLayout struct {
	bands []models.ColumnBand
	// moneyOrder lists debit, credit and balance in x order; it maps the
	// values of a three-amount run.
	moneyOrder []models.ColumnRole
}

func newPageLayout(bands []models.ColumnBand) pageLayout {
	l := pageLayout{bands: bands}
	for _, b := range bands {
		switch b.Role {
		case models.RoleDebit, models.RoleCredit, models.RoleBalance:
			l.moneyOrder = append(l.moneyOrder, b.Role)
		}
	}
	if len(l.moneyOrder) != 3 {
		l.moneyOrder = []models.ColumnRole{models.RoleDebit, models.RoleCredit, models.RoleBalance}
	}
	return l
}

// splitCells assigns each token index to the band holding its center.
func splitCells(tokens []models.Token, bands []models.ColumnBand) map[models.ColumnRole][]int {
	cells := make(map[models.ColumnRole][]int)
	for i, t := range tokens {
		role := bands[bandIndex(bands, t.CenterX())].Role
		cells[role] = append(cells[role], i)
	}
	return cells
}

func without(idx []int, drop map[int]bool) []int {
	var out []int
	for _, i := range idx {
		if !drop[i] {
			out = append(out, i)
		}
	}
	return out
}

// readRow extracts dates, reference, description and amounts from a row.
func (a *assembler) readRow(row models.Row) rowView {
	p := a.p
	tokens := row.Tokens
	v := rowView{
		folded:  textnorm.Fold(row.Text()),
		amounts: make(map[models.ColumnRole]float64),
	}
	cells := splitCells(tokens, a.layout.bands)
	consumed := make(map[int]bool)
	var extraDesc []int

	// Dates come from the date cell, or from the first tokens of the row
	// when the date spills out of its band.
	dateIdx := cells[models.RoleDate]
	if used, d, ok := a.leadingDate(tokens, dateIdx); ok {
		v.date = &d
		markAll(consumed, used)
	} else if lead := a.leadingNonMoney(tokens); len(lead) > 0 && (len(dateIdx) == 0 || lead[0] != dateIdx[0]) {
		if used, d, ok := a.leadingDate(tokens, lead); ok {
			v.date = &d
			markAll(consumed, used)
		}
	}
	if v.date == nil && len(dateIdx) > 0 {
		if used, d := a.splitDate(tokens, dateIdx[0]); used {
			consumed[dateIdx[0]] = true
			v.date = d
		}
	}

	if settleIdx := without(cells[models.RoleSettlementDate], consumed); len(settleIdx) > 0 {
		if used, d, ok := a.leadingDate(tokens, settleIdx); ok {
			v.settle = &d
			markAll(consumed, used)
		}
	}
	if rest := without(dateIdx, consumed); len(rest) > 0 && v.date != nil && v.settle == nil && hasRole(a.layout.bands, models.RoleSettlementDate) {
		if used, d, ok := a.leadingDate(tokens, rest); ok {
			v.settle = &d
			markAll(consumed, used)
		}
	}

	dateLike := append(append([]int{}, cells[models.RoleDate]...), cells[models.RoleSettlementDate]...)
	for _, i := range without(dateLike, consumed) {
		txt := tokens[i].Text
		if hasLetter(txt) || isLongNumber(txt) {
			extraDesc = append(extraDesc, i)
		}
		consumed[i] = true
	}

	// Reference cell. Tokens without digits are description words that
	// strayed left.
	var refIdx []int
	for _, i := range without(cells[models.RoleReference], consumed) {
		txt := tokens[i].Text
		switch {
		case p.MergeReference:
			extraDesc = append(extraDesc, i)
		case p.ReferenceToken != nil && !p.ReferenceToken.MatchString(textnorm.Fold(txt)):
			extraDesc = append(extraDesc, i)
		case p.ReferenceToken == nil && !hasDigit(txt):
			extraDesc = append(extraDesc, i)
		default:
			refIdx = append(refIdx, i)
		}
		consumed[i] = true
	}
	v.reference = joinTokens(tokens, refIdx)

	// Money cells.
	cellAmounts := make(map[models.ColumnRole]float64)
	cellAll := make(map[models.ColumnRole][]amountMatch)
	for _, b := range a.layout.bands {
		if !b.Role.IsMoney() {
			continue
		}
		idx := without(cells[b.Role], consumed)
		ms := findAmounts(p, joinTokens(tokens, idx))
		if len(ms) == 0 {
			for _, i := range idx {
				if hasLetter(tokens[i].Text) {
					extraDesc = append(extraDesc, i)
				}
			}
			continue
		}
		cellAll[b.Role] = ms
		if b.Role == models.RoleBalance || b.Role == models.RoleSettlementBalance {
			cellAmounts[b.Role] = ms[len(ms)-1].value
		} else {
			cellAmounts[b.Role] = ms[0].value
		}
	}
	if ov := p.BalanceOverflow; ov != "" {
		if ms := cellAll[models.RoleBalance]; len(ms) >= 2 {
			if _, set := cellAmounts[ov]; !set {
				cellAmounts[ov] = ms[len(ms)-2].value
				cellAmounts[models.RoleBalance] = ms[len(ms)-1].value
			}
		}
	}

	descIdx := append(without(cells[models.RoleDescription], consumed), extraDesc...)
	sort.Ints(descIdx)
	descText := joinTokens(tokens, descIdx)

	switch p.AmountSource {
	case profile.PreferRun:
		var runIdx []int
		for i := range tokens {
			if !consumed[i] || containsInt(extraDesc, i) {
				runIdx = append(runIdx, i)
			}
		}
		runText := joinTokens(tokens, runIdx)
		if p.StripLeadingDigits != nil {
			runText = p.StripLeadingDigits.ReplaceAllString(runText, "")
		}
		run := ExtractAmountRun(p, runText)
		v.desc = run.Description
		switch {
		case len(run.Values) >= 2:
			a.assignRun(&v, run)
		case len(cellAmounts) > 0:
			v.amounts = cellAmounts
		case len(run.Values) == 1:
			a.assignRun(&v, run)
		}
	default:
		v.desc = descText
		switch {
		case len(cellAmounts) > 0:
			v.amounts = cellAmounts
		case v.date != nil:
			run := ExtractAmountRun(p, descText)
			v.desc = run.Description
			if len(run.Values) > 0 {
				a.assignRun(&v, run)
			}
		}
	}

	if v.desc == "" {
		v.desc = fallbackDescription(p, tokens, consumed)
	}
	return v
}

// assignRun maps run values onto money roles.
func (a *assembler) assignRun(v *rowView, run AmountRun) {
	folded := textnorm.Fold(run.Description)
	setClassified := func(amount float64) {
		d, c := Classify(a.p, folded, amount)
		if d != 0 {
			v.amounts[models.RoleDebit] = d
		} else {
			v.amounts[models.RoleCredit] = c
		}
	}
	switch len(run.Values) {
	case 3:
		for i, role := range a.layout.moneyOrder {
			v.amounts[role] = run.Values[i]
		}
	case 2:
		setClassified(run.Values[0])
		v.amounts[models.RoleBalance] = run.Values[1]
	case 1:
		if a.p.TotalsPattern != nil && a.p.TotalsPattern.MatchString(v.folded) {
			setClassified(run.Values[0])
		} else {
			v.amounts[models.RoleBalance] = run.Values[0]
		}
	}
}

// leadingDate tries ever longer prefixes of idx against the full date
// grammar and returns the tokens used.
func (a *assembler) leadingDate(tokens []models.Token, idx []int) ([]int, time.Time, bool) {
	for k := 1; k <= len(idx) && k <= maxDateTokens; k++ {
		folded := textnorm.Fold(joinTokens(tokens, idx[:k]))
		if dm, ok := matchDate(a.p.Dates.Full, folded, a.years); ok {
			a.lastMonth = dm.date.Month()
			return idx[:k], dm.date, true
		}
	}
	return nil, time.Time{}, false
}

// splitDate handles layouts that print the month on one row and only the
// day on the following rows.
func (a *assembler) splitDate(tokens []models.Token, i int) (bool, *time.Time) {
	g := a.p.Dates
	folded := textnorm.Fold(tokens[i].Text)
	if g.MonthOnly != nil {
		if m := g.MonthOnly.FindStringSubmatch(folded); m != nil {
			if month, ok := parseMonth(group(g.MonthOnly, m, "mon")); ok {
				a.lastMonth = month
				return true, nil
			}
		}
	}
	if g.DayOnly != nil && a.lastMonth != 0 {
		if m := g.DayOnly.FindStringSubmatch(folded); m != nil {
			day, err := strconv.Atoi(group(g.DayOnly, m, "day"))
			if err != nil {
				return false, nil
			}
			if d, ok := makeDate(a.years.yearFor(a.lastMonth), a.lastMonth, day); ok {
				return true, &d
			}
		}
	}
	return false, nil
}

// leadingNonMoney returns the row's first tokens up to the first token in a
// money band.
func (a *assembler) leadingNonMoney(tokens []models.Token) []int {
	var out []int
	for i, t := range tokens {
		if a.layout.bands[bandIndex(a.layout.bands, t.CenterX())].Role.IsMoney() || i >= maxDateTokens {
			break
		}
		out = append(out, i)
	}
	return out
}

// fallbackDescription keeps whatever text is neither a date, an amount nor
// the reference.
func fallbackDescription(p *profile.Profile, tokens []models.Token, consumed map[int]bool) string {
	var idx []int
	for i, t := range tokens {
		if consumed[i] || len(findAmounts(p, t.Text)) > 0 {
			continue
		}
		idx = append(idx, i)
	}
	return joinTokens(tokens, idx)
}

func hasRole(bands []models.ColumnBand, role models.ColumnRole) bool {
	for _, b := range bands {
		if b.Role == role {
			return true
		}
	}
	return false
}

func markAll(set map[int]bool, idx []int) {
	for _, i := range idx {
		set[i] = true
	}
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// isLongNumber reports a bare number of five or more digits, a folio or
// account that landed in the date band.
func isLongNumber(s string) bool {
	if len(s) < 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
