package models

// Token is a positioned fragment of page text. Coordinates use a top-left
// origin, so Top grows downward.
type Token struct {
	Text   string  `json:"text"`
	X0     float64 `json:"x0"`
	X1     float64 `json:"x1"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Page   int     `json:"page"`
}

// CenterX is the horizontal midpoint of the token.
func (t Token) CenterX() float64 { return (t.X0 + t.X1) / 2 }

// Height is the vertical extent of the token.
func (t Token) Height() float64 { return t.Bottom - t.Top }

// Page is one page of a statement as delivered by the token source.
type Page struct {
	Index  int     `json:"index"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Tokens []Token `json:"tokens"`
	// Text is the line-joined page text used for metadata and page-level
	// pattern checks.
	Text string `json:"text"`
}

// Document is the full token stream of one statement.
type Document struct {
	FileName string `json:"fileName"`
	Pages    []Page `json:"pages"`
}

// ColumnRole is the meaning of a statement column.
type ColumnRole string

const (
	RoleDate              ColumnRole = "date"
	RoleSettlementDate    ColumnRole = "settlement_date"
	RoleReference         ColumnRole = "reference"
	RoleDescription       ColumnRole = "description"
	RoleDebit             ColumnRole = "debit"
	RoleCredit            ColumnRole = "credit"
	RoleBalance           ColumnRole = "balance"
	RoleSettlementBalance ColumnRole = "settlement_balance"
)

// IsMoney reports whether the column holds amounts.
func (r ColumnRole) IsMoney() bool {
	switch r {
	case RoleDebit, RoleCredit, RoleBalance, RoleSettlementBalance:
		return true
	}
	return false
}

// ColumnBand is the horizontal region assigned to one logical column.
// Bands are half-open [XMin, XMax) except the last, which includes XMax.
type ColumnBand struct {
	Name string
	Role ColumnRole
	XMin float64
	XMax float64
}

// Row is a set of tokens grouped as one visual line.
type Row struct {
	Page   int
	Top    float64
	Tokens []Token
}

// Text joins the row tokens left to right with single spaces.
func (r Row) Text() string {
	n := 0
	for _, t := range r.Tokens {
		n += len(t.Text) + 1
	}
	b := make([]byte, 0, n)
	for i, t := range r.Tokens {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, t.Text...)
	}
	return string(b)
}
