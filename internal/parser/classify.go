package parser

import (
	"math"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/textnorm"
)

// keywordHits reports whether folded text carries credit or debit keywords.
func keywordHits(p *profile.Profile, folded string) (credit, debit bool) {
	credit = textnorm.ContainsAny(folded, p.CreditKeywords)
	debit = textnorm.ContainsAny(folded, p.DebitKeywords)
	if !debit {
		for _, re := range p.DebitPatterns {
			if re.MatchString(folded) {
				debit = true
				break
			}
		}
	}
	return credit, debit
}

// Classify places an unlabelled amount on the debit or credit side from the
// folded description. Only a debit-only match makes it a debit; everything
// else, including no keywords at all, is a credit.
func Classify(p *profile.Profile, folded string, amount float64) (debit, credit float64) {
	amount = roundMoney(math.Abs(amount))
	isCredit, isDebit := keywordHits(p, folded)
	if isDebit && !isCredit {
		return amount, 0
	}
	return 0, amount
}

// Reconcile enforces that at most one side is non-zero. When both are set
// the keywords decide and an undecided row keeps the debit. With
// KeywordOverride a lone amount moves when the keywords clearly point to
// the other side.
func Reconcile(p *profile.Profile, folded string, debit, credit float64) (float64, float64) {
	debit, credit = roundMoney(math.Abs(debit)), roundMoney(math.Abs(credit))
	isCredit, isDebit := keywordHits(p, folded)

	switch {
	case debit != 0 && credit != 0:
		if isCredit && !isDebit {
			return 0, credit
		}
		return debit, 0
	case p.KeywordOverride && debit != 0 && isCredit && !isDebit:
		return 0, debit
	case p.KeywordOverride && credit != 0 && isDebit && !isCredit:
		return credit, 0
	}
	return debit, credit
}
