package quotes

import (
	"strings"

	"github.com/avigne/quotevault/internal/models"
)

// FixItem normalizes one record field:
//
//	U+00A0 non-breaking space      → regular space
//	U+2019 right single quotation  → apostrophe
//	U+00AB « followed by a space   → double quote
//	space followed by U+00BB »     → double quote
//
// The replacements run in this order so that a « followed by a
// non-breaking space still collapses to a plain double quote.
// The transform is idempotent.
func FixItem(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, "’", "'")
	s = strings.ReplaceAll(s, "« ", `"`)
	s = strings.ReplaceAll(s, " »", `"`)
	return s
}

// FixQuote applies FixItem to every field of a record.
func FixQuote(q models.Quote) models.Quote {
	out := make(models.Quote, len(q))
	for i, item := range q {
		out[i] = FixItem(item)
	}
	return out
}
