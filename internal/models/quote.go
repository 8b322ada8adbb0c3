// Package models defines the domain types for QuoteVault.
package models

import "strings"

// Quote represents one record: an ordered list of short text fields,
// conventionally quote text, author, and source. It serializes as a
// JSON array, which is exactly its on-disk shard representation.
type Quote []string

// NewQuote builds a Quote from the given fields. Each field is
// whitespace-trimmed and trailing empty fields are dropped, so
// ["text", "author", ""] and ["text", "author"] are the same record.
func NewQuote(fields ...string) Quote {
	q := make(Quote, 0, len(fields))
	for _, f := range fields {
		q = append(q, strings.TrimSpace(f))
	}
	for len(q) > 0 && q[len(q)-1] == "" {
		q = q[:len(q)-1]
	}
	return q
}

// Text returns the quote text (first field), or "" when absent.
func (q Quote) Text() string { return q.field(0) }

// Author returns the author (second field), or "" when absent.
func (q Quote) Author() string { return q.field(1) }

// Source returns the source work (third field), or "" when absent.
func (q Quote) Source() string { return q.field(2) }

func (q Quote) field(i int) string {
	if i < len(q) {
		return q[i]
	}
	return ""
}

// Equal reports whether two quotes hold the same fields.
func (q Quote) Equal(other Quote) bool {
	if len(q) != len(other) {
		return false
	}
	for i := range q {
		if q[i] != other[i] {
			return false
		}
	}
	return true
}

// FolderInfo is a lightweight summary of one quote folder.
type FolderInfo struct {
	Path  string `json:"path"`
	Total int    `json:"total"`
}
