// Package recon reconciles uploaded driver rows against authoritative journey
// records using an ordered cascade of name-matching strategies.
package recon

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeName canonicalizes a human-entered name for comparison by:
//  1. Folding accented letters to their base letter (é -> e)
//  2. Lower-casing and trimming
//  3. Removing every character outside [a-z0-9], whitespace included
//
// The result is idempotent: NormalizeName(NormalizeName(x)) == NormalizeName(x).
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}

	// A transform.Chain is stateful, so build one per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	if folded, _, err := transform.String(fold, name); err == nil {
		name = folded
	}

	name = strings.ToLower(strings.TrimSpace(name))
	return nonAlnumRe.ReplaceAllString(name, "")
}
