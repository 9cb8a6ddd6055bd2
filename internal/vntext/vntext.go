package vntext

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Keeps word characters, hyphens, and the Latin-with-diacritics ranges
	// used by Vietnamese; everything else is noise.
	nameJunkRe = regexp.MustCompile(`[^\w\x{00C0}-\x{024F}\x{1E00}-\x{1EFF}-]`)

	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NormalizeName turns a document file name or slug into the lookup key used
// by the locator: lower-cased, internal whitespace collapsed to single
// hyphens, punctuation dropped. Vietnamese letters survive.
func NormalizeName(name string) string {
	lowered := strings.ToLower(name)
	hyphenated := whitespaceRe.ReplaceAllString(lowered, "-")
	return nameJunkRe.ReplaceAllString(hyphenated, "")
}

// Fold strips Vietnamese tone marks and diacritics, mapping every variant to
// its base Latin letter ("việt" -> "viet"). Queries are frequently typed
// without tone marks, so both index and query text go through this.
func Fold(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	out = strings.ReplaceAll(out, "đ", "d")
	return strings.ReplaceAll(out, "Đ", "D")
}

// FoldRunes folds one rune at a time so the output aligns index-for-index
// with []rune of the input. Used to map match offsets in folded text back
// onto the original text when extracting highlight snippets.
func FoldRunes(s string) []rune {
	in := []rune(s)
	out := make([]rune, len(in))
	for i, r := range in {
		folded := []rune(Fold(string(r)))
		if len(folded) == 1 {
			out[i] = folded[0]
		} else {
			out[i] = r
		}
	}
	return out
}

// Tokenize produces the normalized token stream shared by indexing and query
// processing: folded, lower-cased, split on runs of non-word characters.
func Tokenize(text string) []string {
	folded := strings.ToLower(Fold(text))
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '_'
	})
}
