package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

var fold = strings.NewReplacer(
	"'", "", "’", "",
	"á", "a", "à", "a", "â", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ï", "i", "ó", "o", "ö", "o", "ô", "o",
	"ú", "u", "ü", "u", "ç", "c", "ñ", "n",
)

// Generate turns a category or product label into an anchor-safe slug.
// Apostrophes are dropped rather than split on.
//
//   - "men's clothing" → "mens-clothing"
//   - "  Electronics & More!" → "electronics-more"
func Generate(name string) string {
	s := fold.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
