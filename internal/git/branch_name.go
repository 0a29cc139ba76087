package git

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxTitleSlug bounds the title portion of a generated branch name so
// long titles produce filesystem-safe refs.
const maxTitleSlug = 40

// GenerateBranchName builds a deterministic, VCS-safe branch name from
// an item identifier and title, e.g. "stride/feat-102-add-login-form".
func GenerateBranchName(identifier, title string) string {
	slug := slugify(title)
	if len(slug) > maxTitleSlug {
		// Back up to a rune boundary so a multibyte title never
		// leaves a partial encoding at the cut point.
		cut := maxTitleSlug
		for cut > 0 && !utf8.RuneStart(slug[cut]) {
			cut--
		}
		slug = strings.Trim(slug[:cut], "-")
	}
	id := slugify(identifier)
	if slug == "" {
		return "stride/" + id
	}
	return "stride/" + id + "-" + slug
}

// PhaseBranchName builds the shared branch name for a sequential phase.
func PhaseBranchName(order int) string {
	return fmt.Sprintf("stride/phase-%d", order)
}

// slugify lowercases the input and replaces runs of non-alphanumeric
// characters with single dashes.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
