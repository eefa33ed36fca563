// Package sanitize cleans up raw replies from the inference backend before
// they are stored or shown to users. Local models tend to echo role tags,
// stage directions and irregular whitespace; Clean strips all of that.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// A leading "[Role]" speaker tag, with any punctuation glued to it.
	leadingRoleTag = regexp.MustCompile(`^\[\w+\]\s*[!?,.\-–]*\s*`)

	// A "! *waves*"-style action aside: an exclamation mark followed by a run
	// of characters up to (not including) the next terminal punctuation.
	actionAside = regexp.MustCompile(`!\s*[^.!?]*`)

	// Punctuation/whitespace debris left at the front by the rules above.
	leadingPunct = regexp.MustCompile(`^[!?,.\-–\s]+`)

	// Two or more whitespace characters of any kind.
	multiSpace = regexp.MustCompile(`\s{2,}`)

	// A newline with whitespace padding on either side.
	paddedNewline = regexp.MustCompile(`\s*\n\s*`)
)

// Clean normalizes a raw backend reply. It is deterministic, does no I/O, and
// is idempotent: Clean(Clean(s)) == Clean(s).
//
// The rules apply in order:
//  1. strip one leading bracketed role tag
//  2. delete action asides
//  3. strip leftover leading punctuation
//  4. collapse whitespace runs into a single space
//  5. normalize whitespace-padded newlines
//  6. trim
func Clean(raw string) string {
	text := leadingRoleTag.ReplaceAllString(raw, "")
	text = actionAside.ReplaceAllString(text, "")
	text = leadingPunct.ReplaceAllString(text, "")
	text = multiSpace.ReplaceAllString(text, " ")
	text = paddedNewline.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
