// Package emitter applies the edits produced by internal/lower to the
// original source bytes, implementing the external "emit" contract from
// spec.md §6 in its splice form: AST′ is source plus edits, not a
// re-printed AST, so emission is a linear scan rather than a code
// generator invocation.
package emitter

import (
	"strings"

	"github.com/ductc/ductc/internal/lower"
)

// Emit applies edits (assumed sorted by Start, non-overlapping) to src,
// then prepends preamble ahead of the spliced body, matching the AST′
// ordering invariant from spec.md §4.3: preamble bindings first, then
// the original body with imports removed and exports rewritten in place.
func Emit(src []byte, edits []lower.Edit, preamble string) ([]byte, error) {
	var body strings.Builder
	cursor := 0
	for _, e := range edits {
		if e.Start < cursor {
			continue // defensive: overlapping edit, keep first writer's output
		}
		body.Write(src[cursor:e.Start])
		body.WriteString(e.Replacement)
		cursor = e.End
	}
	body.Write(src[cursor:])

	var out strings.Builder
	out.WriteString(preamble)
	out.WriteString(body.String())
	return []byte(out.String()), nil
}
