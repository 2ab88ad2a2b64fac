package bindgen

import (
	"fmt"
	"strings"

	"github.com/johnstonskj/tsbind/pkg/nodetypes"
)

// punctNames spells out the characters that commonly appear in
// anonymous token types.
var punctNames = map[rune]string{
	'+': "plus", '-': "minus", '*': "star", '/': "slash", '%': "percent",
	'^': "caret", '&': "amp", '|': "pipe", '~': "tilde", '!': "bang",
	'=': "eq", '<': "lt", '>': "gt", '.': "dot", ',': "comma",
	':': "colon", ';': "semi", '?': "question", '@': "at", '#': "hash",
	'$': "dollar", '(': "lparen", ')': "rparen", '[': "lbrack",
	']': "rbrack", '{': "lbrace", '}': "rbrace", '"': "dquote",
	'\'': "squote", '`': "bquote", '\\': "backslash", ' ': "space",
}

// bindingName derives a deterministic identifier-shaped name for a
// node type. Named types use their own name; anonymous token types get
// their characters spelled out.
func bindingName(t nodetypes.NodeType) string {
	if t.Named {
		return t.Type
	}

	var parts []string

	var run strings.Builder

	flush := func() {
		if run.Len() > 0 {
			parts = append(parts, run.String())
			run.Reset()
		}
	}

	for _, r := range t.Type {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			run.WriteRune(r)
		default:
			flush()

			name, ok := punctNames[r]
			if !ok {
				name = fmt.Sprintf("u%04x", r)
			}

			parts = append(parts, name)
		}
	}

	flush()

	return "anon_" + strings.Join(parts, "_")
}

// unionName derives the deterministic name of a synthesized union from
// its ordered members.
func unionName(members []nodetypes.NodeType) string {
	parts := make([]string, len(members))

	for i, m := range members {
		parts[i] = bindingName(m)
	}

	return strings.Join(parts, "_or_")
}
