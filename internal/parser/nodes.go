package parser

import sitter "github.com/smacker/go-tree-sitter"

// NodeText returns the source slice covered by n, same as philtographer's
// tsgraph.nodeText helper.
func NodeText(src []byte, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

// FindChild returns the first named child of n with the given type.
func FindChild(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == typ {
			return c
		}
	}
	return nil
}

// FindChildren returns every named child of n with the given type.
func FindChildren(n *sitter.Node, typ string) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == typ {
			out = append(out, c)
		}
	}
	return out
}

// StringLiteralValue extracts the value of a `string` node, trimming the
// surrounding quote characters.
func StringLiteralValue(src []byte, n *sitter.Node) string {
	text := NodeText(src, n)
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}
