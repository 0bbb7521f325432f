// Package parser adapts github.com/smacker/go-tree-sitter into the
// external Parser Gateway contract from spec.md §6:
// parse(source, filename) -> (AST, comments). TSX and plain TypeScript
// both permit dynamic-import syntax at the grammar level; we don't lower
// dynamic import (spec.md Non-goals), but nothing here rejects it.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Comment is a leading or trailing comment preserved from the source,
// carried alongside the CST for parity with the external contract in
// spec.md §6. The emitter does not read this list: comments stay in the
// spliced body wherever they lie outside an edited byte range.
type Comment struct {
	Text       string
	Start, End int
}

// AST is the Parser Gateway's output: the original bytes (AST′ is
// produced as edits over these bytes, see internal/lower), the parsed
// tree, and any comments found.
type AST struct {
	Source   []byte
	Filename string
	Tree     *sitter.Tree
	Root     *sitter.Node
	Comments []Comment
}

// Parse dispatches to the TSX, TypeScript, or JavaScript grammar by file
// extension, mirroring tsgraph.ParseTSFile's extension-based dispatch.
func Parse(ctx context.Context, source []byte, filename string) (*AST, error) {
	lang := languageFor(filename)

	p := sitter.NewParser()
	p.SetLanguage(lang)

	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil, fmt.Errorf("parse %s: syntax error", filename)
	}

	return &AST{
		Source:   source,
		Filename: filename,
		Tree:     tree,
		Root:     root,
		Comments: collectComments(source, root),
	}, nil
}

func languageFor(filename string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tsx":
		return tsx.GetLanguage()
	case ".ts":
		return typescript.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// collectComments walks the tree once collecting "comment" nodes,
// preserving both leading and trailing placement by source position.
func collectComments(src []byte, root *sitter.Node) []Comment {
	var out []Comment
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "comment" {
			out = append(out, Comment{
				Text:  string(src[n.StartByte():n.EndByte()]),
				Start: int(n.StartByte()),
				End:   int(n.EndByte()),
			})
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}
