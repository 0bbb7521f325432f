// Package lower implements the import/export lowering transform: the
// algorithmic heart of the bundler (spec.md §4.3). It walks a parsed
// module once, classifying it as ESM or CommonJS, and produces a typed
// dependency list plus an ordered set of text edits that, once applied
// by internal/emitter, yield AST′ — source with no import/export syntax,
// every external reference surfaced through a synthetic require() call.
package lower

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/ductc/ductc/internal/graph"
	"github.com/ductc/ductc/internal/parser"
)

// ImportKind tags the shape of a Dependency, mirroring spec.md §3's
// sum type. Each variant carries distinct data; the lowerer dispatches
// on this tag rather than through a shared interface (spec.md §9).
type ImportKind int

const (
	SideEffect ImportKind = iota
	Default
	Namespace
	Named
	Require
)

// NamedBinding is one `{ local, imported }` pair from a named import or
// a named re-export.
type NamedBinding struct {
	Local    string
	Imported string
}

// Dependency is one declared reference to another module. Token is the
// placeholder substituted into Code for the request string; the Build
// Engine rewrites every occurrence of Token to the resolved module id
// once resolution completes (see internal/engine).
type Dependency struct {
	Request   string
	Kind      ImportKind
	Default   string // local name, Kind == Default
	Namespace string // local name, Kind == Namespace
	Named     []NamedBinding
	Token     string
}

// Edit is a single non-overlapping byte-range replacement applied to the
// original source by internal/emitter.
type Edit struct {
	Start, End  int
	Replacement string
}

// Result is the lowerer's output: AST′ is produced by applying Edits to
// the original bytes and prepending Preamble.
type Result struct {
	Kind         graph.Kind
	Dependencies []Dependency
	Preamble     string
	Edits        []Edit
	Warnings     []string
}

var exportAllGensymRx = regexp.MustCompile(`[/.-]`)

type preambleEntry struct {
	pos  int
	text string
}

type lowerer struct {
	src      []byte
	deps     []Dependency
	preamble []preambleEntry
	edits    []Edit
	warnings []string
	kind     graph.Kind
	depIndex int
}

// Lower transforms a parsed module into (AST′ edits, dependencies, kind),
// per spec.md §4.3.
func Lower(ast *parser.AST) (*Result, error) {
	l := &lowerer{src: ast.Source, kind: graph.CommonJS}

	root := ast.Root
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Type() {
		case "import_statement":
			l.kind = graph.ESM
			l.lowerImport(stmt)
		case "export_statement":
			l.kind = graph.ESM
			l.lowerExport(stmt)
		}
	}

	l.lowerRequireCalls(root)

	sort.Slice(l.preamble, func(i, j int) bool { return l.preamble[i].pos < l.preamble[j].pos })
	var preamble strings.Builder
	for _, p := range l.preamble {
		preamble.WriteString(p.text)
	}

	sort.Slice(l.edits, func(i, j int) bool { return l.edits[i].Start < l.edits[j].Start })

	return &Result{
		Kind:         l.kind,
		Dependencies: l.deps,
		Preamble:     preamble.String(),
		Edits:        l.edits,
		Warnings:     l.warnings,
	}, nil
}

// nextToken returns a placeholder substituted for a request string in
// Code until the Build Engine resolves it to a real module id. The
// alphabet is deliberately ASCII-only (letters, digits, underscore) so
// it round-trips unchanged through the `%q` quoting every call site
// below uses to embed it in generated source -- a NUL-delimited token
// would be re-escaped by `%q` into literal backslash-x-0-0 text and
// never appear raw in Code for graph.RewriteToken to find again.
func (l *lowerer) nextToken() string {
	t := fmt.Sprintf("__ductc_dep%d__", l.depIndex)
	l.depIndex++
	return t
}

func (l *lowerer) text(n *sitter.Node) string {
	return parser.NodeText(l.src, n)
}

// addDependency records dep and returns its placeholder token.
func (l *lowerer) addDependency(dep Dependency) string {
	dep.Token = l.nextToken()
	l.deps = append(l.deps, dep)
	return dep.Token
}

func (l *lowerer) deleteStatement(stmt *sitter.Node) {
	l.edits = append(l.edits, Edit{Start: int(stmt.StartByte()), End: int(stmt.EndByte()), Replacement: ""})
}

func (l *lowerer) replaceStatement(stmt *sitter.Node, replacement string) {
	l.edits = append(l.edits, Edit{Start: int(stmt.StartByte()), End: int(stmt.EndByte()), Replacement: replacement})
}

// --- imports -----------------------------------------------------------

func (l *lowerer) lowerImport(stmt *sitter.Node) {
	source := parser.FindChild(stmt, "string")
	request := parser.StringLiteralValue(l.src, source)
	pos := int(stmt.StartByte())

	clause := parser.FindChild(stmt, "import_clause")
	if clause == nil {
		token := l.addDependency(Dependency{Request: request, Kind: SideEffect})
		l.preamble = append(l.preamble, preambleEntry{pos, fmt.Sprintf("require(%q, false);\n", token)})
		l.deleteStatement(stmt)
		return
	}

	var bindings []string

	if def := parser.FindChild(clause, "identifier"); def != nil {
		name := l.text(def)
		token := l.addDependency(Dependency{Request: request, Kind: Default, Default: name})
		bindings = append(bindings, fmt.Sprintf("var { default: %s } = require(%q, true);\n", name, token))
	}

	if ns := parser.FindChild(clause, "namespace_import"); ns != nil {
		name := l.text(parser.FindChild(ns, "identifier"))
		token := l.addDependency(Dependency{Request: request, Kind: Namespace, Namespace: name})
		bindings = append(bindings, fmt.Sprintf("var %s = require(%q, false);\n", name, token))
	}

	if named := parser.FindChild(clause, "named_imports"); named != nil {
		var parts []string
		var namedBindings []NamedBinding
		for _, spec := range parser.FindChildren(named, "import_specifier") {
			imported := l.text(parser.FindChild(spec, "identifier"))
			local := imported
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				local = l.text(alias)
			}
			namedBindings = append(namedBindings, NamedBinding{Local: local, Imported: imported})
			if local == imported {
				parts = append(parts, imported)
			} else {
				parts = append(parts, fmt.Sprintf("%s: %s", imported, local))
			}
		}
		if len(namedBindings) > 0 {
			token := l.addDependency(Dependency{Request: request, Kind: Named, Named: namedBindings})
			bindings = append(bindings, fmt.Sprintf("var { %s } = require(%q, false);\n", strings.Join(parts, ", "), token))
		}
	}

	for _, b := range bindings {
		l.preamble = append(l.preamble, preambleEntry{pos, b})
	}
	l.deleteStatement(stmt)
}

// --- exports -------------------------------------------------------------

func (l *lowerer) lowerExport(stmt *sitter.Node) {
	text := l.text(stmt)
	pos := int(stmt.StartByte())

	if strings.HasPrefix(text, "export default") {
		l.lowerExportDefault(stmt)
		return
	}

	if decl := firstDeclChild(stmt); decl != nil {
		l.lowerExportDecl(stmt, decl)
		return
	}

	source := parser.FindChild(stmt, "string")

	if ns := parser.FindChild(stmt, "namespace_export"); ns != nil {
		id := parser.FindChild(ns, "identifier")
		name := l.text(id)
		request := parser.StringLiteralValue(l.src, source)
		token := l.addDependency(Dependency{Request: request, Kind: Namespace, Namespace: name})
		l.preamble = append(l.preamble, preambleEntry{pos, fmt.Sprintf("var %s = require(%q, false);\n", name, token)})
		l.replaceStatement(stmt, fmt.Sprintf("exports.%s = %s;", name, name))
		return
	}

	if clause := parser.FindChild(stmt, "export_clause"); clause != nil {
		l.lowerExportClause(stmt, clause, source)
		return
	}

	if source != nil {
		// `export * from "S"` -- bare namespace re-export, no local name.
		request := parser.StringLiteralValue(l.src, source)
		gensym := "namespace_" + exportAllGensymRx.ReplaceAllString(request, "_")
		token := l.addDependency(Dependency{Request: request, Kind: Namespace, Namespace: gensym})
		l.preamble = append(l.preamble, preambleEntry{pos, fmt.Sprintf("var %s = require(%q, false);\n", gensym, token)})
		l.replaceStatement(stmt, fmt.Sprintf("__exportAll__(%s);", gensym))
		return
	}

	l.warnings = append(l.warnings, fmt.Sprintf("unsupported export form at byte %d", pos))
}

func firstDeclChild(stmt *sitter.Node) *sitter.Node {
	for _, typ := range []string{"lexical_declaration", "function_declaration", "class_declaration", "variable_declaration"} {
		if n := parser.FindChild(stmt, typ); n != nil {
			return n
		}
	}
	return nil
}

// lowerExportDecl handles `export const x = E`, `export function f(){}`,
// `export class C {}`.
func (l *lowerer) lowerExportDecl(stmt, decl *sitter.Node) {
	switch decl.Type() {
	case "lexical_declaration", "variable_declaration":
		var assigns []string
		for _, d := range parser.FindChildren(decl, "variable_declarator") {
			name := l.text(parser.FindChild(d, "identifier"))
			assigns = append(assigns, fmt.Sprintf("exports.%s = %s", name, name))
		}
		l.replaceStatement(stmt, l.text(decl)+";\n"+strings.Join(assigns, ", ")+";")
	case "function_declaration":
		name := l.text(parser.FindChild(decl, "identifier"))
		l.replaceStatement(stmt, fmt.Sprintf("exports.%s = %s;", name, l.text(decl)))
	case "class_declaration":
		name := l.text(parser.FindChild(decl, "identifier"))
		l.replaceStatement(stmt, fmt.Sprintf("%s;\nexports.%s = %s;", l.text(decl), name, name))
	}
}

// lowerExportDefault handles `export default E`.
func (l *lowerer) lowerExportDefault(stmt *sitter.Node) {
	text := l.text(stmt)
	expr := strings.TrimSpace(strings.TrimPrefix(text, "export default"))
	expr = strings.TrimSuffix(expr, ";")
	l.replaceStatement(stmt, fmt.Sprintf("exports.default = %s;", expr))
}

// lowerExportClause handles `export { a, b as c }` with or without `from`.
func (l *lowerer) lowerExportClause(stmt, clause, source *sitter.Node) {
	pos := int(stmt.StartByte())
	specs := parser.FindChildren(clause, "export_specifier")

	if source == nil {
		var assigns []string
		for _, spec := range specs {
			orig := l.text(parser.FindChild(spec, "identifier"))
			exported := orig
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				exported = l.text(alias)
			}
			assigns = append(assigns, fmt.Sprintf("exports.%s = %s", exported, orig))
		}
		l.replaceStatement(stmt, strings.Join(assigns, ", ")+";")
		return
	}

	request := parser.StringLiteralValue(l.src, source)
	var namedBindings []NamedBinding
	var assigns []string
	for _, spec := range specs {
		orig := l.text(parser.FindChild(spec, "identifier"))
		exported := orig
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			exported = l.text(alias)
		}
		namedBindings = append(namedBindings, NamedBinding{Local: orig, Imported: orig})
		assigns = append(assigns, fmt.Sprintf("exports.%s = %s", exported, orig))
	}
	token := l.addDependency(Dependency{Request: request, Kind: Named, Named: namedBindings})

	var parts []string
	for _, nb := range namedBindings {
		parts = append(parts, nb.Imported)
	}
	l.preamble = append(l.preamble, preambleEntry{pos, fmt.Sprintf("var { %s } = require(%q, false);\n", strings.Join(parts, ", "), token)})
	l.replaceStatement(stmt, strings.Join(assigns, ", ")+";")
}

// --- require() -----------------------------------------------------------

// lowerRequireCalls walks the whole tree (not just top-level statements)
// for `require("literal")` call sites, per spec.md §4.3.
func (l *lowerer) lowerRequireCalls(root *sitter.Node) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "call_expression" {
			l.maybeLowerRequireCall(n)
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
}

func (l *lowerer) maybeLowerRequireCall(call *sitter.Node) {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		fn = parser.FindChild(call, "identifier")
	}
	if fn == nil || fn.Type() != "identifier" || l.text(fn) != "require" {
		return
	}
	args := call.ChildByFieldName("arguments")
	if args == nil {
		args = parser.FindChild(call, "arguments")
	}
	if args == nil || args.NamedChildCount() != 1 {
		l.warnings = append(l.warnings, fmt.Sprintf("complex require not supported at byte %d", call.StartByte()))
		return
	}
	arg := args.NamedChild(0)
	if arg.Type() != "string" {
		// Non-literal require argument: warn and leave the call site untouched
		// rather than aborting (spec.md §9 downgrades this from a panic).
		l.warnings = append(l.warnings, fmt.Sprintf("complex require not supported at byte %d", call.StartByte()))
		return
	}

	request := parser.StringLiteralValue(l.src, arg)
	token := l.addDependency(Dependency{Request: request, Kind: Require})
	l.edits = append(l.edits, Edit{Start: int(arg.StartByte()), End: int(arg.EndByte()), Replacement: fmt.Sprintf("%q", token)})
}
