package parser

import (
	"context"
	"testing"

	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/stretchr/testify/require"
)

func TestParseJavaScriptSmoke(t *testing.T) {
	src := []byte(`import { a } from "./a"; export const b = 1;`)
	ast, err := Parse(context.Background(), src, "entry.js")
	require.NoError(t, err)
	require.NotNil(t, ast.Root)
	require.Equal(t, src, ast.Source)
}

func TestParseTSXSmoke(t *testing.T) {
	src := []byte(`export default function App() { return <div/>; }`)
	ast, err := Parse(context.Background(), src, "App.tsx")
	require.NoError(t, err)
	require.NotNil(t, ast.Root)
}

func TestLanguageForDispatchesByExtension(t *testing.T) {
	require.Equal(t, typescript.GetLanguage(), languageFor("a.ts"))
	require.Equal(t, tsx.GetLanguage(), languageFor("a.tsx"))
	require.Equal(t, javascript.GetLanguage(), languageFor("a.js"))
	require.Equal(t, javascript.GetLanguage(), languageFor("a.mjs"))
}
