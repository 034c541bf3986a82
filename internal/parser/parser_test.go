package parser

import (
	"context"
	"testing"

	"codegraph/internal/ast"

	"github.com/stretchr/testify/require"
)

func TestParseGoExtractsFunctionDeclaration(t *testing.T) {
	p := New()
	require.True(t, p.Supports(ast.LanguageGo))

	src := []byte("package main\n\nfunc add(a, b int) int {\n\treturn a + b\n}\n")
	tree, err := p.Parse(context.Background(), ast.LanguageGo, src)
	require.NoError(t, err)
	defer tree.Close()

	funcs := tree.Root().FindDescendantsOfKind("function_declaration")
	require.Len(t, funcs, 1)
	require.Contains(t, funcs[0].Text(), "func add")
}

func TestParseUnsupportedLanguageErrors(t *testing.T) {
	p := New()
	_, err := p.Parse(context.Background(), ast.Language("cobol"), []byte("IDENTIFICATION DIVISION."))
	require.Error(t, err)
}

func TestParseIsSafeForConcurrentUse(t *testing.T) {
	p := New()
	src := []byte("package main\n\nfunc f() {}\n")
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			tree, err := p.Parse(context.Background(), ast.LanguageGo, src)
			if err == nil {
				tree.Close()
			}
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}
}
