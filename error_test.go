package tnl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	origErr := errors.New("Unrecognized map 'hello'.")
	err := &Error{
		Filename:  "rules.tnl",
		Line:      4,
		Column:    20,
		Token:     &Token{Kind: TokenName, Lexeme: "hello", Line: 4, Col: 20},
		Sender:    "parser",
		OrigError: origErr,
	}
	assert.Equal(t,
		"[Error (where: parser) in rules.tnl | Line 4 Col 20 near 'hello'] Unrecognized map 'hello'.",
		err.Error())
}

func TestErrorFormattingWithoutLocation(t *testing.T) {
	err := &Error{
		Sender:    "vm",
		OrigError: errors.New("test definitions are not implemented"),
	}
	assert.Equal(t, "[Error (where: vm)] test definitions are not implemented", err.Error())
}

func TestErrorUnwrap(t *testing.T) {
	origErr := errors.New("original error")
	err := &Error{Sender: "lexer", OrigError: origErr}
	assert.Same(t, origErr, err.Unwrap())
	assert.True(t, errors.Is(err, origErr))
}

func TestErrorRawLine(t *testing.T) {
	t.Run("no line", func(t *testing.T) {
		e := &Error{Line: 0}
		line, available, err := e.RawLine()
		require.NoError(t, err)
		assert.False(t, available)
		assert.Empty(t, line)
	})

	t.Run("string source", func(t *testing.T) {
		e := &Error{Line: 1, Filename: "<string>"}
		_, available, err := e.RawLine()
		require.NoError(t, err)
		assert.False(t, available)
	})

	t.Run("missing file", func(t *testing.T) {
		e := &Error{Line: 1, Filename: filepath.Join(t.TempDir(), "missing.tnl")}
		_, _, err := e.RawLine()
		require.Error(t, err)
	})

	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.tnl")
		require.NoError(t, os.WriteFile(path, []byte("line one\nline two\n"), 0o600))
		e := &Error{Line: 2, Filename: path}
		line, available, err := e.RawLine()
		require.NoError(t, err)
		assert.True(t, available)
		assert.Equal(t, "line two", line)
	})
}

func TestTokenString(t *testing.T) {
	token := &Token{Kind: TokenString, Lexeme: "hello", Line: 2, Col: 7}
	assert.Equal(t, "<Token Kind=STRING Lexeme='hello' Line=2 Col=7>", token.String())
}
