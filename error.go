package tnl

import (
	"bufio"
	"fmt"
	"os"
)

// This Error type is being used to address an error during lexing, parsing
// or execution. Make sure "Sender" is always given ("lexer", "parser" or
// "vm"). It's okay if you only fill in OrigError if you don't have any other
// details at hand.
type Error struct {
	Filename  string
	Line      int
	Column    int
	Token     *Token
	Sender    string
	OrigError error
}

func (e *Error) Unwrap() error {
	return e.OrigError
}

// Returns a nice formatted error string.
func (e *Error) Error() string {
	s := "[Error"
	if e.Sender != "" {
		s += " (where: " + e.Sender + ")"
	}
	if e.Filename != "" {
		s += " in " + e.Filename
	}
	if e.Line > 0 {
		s += fmt.Sprintf(" | Line %d Col %d", e.Line, e.Column)
		if e.Token != nil {
			s += fmt.Sprintf(" near '%s'", e.Token.Lexeme)
		}
	}
	s += "] "
	if e.OrigError != nil {
		s += e.OrigError.Error()
	}
	return s
}

// RawLine returns the affected line from the original source, if available.
func (e *Error) RawLine() (line string, available bool, outErr error) {
	if e.Line <= 0 || e.Filename == "<string>" {
		return "", false, nil
	}

	file, err := os.Open(e.Filename)
	if err != nil {
		return "", false, err
	}
	defer func() {
		err := file.Close()
		if err != nil && outErr == nil {
			outErr = err
		}
	}()

	scanner := bufio.NewScanner(file)
	l := 0
	for scanner.Scan() {
		l++
		if l == e.Line {
			return scanner.Text(), true, nil
		}
	}
	return "", false, nil
}
